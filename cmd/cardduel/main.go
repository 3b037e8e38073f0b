package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ericogr/cardduel/internal/api"
	"github.com/ericogr/cardduel/internal/config"
	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/service"
	"github.com/ericogr/cardduel/internal/version"

	"github.com/gin-gonic/gin"
)

const expiryInterval = 30 * time.Second

func main() {
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := config.ParseEnv()
	if err != nil {
		logging.Fatal("Invalid environment", err, nil)
	}
	cfg := loadConfigOrExit(env.ConfigPath)
	repo := createRepositoryOrExit(env.DBPath)

	hub := api.NewHub()
	svc := service.New(service.Options{
		Config:      cfg,
		Repo:        repo,
		Chat:        newChatClient(ctx, env),
		Broadcaster: hub,
		AITimeout:   env.AITimeout,
		IdleTTL:     env.IdleTTL,
	})
	defer svc.Close()

	// Background scanner: finish duels nobody touched within the idle TTL.
	go svc.RunExpiry(ctx, expiryInterval)

	router := gin.Default()
	api.RegisterRoutes(router, api.NewDuelHandler(svc, hub))

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info("Server started", logging.Fields{
		constants.LogFieldAddr: cfg.ServerAddress,
		"version":              version.Version,
		"cards":                len(cfg.Cards),
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Failed to start server", err, nil)
	}
	logging.Info("Server stopped", nil)
}
