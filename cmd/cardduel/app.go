package main

import (
	"context"

	"github.com/ericogr/cardduel/internal/ai"
	"github.com/ericogr/cardduel/internal/config"
	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/openaiclient"
	"github.com/ericogr/cardduel/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid card duel configuration", err, logging.Fields{
			"config_path": path,
			"hint":        "create a cardduel_config.json with a 'card_list' array of cards (name,type,...) and a 'decks' array",
		})
	}
	return cfg
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": dbPath})
	}
	return storage.NewSQLiteRepository(db)
}

// newChatClient returns nil when no key is configured; opponents then always
// play the fallback plan.
func newChatClient(ctx context.Context, e config.Env) ai.ChatClient {
	if !e.AIEnabled() {
		logging.Warn("OPENAI_API_KEY not set; AI opponents use the fallback planner", nil)
		return nil
	}
	var opts []openaiclient.Option
	if e.OpenAIBaseURL != "" {
		opts = append(opts, openaiclient.WithBaseURL(e.OpenAIBaseURL))
	}
	if e.AIModel != "" {
		opts = append(opts, openaiclient.WithModel(e.AIModel))
	}
	opts = append(opts, openaiclient.WithTimeout(e.AITimeout))
	client, err := openaiclient.New(ctx, e.OpenAIAPIKey, opts...)
	if err != nil {
		logging.Error("failed to build chat client; using fallback planner", err, nil)
		return nil
	}
	logging.Info("AI opponents enabled", logging.Fields{"model": client.Model(), constants.LogFieldSource: ai.SourceModel})
	return client
}
