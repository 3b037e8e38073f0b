package api

import (
	"github.com/ericogr/cardduel/internal/service"
)

// DuelHandler groups all duel-related HTTP handlers.
type DuelHandler struct {
	svc *service.DuelService
	hub *Hub
}

// NewDuelHandler creates a handler over the duel service. hub serves the
// event streams and must be the service's broadcaster.
func NewDuelHandler(svc *service.DuelService, hub *Hub) *DuelHandler {
	return &DuelHandler{svc: svc, hub: hub}
}
