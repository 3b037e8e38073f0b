package storage

import (
	"time"

	"github.com/ericogr/cardduel/internal/game"
)

type Repository interface {
	// SaveDuel inserts or updates the record with the same code.
	SaveDuel(d *game.DuelRecord) error
	GetDuelByCode(code string) (*game.DuelRecord, error)
	// ListRecentDuels returns the newest duels first, without snapshots.
	ListRecentDuels(limit int) ([]game.DuelRecord, error)
	// FindStaleDuels returns in-progress duels not updated since before.
	FindStaleDuels(before time.Time) ([]game.DuelRecord, error)
	// MarkFinished closes an in-progress duel with no winner.
	MarkFinished(code string) error
	LogAIDecision(rec *game.AIDecisionRecord) error
	ListAIDecisions(code string) ([]game.AIDecisionRecord, error)
}
