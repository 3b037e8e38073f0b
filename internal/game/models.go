package game

import (
	"gorm.io/gorm"
)

// DuelRecord persists a snapshot of a duel. The engine never reads it back
// during play; it exists for listings and post-game review.
type DuelRecord struct {
	gorm.Model
	Code         string `json:"code" gorm:"uniqueIndex;size:16"`
	PlayerName   string `json:"player_name"`
	OpponentName string `json:"opponent_name"`
	Round        int    `json:"round"`
	Phase        string `json:"phase"`
	Status       string `json:"status" gorm:"index"`
	Winner       string `json:"winner"`
	// Snapshot stores the JSON encoded GameState. It is omitted from list
	// responses and stored as a BLOB.
	Snapshot []byte `json:"-" gorm:"column:snapshot;type:blob"`
}

// TableName overrides the default GORM table name.
func (DuelRecord) TableName() string { return "duel_snapshots" }

// AIDecisionRecord logs one opponent placement decision.
type AIDecisionRecord struct {
	gorm.Model
	DuelCode  string `json:"duel_code" gorm:"index"`
	RequestID string `json:"request_id"`
	Round     int    `json:"round"`
	Epoch     uint64 `json:"epoch"`
	Source    string `json:"source"` // llm | fallback
	Strategy  string `json:"strategy"`
	Stacks    int    `json:"stacks"`
	Applied   int    `json:"applied"`
	Discarded bool   `json:"discarded"`
}

func (AIDecisionRecord) TableName() string { return "ai_decisions" }
