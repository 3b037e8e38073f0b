package ai

import "github.com/ericogr/cardduel/internal/game"

// HandCard is how a hand card is described to the model.
type HandCard struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	EnergyCost int    `json:"energyCost"`
	Atk        int    `json:"atk"`
	Effect     string `json:"effect,omitempty"`
}

// SelfView is the AI actor's own resources.
type SelfView struct {
	AP     int        `json:"ap"`
	Energy int        `json:"energy"`
	HP     int        `json:"hp"`
	Morale int        `json:"morale"`
	Hand   []HandCard `json:"hand"`
}

// OpponentView is what the AI sees of the human player.
type OpponentView struct {
	HP     int `json:"hp"`
	Energy int `json:"energy"`
	Morale int `json:"morale"`
}

// PlacementRequest is the JSON payload sent to the model. It is a value
// snapshot so it can leave the state lock safely.
type PlacementRequest struct {
	Type               string       `json:"type"`
	Round              int          `json:"round"`
	YourTurn           bool         `json:"yourTurn"`
	AI                 SelfView     `json:"ai"`
	Player             OpponentView `json:"player"`
	AvailablePositions []int        `json:"availablePositions"`
}

// StackPlan is one proposed placement.
type StackPlan struct {
	Position  int      `json:"position"`
	CoreCard  string   `json:"coreCard"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// Decision sources.
const (
	SourceModel    = "llm"
	SourceFallback = "fallback"
)

// Decision is the model's (or the fallback's) placement plan.
type Decision struct {
	Stacks   []StackPlan `json:"stacks"`
	Strategy string      `json:"strategy,omitempty"`

	Source    string `json:"-"`
	RequestID string `json:"-"`
	Epoch     uint64 `json:"-"`
	// Failed marks a fallback plan returned because the model call failed.
	Failed bool `json:"-"`
}

// NewRequest snapshots the state for side's placement turn.
func NewRequest(g *game.GameState, side game.Side) PlacementRequest {
	self := g.Actor(side)
	other := g.Actor(side.Other())
	return PlacementRequest{
		Type:               "placement",
		Round:              g.Round,
		YourTurn:           g.CurrentTurn == side,
		AI:                 selfView(self),
		Player:             OpponentView{HP: other.HP, Energy: other.Energy, Morale: other.Morale},
		AvailablePositions: self.AvailablePositions(),
	}
}

func selfView(a *game.Actor) SelfView {
	hand := make([]HandCard, 0, len(a.Hand))
	for _, c := range a.Hand {
		hand = append(hand, HandCard{
			Name:       c.Name,
			Type:       string(c.Type),
			EnergyCost: c.EnergyCost,
			Atk:        c.Atk,
			Effect:     c.Effect,
		})
	}
	return SelfView{
		AP:     a.APRemaining(),
		Energy: a.Energy,
		HP:     a.HP,
		Morale: a.Morale,
		Hand:   hand,
	}
}
