package status

import (
	"strconv"

	"github.com/ericogr/cardduel/internal/game"
)

// Well-known effect ids.
const (
	Stunned      = "stunned"
	Poisoned     = "poisoned"
	Burning      = "burning"
	Bleeding     = "bleeding"
	Regenerating = "regenerating"
	Weakened     = "weakened"
	Enraged      = "enraged"
	Fortified    = "fortified"
	Inspired     = "inspired"
	Shielded     = "shielded"
)

// TurnHook runs at the holder's turn start and returns a log message
// (empty when nothing happened).
type TurnHook func(a *game.Actor) string

// Definition is one catalog entry.
type Definition struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Icon         string            `json:"icon" yaml:"icon"`
	Color        string            `json:"color" yaml:"color"`
	Duration     int               `json:"duration" yaml:"duration"`
	DurationType game.DurationType `json:"duration_type" yaml:"duration_type"`
	Atk          int               `json:"atk" yaml:"atk"`
	Def          int               `json:"def" yaml:"def"`
	Roll         int               `json:"roll" yaml:"roll"`
	// HPPerTurn feeds the default turn-start hook: negative drains, positive heals.
	HPPerTurn int `json:"hp_per_turn" yaml:"hp_per_turn"`
	// BlocksActions makes the holder forfeit its action points.
	BlocksActions bool `json:"blocks_actions" yaml:"blocks_actions"`

	OnTurnStart TurnHook `json:"-" yaml:"-"`
}

// Catalog maps effect id to definition.
type Catalog map[string]Definition

// DefaultCatalog returns the built-in effects.
func DefaultCatalog() Catalog {
	defs := []Definition{
		{ID: Stunned, Name: "Stunned", Icon: "💫", Color: "#f1c40f", Duration: 2, DurationType: game.DurationTurns, BlocksActions: true},
		{ID: Poisoned, Name: "Poisoned", Icon: "☠️", Color: "#27ae60", Duration: 3, DurationType: game.DurationTurns, HPPerTurn: -2},
		{ID: Burning, Name: "Burning", Icon: "🔥", Color: "#e67e22", Duration: 2, DurationType: game.DurationTurns, HPPerTurn: -3},
		{ID: Bleeding, Name: "Bleeding", Icon: "🩸", Color: "#c0392b", Duration: 3, DurationType: game.DurationTurns, HPPerTurn: -1},
		{ID: Regenerating, Name: "Regenerating", Icon: "💚", Color: "#2ecc71", Duration: 3, DurationType: game.DurationTurns, HPPerTurn: 2},
		{ID: Weakened, Name: "Weakened", Icon: "🥀", Color: "#7f8c8d", Duration: 2, DurationType: game.DurationTurns, Atk: -2},
		{ID: Enraged, Name: "Enraged", Icon: "😡", Color: "#e74c3c", Duration: 2, DurationType: game.DurationTurns, Atk: 3, Def: -1},
		{ID: Fortified, Name: "Fortified", Icon: "🏰", Color: "#3498db", Duration: 2, DurationType: game.DurationTurns, Def: 2},
		{ID: Inspired, Name: "Inspired", Icon: "✨", Color: "#9b59b6", Duration: 2, DurationType: game.DurationTurns, Roll: 2},
		{ID: Shielded, Name: "Shielded", Icon: "🛡️", Color: "#95a5a6", DurationType: game.DurationUntilHit, Def: 3},
	}
	c := make(Catalog, len(defs))
	for _, d := range defs {
		c[d.ID] = withHook(d)
	}
	return c
}

// Merge overlays entries on a copy of the catalog; overrides replace the
// whole definition for their id.
func (c Catalog) Merge(overrides []Definition) Catalog {
	out := make(Catalog, len(c)+len(overrides))
	for k, v := range c {
		out[k] = v
	}
	for _, d := range overrides {
		if d.ID == "" {
			continue
		}
		if d.DurationType == "" {
			d.DurationType = game.DurationTurns
		}
		out[d.ID] = withHook(d)
	}
	return out
}

func withHook(d Definition) Definition {
	if d.OnTurnStart != nil || d.HPPerTurn == 0 {
		return d
	}
	delta := d.HPPerTurn
	name := d.Name
	d.OnTurnStart = func(a *game.Actor) string {
		applied := a.AdjustHP(delta)
		switch {
		case applied < 0:
			return a.Name + " suffers " + strconv.Itoa(-applied) + " damage from " + name
		case applied > 0:
			return a.Name + " recovers " + strconv.Itoa(applied) + " HP from " + name
		}
		return ""
	}
	return d
}
