// Package status applies, refreshes and expires timed effects on actors and
// aggregates their numeric modifiers.
package status

import (
	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
)

// Modifiers are the summed bonuses of an actor's active effects. Roll applies
// to every d20 the actor makes, on top of Atk or Def.
type Modifiers struct {
	Atk  int `json:"atk"`
	Def  int `json:"def"`
	Roll int `json:"roll"`
}

// Manager operates on actors using a fixed catalog.
type Manager struct {
	catalog Catalog
}

// NewManager returns a manager over catalog; nil uses the defaults.
func NewManager(catalog Catalog) *Manager {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Manager{catalog: catalog}
}

// Definition looks up an effect by id.
func (m *Manager) Definition(id string) (Definition, bool) {
	d, ok := m.catalog[id]
	return d, ok
}

// Apply adds the effect or refreshes its duration when already held.
// Unknown ids are logged and ignored.
func (m *Manager) Apply(a *game.Actor, effectID, source string) bool {
	def, ok := m.catalog[effectID]
	if !ok {
		logging.Warn("unknown status effect", logging.Fields{constants.LogFieldEffectID: effectID, constants.LogFieldSource: source})
		return false
	}
	for i := range a.StatusEffects {
		if a.StatusEffects[i].ID == effectID {
			a.StatusEffects[i].TurnsRemaining = def.Duration
			a.StatusEffects[i].Source = source
			return true
		}
	}
	a.StatusEffects = append(a.StatusEffects, game.StatusEffectInstance{
		ID:             def.ID,
		Name:           def.Name,
		Icon:           def.Icon,
		Color:          def.Color,
		TurnsRemaining: def.Duration,
		DurationType:   def.DurationType,
		Source:         source,
	})
	return true
}

// Remove drops the first instance of effectID; absent ids are a no-op.
func (m *Manager) Remove(a *game.Actor, effectID string) bool {
	for i := range a.StatusEffects {
		if a.StatusEffects[i].ID == effectID {
			a.StatusEffects = append(a.StatusEffects[:i], a.StatusEffects[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether the actor holds effectID.
func (m *Manager) Has(a *game.Actor, effectID string) bool {
	for _, se := range a.StatusEffects {
		if se.ID == effectID {
			return true
		}
	}
	return false
}

// BlocksActions reports whether any held effect forbids acting this round.
func (m *Manager) BlocksActions(a *game.Actor) bool {
	for _, se := range a.StatusEffects {
		if def, ok := m.catalog[se.ID]; ok && def.BlocksActions {
			return true
		}
	}
	return false
}

// Modifiers sums the catalog bonuses of every held effect.
func (m *Manager) Modifiers(a *game.Actor) Modifiers {
	var out Modifiers
	for _, se := range a.StatusEffects {
		def, ok := m.catalog[se.ID]
		if !ok {
			continue
		}
		out.Atk += def.Atk
		out.Def += def.Def
		out.Roll += def.Roll
	}
	return out
}

// ProcessTurnStart runs each held effect's turn-start hook. Effects are not
// removed here.
func (m *Manager) ProcessTurnStart(a *game.Actor) []string {
	msgs := make([]string, 0, len(a.StatusEffects))
	for _, se := range a.StatusEffects {
		def, ok := m.catalog[se.ID]
		if !ok || def.OnTurnStart == nil {
			continue
		}
		if msg := def.OnTurnStart(a); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// Tick decrements turn-based effects and drops the expired ones. untilHit
// effects are left alone.
func (m *Manager) Tick(a *game.Actor) []string {
	kept := a.StatusEffects[:0]
	var expired []string
	for _, se := range a.StatusEffects {
		if se.DurationType == game.DurationTurns {
			se.TurnsRemaining--
			if se.TurnsRemaining <= 0 {
				expired = append(expired, se.Name)
				continue
			}
		}
		kept = append(kept, se)
	}
	a.StatusEffects = kept
	return expired
}

// OnActorHit strips every untilHit effect. Call once per registered hit,
// including hits reduced to zero damage.
func (m *Manager) OnActorHit(a *game.Actor) []string {
	kept := a.StatusEffects[:0]
	var removed []string
	for _, se := range a.StatusEffects {
		if se.DurationType == game.DurationUntilHit {
			removed = append(removed, se.Name)
			continue
		}
		kept = append(kept, se)
	}
	a.StatusEffects = kept
	return removed
}
