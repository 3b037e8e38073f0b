package effects

import (
	"fmt"

	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/status"
)

// Drawer hands new cards to an actor.
type Drawer interface {
	DrawCardsForActor(a *game.Actor, n int) []*game.Card
}

// Applier applies parsed effects using the status manager and a card source.
type Applier struct {
	status *status.Manager
	drawer Drawer
}

// NewApplier wires the applier. drawer may be nil, in which case draw
// effects are logged and skipped.
func NewApplier(sm *status.Manager, drawer Drawer) *Applier {
	return &Applier{status: sm, drawer: drawer}
}

// Result collects what Apply did.
type Result struct {
	Log      []string
	Damage   int
	Healed   int
	Hit      bool
	Drawn    []*game.Card
	Statuses []StatusRef
}

// Apply runs p against owner and target in the order damage, heal, energy,
// morale, draw, statuses, cure. Effect damage bypasses armor and counts as a
// hit on the target.
func (ap *Applier) Apply(p Parsed, owner, target *game.Actor, source string) Result {
	var res Result
	add := func(format string, args ...interface{}) {
		res.Log = append(res.Log, fmt.Sprintf(format, args...))
	}

	if p.Damage > 0 && target != nil {
		res.Damage = -target.AdjustHP(-p.Damage)
		res.Hit = true
		add("%s deals %d damage to %s", source, res.Damage, target.Name)
		for _, name := range ap.status.OnActorHit(target) {
			add("%s loses %s", target.Name, name)
		}
	}
	if p.HealHP > 0 {
		res.Healed = owner.AdjustHP(p.HealHP)
		add("%s heals %s for %d", source, owner.Name, res.Healed)
	}
	if p.RestoreEnergy > 0 {
		add("%s restores %d energy to %s", source, owner.AdjustEnergy(p.RestoreEnergy), owner.Name)
	}
	if p.RestoreMorale > 0 {
		add("%s restores %d morale to %s", source, owner.AdjustMorale(p.RestoreMorale), owner.Name)
	}
	if p.Draw > 0 {
		if ap.drawer == nil {
			add("%s wanted to draw %d but no deck is available", source, p.Draw)
		} else {
			res.Drawn = ap.drawer.DrawCardsForActor(owner, p.Draw)
			add("%s draws %d card(s) for %s", source, len(res.Drawn), owner.Name)
		}
	}
	for _, ref := range p.Statuses {
		who := owner
		if ref.Target == TargetEnemy {
			who = target
		}
		if who == nil {
			continue
		}
		if ap.status.Apply(who, ref.StatusID, source) {
			res.Statuses = append(res.Statuses, ref)
			name := ref.StatusID
			if def, ok := ap.status.Definition(ref.StatusID); ok {
				name = def.Name
			}
			add("%s is now %s (%s)", who.Name, name, source)
		}
	}
	if p.Cure {
		cured := 0
		for _, id := range CuredStatuses {
			for ap.status.Remove(owner, id) {
				cured++
			}
		}
		add("%s cleanses %s of %d effect(s)", source, owner.Name, cured)
	}
	return res
}
