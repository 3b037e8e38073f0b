package combat

import (
	"context"
	"fmt"

	"github.com/ericogr/cardduel/internal/dice"
	"github.com/ericogr/cardduel/internal/game"
)

// ThreatReport is the result of one threat card attacking its responder.
type ThreatReport struct {
	Threat  string             `json:"threat"`
	Attack  game.RollResult    `json:"attack"`
	Defense game.RollResult    `json:"defense"`
	Outcome game.CombatOutcome `json:"outcome"`
	Damage  int                `json:"damage"`
	Applied int                `json:"applied"`
	Hit     bool               `json:"hit"`
	Rewards []*game.Card       `json:"rewards,omitempty"`
	Summary []string           `json:"summary"`
}

// ResolveThreat rolls a threat encounter card against the responder. The
// defense cards add their DEF and parry to the defense roll. A critical parry
// rewards the responder; a critical hit by the threat counts double.
func (r *Resolver) ResolveThreat(ctx context.Context, threat *game.Card, responder *game.Actor, defense []*game.Card) *ThreatReport {
	rep := &ThreatReport{Threat: threat.Name}
	add := func(format string, args ...interface{}) {
		rep.Summary = append(rep.Summary, fmt.Sprintf(format, args...))
	}

	rep.Attack = dice.Compose(r.dice.Roll(dice.DefaultSides),
		game.RollModifier{Name: "threat", Value: threat.Atk},
	)
	bonus := 0
	for _, c := range defense {
		bonus += c.Def + c.Parry
	}
	mods := r.status.Modifiers(responder)
	rep.Defense = dice.Compose(r.dice.Roll(dice.DefaultSides),
		game.RollModifier{Name: "END", Value: responder.Stats.END},
		game.RollModifier{Name: "armor", Value: responder.EquippedDef()},
		game.RollModifier{Name: "defense", Value: bonus},
		game.RollModifier{Name: "status", Value: mods.Def},
		game.RollModifier{Name: "roll", Value: mods.Roll},
	)
	rep.Outcome = GetCombatOutcome(rep.Attack, rep.Defense)
	add("%s threatens %s: %s vs %s, %s", threat.Name, responder.Name, rep.Attack.Breakdown, rep.Defense.Breakdown, rep.Outcome.Label)

	rep.Damage = Damage(threat.Atk, 0, rep.Outcome.Multiplier)
	if rep.Damage > 0 {
		rep.Hit = true
		rep.Applied = r.ApplyDamage(responder, rep.Damage)
		add("%s takes %d damage from %s", responder.Name, rep.Applied, threat.Name)
	}
	switch {
	case rep.Outcome.IsCriticalParry:
		if reward := r.reward(ctx, responder); reward != nil {
			rep.Rewards = append(rep.Rewards, reward)
			add("%s earns a reward: %s", responder.Name, reward.Name)
		}
	case rep.Outcome.BothTakeDamage:
		rep.Applied += r.ApplyDamage(responder, ClashDamage)
		add("%s grapples with %s and takes %d", responder.Name, threat.Name, ClashDamage)
	}
	return rep
}

// IsGameOver reports whether either actor is out of HP. winner is empty when
// both fell together.
func IsGameOver(g *game.GameState) (over bool, winner game.Side) {
	pDown := g.Player == nil || g.Player.IsDefeated()
	oDown := g.Opponent == nil || g.Opponent.IsDefeated()
	switch {
	case pDown && oDown:
		return true, ""
	case pDown:
		return true, game.SideOpponent
	case oDown:
		return true, game.SidePlayer
	}
	return false, ""
}
