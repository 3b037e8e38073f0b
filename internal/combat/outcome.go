package combat

import "github.com/ericogr/cardduel/internal/game"

// Outcome table rows. Values are copied on lookup so callers may not mutate
// the table.
var (
	outcomeCriticalHit = game.CombatOutcome{
		Kind: game.OutcomeCriticalHit, Label: "Critical Hit!", Multiplier: 2, IsCriticalHit: true,
	}
	outcomeCriticalMiss = game.CombatOutcome{
		Kind: game.OutcomeCriticalMiss, Label: "Critical Miss!", Multiplier: 0,
	}
	outcomeCriticalParry = game.CombatOutcome{
		Kind: game.OutcomeCriticalParry, Label: "Critical Parry!", Multiplier: 0, IsCriticalParry: true,
	}
	outcomeCriticalCounter = game.CombatOutcome{
		Kind: game.OutcomeCriticalCounter, Label: "Critical Counter!", Multiplier: -1, IsCriticalCounter: true,
	}
	outcomeDevastating = game.CombatOutcome{Kind: game.OutcomeDevastating, Label: "Devastating Hit", Multiplier: 1.5}
	outcomeStrong      = game.CombatOutcome{Kind: game.OutcomeStrong, Label: "Strong Hit", Multiplier: 1}
	outcomeGlancing    = game.CombatOutcome{Kind: game.OutcomeGlancing, Label: "Glancing Blow", Multiplier: 0.5}
	outcomeClash       = game.CombatOutcome{Kind: game.OutcomeClash, Label: "Clash", Multiplier: 0, BothTakeDamage: true}
	outcomeDeflect     = game.CombatOutcome{Kind: game.OutcomeDeflect, Label: "Deflected", Multiplier: 0}
	outcomeParry       = game.CombatOutcome{Kind: game.OutcomeParry, Label: "Parried", Multiplier: 0, AllowCounter: true}
)

// ClashDamage is dealt to both sides on a tie.
const ClashDamage = 1

// GetCombatOutcome maps an attack and defense roll to a table row. Natural
// rolls are checked first: attacker 20, attacker 1, then defender 20 when
// the attack did not beat the defense. Everything else depends only on
// attack.Total - defense.Total.
func GetCombatOutcome(attack, defense game.RollResult) game.CombatOutcome {
	diff := attack.Total - defense.Total
	switch {
	case attack.IsCrit:
		return outcomeCriticalHit
	case attack.IsFumble:
		return outcomeCriticalMiss
	case defense.IsCrit && diff <= 0:
		return outcomeCriticalParry
	}
	return outcomeByDiff(diff)
}

func outcomeByDiff(diff int) game.CombatOutcome {
	switch {
	case diff >= 10:
		return outcomeDevastating
	case diff >= 5:
		return outcomeStrong
	case diff >= 1:
		return outcomeGlancing
	case diff == 0:
		return outcomeClash
	case diff >= -4:
		return outcomeDeflect
	default:
		return outcomeParry
	}
}

// CounterOutcome returns the critical counter row.
func CounterOutcome() game.CombatOutcome { return outcomeCriticalCounter }

// Damage computes floor((atk + str) * multiplier). A hit always deals at
// least 1; a negative multiplier yields a negative amount aimed at the
// attacker.
func Damage(atk, str int, multiplier float64) int {
	raw := float64(atk+str) * multiplier
	switch {
	case multiplier > 0:
		d := int(raw)
		if d < 1 {
			d = 1
		}
		return d
	case multiplier < 0:
		d := int(raw)
		if float64(d) > raw {
			d--
		}
		if d > -1 {
			d = -1
		}
		return d
	}
	return 0
}
