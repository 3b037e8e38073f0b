// Package combat resolves attacks between two actors: rolls, outcome table,
// damage, and the secondary effects of critical results.
package combat

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/dice"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/status"
)

// Dice is the random source used for rolls, loot drops and picks.
// *dice.Roller satisfies it.
type Dice interface {
	Roll(sides int) int
	Chance(percent int) bool
	Pick(n int) int
}

// RewardGenerator creates the bonus card granted on critical results.
type RewardGenerator interface {
	GenerateCriticalReward(ctx context.Context, a *game.Actor) (*game.Card, error)
}

// LootSink receives cards that leave play.
type LootSink interface {
	AddToPot(c *game.Card)
}

// LootDropChance is the percent chance a critical hit knocks an equipped card
// off the defender.
const LootDropChance = 50

// Resolver resolves attacks. It holds no game state of its own.
type Resolver struct {
	dice    Dice
	status  *status.Manager
	rewards RewardGenerator
	loot    LootSink
}

// New wires a resolver. rewards may be nil, in which case critical results
// grant nothing.
func New(d Dice, sm *status.Manager, rewards RewardGenerator, loot LootSink) *Resolver {
	return &Resolver{dice: d, status: sm, rewards: rewards, loot: loot}
}

// AttackRoll is one attack against the shared defense roll.
type AttackRoll struct {
	Weapon  string             `json:"weapon,omitempty"`
	Roll    game.RollResult    `json:"roll"`
	Outcome game.CombatOutcome `json:"outcome"`
	Damage  int                `json:"damage"`
	Applied int                `json:"applied"`
	Target  game.Side          `json:"target"`
}

// AttackReport is the full result of one attack stack.
type AttackReport struct {
	Attacker     game.Side       `json:"attacker"`
	Defender     game.Side       `json:"defender"`
	Defense      game.RollResult `json:"defense"`
	Attacks      []AttackRoll    `json:"attacks"`
	Hit          bool            `json:"hit"`
	CriticalMiss bool            `json:"critical_miss"`
	Rewards      []*game.Card    `json:"rewards,omitempty"`
	Dropped      []*game.Card    `json:"dropped,omitempty"`
	Summary      []string        `json:"summary"`
}

func (r *AttackReport) add(format string, args ...interface{}) {
	r.Summary = append(r.Summary, fmt.Sprintf(format, args...))
}

type attackProfile struct {
	weapon    string
	weaponAtk int
	skillAtk  int
	offHand   *game.Card
}

// ResolveAttack resolves stack from attacker against defender. defStack is
// the defender's stack at the same bar position and may be nil.
func (r *Resolver) ResolveAttack(ctx context.Context, attacker, defender *game.Actor, stack, defStack *game.ActionStack) *AttackReport {
	rep := &AttackReport{Attacker: attacker.Side, Defender: defender.Side}
	rep.add("%s attacks %s with %s", attacker.Name, defender.Name, stackName(stack))

	prof := r.profile(attacker, stack)
	rep.Defense = r.RollDefense(defender, defStack)

	r.resolveOne(ctx, rep, attacker, defender, defStack, prof.weapon, prof.weaponAtk, prof.skillAtk)
	// A critical miss on the first roll can break the off-hand weapon.
	if prof.offHand != nil && attacker.Equipped[game.SlotHandL] == prof.offHand &&
		!attacker.IsDefeated() && !defender.IsDefeated() {
		rep.add("%s follows up with the off-hand %s", attacker.Name, prof.offHand.Name)
		r.resolveOne(ctx, rep, attacker, defender, defStack, prof.offHand.Name, prof.offHand.Atk, prof.skillAtk)
	}
	return rep
}

// profile splits attack power between the main attack and an optional
// off-hand follow-up. With two one-handed weapons the off-hand weapon only
// powers the second roll.
func (r *Resolver) profile(a *game.Actor, stack *game.ActionStack) attackProfile {
	p := attackProfile{weaponAtk: a.EquippedAtk()}
	if main, off, ok := a.DualWield(); ok {
		p.offHand = off
		p.weaponAtk -= off.Atk
		p.weapon = main.Name
	} else {
		for _, c := range a.DistinctEquipped() {
			if c.IsWeapon() {
				p.weapon = c.Name
				break
			}
		}
	}
	for _, c := range stack.Cards() {
		if c.Type == game.CardSkill {
			p.skillAtk += c.Atk
			continue
		}
		p.weaponAtk += c.Atk
	}
	return p
}

// RollAttack rolls d20 + STR + weapon ATK + skill + status atk + status roll.
func (r *Resolver) RollAttack(a *game.Actor, weaponAtk, skillAtk int) game.RollResult {
	mods := r.status.Modifiers(a)
	return dice.Compose(r.dice.Roll(dice.DefaultSides),
		game.RollModifier{Name: "STR", Value: a.Stats.STR},
		game.RollModifier{Name: "weapon", Value: weaponAtk},
		game.RollModifier{Name: "skill", Value: skillAtk},
		game.RollModifier{Name: "status", Value: mods.Atk},
		game.RollModifier{Name: "roll", Value: mods.Roll},
	)
}

// RollDefense rolls d20 + END + armor DEF + parry + status def + status roll.
func (r *Resolver) RollDefense(d *game.Actor, defStack *game.ActionStack) game.RollResult {
	mods := r.status.Modifiers(d)
	return dice.Compose(r.dice.Roll(dice.DefaultSides),
		game.RollModifier{Name: "END", Value: d.Stats.END},
		game.RollModifier{Name: "armor", Value: d.EquippedDef()},
		game.RollModifier{Name: "parry", Value: defStack.ParryBonus()},
		game.RollModifier{Name: "status", Value: mods.Def},
		game.RollModifier{Name: "roll", Value: mods.Roll},
	)
}

func (r *Resolver) resolveOne(ctx context.Context, rep *AttackReport, attacker, defender *game.Actor, defStack *game.ActionStack, weapon string, weaponAtk, skillAtk int) {
	atk := r.RollAttack(attacker, weaponAtk, skillAtk)
	out := GetCombatOutcome(atk, rep.Defense)
	if out.AllowCounter && defStack.HasCounter() {
		out = CounterOutcome()
	}
	ar := AttackRoll{Weapon: weapon, Roll: atk, Outcome: out, Target: defender.Side}
	rep.add("Attack %s vs defense %s: %s", atk.Breakdown, rep.Defense.Breakdown, out.Label)

	ar.Damage = Damage(weaponAtk, attacker.Stats.STR, out.Multiplier)
	switch {
	case ar.Damage > 0:
		ar.Applied = r.ApplyDamage(defender, ar.Damage)
		rep.Hit = true
		rep.add("%s takes %d damage (%d before armor)", defender.Name, ar.Applied, ar.Damage)
		wear := 1
		if out.IsCriticalHit {
			wear = 2
		}
		r.wearArmor(rep, defender, wear)
	case ar.Damage < 0:
		ar.Target = attacker.Side
		ar.Applied = r.ApplyDamage(attacker, -ar.Damage)
		rep.add("%s is countered for %d damage", attacker.Name, ar.Applied)
	}

	switch {
	case out.IsCriticalHit:
		r.grantReward(ctx, rep, attacker)
		if r.dice.Chance(LootDropChance) {
			r.dropEquipped(rep, defender)
		}
	case out.Kind == game.OutcomeCriticalMiss:
		rep.CriticalMiss = true
		r.wearWeapons(rep, attacker)
	case out.IsCriticalCounter:
		if r.status.Apply(attacker, status.Stunned, "critical counter") {
			rep.add("%s is stunned by the counter", attacker.Name)
		}
	case out.IsCriticalParry:
		r.grantReward(ctx, rep, defender)
	case out.BothTakeDamage:
		a := r.ApplyDamage(attacker, ClashDamage)
		d := r.ApplyDamage(defender, ClashDamage)
		rep.add("Clash! %s takes %d, %s takes %d", attacker.Name, a, defender.Name, d)
	}
	rep.Attacks = append(rep.Attacks, ar)
}

// ApplyDamage reduces the actor's HP by max(1, amount - DEF), clamped at 0,
// and clears untilHit effects. It returns the HP actually lost.
func (r *Resolver) ApplyDamage(a *game.Actor, amount int) int {
	effective := max(1, amount-a.EquippedDef())
	lost := -a.AdjustHP(-effective)
	r.status.OnActorHit(a)
	return lost
}

func (r *Resolver) grantReward(ctx context.Context, rep *AttackReport, a *game.Actor) {
	if card := r.reward(ctx, a); card != nil {
		rep.Rewards = append(rep.Rewards, card)
		rep.add("%s earns a reward: %s", a.Name, card.Name)
	}
}

// reward asks the generator for a card and puts it in the actor's hand.
func (r *Resolver) reward(ctx context.Context, a *game.Actor) *game.Card {
	if r.rewards == nil {
		return nil
	}
	card, err := r.rewards.GenerateCriticalReward(ctx, a)
	if err != nil {
		logging.Error("critical reward failed", err, logging.Fields{constants.LogFieldSide: a.Side})
		return nil
	}
	if card != nil {
		a.Hand = append(a.Hand, card)
	}
	return card
}

func (r *Resolver) dropEquipped(rep *AttackReport, d *game.Actor) {
	eq := d.DistinctEquipped()
	if len(eq) == 0 {
		return
	}
	c := eq[r.dice.Pick(len(eq))]
	d.Unequip(c)
	r.toPot(c)
	rep.Dropped = append(rep.Dropped, c)
	rep.add("%s drops %s into the pot", d.Name, c.Name)
}

func (r *Resolver) wearArmor(rep *AttackReport, d *game.Actor, amount int) {
	for _, c := range d.DistinctEquipped() {
		if c.IsArmor() && c.Wears() {
			r.wear(rep, d, c, amount)
		}
	}
}

func (r *Resolver) wearWeapons(rep *AttackReport, a *game.Actor) {
	for _, c := range a.DistinctEquipped() {
		if c.IsWeapon() && c.Wears() {
			r.wear(rep, a, c, 1)
		}
	}
}

func (r *Resolver) wear(rep *AttackReport, owner *game.Actor, c *game.Card, amount int) {
	c.Durability = max(c.Durability-amount, 0)
	if c.Durability > 0 {
		return
	}
	owner.Unequip(c)
	r.toPot(c)
	rep.Dropped = append(rep.Dropped, c)
	rep.add("%s's %s breaks", owner.Name, c.Name)
}

func (r *Resolver) toPot(c *game.Card) {
	if r.loot != nil {
		r.loot.AddToPot(c)
	}
}

func stackName(s *game.ActionStack) string {
	cards := s.Cards()
	if len(cards) == 0 {
		return "bare hands"
	}
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Name)
	}
	return strings.Join(names, " + ")
}
