package game

import "sort"

// Side identifies one of the two combat participants.
type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Stats are the base attributes taken from the character card.
type Stats struct {
	STR int `json:"str" yaml:"str"`
	AGI int `json:"agi" yaml:"agi"`
	END int `json:"end" yaml:"end"`
	INT int `json:"int" yaml:"int"`
	MAG int `json:"mag" yaml:"mag"`
	CHA int `json:"cha" yaml:"cha"`
}

// Actor is a combat participant. All resource mutation goes through the
// clamping helpers so HP/energy/morale stay within [0, max].
type Actor struct {
	Side      Side   `json:"side"`
	Name      string `json:"name"`
	Alignment string `json:"alignment"`
	IsAI      bool   `json:"is_ai"`

	HP        int `json:"hp"`
	MaxHP     int `json:"max_hp"`
	Energy    int `json:"energy"`
	MaxEnergy int `json:"max_energy"`
	Morale    int `json:"morale"`
	MaxMorale int `json:"max_morale"`

	AP     int `json:"ap"`
	APUsed int `json:"ap_used"`

	Hand     []*Card              `json:"hand"`
	Equipped map[Slot]*Card       `json:"equipped"`
	Bar      map[int]*ActionStack `json:"bar"`
	BarSize  int                  `json:"bar_size"`
	Discard  []*Card              `json:"discard,omitempty"`

	StatusEffects []StatusEffectInstance `json:"status_effects"`
	Stats         Stats                  `json:"stats"`
}

// NewActor builds an actor from a character card. Campaign bonuses are
// already folded into the card by the caller.
func NewActor(side Side, character *Card, ap, barSize int) *Actor {
	a := &Actor{
		Side:      side,
		Name:      character.Name,
		Alignment: character.Alignment,
		MaxHP:     max(character.HP, 1),
		MaxEnergy: max(character.Energy, 0),
		MaxMorale: max(character.Morale, 0),
		AP:        ap,
		Equipped:  make(map[Slot]*Card),
		Bar:       make(map[int]*ActionStack),
		BarSize:   barSize,
		Stats:     character.Stats,
	}
	a.HP = a.MaxHP
	a.Energy = a.MaxEnergy
	a.Morale = a.MaxMorale
	return a
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AdjustHP changes HP by delta and returns the applied delta.
func (a *Actor) AdjustHP(delta int) int {
	before := a.HP
	a.HP = clamp(a.HP+delta, 0, a.MaxHP)
	return a.HP - before
}

// AdjustEnergy changes energy by delta and returns the applied delta.
func (a *Actor) AdjustEnergy(delta int) int {
	before := a.Energy
	a.Energy = clamp(a.Energy+delta, 0, a.MaxEnergy)
	return a.Energy - before
}

// AdjustMorale changes morale by delta and returns the applied delta.
func (a *Actor) AdjustMorale(delta int) int {
	before := a.Morale
	a.Morale = clamp(a.Morale+delta, 0, a.MaxMorale)
	return a.Morale - before
}

// IsDefeated reports whether the actor is out of HP.
func (a *Actor) IsDefeated() bool { return a.HP <= 0 }

// APRemaining returns unspent action points for the round.
func (a *Actor) APRemaining() int { return max(a.AP-a.APUsed, 0) }

// PlacementDone reports whether the actor finished its placement turn.
func (a *Actor) PlacementDone() bool { return a.APUsed >= a.AP }

// ForfeitAP marks the remaining action points as used without placing.
func (a *Actor) ForfeitAP() { a.APUsed = max(a.APUsed, a.AP) }

// FindInHand returns the index of the first hand card with the given name.
func (a *Actor) FindInHand(name string) int {
	for i, c := range a.Hand {
		if c.NameIs(name) {
			return i
		}
	}
	return -1
}

// TakeFromHand removes and returns the hand card at index i.
func (a *Actor) TakeFromHand(i int) *Card {
	if i < 0 || i >= len(a.Hand) {
		return nil
	}
	c := a.Hand[i]
	a.Hand = append(a.Hand[:i], a.Hand[i+1:]...)
	return c
}

// AvailablePositions lists empty bar positions in ascending order.
func (a *Actor) AvailablePositions() []int {
	out := make([]int, 0, a.BarSize)
	for p := 0; p < a.BarSize; p++ {
		if _, taken := a.Bar[p]; !taken {
			out = append(out, p)
		}
	}
	return out
}

// DistinctEquipped returns each equipped card once, in slot order, so a
// two-handed item occupying both hands is counted a single time.
func (a *Actor) DistinctEquipped() []*Card {
	seen := make(map[*Card]struct{}, len(a.Equipped))
	out := make([]*Card, 0, len(a.Equipped))
	for _, s := range AllSlots {
		c := a.Equipped[s]
		if c == nil {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// EquippedAtk sums attack over distinct equipped cards.
func (a *Actor) EquippedAtk() int {
	total := 0
	for _, c := range a.DistinctEquipped() {
		total += c.Atk
	}
	return total
}

// EquippedDef sums defense over distinct equipped cards.
func (a *Actor) EquippedDef() int {
	total := 0
	for _, c := range a.DistinctEquipped() {
		total += c.Def
	}
	return total
}

// Equip places a hand card into slot. Two-handed items take both hands.
// Displaced cards return to the hand. It returns false when the card cannot
// be equipped there.
func (a *Actor) Equip(c *Card, slot Slot) bool {
	if !c.IsEquippable() {
		return false
	}
	slots := []Slot{slot}
	if c.TwoHanded {
		if slot != SlotHandL && slot != SlotHandR {
			return false
		}
		slots = []Slot{SlotHandL, SlotHandR}
	}
	for _, s := range slots {
		if old := a.Equipped[s]; old != nil {
			a.Unequip(old)
			a.Hand = append(a.Hand, old)
		}
	}
	for _, s := range slots {
		a.Equipped[s] = c
	}
	a.MaxHP += c.HPBonus
	a.AdjustHP(c.HPBonus)
	return true
}

// Unequip clears every slot holding c and removes its HP bonus.
func (a *Actor) Unequip(c *Card) bool {
	found := false
	for s, held := range a.Equipped {
		if held == c {
			delete(a.Equipped, s)
			found = true
		}
	}
	if found && c.HPBonus != 0 {
		a.MaxHP = max(a.MaxHP-c.HPBonus, 1)
		a.HP = clamp(a.HP, 0, a.MaxHP)
	}
	return found
}

// DualWield returns the two one-handed weapons when both hands hold distinct
// weapons; ok is false otherwise.
func (a *Actor) DualWield() (main, off *Card, ok bool) {
	l, r := a.Equipped[SlotHandL], a.Equipped[SlotHandR]
	if l == nil || r == nil || l == r {
		return nil, nil, false
	}
	if !l.IsWeapon() || !r.IsWeapon() || l.TwoHanded || r.TwoHanded {
		return nil, nil, false
	}
	return r, l, true
}

// ClearBar moves placed stacks to the discard pile.
func (a *Actor) ClearBar() {
	positions := make([]int, 0, len(a.Bar))
	for p := range a.Bar {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	for _, p := range positions {
		a.Discard = append(a.Discard, a.Bar[p].Cards()...)
		delete(a.Bar, p)
	}
}
