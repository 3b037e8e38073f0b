package game

import "strings"

// CardType classifies a card; the core card of a stack decides the action type.
type CardType string

const (
	CardCharacter CardType = "character"
	CardApparel   CardType = "apparel"
	CardItem      CardType = "item"
	CardAction    CardType = "action"
	CardTalk      CardType = "talk"
	CardEncounter CardType = "encounter"
	CardSkill     CardType = "skill"
	CardMagic     CardType = "magic"
)

// Slot names an equipment slot on an actor.
type Slot string

const (
	SlotHead      Slot = "head"
	SlotBody      Slot = "body"
	SlotHandL     Slot = "handL"
	SlotHandR     Slot = "handR"
	SlotFeet      Slot = "feet"
	SlotAccessory Slot = "accessory"
)

// AllSlots lists equipment slots in display order.
var AllSlots = []Slot{SlotHead, SlotBody, SlotHandL, SlotHandR, SlotFeet, SlotAccessory}

// Card is an immutable definition plus a few mutable battle fields
// (Durability). A card pointer is held by exactly one collection at a time.
type Card struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Type          CardType `json:"type" yaml:"type"`
	Slot          Slot     `json:"slot,omitempty" yaml:"slot"`
	TwoHanded     bool     `json:"two_handed,omitempty" yaml:"two_handed"`
	Atk           int      `json:"atk" yaml:"atk"`
	Def           int      `json:"def" yaml:"def"`
	HPBonus       int      `json:"hp_bonus" yaml:"hp_bonus"`
	EnergyCost    int      `json:"energy_cost" yaml:"energy_cost"`
	Parry         int      `json:"parry,omitempty" yaml:"parry"`
	Durability    int      `json:"durability" yaml:"durability"`
	MaxDurability int      `json:"max_durability" yaml:"max_durability"`
	Effect        string   `json:"effect,omitempty" yaml:"effect"`
	OnHit         string   `json:"on_hit,omitempty" yaml:"on_hit"`
	Special       string   `json:"special,omitempty" yaml:"special"`

	// Character cards only.
	Stats     Stats  `json:"stats,omitempty" yaml:"stats"`
	Alignment string `json:"alignment,omitempty" yaml:"alignment"`
	HP        int    `json:"hp,omitempty" yaml:"hp"`
	Energy    int    `json:"energy,omitempty" yaml:"energy"`
	Morale    int    `json:"morale,omitempty" yaml:"morale"`
}

// Clone returns a fresh copy so each actor owns its own card instances.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	if cp.MaxDurability > 0 && cp.Durability == 0 {
		cp.Durability = cp.MaxDurability
	}
	return &cp
}

// IsEquippable reports whether the card can occupy an equipment slot.
func (c *Card) IsEquippable() bool {
	return c != nil && (c.Type == CardApparel || c.Type == CardItem)
}

// IsWeapon reports whether the card is an item that adds attack.
func (c *Card) IsWeapon() bool {
	return c != nil && c.Type == CardItem && c.Atk > 0
}

// IsArmor reports whether durability loss from hits applies to the card.
func (c *Card) IsArmor() bool {
	if c == nil {
		return false
	}
	return c.Type == CardApparel || (c.Type == CardItem && c.Def > 0 && c.Atk == 0)
}

// Wears reports whether the card tracks durability.
func (c *Card) Wears() bool {
	return c != nil && c.MaxDurability > 0
}

// IsCounter reports whether the card enables a critical counter on a parry.
func (c *Card) IsCounter() bool {
	return c != nil && strings.Contains(strings.ToLower(c.Special), "counter")
}

// NameIs compares card names case-insensitively, ignoring surrounding spaces.
func (c *Card) NameIs(name string) bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name))
}

// ActionStack is a placement unit: one core card plus modifier (skill) cards
// bound to a bar position. Only the core card costs action points.
type ActionStack struct {
	Position  int     `json:"position"`
	Core      *Card   `json:"core"`
	Modifiers []*Card `json:"modifiers,omitempty"`
}

// Cards returns the core followed by its modifiers.
func (s *ActionStack) Cards() []*Card {
	if s == nil || s.Core == nil {
		return nil
	}
	out := make([]*Card, 0, 1+len(s.Modifiers))
	out = append(out, s.Core)
	return append(out, s.Modifiers...)
}

// IsAttack reports whether the stack resolves through combat rather than the
// effect parser. Defensive action cards (parry only) are never attacks.
func (s *ActionStack) IsAttack() bool {
	if s == nil || s.Core == nil {
		return false
	}
	c := s.Core
	if c.Type != CardAction {
		return false
	}
	if strings.Contains(strings.ToLower(c.Name), "attack") || c.Atk > 0 {
		return true
	}
	return c.Parry == 0 && strings.TrimSpace(c.Effect) == ""
}

// ParryBonus sums parry values across the stack's cards.
func (s *ActionStack) ParryBonus() int {
	total := 0
	for _, c := range s.Cards() {
		total += c.Parry
	}
	return total
}

// HasCounter reports whether any card in the stack enables a counter.
func (s *ActionStack) HasCounter() bool {
	for _, c := range s.Cards() {
		if c.IsCounter() {
			return true
		}
	}
	return false
}
