package game

import (
	"errors"
	"fmt"
)

var (
	ErrNoActionPoints   = errors.New("no action points left")
	ErrInvalidPosition  = errors.New("invalid bar position")
	ErrPositionTaken    = errors.New("bar position already taken")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrNotEnoughEnergy  = errors.New("not enough energy")
	ErrNotAModifier     = errors.New("only skill cards can modify a stack")
	ErrCannotBeCore     = errors.New("card cannot be placed as a stack core")
	ErrDuplicateHandRef = errors.New("card referenced twice")
)

// IsCoreType reports whether cards of type t may head an action stack.
func IsCoreType(t CardType) bool {
	switch t {
	case CardSkill, CardCharacter, CardEncounter:
		return false
	}
	return true
}

// CanBeCore reports whether the card may head an action stack.
func (c *Card) CanBeCore() bool {
	return c != nil && IsCoreType(c.Type)
}

// PlaceStack validates and commits a stack at position: the core and every
// modifier must be in hand, the position free, one AP available and the
// summed energy cost affordable. Nothing changes when an error is returned.
func (a *Actor) PlaceStack(position int, core string, modifiers []string) (*ActionStack, error) {
	if a.APRemaining() <= 0 {
		return nil, ErrNoActionPoints
	}
	if position < 0 || position >= a.BarSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	if _, taken := a.Bar[position]; taken {
		return nil, fmt.Errorf("%w: %d", ErrPositionTaken, position)
	}

	used := make(map[int]bool, 1+len(modifiers))
	coreIdx := a.findUnused(core, used)
	if coreIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrCardNotInHand, core)
	}
	if !a.Hand[coreIdx].CanBeCore() {
		return nil, fmt.Errorf("%w: %s", ErrCannotBeCore, core)
	}
	used[coreIdx] = true
	cost := a.Hand[coreIdx].EnergyCost

	modIdx := make([]int, 0, len(modifiers))
	for _, name := range modifiers {
		i := a.findUnused(name, used)
		if i < 0 {
			if a.FindInHand(name) >= 0 {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateHandRef, name)
			}
			return nil, fmt.Errorf("%w: %s", ErrCardNotInHand, name)
		}
		if a.Hand[i].Type != CardSkill {
			return nil, fmt.Errorf("%w: %s", ErrNotAModifier, name)
		}
		used[i] = true
		modIdx = append(modIdx, i)
		cost += a.Hand[i].EnergyCost
	}
	if cost > a.Energy {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughEnergy, cost, a.Energy)
	}

	stack := &ActionStack{Position: position, Core: a.Hand[coreIdx]}
	for _, i := range modIdx {
		stack.Modifiers = append(stack.Modifiers, a.Hand[i])
	}
	kept := a.Hand[:0:0]
	for i, c := range a.Hand {
		if !used[i] {
			kept = append(kept, c)
		}
	}
	a.Hand = kept
	a.Energy -= cost
	a.APUsed++
	a.Bar[position] = stack
	return stack, nil
}

func (a *Actor) findUnused(name string, used map[int]bool) int {
	for i, c := range a.Hand {
		if !used[i] && c.NameIs(name) {
			return i
		}
	}
	return -1
}
