package service

import (
	"github.com/ericogr/cardduel/internal/game"
)

// The human always plays the player side; the opponent is driven by the
// machine itself.

func (s *DuelService) Equip(code, card string, slot game.Slot) error {
	m, err := s.Machine(code)
	if err != nil {
		return err
	}
	return m.Equip(game.SidePlayer, card, slot)
}

func (s *DuelService) FinishEquip(code string) error {
	m, err := s.Machine(code)
	if err != nil {
		return err
	}
	return m.FinishEquip(game.SidePlayer)
}

// PlaceRequest is one stack placement.
type PlaceRequest struct {
	Position  int      `json:"position"`
	CoreCard  string   `json:"core_card" binding:"required"`
	Modifiers []string `json:"modifiers"`
}

func (s *DuelService) Place(code string, req PlaceRequest) (*game.ActionStack, error) {
	m, err := s.Machine(code)
	if err != nil {
		return nil, err
	}
	return m.Place(game.SidePlayer, req.Position, req.CoreCard, req.Modifiers)
}

func (s *DuelService) Pass(code string) error {
	m, err := s.Machine(code)
	if err != nil {
		return err
	}
	return m.Pass(game.SidePlayer)
}

func (s *DuelService) DefendThreat(code, card string) error {
	m, err := s.Machine(code)
	if err != nil {
		return err
	}
	return m.DefendThreat(game.SidePlayer, card)
}

func (s *DuelService) SkipThreat(code string) error {
	m, err := s.Machine(code)
	if err != nil {
		return err
	}
	return m.SkipThreat(game.SidePlayer)
}
