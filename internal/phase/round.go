package phase

import (
	"fmt"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
)

// startRound runs INITIATIVE: turn-start status hooks, AP reset, stun
// forfeits, hand refill and initiative rolls. A natural 1 queues a begin
// threat for that actor.
func (m *Machine) startRound() {
	g := m.g
	m.setPhase(game.PhaseInitiative)
	g.AddLog(fmt.Sprintf("--- Round %d ---", g.Round))

	for _, a := range []*game.Actor{g.Player, g.Opponent} {
		m.log(EventStatus, a.Side, m.deps.Status.ProcessTurnStart(a)...)
	}
	if m.checkGameOver() {
		return
	}

	for _, a := range []*game.Actor{g.Player, g.Opponent} {
		a.AP = m.deps.Rules.APPerRound
		a.APUsed = 0
		if m.deps.Status.BlocksActions(a) {
			a.ForfeitAP()
			m.log(EventStatus, a.Side, fmt.Sprintf("%s is stunned and loses this round's actions", a.Name))
		}
		if m.deps.Deck != nil {
			m.deps.Deck.FillHand(a, m.deps.Rules.HandSize)
		}
	}

	p := m.deps.Roller.Initiative(g.Player.Stats)
	o := m.deps.Roller.Initiative(g.Opponent.Stats)
	g.Initiative = map[game.Side]game.InitiativeRoll{game.SidePlayer: p, game.SideOpponent: o}
	g.InitiativeOrder = initiativeOrder(p, o)
	g.CurrentTurn = g.InitiativeOrder[0]
	for _, side := range []game.Side{game.SidePlayer, game.SideOpponent} {
		r := g.Initiative[side]
		m.log(EventPhase, side, fmt.Sprintf("%s rolls initiative: %d (+%d) = %d", g.Actor(side).Name, r.Raw, r.Modifier, r.Total))
		if r.Raw == 1 {
			g.PendingThreats = append(g.PendingThreats, game.PendingThreat{
				Type:      game.ThreatBegin,
				Responder: side,
				Reason:    "natural 1 on initiative",
			})
			m.log(EventThreat, side, fmt.Sprintf("%s's fumble attracts danger", g.Actor(side).Name))
		}
	}
	logging.Info("round started", logging.Fields{
		constants.LogFieldDuel:  m.code,
		constants.LogFieldRound: g.Round,
		"first":                 string(g.CurrentTurn),
	})

	m.startEquip()
}

// initiativeOrder sorts by total, then natural roll; the player wins full ties.
func initiativeOrder(p, o game.InitiativeRoll) []game.Side {
	if o.Total > p.Total || (o.Total == p.Total && o.Raw > p.Raw) {
		return []game.Side{game.SideOpponent, game.SidePlayer}
	}
	return []game.Side{game.SidePlayer, game.SideOpponent}
}

func (m *Machine) startEquip() {
	m.setPhase(game.PhaseEquip)
	m.g.EquipDone = make(map[game.Side]bool, 2)
	for _, a := range []*game.Actor{m.g.Player, m.g.Opponent} {
		if a.IsAI {
			m.autoEquip(a)
			m.g.EquipDone[a.Side] = true
		}
	}
	m.maybeFinishEquip()
}

// Equip moves a hand card into an equipment slot.
func (m *Machine) Equip(side game.Side, cardName string, slot game.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard(game.PhaseEquip); err != nil {
		return err
	}
	if m.g.EquipDone[side] {
		return ErrAlreadyDone
	}
	a := m.g.Actor(side)
	i := a.FindInHand(cardName)
	if i < 0 {
		return fmt.Errorf("%w: %s", game.ErrCardNotInHand, cardName)
	}
	c := a.TakeFromHand(i)
	if !a.Equip(c, slot) {
		a.Hand = append(a.Hand, c)
		return fmt.Errorf("%w: %s in %s", ErrCannotEquip, c.Name, slot)
	}
	m.touch()
	m.log(EventEquip, side, fmt.Sprintf("%s equips %s (%s)", a.Name, c.Name, slot))
	return nil
}

// FinishEquip ends side's equip step. Placement starts once both are done.
func (m *Machine) FinishEquip(side game.Side) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard(game.PhaseEquip); err != nil {
		return err
	}
	if m.g.EquipDone[side] {
		return ErrAlreadyDone
	}
	m.touch()
	m.g.EquipDone[side] = true
	m.maybeFinishEquip()
	return nil
}

func (m *Machine) maybeFinishEquip() {
	if m.g.EquipDone[game.SidePlayer] && m.g.EquipDone[game.SideOpponent] {
		m.startPlacement()
	}
}

// autoEquip fills empty slots from the hand in hand order without
// displacing anything already equipped.
func (m *Machine) autoEquip(a *game.Actor) {
	for i := 0; i < len(a.Hand); {
		c := a.Hand[i]
		slot, ok := freeSlot(a, c)
		if !ok {
			i++
			continue
		}
		a.TakeFromHand(i)
		a.Equip(c, slot)
		m.log(EventEquip, a.Side, fmt.Sprintf("%s equips %s (%s)", a.Name, c.Name, slot))
	}
}

func freeSlot(a *game.Actor, c *game.Card) (game.Slot, bool) {
	if !c.IsEquippable() {
		return "", false
	}
	free := func(s game.Slot) bool { return a.Equipped[s] == nil }
	if c.TwoHanded {
		if free(game.SlotHandL) && free(game.SlotHandR) {
			return game.SlotHandR, true
		}
		return "", false
	}
	if c.Slot != "" {
		return c.Slot, free(c.Slot)
	}
	if c.Type == game.CardItem {
		for _, s := range []game.Slot{game.SlotHandR, game.SlotHandL} {
			if free(s) {
				return s, true
			}
		}
	}
	return "", false
}
