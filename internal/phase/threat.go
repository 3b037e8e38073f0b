package phase

import (
	"fmt"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
)

// nextThreat pops the first pending threat of kind and enters its interrupt
// phase, remembering resume as the phase to return to. It reports whether an
// interrupt started.
func (m *Machine) nextThreat(kind game.ThreatType, resume game.Phase) bool {
	for i, pt := range m.g.PendingThreats {
		if pt.Type != kind {
			continue
		}
		m.g.PendingThreats = append(m.g.PendingThreats[:i], m.g.PendingThreats[i+1:]...)
		if m.enterThreat(pt, resume) {
			return true
		}
		return m.nextThreat(kind, resume)
	}
	return false
}

func (m *Machine) enterThreat(pt game.PendingThreat, resume game.Phase) bool {
	if m.deps.Threats == nil {
		return false
	}
	card, err := m.deps.Threats.DrawThreat(pt.Type)
	if err != nil {
		logging.Error("threat draw failed", err, logging.Fields{constants.LogFieldDuel: m.code})
		return false
	}
	m.g.ResumePhase = resume
	m.g.Threat = &game.ThreatResponse{
		Active:    true,
		Type:      pt.Type,
		Responder: pt.Responder,
		Threats:   []*game.Card{card},
		BonusAP:   m.deps.Rules.ThreatBonusAP,
	}
	if pt.Type == game.ThreatEnd {
		m.setPhase(game.PhaseEndThreat)
	} else {
		m.setPhase(game.PhaseThreatResponse)
	}
	responder := m.g.Actor(pt.Responder)
	m.log(EventThreat, pt.Responder, fmt.Sprintf("%s appears before %s (%s)!", card.Name, responder.Name, pt.Reason))

	if responder.IsAI {
		threat := m.g.Threat
		m.after(m.deps.Rules.AIThinkDelay, func() {
			if m.g.Threat == threat {
				m.aiDefend(responder)
			}
		})
	}
	return true
}

// DefendThreat spends one bonus AP to add a hand card to the defense stack.
// The threat resolves when the bonus AP runs out.
func (m *Machine) DefendThreat(side game.Side, cardName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.threatGuard(side); err != nil {
		return err
	}
	t := m.g.Threat
	if t.BonusAPRemaining() <= 0 {
		return game.ErrNoActionPoints
	}
	a := m.g.Actor(side)
	i := a.FindInHand(cardName)
	if i < 0 {
		return fmt.Errorf("%w: %s", game.ErrCardNotInHand, cardName)
	}
	c := a.TakeFromHand(i)
	t.DefenseStack = append(t.DefenseStack, c)
	t.BonusAPUsed++
	m.touch()
	m.log(EventThreat, side, fmt.Sprintf("%s braces with %s", a.Name, c.Name))
	if t.BonusAPRemaining() == 0 {
		m.resolveThreat()
	}
	return nil
}

// SkipThreat stops adding defense; the threat resolves against whatever
// defense was assembled so far.
func (m *Machine) SkipThreat(side game.Side) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.threatGuard(side); err != nil {
		return err
	}
	m.touch()
	m.resolveThreat()
	return nil
}

func (m *Machine) threatGuard(side game.Side) error {
	if err := m.guard(game.PhaseThreatResponse, game.PhaseEndThreat); err != nil {
		return err
	}
	if m.g.Threat == nil || !m.g.Threat.Active {
		return fmt.Errorf("%w: no active threat", ErrWrongPhase)
	}
	if m.g.Threat.Responder != side {
		return ErrNotResponder
	}
	return nil
}

// aiDefend spends the bonus AP on hand cards with DEF or parry, in hand order.
func (m *Machine) aiDefend(a *game.Actor) {
	t := m.g.Threat
	for i := 0; i < len(a.Hand) && t.BonusAPRemaining() > 0; {
		c := a.Hand[i]
		if c.Def <= 0 && c.Parry <= 0 {
			i++
			continue
		}
		a.TakeFromHand(i)
		t.DefenseStack = append(t.DefenseStack, c)
		t.BonusAPUsed++
		m.log(EventThreat, a.Side, fmt.Sprintf("%s braces with %s", a.Name, c.Name))
	}
	m.resolveThreat()
}

// resolveThreat runs every threat card against the responder, clears the
// interrupt and resumes the interrupted phase.
func (m *Machine) resolveThreat() {
	t := m.g.Threat
	responder := m.g.Actor(t.Responder)
	for _, card := range t.Threats {
		rep := m.deps.Resolver.ResolveThreat(m.ctx, card, responder, t.DefenseStack)
		m.g.AddLog(rep.Summary...)
		m.emit(EventThreat, t.Responder, fmt.Sprintf("%s: %s", card.Name, rep.Outcome.Label), rep)
		if responder.IsDefeated() {
			break
		}
	}
	responder.Discard = append(responder.Discard, t.DefenseStack...)
	m.g.Threat = nil
	resume := m.g.ResumePhase
	m.g.ResumePhase = ""
	if m.checkGameOver() {
		return
	}

	switch resume {
	case game.PhaseCleanup:
		if m.nextThreat(game.ThreatEnd, game.PhaseCleanup) {
			return
		}
		m.cleanup()
	default:
		m.setPhase(game.PhaseDrawPlacement)
		if m.nextThreat(game.ThreatBegin, game.PhaseDrawPlacement) {
			return
		}
		m.resumePlacement()
	}
}
