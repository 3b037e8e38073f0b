package phase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericogr/cardduel/internal/ai"
	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
)

func (m *Machine) startPlacement() {
	m.setPhase(game.PhaseDrawPlacement)
	m.resolutionQueued = false
	if m.nextThreat(game.ThreatBegin, game.PhaseDrawPlacement) {
		return
	}
	m.resumePlacement()
}

// resumePlacement hands the turn to the first actor in initiative order that
// still has AP.
func (m *Machine) resumePlacement() {
	first := m.g.InitiativeOrder[0]
	if m.g.Actor(first).PlacementDone() {
		first = first.Other()
	}
	m.g.CurrentTurn = first
	m.promptTurn()
}

// Place puts a stack on side's bar during its placement turn.
func (m *Machine) Place(side game.Side, position int, core string, modifiers []string) (*game.ActionStack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.placementGuard(side); err != nil {
		return nil, err
	}
	a := m.g.Actor(side)
	stack, err := a.PlaceStack(position, core, modifiers)
	if err != nil {
		return nil, err
	}
	m.touch()
	m.log(EventPlacement, side, fmt.Sprintf("%s places %s at position %d", a.Name, describeStack(stack), position))
	m.checkPlacementComplete()
	return stack, nil
}

// Pass forfeits side's remaining AP for the round.
func (m *Machine) Pass(side game.Side) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.placementGuard(side); err != nil {
		return err
	}
	a := m.g.Actor(side)
	left := a.APRemaining()
	a.ForfeitAP()
	m.touch()
	m.log(EventPlacement, side, fmt.Sprintf("%s passes (%d AP forfeited)", a.Name, left))
	m.checkPlacementComplete()
	return nil
}

// CheckPlacementComplete re-evaluates the placement turn. It is run after
// every placement action; exported for callers that change AP from outside.
func (m *Machine) CheckPlacementComplete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.g.Status == game.StatusFinished || m.g.Phase != game.PhaseDrawPlacement {
		return
	}
	m.checkPlacementComplete()
}

func (m *Machine) placementGuard(side game.Side) error {
	if err := m.guard(game.PhaseDrawPlacement); err != nil {
		return err
	}
	if m.g.CurrentTurn != side {
		return ErrNotYourTurn
	}
	if m.g.Actor(side).PlacementDone() {
		return game.ErrNoActionPoints
	}
	return nil
}

// checkPlacementComplete flips the turn to the other actor unless that actor
// is done, then prompts whoever holds the turn.
func (m *Machine) checkPlacementComplete() {
	next := m.g.CurrentTurn.Other()
	if m.g.Actor(next).PlacementDone() {
		next = m.g.CurrentTurn
	}
	m.g.CurrentTurn = next
	m.promptTurn()
}

// promptTurn queues RESOLUTION when both actors are done, or schedules the AI
// when it holds the turn.
func (m *Machine) promptTurn() {
	if m.g.Player.PlacementDone() && m.g.Opponent.PlacementDone() {
		if !m.resolutionQueued {
			m.resolutionQueued = true
			m.after(m.deps.Rules.PlacementDelay, m.beginResolution)
		}
		return
	}
	if m.g.Actor(m.g.CurrentTurn).IsAI {
		m.scheduleAI(m.g.CurrentTurn)
	}
}

// scheduleAI opens a new epoch for side's turn and schedules the request
// after the think delay.
func (m *Machine) scheduleAI(side game.Side) {
	m.epoch++
	epoch := m.epoch
	m.deps.Scheduler.AfterFunc(m.deps.Rules.AIThinkDelay, func() { m.runAI(side, epoch) })
}

// runAI snapshots the request under the lock, calls the placer without it,
// and applies the answer only if the epoch is still current.
func (m *Machine) runAI(side game.Side, epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch || m.g.Status == game.StatusFinished ||
		m.g.Phase != game.PhaseDrawPlacement || m.g.CurrentTurn != side {
		m.mu.Unlock()
		return
	}
	req := ai.NewRequest(m.g, side)
	m.clearWatchdog()
	m.stopWatchdog = m.deps.Scheduler.AfterFunc(m.deps.AITimeout, func() { m.aiTimedOut(side, epoch) })
	ctx, cancel := context.WithTimeout(m.ctx, m.deps.AITimeout)
	m.mu.Unlock()

	var dec ai.Decision
	if m.deps.Placer != nil {
		dec = m.deps.Placer.RequestPlacement(ctx, epoch, req)
	} else {
		dec = ai.PlanFallback(req)
	}
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch || m.g.Status == game.StatusFinished {
		logging.Warn("stale ai placement discarded", logging.Fields{
			constants.LogFieldDuel:    m.code,
			constants.LogFieldEpoch:   epoch,
			constants.LogFieldRequest: dec.RequestID,
		})
		m.emit(EventAIDecision, side, "stale decision discarded", decisionInfo(dec, epoch, ai.ApplyResult{}, true))
		return
	}
	m.touch()
	m.applyDecision(side, epoch, dec, ai.NoticeFallback)
}

// aiTimedOut applies the fallback when the placer did not answer in time.
func (m *Machine) aiTimedOut(side game.Side, epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch || m.g.Status == game.StatusFinished {
		return
	}
	m.stopWatchdog = nil
	logging.Warn("ai placement timed out", logging.Fields{
		constants.LogFieldDuel:  m.code,
		constants.LogFieldEpoch: epoch,
	})
	dec := ai.PlanFallback(ai.NewRequest(m.g, side))
	dec.Epoch = epoch
	dec.Failed = true
	m.touch()
	m.applyDecision(side, epoch, dec, noticeTimeout)
}

// noticeTimeout is shown when the watchdog starts a failure streak.
const noticeTimeout = "The opponent hesitated too long and acts on instinct."

func (m *Machine) applyDecision(side game.Side, epoch uint64, dec ai.Decision, notice string) {
	m.epoch++
	m.clearWatchdog()
	a := m.g.Actor(side)
	res := ai.ApplyDecision(a, dec, m.deps.Deck)

	m.noteAIOutcome(side, dec, notice)
	if dec.Strategy != "" && dec.Source == ai.SourceModel {
		m.g.AddLog(fmt.Sprintf("%s plans: %s", a.Name, dec.Strategy))
	}
	for _, s := range res.Placed {
		m.log(EventPlacement, side, fmt.Sprintf("%s places %s at position %d", a.Name, describeStack(s), s.Position))
	}
	if len(res.Drawn) > 0 {
		m.log(EventPlacement, side, fmt.Sprintf("%s draws %d card(s) looking for a play", a.Name, len(res.Drawn)))
	}
	if res.Forfeited > 0 {
		m.log(EventPlacement, side, fmt.Sprintf("%s forfeits %d AP", a.Name, res.Forfeited))
	}
	m.emit(EventAIDecision, side, dec.Source, decisionInfo(dec, epoch, res, false))
	logging.Info("ai placement applied", logging.Fields{
		constants.LogFieldDuel:   m.code,
		constants.LogFieldEpoch:  epoch,
		constants.LogFieldSource: dec.Source,
		"placed":                 len(res.Placed),
		"skipped":                len(res.Skipped),
	})
	m.checkPlacementComplete()
}

// noteAIOutcome counts consecutive failed AI turns, timeouts included. Only
// the first failure of a streak is announced; a model answer ends the streak.
// Stale answers never reach here, so a late failure is not counted twice.
func (m *Machine) noteAIOutcome(side game.Side, dec ai.Decision, notice string) {
	switch {
	case dec.Source == ai.SourceModel:
		m.aiFailures = 0
	case dec.Failed:
		m.aiFailures++
		if m.aiFailures == 1 {
			m.emit(EventNotice, side, notice, nil)
		}
	}
}

func decisionInfo(dec ai.Decision, epoch uint64, res ai.ApplyResult, discarded bool) AIDecisionInfo {
	return AIDecisionInfo{
		Source:    dec.Source,
		Strategy:  dec.Strategy,
		RequestID: dec.RequestID,
		Epoch:     epoch,
		Proposed:  len(dec.Stacks),
		Placed:    len(res.Placed),
		Skipped:   res.Skipped,
		Forfeited: res.Forfeited,
		Discarded: discarded,
	}
}

func describeStack(s *game.ActionStack) string {
	cards := s.Cards()
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Name)
	}
	return strings.Join(names, " + ")
}
