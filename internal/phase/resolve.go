package phase

import (
	"fmt"
	"strings"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/effects"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
)

// beginResolution resolves every bar position in order, actors in initiative
// order within a position. Critical misses queue end threats that run before
// CLEANUP.
func (m *Machine) beginResolution() {
	g := m.g
	if g.Phase != game.PhaseDrawPlacement || !g.Player.PlacementDone() || !g.Opponent.PlacementDone() {
		return
	}
	m.resolutionQueued = false
	m.setPhase(game.PhaseResolution)

	barSize := max(g.Player.BarSize, g.Opponent.BarSize)
	for pos := 0; pos < barSize; pos++ {
		for _, side := range g.InitiativeOrder {
			actor, opp := g.Actor(side), g.Actor(side.Other())
			stack := actor.Bar[pos]
			if stack == nil {
				continue
			}
			m.resolveStack(actor, opp, stack)
			if m.checkGameOver() {
				return
			}
		}
	}
	logging.Info("round resolved", logging.Fields{
		constants.LogFieldDuel:  m.code,
		constants.LogFieldRound: g.Round,
		"player_hp":             g.Player.HP,
		"opponent_hp":           g.Opponent.HP,
	})

	if m.nextThreat(game.ThreatEnd, game.PhaseCleanup) {
		return
	}
	m.cleanup()
}

func (m *Machine) resolveStack(actor, opp *game.Actor, stack *game.ActionStack) {
	if stack.IsAttack() {
		rep := m.deps.Resolver.ResolveAttack(m.ctx, actor, opp, stack, opp.Bar[stack.Position])
		m.g.AddLog(rep.Summary...)
		m.emit(EventCombat, actor.Side, summaryLine(rep.Summary), rep)
		if rep.CriticalMiss {
			m.g.PendingThreats = append(m.g.PendingThreats, game.PendingThreat{
				Type:      game.ThreatEnd,
				Responder: actor.Side,
				Reason:    "critical miss",
			})
		}
		if rep.Hit && !actor.IsDefeated() {
			for _, c := range stack.Cards() {
				m.applyText(c.OnHit, actor, opp, c.Name)
			}
		}
		return
	}
	m.log(EventEffect, actor.Side, fmt.Sprintf("%s uses %s", actor.Name, describeStack(stack)))
	for _, c := range stack.Cards() {
		m.applyText(c.Effect, actor, opp, c.Name)
	}
}

// applyText parses free effect text and applies it. Text the parser does not
// understand is logged and skipped.
func (m *Machine) applyText(text string, owner, target *game.Actor, source string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	p := effects.Parse(text)
	if p.Empty() {
		m.g.AddLog(fmt.Sprintf("%s has no resolvable effect", source))
		return
	}
	res := m.deps.Effects.Apply(p, owner, target, source)
	m.g.AddLog(res.Log...)
	m.emit(EventEffect, owner.Side, summaryLine(res.Log), res)
}

// cleanup expires statuses, clears the bars and starts the next round.
func (m *Machine) cleanup() {
	g := m.g
	m.setPhase(game.PhaseCleanup)
	for _, a := range []*game.Actor{g.Player, g.Opponent} {
		for _, name := range m.deps.Status.Tick(a) {
			m.log(EventStatus, a.Side, fmt.Sprintf("%s is no longer %s", a.Name, name))
		}
		a.ClearBar()
	}
	if m.checkGameOver() {
		return
	}
	ev := Event{Duel: m.code, Kind: EventRoundEnd, Round: g.Round, Phase: g.Phase, Message: fmt.Sprintf("Round %d complete", g.Round)}
	if b, err := m.snapshot(); err == nil {
		ev.Snapshot = b
	}
	m.deps.Sink.Publish(ev)

	g.Round++
	m.startRound()
}

func summaryLine(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
