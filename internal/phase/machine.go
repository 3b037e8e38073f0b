// Package phase drives a duel through its rounds. A Machine is the only
// writer of its GameState: every command and every scheduled step takes the
// machine lock, and the AI model call happens outside it guarded by a
// request epoch.
package phase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ericogr/cardduel/internal/ai"
	"github.com/ericogr/cardduel/internal/combat"
	"github.com/ericogr/cardduel/internal/config"
	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/effects"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/status"
)

var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrWrongPhase    = errors.New("action not allowed in the current phase")
	ErrDuelFinished  = errors.New("duel is finished")
	ErrAlreadyDone   = errors.New("already finished this step")
	ErrCannotEquip   = errors.New("card cannot be equipped in that slot")
	ErrNotResponder  = errors.New("only the threatened actor can respond")
	ErrAlreadyActive = errors.New("duel already started")
)

// ErrPositionTaken is returned when placing on an occupied bar position.
var ErrPositionTaken = game.ErrPositionTaken

// Roller rolls initiative.
type Roller interface {
	Initiative(stats game.Stats) game.InitiativeRoll
}

// Deck supplies cards to actors.
type Deck interface {
	effects.Drawer
	FillHand(a *game.Actor, size int) []*game.Card
}

// ThreatSource draws encounter cards for interrupts.
type ThreatSource interface {
	DrawThreat(kind game.ThreatType) (*game.Card, error)
}

// Placer produces the AI actor's placement. *ai.Director satisfies it.
type Placer interface {
	RequestPlacement(ctx context.Context, epoch uint64, req ai.PlacementRequest) ai.Decision
}

// Deps are the machine's collaborators.
type Deps struct {
	Roller    Roller
	Status    *status.Manager
	Resolver  *combat.Resolver
	Effects   *effects.Applier
	Deck      Deck
	Threats   ThreatSource
	Placer    Placer
	Sink      EventSink
	Scheduler Scheduler
	Rules     config.Rules
	// AITimeout bounds one AI placement turn; the fallback plan is applied
	// when it elapses.
	AITimeout time.Duration
}

// Machine owns one duel.
type Machine struct {
	code string
	deps Deps

	ctx    context.Context
	cancel context.CancelFunc

	mu               sync.Mutex
	g                *game.GameState
	epoch            uint64
	stopWatchdog     func()
	aiFailures       int
	resolutionQueued bool
	started          bool
	lastActivity     time.Time
}

// New wires a machine around g. Nil sink and scheduler fall back to a no-op
// sink and real timers.
func New(code string, g *game.GameState, deps Deps) *Machine {
	if deps.Sink == nil {
		deps.Sink = nopSink{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.AITimeout <= 0 {
		deps.AITimeout = constants.DefaultAITimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{code: code, deps: deps, ctx: ctx, cancel: cancel, g: g, lastActivity: time.Now()}
}

// Code returns the duel code.
func (m *Machine) Code() string { return m.code }

// Start runs the first round's initiative.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrAlreadyActive
	}
	m.started = true
	m.touch()
	logging.Info("duel started", logging.Fields{
		constants.LogFieldDuel: m.code,
		"player":               m.g.Player.Name,
		"opponent":             m.g.Opponent.Name,
	})
	m.startRound()
	return nil
}

// Close stops pending timers and invalidates any in-flight AI request.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.clearWatchdog()
	m.cancel()
}

// Read calls fn with the state under the machine lock. fn must not retain g.
func (m *Machine) Read(fn func(g *game.GameState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.g)
}

// Snapshot encodes the current state as JSON.
func (m *Machine) Snapshot() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// Epoch returns the current AI request epoch.
func (m *Machine) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// LastActivity is the time of the last accepted command or engine step.
func (m *Machine) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Expire finishes an idle duel with no winner.
func (m *Machine) Expire(reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.g.Status == game.StatusFinished {
		return false
	}
	m.finish("", reason)
	return true
}

func (m *Machine) snapshot() ([]byte, error) {
	b, err := json.Marshal(m.g)
	if err != nil {
		return nil, fmt.Errorf("encode duel %s: %w", m.code, err)
	}
	return b, nil
}

func (m *Machine) touch() { m.lastActivity = time.Now() }

func (m *Machine) emit(kind EventKind, side game.Side, msg string, data interface{}) {
	m.deps.Sink.Publish(Event{
		Duel:    m.code,
		Kind:    kind,
		Round:   m.g.Round,
		Phase:   m.g.Phase,
		Side:    side,
		Message: msg,
		Data:    data,
	})
}

// log appends lines to the duel log and publishes each as kind.
func (m *Machine) log(kind EventKind, side game.Side, lines ...string) {
	for _, l := range lines {
		if l == "" {
			continue
		}
		m.g.AddLog(l)
		m.emit(kind, side, l, nil)
	}
}

func (m *Machine) setPhase(p game.Phase) {
	m.g.Phase = p
	m.emit(EventPhase, "", string(p), nil)
}

// after schedules fn under the machine lock. fn is skipped once the duel has
// finished.
func (m *Machine) after(d time.Duration, fn func()) func() {
	return m.deps.Scheduler.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.g.Status == game.StatusFinished {
			return
		}
		m.touch()
		fn()
	})
}

func (m *Machine) guard(allowed ...game.Phase) error {
	if m.g.Status == game.StatusFinished {
		return ErrDuelFinished
	}
	for _, p := range allowed {
		if m.g.Phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, m.g.Phase)
}

func (m *Machine) finish(winner game.Side, reason string) {
	m.g.Status = game.StatusFinished
	m.g.Winner = winner
	m.epoch++
	m.clearWatchdog()
	msg := "Duel over: draw"
	if winner != "" {
		msg = fmt.Sprintf("Duel over: %s wins", m.g.Actor(winner).Name)
	}
	if reason != "" {
		msg += " (" + reason + ")"
	}
	m.g.AddLog(msg)
	logging.Info("duel finished", logging.Fields{
		constants.LogFieldDuel:  m.code,
		constants.LogFieldRound: m.g.Round,
		"winner":                string(winner),
	})
	ev := Event{Duel: m.code, Kind: EventGameOver, Round: m.g.Round, Phase: m.g.Phase, Side: winner, Message: msg}
	if b, err := m.snapshot(); err == nil {
		ev.Snapshot = b
	}
	m.deps.Sink.Publish(ev)
}

// checkGameOver finishes the duel when an actor is down.
func (m *Machine) checkGameOver() bool {
	over, winner := combat.IsGameOver(m.g)
	if over {
		m.finish(winner, "")
	}
	return over
}

func (m *Machine) clearWatchdog() {
	if m.stopWatchdog != nil {
		m.stopWatchdog()
		m.stopWatchdog = nil
	}
}
