package phase

import (
	"time"

	"github.com/ericogr/cardduel/internal/game"
)

// EventKind names what an Event reports.
type EventKind string

const (
	EventPhase      EventKind = "phase"
	EventPlacement  EventKind = "placement"
	EventEquip      EventKind = "equip"
	EventCombat     EventKind = "combat"
	EventEffect     EventKind = "effect"
	EventStatus     EventKind = "status"
	EventThreat     EventKind = "threat"
	EventNotice     EventKind = "notice"
	EventAIDecision EventKind = "ai_decision"
	EventRoundEnd   EventKind = "round_end"
	EventGameOver   EventKind = "game_over"
)

// Event is one notification for the rendering layer.
type Event struct {
	Duel    string      `json:"duel"`
	Kind    EventKind   `json:"kind"`
	Round   int         `json:"round"`
	Phase   game.Phase  `json:"phase"`
	Side    game.Side   `json:"side,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	// Snapshot carries the encoded GameState on round_end and game_over.
	Snapshot []byte `json:"-"`
}

// EventSink receives engine events. Publish is called with the machine lock
// held: it must not block and must not call back into the machine.
type EventSink interface {
	Publish(Event)
}

// AIDecisionInfo is the payload of an ai_decision event.
type AIDecisionInfo struct {
	Source    string   `json:"source"`
	Strategy  string   `json:"strategy,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
	Epoch     uint64   `json:"epoch"`
	Proposed  int      `json:"proposed"`
	Placed    int      `json:"placed"`
	Skipped   []string `json:"skipped,omitempty"`
	Forfeited int      `json:"forfeited"`
	Discarded bool     `json:"discarded"`
}

// Scheduler runs f after d. The returned func cancels a pending call.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func())
}

// TimerScheduler schedules on real timers.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

type nopSink struct{}

func (nopSink) Publish(Event) {}
