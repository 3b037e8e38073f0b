package service

import (
	"sync"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/phase"
	"github.com/ericogr/cardduel/internal/storage"
)

const persistQueueSize = 256

// sessionSink forwards machine events to clients and queues the ones worth
// storing. It runs under the machine lock and never blocks.
type sessionSink struct {
	svc  *DuelService
	sess *session
}

func (k *sessionSink) Publish(ev phase.Event) {
	if b := k.svc.opts.Broadcaster; b != nil {
		b.Broadcast(ev)
	}
	switch ev.Kind {
	case phase.EventRoundEnd, phase.EventGameOver:
		rec := &game.DuelRecord{
			Code:         ev.Duel,
			PlayerName:   k.sess.playerName,
			OpponentName: k.sess.opponentName,
			Round:        ev.Round,
			Phase:        string(ev.Phase),
			Status:       game.StatusInProgress,
			Snapshot:     ev.Snapshot,
		}
		if ev.Kind == phase.EventGameOver {
			rec.Status = game.StatusFinished
			rec.Winner = string(ev.Side)
		}
		k.svc.persist.enqueue(func(r storage.Repository) error { return r.SaveDuel(rec) })
	case phase.EventAIDecision:
		info, ok := ev.Data.(phase.AIDecisionInfo)
		if !ok {
			return
		}
		rec := &game.AIDecisionRecord{
			DuelCode:  ev.Duel,
			RequestID: info.RequestID,
			Round:     ev.Round,
			Epoch:     info.Epoch,
			Source:    info.Source,
			Strategy:  info.Strategy,
			Stacks:    info.Proposed,
			Applied:   info.Placed,
			Discarded: info.Discarded,
		}
		k.svc.persist.enqueue(func(r storage.Repository) error { return r.LogAIDecision(rec) })
	}
}

// persister applies repository writes in order on one goroutine, keeping
// sqlite writes off the machine lock.
type persister struct {
	repo storage.Repository
	jobs chan func(storage.Repository) error

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func newPersister(repo storage.Repository, size int) *persister {
	p := &persister{repo: repo, jobs: make(chan func(storage.Repository) error, size), done: make(chan struct{})}
	go p.run()
	return p
}

func (p *persister) run() {
	defer close(p.done)
	for job := range p.jobs {
		if err := job(p.repo); err != nil {
			logging.Error("failed to persist duel event", err, nil)
		}
	}
}

func (p *persister) enqueue(job func(storage.Repository) error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.jobs <- job:
	default:
		logging.Warn("persist queue full; dropping write", logging.Fields{constants.LogFieldKey: "persist"})
	}
}

// close drains queued writes and stops the worker.
func (p *persister) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	<-p.done
}

// flush waits until every write queued so far has been applied.
func (p *persister) flush() {
	done := make(chan struct{})
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return
	}
	p.jobs <- func(storage.Repository) error { close(done); return nil }
	p.mu.RUnlock()
	<-done
}
