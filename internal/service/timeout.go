package service

import (
	"context"
	"time"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/storage"
)

const expiryReason = "ended due to inactivity"

// ExpireIdle finishes live duels idle for longer than the idle TTL and drops
// them, along with duels that already ended, from memory. Stored duels still marked in progress that no
// machine owns (left over from a previous process) are closed as well. It
// returns how many duels were expired.
func (s *DuelService) ExpireIdle(now time.Time) int {
	cutoff := now.Add(-s.opts.IdleTTL)
	expired := 0

	s.mu.Lock()
	for code, sess := range s.sessions {
		m := sess.machine
		finished := false
		m.Read(func(g *game.GameState) { finished = g.Status == game.StatusFinished })
		if !finished && m.LastActivity().After(cutoff) {
			continue
		}
		if m.Expire(expiryReason) {
			expired++
			logging.Info("expired idle duel", logging.Fields{constants.LogFieldDuel: code})
		}
		m.Close()
		delete(s.sessions, code)
	}
	s.mu.Unlock()
	s.persist.flush()

	stale, err := s.opts.Repo.FindStaleDuels(cutoff)
	if err != nil {
		logging.Error("stale duel scan failed", err, nil)
		return expired
	}
	for _, rec := range stale {
		if _, err := s.Machine(rec.Code); err == nil {
			continue
		}
		code := rec.Code
		s.persist.enqueue(func(r storage.Repository) error { return r.MarkFinished(code) })
		expired++
	}
	return expired
}

// RunExpiry calls ExpireIdle every interval until ctx ends.
func (s *DuelService) RunExpiry(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.ExpireIdle(now); n > 0 {
				logging.Info("idle duels expired", logging.Fields{"count": n})
			}
		}
	}
}
