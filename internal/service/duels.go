// Package service owns the live duel sessions. It builds every collaborator a
// phase machine needs, routes the human player's commands to it and persists
// what the machine reports.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ericogr/cardduel/internal/ai"
	"github.com/ericogr/cardduel/internal/combat"
	"github.com/ericogr/cardduel/internal/config"
	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/deck"
	"github.com/ericogr/cardduel/internal/dice"
	"github.com/ericogr/cardduel/internal/effects"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/phase"
	"github.com/ericogr/cardduel/internal/status"
	"github.com/ericogr/cardduel/internal/storage"
)

var (
	ErrDuelNotFound     = errors.New("duel not found")
	ErrUnknownCharacter = errors.New("unknown character card")
	ErrUnknownDeck      = deck.ErrUnknownDeck
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 8

// Broadcaster fans engine events out to connected clients. Broadcast must not
// block.
type Broadcaster interface {
	Broadcast(ev phase.Event)
}

// Options configure a DuelService. Config and Repo are required.
type Options struct {
	Config *config.LoadedConfig
	Repo   storage.Repository
	// Chat is the model client for AI opponents; nil plays every turn with
	// the fallback heuristic.
	Chat        ai.ChatClient
	Broadcaster Broadcaster
	Scheduler   phase.Scheduler
	AITimeout   time.Duration
	IdleTTL     time.Duration
	// Seed returns the seed for a new duel's dice. Defaults to dice.NewSeed.
	Seed func() (int64, error)
}

// DuelService keeps one phase machine per live duel.
type DuelService struct {
	opts    Options
	persist *persister

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	machine      *phase.Machine
	playerName   string
	opponentName string
}

// New starts the service and its persistence worker. Call Close on shutdown.
func New(opts Options) *DuelService {
	if opts.Seed == nil {
		opts.Seed = dice.NewSeed
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = constants.DefaultAITimeout
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = constants.DefaultIdleTTL
	}
	return &DuelService{
		opts:     opts,
		persist:  newPersister(opts.Repo, persistQueueSize),
		sessions: make(map[string]*session),
	}
}

// Close stops every machine and flushes pending writes.
func (s *DuelService) Close() {
	s.mu.Lock()
	for code, sess := range s.sessions {
		sess.machine.Close()
		delete(s.sessions, code)
	}
	s.mu.Unlock()
	s.persist.close()
}

type CreateDuelRequest struct {
	PlayerName        string `json:"player_name"`
	PlayerCharacter   string `json:"player_character"`
	OpponentCharacter string `json:"opponent_character"`
	PlayerDeck        string `json:"player_deck"`
	OpponentDeck      string `json:"opponent_deck"`
}

// CreateDuel builds a duel against an AI opponent and runs its first
// initiative. An empty opponent character picks another character at random.
func (s *DuelService) CreateDuel(ctx context.Context, req CreateDuelRequest) (string, error) {
	cfg := s.opts.Config
	seed, err := s.opts.Seed()
	if err != nil {
		return "", fmt.Errorf("seed dice: %w", err)
	}
	roller := dice.NewRoller(seed)

	pc, err := s.character(req.PlayerCharacter)
	if err != nil {
		return "", err
	}
	oc, err := s.opponentCharacter(req.OpponentCharacter, pc, roller)
	if err != nil {
		return "", err
	}
	playerCards, err := deck.Build(cfg, req.PlayerDeck, roller)
	if err != nil {
		return "", err
	}
	opponentCards, err := deck.Build(cfg, req.OpponentDeck, roller)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rules := cfg.Rules
	player := game.NewActor(game.SidePlayer, pc, rules.APPerRound, rules.BarSize)
	if name := strings.TrimSpace(req.PlayerName); name != "" {
		player.Name = name
	}
	opponent := game.NewActor(game.SideOpponent, oc, rules.APPerRound, rules.BarSize)
	opponent.IsAI = true
	if opponent.Name == player.Name {
		opponent.Name += " (rival)"
	}
	g := game.NewGameState(player, opponent)

	piles := deck.NewPiles(roller)
	piles.Set(game.SidePlayer, playerCards)
	piles.Set(game.SideOpponent, opponentCards)

	code := s.newCode()
	sm := status.NewManager(status.DefaultCatalog().Merge(cfg.StatusOverrides))
	director := ai.NewDirector(s.opts.Chat, code)
	director.Initialize(opponent.Name, opponent.Alignment, cfg.AIPromptTemplate)

	sess := &session{playerName: player.Name, opponentName: opponent.Name}
	sess.machine = phase.New(code, g, phase.Deps{
		Roller:    roller,
		Status:    sm,
		Resolver:  combat.New(roller, sm, deck.NewRewards(cfg, roller), g),
		Effects:   effects.NewApplier(sm, piles),
		Deck:      piles,
		Threats:   deck.NewThreats(cfg, roller),
		Placer:    director,
		Sink:      &sessionSink{svc: s, sess: sess},
		Scheduler: s.opts.Scheduler,
		Rules:     rules,
		AITimeout: s.opts.AITimeout,
	})

	s.mu.Lock()
	s.sessions[code] = sess
	s.mu.Unlock()

	if err := s.opts.Repo.SaveDuel(&game.DuelRecord{
		Code:         code,
		PlayerName:   player.Name,
		OpponentName: opponent.Name,
		Round:        g.Round,
		Phase:        string(g.Phase),
		Status:       g.Status,
	}); err != nil {
		logging.Error("failed to store new duel", err, logging.Fields{constants.LogFieldDuel: code})
	}
	if err := sess.machine.Start(); err != nil {
		return "", err
	}
	logging.Info("duel created", logging.Fields{
		constants.LogFieldDuel: code,
		"player":               player.Name,
		"opponent":             opponent.Name,
	})
	return code, nil
}

func (s *DuelService) character(name string) (*game.Card, error) {
	c, ok := s.opts.Config.Card(name)
	if !ok || c.Type != game.CardCharacter {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharacter, name)
	}
	return c, nil
}

func (s *DuelService) opponentCharacter(name string, player *game.Card, r *dice.Roller) (*game.Card, error) {
	if strings.TrimSpace(name) != "" {
		return s.character(name)
	}
	chars := s.opts.Config.Characters()
	candidates := make([]game.Card, 0, len(chars))
	for _, c := range chars {
		if !c.NameIs(player.Name) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		candidates = chars
	}
	return candidates[r.Pick(len(candidates))].Clone(), nil
}

func (s *DuelService) newCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeCharset[rand.Intn(len(codeCharset))]
		}
		if _, taken := s.sessions[string(b)]; !taken {
			return string(b)
		}
	}
}

// NormalizeCode upper-cases and trims a user supplied duel code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Machine returns the live machine for code.
func (s *DuelService) Machine(code string) (*phase.Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[NormalizeCode(code)]
	if !ok {
		return nil, ErrDuelNotFound
	}
	return sess.machine, nil
}

// Snapshot returns the encoded state of a duel. Duels no longer in memory are
// served from their last stored snapshot.
func (s *DuelService) Snapshot(code string) (json.RawMessage, error) {
	if m, err := s.Machine(code); err == nil {
		return m.Snapshot()
	}
	rec, err := s.opts.Repo.GetDuelByCode(NormalizeCode(code))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDuelNotFound
		}
		return nil, err
	}
	if len(rec.Snapshot) == 0 {
		return nil, ErrDuelNotFound
	}
	return json.RawMessage(rec.Snapshot), nil
}

// ListDuels returns recently updated duels without their snapshots.
func (s *DuelService) ListDuels(limit int) ([]game.DuelRecord, error) {
	return s.opts.Repo.ListRecentDuels(limit)
}

// AIDecisions returns the opponent decision log of a duel.
func (s *DuelService) AIDecisions(code string) ([]game.AIDecisionRecord, error) {
	return s.opts.Repo.ListAIDecisions(NormalizeCode(code))
}

// Live reports how many duels are held in memory.
func (s *DuelService) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
