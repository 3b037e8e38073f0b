// Package deck owns the card sources the engine consumes: per-actor draw
// piles, the critical reward generator and the threat encounter pool.
package deck

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericogr/cardduel/internal/config"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/google/uuid"
)

var (
	ErrUnknownDeck = errors.New("unknown deck")
	ErrNoRewards   = errors.New("no reward cards configured")
	ErrNoThreats   = errors.New("no threat cards configured")
)

// Shuffler randomizes piles and picks entries. *dice.Roller satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
	Pick(n int) int
}

// Build clones every card of the named deck (the default deck when name is
// empty) and shuffles the result. Each clone gets its own id.
func Build(cfg *config.LoadedConfig, name string, r Shuffler) ([]*game.Card, error) {
	names, ok := cfg.Deck(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeck, name)
	}
	pile := make([]*game.Card, 0, len(names))
	for _, n := range names {
		c, ok := cfg.Card(n)
		if !ok {
			return nil, fmt.Errorf("%w: deck %q references %q", ErrUnknownDeck, name, n)
		}
		c.ID = uuid.New().String()
		pile = append(pile, c)
	}
	r.Shuffle(len(pile), func(i, j int) { pile[i], pile[j] = pile[j], pile[i] })
	return pile, nil
}

// Piles holds one draw pile per side. It is owned by a single phase machine
// and is not safe for concurrent use.
type Piles struct {
	rng   Shuffler
	piles map[game.Side][]*game.Card
}

// NewPiles returns empty piles.
func NewPiles(r Shuffler) *Piles {
	return &Piles{rng: r, piles: make(map[game.Side][]*game.Card, 2)}
}

// Set replaces side's draw pile. The top of the pile is the end of the slice.
func (p *Piles) Set(side game.Side, cards []*game.Card) {
	p.piles[side] = cards
}

// Remaining returns how many cards side can still draw without reshuffling.
func (p *Piles) Remaining(side game.Side) int { return len(p.piles[side]) }

// DrawCardsForActor moves up to n cards from the actor's pile to its hand.
// An empty pile is refilled once from the actor's discard pile.
func (p *Piles) DrawCardsForActor(a *game.Actor, n int) []*game.Card {
	if a == nil || n <= 0 {
		return nil
	}
	drawn := make([]*game.Card, 0, n)
	for len(drawn) < n {
		pile := p.piles[a.Side]
		if len(pile) == 0 {
			if !p.reshuffle(a) {
				break
			}
			pile = p.piles[a.Side]
		}
		c := pile[len(pile)-1]
		p.piles[a.Side] = pile[:len(pile)-1]
		drawn = append(drawn, c)
	}
	a.Hand = append(a.Hand, drawn...)
	return drawn
}

// FillHand draws until the actor holds size cards or the sources run dry.
func (p *Piles) FillHand(a *game.Actor, size int) []*game.Card {
	return p.DrawCardsForActor(a, size-len(a.Hand))
}

func (p *Piles) reshuffle(a *game.Actor) bool {
	if len(a.Discard) == 0 {
		return false
	}
	pile := a.Discard
	a.Discard = nil
	for _, c := range pile {
		if c.Wears() {
			c.Durability = c.MaxDurability
		}
	}
	p.rng.Shuffle(len(pile), func(i, j int) { pile[i], pile[j] = pile[j], pile[i] })
	p.piles[a.Side] = pile
	return true
}

// Rewards generates critical reward cards from the configured reward list.
type Rewards struct {
	cfg *config.LoadedConfig
	rng Shuffler
}

// NewRewards wires a reward generator.
func NewRewards(cfg *config.LoadedConfig, r Shuffler) *Rewards {
	return &Rewards{cfg: cfg, rng: r}
}

// GenerateCriticalReward returns a fresh copy of a random reward card. The
// caller decides where it goes.
func (g *Rewards) GenerateCriticalReward(ctx context.Context, _ *game.Actor) (*game.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(g.cfg.Rewards) == 0 {
		return nil, ErrNoRewards
	}
	name := g.cfg.Rewards[g.rng.Pick(len(g.cfg.Rewards))]
	c, ok := g.cfg.Card(name)
	if !ok {
		return nil, fmt.Errorf("reward card %q not found", name)
	}
	c.ID = uuid.New().String()
	return c, nil
}

// Threats draws encounter cards for threat interrupts.
type Threats struct {
	cfg *config.LoadedConfig
	rng Shuffler
}

// NewThreats wires a threat source.
func NewThreats(cfg *config.LoadedConfig, r Shuffler) *Threats {
	return &Threats{cfg: cfg, rng: r}
}

// DrawThreat returns a fresh encounter card. Begin and end threats share the
// same pool.
func (t *Threats) DrawThreat(kind game.ThreatType) (*game.Card, error) {
	if len(t.cfg.Threats) == 0 {
		return nil, fmt.Errorf("%w (%s threat)", ErrNoThreats, kind)
	}
	name := t.cfg.Threats[t.rng.Pick(len(t.cfg.Threats))]
	c, ok := t.cfg.Card(name)
	if !ok {
		return nil, fmt.Errorf("threat card %q not found", name)
	}
	c.ID = uuid.New().String()
	return c, nil
}
