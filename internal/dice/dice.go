// Package dice provides the seedable die roller used by combat and
// initiative. Every roll goes through an injected *rand.Rand so tests can
// replay exact sequences.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/ericogr/cardduel/internal/game"
)

// DefaultSides is the die used when no size is given.
const DefaultSides = 20

// Roller rolls dice from its own random source.
type Roller struct {
	rng *rand.Rand
}

// NewRoller returns a roller seeded deterministically.
func NewRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// NewRollerFromRand wraps an existing random source.
func NewRollerFromRand(rng *rand.Rand) *Roller {
	return &Roller{rng: rng}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Roll returns a uniform integer in [1, sides]. Non-positive sides roll a d20.
func (r *Roller) Roll(sides int) int {
	if sides <= 0 {
		sides = DefaultSides
	}
	return r.rng.Intn(sides) + 1
}

// Chance returns true with the given percent probability.
func (r *Roller) Chance(percent int) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return r.rng.Intn(100) < percent
}

// Pick returns a uniform index in [0, n); n must be positive.
func (r *Roller) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return r.rng.Intn(n)
}

// Shuffle permutes n elements through swap.
func (r *Roller) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}

// RollWithMod rolls a d20 and adds a single named stat.
func (r *Roller) RollWithMod(statValue int, statName string) game.RollResult {
	return r.RollD20(game.RollModifier{Name: statName, Value: statValue})
}

// RollD20 rolls a d20 and adds every non-zero modifier.
func (r *Roller) RollD20(mods ...game.RollModifier) game.RollResult {
	return Compose(r.Roll(DefaultSides), mods...)
}

// Compose builds a RollResult from a known natural roll. It is exported so
// replays and tests can rebuild results without a random source.
func Compose(raw int, mods ...game.RollModifier) game.RollResult {
	res := game.RollResult{
		Raw:      raw,
		IsCrit:   raw == 20,
		IsFumble: raw == 1,
	}
	formula := []string{"1d20"}
	parts := []string{"d20(" + strconv.Itoa(raw) + ")"}
	for _, m := range mods {
		if m.Value == 0 {
			continue
		}
		res.Modifiers = append(res.Modifiers, m)
		res.Modifier += m.Value
		formula = append(formula, signed(m.Value, m.Name))
		parts = append(parts, signed(m.Value, m.Name+"("+strconv.Itoa(abs(m.Value))+")"))
	}
	res.Total = raw + res.Modifier
	res.Formula = strings.Join(formula, " ")
	res.Breakdown = strings.Join(parts, " ") + " = " + strconv.Itoa(res.Total)
	return res
}

// Initiative rolls d20 + AGI.
func (r *Roller) Initiative(stats game.Stats) game.InitiativeRoll {
	raw := r.Roll(DefaultSides)
	return game.InitiativeRoll{Raw: raw, Modifier: stats.AGI, Total: raw + stats.AGI}
}

func signed(v int, label string) string {
	if v < 0 {
		return "- " + label
	}
	return "+ " + label
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
