package ai

import (
	"strings"

	"github.com/ericogr/cardduel/internal/game"
)

// Drawer hands new cards to an actor.
type Drawer interface {
	DrawCardsForActor(a *game.Actor, n int) []*game.Card
}

// PlanFallback is the deterministic FIFO heuristic: for each free position
// in order, pick one affordable core card (an "Attack" card first, then any
// action card, then the first playable one) and attach at most one
// affordable skill. It never plans more stacks than the remaining AP.
func PlanFallback(req PlacementRequest) Decision {
	d := Decision{Source: SourceFallback, Strategy: "fallback"}
	used := make([]bool, len(req.AI.Hand))
	energy := req.AI.Energy
	ap := req.AI.AP

	for _, pos := range req.AvailablePositions {
		if ap <= 0 {
			break
		}
		core := pickCore(req.AI.Hand, used, energy)
		if core < 0 {
			break
		}
		used[core] = true
		energy -= req.AI.Hand[core].EnergyCost
		plan := StackPlan{Position: pos, CoreCard: req.AI.Hand[core].Name}
		for i, c := range req.AI.Hand {
			if used[i] || c.Type != string(game.CardSkill) || c.EnergyCost > energy {
				continue
			}
			used[i] = true
			energy -= c.EnergyCost
			plan.Modifiers = []string{c.Name}
			break
		}
		d.Stacks = append(d.Stacks, plan)
		ap--
	}
	if d.Stacks == nil {
		d.Stacks = []StackPlan{}
	}
	return d
}

func pickCore(hand []HandCard, used []bool, energy int) int {
	playable := func(i int) bool {
		c := hand[i]
		return !used[i] && c.EnergyCost <= energy && game.IsCoreType(game.CardType(c.Type))
	}
	for i, c := range hand {
		if playable(i) && strings.Contains(strings.ToLower(c.Name), "attack") {
			return i
		}
	}
	for i, c := range hand {
		if playable(i) && c.Type == string(game.CardAction) {
			return i
		}
	}
	for i := range hand {
		if playable(i) {
			return i
		}
	}
	return -1
}

// ApplyResult reports what ApplyDecision committed.
type ApplyResult struct {
	Placed    []*game.ActionStack
	Skipped   []string
	Drawn     []*game.Card
	Forfeited int
}

// ApplyDecision commits each valid entry of d to the actor and silently
// skips invalid ones. Afterwards the actor always ends its placement turn:
// leftover AP is topped up with the fallback plan, drawing one card and
// retrying once when nothing is playable, and whatever still remains is
// forfeited.
func ApplyDecision(a *game.Actor, d Decision, drawer Drawer) ApplyResult {
	var res ApplyResult
	res.commit(a, d.Stacks)
	if a.PlacementDone() {
		return res
	}

	plan := PlanFallback(requestFor(a))
	if len(plan.Stacks) == 0 && drawer != nil && len(a.AvailablePositions()) > 0 {
		res.Drawn = drawer.DrawCardsForActor(a, 1)
		plan = PlanFallback(requestFor(a))
	}
	res.commit(a, plan.Stacks)

	if !a.PlacementDone() {
		res.Forfeited = a.APRemaining()
		a.ForfeitAP()
	}
	return res
}

func (r *ApplyResult) commit(a *game.Actor, stacks []StackPlan) {
	for _, sp := range stacks {
		s, err := a.PlaceStack(sp.Position, sp.CoreCard, sp.Modifiers)
		if err != nil {
			r.Skipped = append(r.Skipped, sp.CoreCard+": "+err.Error())
			continue
		}
		r.Placed = append(r.Placed, s)
	}
}

func requestFor(a *game.Actor) PlacementRequest {
	return PlacementRequest{Type: "placement", YourTurn: true, AI: selfView(a), AvailablePositions: a.AvailablePositions()}
}
