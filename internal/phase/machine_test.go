package phase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ericogr/cardduel/internal/ai"
	"github.com/ericogr/cardduel/internal/combat"
	"github.com/ericogr/cardduel/internal/config"
	"github.com/ericogr/cardduel/internal/effects"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---------------------------------------------------------------

type task struct {
	f       func()
	stopped bool
}

// manualScheduler queues callbacks until the test runs them.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*task
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &task{f: f}
	s.tasks = append(s.tasks, t)
	return func() {
		s.mu.Lock()
		t.stopped = true
		s.mu.Unlock()
	}
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// RunNext runs the oldest live callback outside the scheduler lock.
func (s *manualScheduler) RunNext() bool {
	s.mu.Lock()
	var next *task
	for len(s.tasks) > 0 {
		t := s.tasks[0]
		s.tasks = s.tasks[1:]
		if !t.stopped {
			next = t
			break
		}
	}
	s.mu.Unlock()
	if next == nil {
		return false
	}
	next.f()
	return true
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingSink) of(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingSink) phases() []game.Phase {
	var out []game.Phase
	for _, e := range r.of(EventPhase) {
		out = append(out, game.Phase(e.Message))
	}
	return out
}

// scriptedDice returns queued natural rolls, then 10.
type scriptedDice struct {
	mu    sync.Mutex
	rolls []int
}

func (s *scriptedDice) Roll(int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rolls) == 0 {
		return 10
	}
	r := s.rolls[0]
	s.rolls = s.rolls[1:]
	return r
}
func (s *scriptedDice) Chance(int) bool { return false }
func (s *scriptedDice) Pick(int) int    { return 0 }
func (s *scriptedDice) Initiative(st game.Stats) game.InitiativeRoll {
	raw := s.Roll(20)
	return game.InitiativeRoll{Raw: raw, Modifier: st.AGI, Total: raw + st.AGI}
}

type stubThreats struct{}

func (stubThreats) DrawThreat(game.ThreatType) (*game.Card, error) {
	return &game.Card{Name: "Wolves", Type: game.CardEncounter, Atk: 3}, nil
}

type fakePlacer struct {
	mu     sync.Mutex
	epochs []uint64
	reqs   []ai.PlacementRequest
	dec    ai.Decision
	gate   chan struct{}
}

func (f *fakePlacer) RequestPlacement(_ context.Context, epoch uint64, req ai.PlacementRequest) ai.Decision {
	f.mu.Lock()
	f.epochs = append(f.epochs, epoch)
	f.reqs = append(f.reqs, req)
	gate, d := f.gate, f.dec
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	d.Epoch = epoch
	return d
}

// block makes the next calls wait until the returned channel is closed.
func (f *fakePlacer) block() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.gate
}

func (f *fakePlacer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.epochs)
}

// --- fixtures ------------------------------------------------------------

func attackCard() *game.Card {
	return &game.Card{Name: "Attack", Type: game.CardAction, Atk: 2, OnHit: "Poison"}
}
func guardCard() *game.Card { return &game.Card{Name: "Guard", Type: game.CardAction, Parry: 2} }

func newActor(side game.Side, name string, hand ...*game.Card) *game.Actor {
	a := game.NewActor(side, &game.Card{
		Name: name, Type: game.CardCharacter, HP: 20, Energy: 10, Morale: 5,
		Stats: game.Stats{STR: 3, END: 2},
	}, 1, 3)
	a.Hand = hand
	return a
}

type fixture struct {
	m      *Machine
	g      *game.GameState
	sched  *manualScheduler
	sink   *recordingSink
	placer *fakePlacer
}

func newFixture(t *testing.T, ap int, rolls []int, player, opponent *game.Actor) *fixture {
	t.Helper()
	g := game.NewGameState(player, opponent)
	d := &scriptedDice{rolls: rolls}
	sm := status.NewManager(nil)
	f := &fixture{g: g, sched: &manualScheduler{}, sink: &recordingSink{}, placer: &fakePlacer{}}
	rules := config.DefaultRules()
	rules.APPerRound = ap
	rules.HandSize = 0
	f.m = New("T3ST", g, Deps{
		Roller:    d,
		Status:    sm,
		Resolver:  combat.New(d, sm, nil, g),
		Effects:   effects.NewApplier(sm, nil),
		Threats:   stubThreats{},
		Placer:    f.placer,
		Sink:      f.sink,
		Scheduler: f.sched,
		Rules:     rules,
	})
	t.Cleanup(f.m.Close)
	return f
}

// toPlacement starts the duel and finishes both equip steps.
func (f *fixture) toPlacement(t *testing.T) {
	t.Helper()
	require.NoError(t, f.m.Start())
	for _, s := range []game.Side{game.SidePlayer, game.SideOpponent} {
		if !f.g.EquipDone[s] {
			require.NoError(t, f.m.FinishEquip(s))
		}
	}
}

// --- tests ---------------------------------------------------------------

func TestStart_InitiativeThenEquip(t *testing.T) {
	f := newFixture(t, 1, []int{5, 12}, newActor(game.SidePlayer, "Knight"), newActor(game.SideOpponent, "Rogue"))
	require.NoError(t, f.m.Start())

	assert.Equal(t, game.PhaseEquip, f.g.Phase)
	assert.Equal(t, []game.Side{game.SideOpponent, game.SidePlayer}, f.g.InitiativeOrder)
	assert.Equal(t, 12, f.g.Initiative[game.SideOpponent].Total)
	assert.ErrorIs(t, f.m.Start(), ErrAlreadyActive)

	_, err := f.m.Place(game.SidePlayer, 0, "Attack", nil)
	assert.ErrorIs(t, err, ErrWrongPhase)

	require.NoError(t, f.m.FinishEquip(game.SidePlayer))
	assert.ErrorIs(t, f.m.FinishEquip(game.SidePlayer), ErrAlreadyDone)
	assert.Equal(t, game.PhaseEquip, f.g.Phase)
	require.NoError(t, f.m.FinishEquip(game.SideOpponent))
	assert.Equal(t, game.PhaseDrawPlacement, f.g.Phase)
	assert.Equal(t, game.SideOpponent, f.g.CurrentTurn)
}

func TestEquip(t *testing.T) {
	shield := &game.Card{Name: "Shield", Type: game.CardApparel, Slot: game.SlotBody, Def: 2, HPBonus: 3}
	f := newFixture(t, 1, nil, newActor(game.SidePlayer, "Knight", shield, guardCard()), newActor(game.SideOpponent, "Rogue"))
	require.NoError(t, f.m.Start())

	assert.ErrorIs(t, f.m.Equip(game.SidePlayer, "Axe", game.SlotHandR), game.ErrCardNotInHand)
	assert.ErrorIs(t, f.m.Equip(game.SidePlayer, "Guard", game.SlotHandR), ErrCannotEquip)
	assert.Equal(t, 0, f.g.Player.FindInHand("Shield"))
	assert.Equal(t, 1, f.g.Player.FindInHand("Guard"))

	require.NoError(t, f.m.Equip(game.SidePlayer, "shield", game.SlotBody))
	assert.Same(t, shield, f.g.Player.Equipped[game.SlotBody])
	assert.Equal(t, 23, f.g.Player.MaxHP)
	assert.Len(t, f.sink.of(EventEquip), 1)
}

func TestCheckPlacementComplete_FlipsThenResolves(t *testing.T) {
	guard := guardCard()
	f := newFixture(t, 1, []int{15, 5}, newActor(game.SidePlayer, "Knight", guard), newActor(game.SideOpponent, "Rogue"))
	f.toPlacement(t)
	require.Equal(t, game.SidePlayer, f.g.CurrentTurn)

	assert.ErrorIs(t, f.m.Pass(game.SideOpponent), ErrNotYourTurn)

	_, err := f.m.Place(game.SidePlayer, 0, "Guard", nil)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseDrawPlacement, f.g.Phase)
	assert.Equal(t, game.SideOpponent, f.g.CurrentTurn)
	assert.Zero(t, f.sched.pending())

	_, err = f.m.Place(game.SidePlayer, 1, "Guard", nil)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	require.NoError(t, f.m.Pass(game.SideOpponent))
	assert.Equal(t, game.PhaseDrawPlacement, f.g.Phase, "resolution waits for the placement delay")
	require.Equal(t, 1, f.sched.pending())

	require.True(t, f.sched.RunNext())
	assert.Contains(t, f.sink.phases(), game.PhaseResolution)
	assert.Contains(t, f.sink.phases(), game.PhaseCleanup)
	assert.Equal(t, 2, f.g.Round)
	assert.Equal(t, game.PhaseEquip, f.g.Phase)
	assert.Empty(t, f.g.Player.Bar)
	assert.Contains(t, f.g.Player.Discard, guard)

	ends := f.sink.of(EventRoundEnd)
	require.Len(t, ends, 1)
	assert.NotEmpty(t, ends[0].Snapshot)
}

func TestCheckPlacementComplete_TurnStaysWithUnfinishedActor(t *testing.T) {
	f := newFixture(t, 2, []int{15, 5}, newActor(game.SidePlayer, "Knight", guardCard(), guardCard()), newActor(game.SideOpponent, "Rogue"))
	f.toPlacement(t)

	_, err := f.m.Place(game.SidePlayer, 0, "Guard", nil)
	require.NoError(t, err)
	assert.Equal(t, game.SideOpponent, f.g.CurrentTurn)

	require.NoError(t, f.m.Pass(game.SideOpponent))
	assert.Equal(t, game.SidePlayer, f.g.CurrentTurn)
	assert.Equal(t, game.PhaseDrawPlacement, f.g.Phase)
	assert.Zero(t, f.sched.pending())

	_, err = f.m.Place(game.SidePlayer, 0, "Guard", nil)
	assert.ErrorIs(t, err, game.ErrPositionTaken)
	assert.ErrorIs(t, err, ErrPositionTaken)

	_, err = f.m.Place(game.SidePlayer, 1, "Guard", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.sched.pending())
}

func TestResolution_AttackAppliesOnHit(t *testing.T) {
	// initiative 15/5, then defense 5 and attack 12: 17 vs 7 is a devastating hit.
	f := newFixture(t, 1, []int{15, 5, 5, 12}, newActor(game.SidePlayer, "Knight", attackCard()), newActor(game.SideOpponent, "Rogue"))
	f.toPlacement(t)

	_, err := f.m.Place(game.SidePlayer, 0, "Attack", nil)
	require.NoError(t, err)
	require.NoError(t, f.m.Pass(game.SideOpponent))
	require.True(t, f.sched.RunNext())

	opp := f.g.Opponent
	// 7 from floor((2+3)*1.5), then 2 poison at the next round start.
	assert.Equal(t, 11, opp.HP)
	require.Len(t, opp.StatusEffects, 1)
	assert.Equal(t, status.Poisoned, opp.StatusEffects[0].ID)
	assert.Equal(t, 2, opp.StatusEffects[0].TurnsRemaining)

	combatEvents := f.sink.of(EventCombat)
	require.Len(t, combatEvents, 1)
	rep, ok := combatEvents[0].Data.(*combat.AttackReport)
	require.True(t, ok)
	assert.Equal(t, game.OutcomeDevastating, rep.Attacks[0].Outcome.Kind)
	assert.NotEmpty(t, f.sink.of(EventEffect))
}

func TestResolution_GameOver(t *testing.T) {
	opp := newActor(game.SideOpponent, "Rogue")
	opp.HP = 1
	f := newFixture(t, 1, []int{15, 5, 5, 12}, newActor(game.SidePlayer, "Knight", attackCard()), opp)
	f.toPlacement(t)

	_, err := f.m.Place(game.SidePlayer, 0, "Attack", nil)
	require.NoError(t, err)
	require.NoError(t, f.m.Pass(game.SideOpponent))
	require.True(t, f.sched.RunNext())

	assert.Equal(t, game.StatusFinished, f.g.Status)
	assert.Equal(t, game.SidePlayer, f.g.Winner)
	assert.Equal(t, 1, f.g.Round)
	over := f.sink.of(EventGameOver)
	require.Len(t, over, 1)
	assert.Equal(t, game.SidePlayer, over[0].Side)
	assert.NotEmpty(t, over[0].Snapshot)

	assert.ErrorIs(t, f.m.FinishEquip(game.SidePlayer), ErrDuelFinished)
}

func TestCriticalMiss_QueuesEndThreatBeforeCleanup(t *testing.T) {
	shield := &game.Card{Name: "Shield", Type: game.CardApparel, Def: 2}
	// initiative 15/5, defense 10, attack natural 1, then the threat: 10+3 vs 10+2+2.
	f := newFixture(t, 1, []int{15, 5, 10, 1, 10, 10},
		newActor(game.SidePlayer, "Knight", attackCard(), shield), newActor(game.SideOpponent, "Rogue"))
	f.toPlacement(t)

	_, err := f.m.Place(game.SidePlayer, 0, "Attack", nil)
	require.NoError(t, err)
	require.NoError(t, f.m.Pass(game.SideOpponent))
	require.True(t, f.sched.RunNext())

	require.Equal(t, game.PhaseEndThreat, f.g.Phase)
	require.NotNil(t, f.g.Threat)
	assert.Equal(t, game.SidePlayer, f.g.Threat.Responder)
	assert.Equal(t, game.PhaseCleanup, f.g.ResumePhase)
	assert.Equal(t, 20, f.g.Opponent.HP)

	assert.ErrorIs(t, f.m.SkipThreat(game.SideOpponent), ErrNotResponder)
	assert.ErrorIs(t, f.m.Pass(game.SidePlayer), ErrWrongPhase)

	require.NoError(t, f.m.DefendThreat(game.SidePlayer, "Shield"))
	assert.Equal(t, 1, f.g.Threat.BonusAPRemaining())
	require.NoError(t, f.m.SkipThreat(game.SidePlayer))

	assert.Nil(t, f.g.Threat)
	assert.Equal(t, 20, f.g.Player.HP, "13 vs 14 is deflected")
	assert.Contains(t, f.g.Player.Discard, shield)
	assert.Equal(t, 2, f.g.Round)
	assert.Equal(t, game.PhaseEquip, f.g.Phase)
	assert.Contains(t, f.sink.phases(), game.PhaseCleanup)
}

func TestInitiativeFumble_BeginThreatInterruptsPlacement(t *testing.T) {
	f := newFixture(t, 1, []int{1, 5, 10, 10}, newActor(game.SidePlayer, "Knight"), newActor(game.SideOpponent, "Rogue"))
	f.toPlacement(t)

	require.Equal(t, game.PhaseThreatResponse, f.g.Phase)
	assert.Equal(t, game.PhaseDrawPlacement, f.g.ResumePhase)
	assert.Empty(t, f.g.PendingThreats)

	require.NoError(t, f.m.SkipThreat(game.SidePlayer))
	// 13 vs 12 is a glancing blow: floor(3*0.5) = 1.
	assert.Equal(t, 19, f.g.Player.HP)
	assert.Equal(t, game.PhaseDrawPlacement, f.g.Phase)
	assert.Equal(t, game.SideOpponent, f.g.CurrentTurn)
	assert.Empty(t, f.g.ResumePhase)
}

func TestStunnedActorForfeitsAP(t *testing.T) {
	player := newActor(game.SidePlayer, "Knight", guardCard())
	status.NewManager(nil).Apply(player, status.Stunned, "test")
	f := newFixture(t, 1, []int{15, 5}, player, newActor(game.SideOpponent, "Rogue"))
	f.toPlacement(t)

	assert.True(t, f.g.Player.PlacementDone())
	assert.Equal(t, game.SideOpponent, f.g.CurrentTurn)
	require.NoError(t, f.m.Pass(game.SideOpponent))
	assert.Equal(t, 1, f.sched.pending())
}

func TestAITurn_AppliesDecisionForCurrentEpoch(t *testing.T) {
	sword := &game.Card{Name: "Sword", Type: game.CardItem, Slot: game.SlotHandR, Atk: 3}
	opp := newActor(game.SideOpponent, "Rogue", sword, attackCard())
	opp.IsAI = true
	f := newFixture(t, 1, []int{15, 5}, newActor(game.SidePlayer, "Knight"), opp)
	f.placer.dec = ai.Decision{Source: ai.SourceModel, Strategy: "hit hard", Stacks: []ai.StackPlan{{Position: 0, CoreCard: "Attack"}}}

	require.NoError(t, f.m.Start())
	assert.True(t, f.g.EquipDone[game.SideOpponent])
	assert.Same(t, sword, opp.Equipped[game.SlotHandR])
	require.NoError(t, f.m.FinishEquip(game.SidePlayer))

	require.NoError(t, f.m.Pass(game.SidePlayer))
	assert.Equal(t, game.SideOpponent, f.g.CurrentTurn)
	require.Equal(t, 1, f.sched.pending())
	epoch := f.m.Epoch()

	require.True(t, f.sched.RunNext())
	require.Equal(t, 1, f.placer.calls())
	assert.Equal(t, epoch, f.placer.epochs[0])
	assert.Equal(t, 1, f.placer.reqs[0].AI.AP)
	assert.Equal(t, []int{0, 1, 2}, f.placer.reqs[0].AvailablePositions)

	require.NotNil(t, opp.Bar[0])
	assert.Equal(t, "Attack", opp.Bar[0].Core.Name)
	assert.Greater(t, f.m.Epoch(), epoch)
	assert.Equal(t, 1, f.sched.pending(), "watchdog stopped, resolution queued")

	decisions := f.sink.of(EventAIDecision)
	require.Len(t, decisions, 1)
	info := decisions[0].Data.(AIDecisionInfo)
	assert.Equal(t, ai.SourceModel, info.Source)
	assert.Equal(t, 1, info.Placed)
	assert.False(t, info.Discarded)
}

func TestAITurn_StaleResponseIsDiscarded(t *testing.T) {
	opp := newActor(game.SideOpponent, "Rogue", attackCard(), guardCard())
	opp.IsAI = true
	f := newFixture(t, 1, []int{15, 5}, newActor(game.SidePlayer, "Knight"), opp)
	gate := f.placer.block()
	f.placer.dec = ai.Decision{Source: ai.SourceModel, Stacks: []ai.StackPlan{{Position: 1, CoreCard: "Guard"}}}

	f.toPlacement(t)
	require.NoError(t, f.m.Pass(game.SidePlayer))

	done := make(chan struct{})
	go func() {
		f.sched.RunNext()
		close(done)
	}()
	require.Eventually(t, func() bool { return f.placer.calls() == 1 }, time.Second, time.Millisecond)

	// The watchdog fires while the request is still out.
	require.True(t, f.sched.RunNext())
	close(gate)
	<-done

	f.m.Read(func(g *game.GameState) {
		require.NotNil(t, g.Opponent.Bar[0])
		assert.Equal(t, "Attack", g.Opponent.Bar[0].Core.Name)
		assert.Nil(t, g.Opponent.Bar[1])
		assert.GreaterOrEqual(t, g.Opponent.FindInHand("Guard"), 0)
		assert.Equal(t, game.PhaseDrawPlacement, g.Phase)
	})

	decisions := f.sink.of(EventAIDecision)
	require.Len(t, decisions, 2)
	assert.Equal(t, ai.SourceFallback, decisions[0].Data.(AIDecisionInfo).Source)
	assert.True(t, decisions[1].Data.(AIDecisionInfo).Discarded)
	assert.Len(t, f.sink.of(EventNotice), 1)
}

// timeOutAITurn passes the player's turn and lets the watchdog beat a blocked
// placer. The late answer is released afterwards and discarded.
func (f *fixture) timeOutAITurn(t *testing.T) {
	t.Helper()
	gate := f.placer.block()
	calls := f.placer.calls()
	require.NoError(t, f.m.Pass(game.SidePlayer))

	done := make(chan struct{})
	go func() {
		f.sched.RunNext()
		close(done)
	}()
	require.Eventually(t, func() bool { return f.placer.calls() == calls+1 }, time.Second, time.Millisecond)
	require.True(t, f.sched.RunNext())
	close(gate)
	<-done
}

func TestAITurn_ConsecutiveTimeoutsNotifyOnce(t *testing.T) {
	opp := newActor(game.SideOpponent, "Rogue", attackCard(), attackCard())
	opp.IsAI = true
	f := newFixture(t, 1, []int{15, 5}, newActor(game.SidePlayer, "Knight"), opp)
	f.placer.dec = ai.Decision{Source: ai.SourceModel}

	f.toPlacement(t)
	f.timeOutAITurn(t)
	require.Len(t, f.sink.of(EventNotice), 1)

	// Resolve round 1 and reach round 2's placement.
	require.True(t, f.sched.RunNext())
	require.Equal(t, 2, f.g.Round)
	require.NoError(t, f.m.FinishEquip(game.SidePlayer))
	require.Equal(t, game.PhaseDrawPlacement, f.g.Phase)
	require.Equal(t, game.SidePlayer, f.g.CurrentTurn)

	f.timeOutAITurn(t)
	assert.Len(t, f.sink.of(EventNotice), 1, "a second timeout in the same streak stays silent")
	assert.Equal(t, 2, f.m.aiFailures)
}

func TestNoteAIOutcome_OneNoticePerStreak(t *testing.T) {
	f := newFixture(t, 1, nil, newActor(game.SidePlayer, "Knight"), newActor(game.SideOpponent, "Rogue"))
	failed := ai.Decision{Source: ai.SourceFallback, Failed: true}

	f.m.noteAIOutcome(game.SideOpponent, failed, ai.NoticeFallback)
	f.m.noteAIOutcome(game.SideOpponent, failed, noticeTimeout)
	f.m.noteAIOutcome(game.SideOpponent, ai.Decision{Source: ai.SourceFallback}, ai.NoticeFallback)
	require.Len(t, f.sink.of(EventNotice), 1)
	assert.Equal(t, ai.NoticeFallback, f.sink.of(EventNotice)[0].Message)

	f.m.noteAIOutcome(game.SideOpponent, ai.Decision{Source: ai.SourceModel}, ai.NoticeFallback)
	assert.Zero(t, f.m.aiFailures)
	f.m.noteAIOutcome(game.SideOpponent, failed, noticeTimeout)
	notices := f.sink.of(EventNotice)
	require.Len(t, notices, 2, "a new streak notifies again")
	assert.Equal(t, noticeTimeout, notices[1].Message)
}

func TestAIThreatResponse(t *testing.T) {
	opp := newActor(game.SideOpponent, "Rogue", &game.Card{Name: "Buckler", Type: game.CardItem, Def: 1}, attackCard())
	opp.IsAI = true
	// Opponent fumbles initiative; the threat rolls 10+3 vs 10+2+2.
	f := newFixture(t, 1, []int{15, 1, 10, 10}, newActor(game.SidePlayer, "Knight"), opp)
	// Keep the buckler in hand so it can brace with it.
	opp.Hand[0].Type = game.CardAction
	opp.Hand[0].Parry = 1

	require.NoError(t, f.m.Start())
	require.NoError(t, f.m.FinishEquip(game.SidePlayer))
	require.Equal(t, game.PhaseThreatResponse, f.g.Phase)

	require.True(t, f.sched.RunNext())
	assert.Nil(t, f.g.Threat)
	assert.Equal(t, game.PhaseDrawPlacement, f.g.Phase)
	assert.Equal(t, game.SidePlayer, f.g.CurrentTurn)
	require.Len(t, opp.Discard, 1)
	assert.Equal(t, "Buckler", opp.Discard[0].Name)
}

func TestExpire(t *testing.T) {
	f := newFixture(t, 1, nil, newActor(game.SidePlayer, "Knight"), newActor(game.SideOpponent, "Rogue"))
	require.NoError(t, f.m.Start())

	assert.True(t, f.m.Expire("idle timeout"))
	assert.False(t, f.m.Expire("idle timeout"))
	assert.Equal(t, game.StatusFinished, f.g.Status)
	assert.Empty(t, f.g.Winner)
	assert.ErrorIs(t, f.m.FinishEquip(game.SidePlayer), ErrDuelFinished)

	snap, err := f.m.Snapshot()
	require.NoError(t, err)
	assert.Contains(t, string(snap), `"status":"finished"`)
}

func TestInitiativeOrder(t *testing.T) {
	cases := []struct {
		p, o game.InitiativeRoll
		want game.Side
	}{
		{game.InitiativeRoll{Raw: 10, Total: 12}, game.InitiativeRoll{Raw: 5, Total: 11}, game.SidePlayer},
		{game.InitiativeRoll{Raw: 10, Total: 12}, game.InitiativeRoll{Raw: 11, Total: 12}, game.SideOpponent},
		{game.InitiativeRoll{Raw: 10, Total: 12}, game.InitiativeRoll{Raw: 10, Total: 12}, game.SidePlayer},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, initiativeOrder(tc.p, tc.o)[0])
	}
}
