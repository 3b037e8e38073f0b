package game

// Phase is a state of the turn machine.
type Phase string

const (
	PhaseInitiative     Phase = "INITIATIVE"
	PhaseEquip          Phase = "EQUIP"
	PhaseThreatResponse Phase = "THREAT_RESPONSE"
	PhaseDrawPlacement  Phase = "DRAW_PLACEMENT"
	PhaseResolution     Phase = "RESOLUTION"
	PhaseCleanup        Phase = "CLEANUP"
	PhaseEndThreat      Phase = "END_THREAT"
)

const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// DurationType decides how a status effect expires.
type DurationType string

const (
	DurationTurns    DurationType = "turns"
	DurationUntilHit DurationType = "untilHit"
)

// StatusEffectInstance is one active effect on an actor. Reapplying the same
// id refreshes TurnsRemaining instead of stacking.
type StatusEffectInstance struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Icon           string       `json:"icon"`
	Color          string       `json:"color"`
	TurnsRemaining int          `json:"turns_remaining"`
	DurationType   DurationType `json:"duration_type"`
	Source         string       `json:"source"`
}

// RollModifier is one named term added to a d20 roll.
type RollModifier struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// RollResult keeps the natural roll next to the total so critical flags
// survive any modifier arithmetic.
type RollResult struct {
	Raw       int            `json:"raw"`
	Modifiers []RollModifier `json:"modifiers,omitempty"`
	Modifier  int            `json:"modifier"`
	Total     int            `json:"total"`
	Formula   string         `json:"formula"`
	Breakdown string         `json:"breakdown"`
	IsCrit    bool           `json:"is_crit"`
	IsFumble  bool           `json:"is_fumble"`
}

// OutcomeKind names a row of the combat outcome table.
type OutcomeKind string

const (
	OutcomeCriticalHit     OutcomeKind = "critical_hit"
	OutcomeCriticalMiss    OutcomeKind = "critical_miss"
	OutcomeCriticalParry   OutcomeKind = "critical_parry"
	OutcomeCriticalCounter OutcomeKind = "critical_counter"
	OutcomeDevastating     OutcomeKind = "devastating"
	OutcomeStrong          OutcomeKind = "strong"
	OutcomeGlancing        OutcomeKind = "glancing"
	OutcomeClash           OutcomeKind = "clash"
	OutcomeDeflect         OutcomeKind = "deflect"
	OutcomeParry           OutcomeKind = "parry"
)

// CombatOutcome is one row of the fixed outcome table.
type CombatOutcome struct {
	Kind              OutcomeKind `json:"kind"`
	Label             string      `json:"label"`
	Multiplier        float64     `json:"multiplier"`
	IsCriticalHit     bool        `json:"is_critical_hit"`
	IsCriticalParry   bool        `json:"is_critical_parry"`
	IsCriticalCounter bool        `json:"is_critical_counter"`
	AllowCounter      bool        `json:"allow_counter"`
	BothTakeDamage    bool        `json:"both_take_damage"`
}

// IsHit reports whether the outcome damages the defender.
func (o CombatOutcome) IsHit() bool { return o.Multiplier > 0 }

// ThreatType tells whether a threat interrupts the start or the end of a round.
type ThreatType string

const (
	ThreatBegin ThreatType = "begin"
	ThreatEnd   ThreatType = "end"
)

// ThreatResponse is the interrupt sub-state: the responder spends bonus AP
// on defense cards before the threat cards attack.
type ThreatResponse struct {
	Active       bool       `json:"active"`
	Type         ThreatType `json:"type"`
	Responder    Side       `json:"responder"`
	Threats      []*Card    `json:"threats"`
	DefenseStack []*Card    `json:"defense_stack"`
	BonusAP      int        `json:"bonus_ap"`
	BonusAPUsed  int        `json:"bonus_ap_used"`
}

// BonusAPRemaining returns unspent threat-response AP.
func (t *ThreatResponse) BonusAPRemaining() int {
	if t == nil {
		return 0
	}
	return max(t.BonusAP-t.BonusAPUsed, 0)
}

// PendingThreat is a trigger waiting to be inserted as an interrupt.
type PendingThreat struct {
	Type      ThreatType `json:"type"`
	Responder Side       `json:"responder"`
	Reason    string     `json:"reason"`
}

// InitiativeRoll records one actor's initiative.
type InitiativeRoll struct {
	Raw      int `json:"raw"`
	Modifier int `json:"modifier"`
	Total    int `json:"total"`
}

// GameState is owned by exactly one phase machine; nothing else mutates it.
type GameState struct {
	Round           int                     `json:"round"`
	Phase           Phase                   `json:"phase"`
	ResumePhase     Phase                   `json:"resume_phase,omitempty"`
	CurrentTurn     Side                    `json:"current_turn"`
	Player          *Actor                  `json:"player"`
	Opponent        *Actor                  `json:"opponent"`
	InitiativeOrder []Side                  `json:"initiative_order"`
	Initiative      map[Side]InitiativeRoll `json:"initiative"`
	EquipDone       map[Side]bool           `json:"equip_done"`
	Threat          *ThreatResponse         `json:"threat,omitempty"`
	PendingThreats  []PendingThreat         `json:"pending_threats,omitempty"`
	Pot             []*Card                 `json:"pot"`
	Status          string                  `json:"status"`
	Winner          Side                    `json:"winner,omitempty"`
	Log             []string                `json:"log"`
}

// NewGameState pairs two actors for round one.
func NewGameState(player, opponent *Actor) *GameState {
	return &GameState{
		Round:      1,
		Phase:      PhaseInitiative,
		Player:     player,
		Opponent:   opponent,
		Initiative: make(map[Side]InitiativeRoll, 2),
		EquipDone:  make(map[Side]bool, 2),
		Status:     StatusInProgress,
	}
}

// Actor returns the actor for side.
func (g *GameState) Actor(s Side) *Actor {
	if s == SideOpponent {
		return g.Opponent
	}
	return g.Player
}

// AddToPot implements the shared loot sink.
func (g *GameState) AddToPot(c *Card) {
	if c != nil {
		g.Pot = append(g.Pot, c)
	}
}

// AddLog appends lines to the running duel log.
func (g *GameState) AddLog(lines ...string) {
	g.Log = append(g.Log, lines...)
}
