// Package effects turns free-text card effects into mechanical instructions
// and applies them to actors.
package effects

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ericogr/cardduel/internal/status"
)

// Target tells which actor a parsed status lands on.
type Target string

const (
	TargetSelf  Target = "self"
	TargetEnemy Target = "enemy"
)

// StatusRef is one status application found in the text.
type StatusRef struct {
	StatusID string `json:"status_id"`
	Target   Target `json:"target"`
}

// Parsed is the sparse result of Parse. Zero fields did not match.
type Parsed struct {
	Damage        int         `json:"damage,omitempty"`
	HealHP        int         `json:"heal_hp,omitempty"`
	RestoreEnergy int         `json:"restore_energy,omitempty"`
	RestoreMorale int         `json:"restore_morale,omitempty"`
	Draw          int         `json:"draw,omitempty"`
	Statuses      []StatusRef `json:"statuses,omitempty"`
	Cure          bool        `json:"cure,omitempty"`
}

// Empty reports whether nothing mechanical was found.
func (p Parsed) Empty() bool {
	return p.Damage == 0 && p.HealHP == 0 && p.RestoreEnergy == 0 &&
		p.RestoreMorale == 0 && p.Draw == 0 && len(p.Statuses) == 0 && !p.Cure
}

var (
	reDeal          = regexp.MustCompile(`(?i)deal\s+(\d+)`)
	reDrain         = regexp.MustCompile(`(?i)drain\s+(\d+)`)
	reHeal          = regexp.MustCompile(`(?i)heal\s+(\d+)`)
	reRestoreHP     = regexp.MustCompile(`(?i)restore\s+(\d+)\s+hp`)
	reRestoreEnergy = regexp.MustCompile(`(?i)restore\s+(\d+)\s+energy`)
	reRestoreMorale = regexp.MustCompile(`(?i)restore\s+(\d+)\s+morale`)
	reDraw          = regexp.MustCompile(`(?i)draw\s+(\d+)`)
)

type keyword struct {
	words  []string
	status string
	target Target
}

// keywords are scanned in order; the first keyword naming a status wins its
// target and later hits for the same status are ignored.
var keywords = []keyword{
	{words: []string{"shield", "protect"}, status: status.Shielded, target: TargetSelf},
	{words: []string{"enrage", "fury"}, status: status.Enraged, target: TargetSelf},
	{words: []string{"fortify", "bolster"}, status: status.Fortified, target: TargetSelf},
	{words: []string{"inspire"}, status: status.Inspired, target: TargetSelf},
	{words: []string{"regenerate", "regen"}, status: status.Regenerating, target: TargetSelf},
	{words: []string{"stun"}, status: status.Stunned, target: TargetEnemy},
	{words: []string{"poison"}, status: status.Poisoned, target: TargetEnemy},
	{words: []string{"burn", "ignite"}, status: status.Burning, target: TargetEnemy},
	{words: []string{"bleed"}, status: status.Bleeding, target: TargetEnemy},
	{words: []string{"weaken"}, status: status.Weakened, target: TargetEnemy},
}

var cureWords = []string{"cure", "cleanse", "purify"}

// CuredStatuses are removed from the owner by a cure effect.
var CuredStatuses = []string{status.Poisoned, status.Burning, status.Bleeding, status.Weakened, status.Stunned}

// Parse extracts every mechanical instruction from text. Patterns are
// independent: a single string may match several of them.
func Parse(text string) Parsed {
	var p Parsed
	if strings.TrimSpace(text) == "" {
		return p
	}

	p.Damage = firstInt(reDeal, text)
	if n := firstInt(reDrain, text); n > 0 {
		p.Damage += n
		p.HealHP += n
	}
	p.HealHP += firstInt(reHeal, text)
	p.HealHP += firstInt(reRestoreHP, text)
	p.RestoreEnergy = firstInt(reRestoreEnergy, text)
	p.RestoreMorale = firstInt(reRestoreMorale, text)
	p.Draw = firstInt(reDraw, text)

	lower := strings.ToLower(text)
	seen := make(map[string]bool, 2)
	for _, kw := range keywords {
		if seen[kw.status] || !containsAny(lower, kw.words) {
			continue
		}
		seen[kw.status] = true
		p.Statuses = append(p.Statuses, StatusRef{StatusID: kw.status, Target: kw.target})
	}
	p.Cure = containsAny(lower, cureWords)
	return p
}

// IsParseable reports whether text carries at least one mechanical effect.
func IsParseable(text string) bool {
	return !Parse(text).Empty()
}

func firstInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
