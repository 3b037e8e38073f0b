package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/game"
	"github.com/ericogr/cardduel/internal/status"
	"gopkg.in/yaml.v3"
)

type deckEntry struct {
	Name  string   `json:"name" yaml:"name"`
	Cards []string `json:"cards" yaml:"cards"`
}

type rulesEntry struct {
	APPerRound       int  `json:"ap_per_round" yaml:"ap_per_round"`
	HandSize         int  `json:"hand_size" yaml:"hand_size"`
	BarSize          int  `json:"bar_size" yaml:"bar_size"`
	ThreatBonusAP    int  `json:"threat_bonus_ap" yaml:"threat_bonus_ap"`
	PlacementDelayMS *int `json:"placement_delay_ms" yaml:"placement_delay_ms"`
	AIThinkDelayMS   *int `json:"ai_think_delay_ms" yaml:"ai_think_delay_ms"`
}

type rawConfig struct {
	CardList      []game.Card         `json:"card_list" yaml:"card_list"`
	Decks         []deckEntry         `json:"decks" yaml:"decks"`
	DefaultDeck   string              `json:"default_deck" yaml:"default_deck"`
	Rewards       []string            `json:"rewards" yaml:"rewards"`
	Threats       []string            `json:"threats" yaml:"threats"`
	StatusEffects []status.Definition `json:"status_effects" yaml:"status_effects"`
	Rules         *rulesEntry         `json:"rules" yaml:"rules"`
	Server        *struct {
		Address string `json:"address" yaml:"address"`
	} `json:"server" yaml:"server"`
	// Optional system prompt for the AI opponent. Tokens {{name}},
	// {{personality}} and {{alignment}} are substituted.
	AIPrompt string `json:"ai_prompt" yaml:"ai_prompt"`
}

// Rules are the per-duel numeric settings.
type Rules struct {
	APPerRound     int
	HandSize       int
	BarSize        int
	ThreatBonusAP  int
	PlacementDelay time.Duration
	AIThinkDelay   time.Duration
}

// DefaultRules returns the built-in rules.
func DefaultRules() Rules {
	return Rules{
		APPerRound:     constants.DefaultAPPerRound,
		HandSize:       constants.DefaultHandSize,
		BarSize:        constants.DefaultBarSize,
		ThreatBonusAP:  constants.DefaultThreatBonusAP,
		PlacementDelay: constants.DefaultPlacementDelay,
		AIThinkDelay:   constants.DefaultAIThinkDelay,
	}
}

// LoadedConfig is the validated game configuration.
type LoadedConfig struct {
	Cards            []game.Card
	Decks            map[string][]string
	DefaultDeck      string
	Rewards          []string
	Threats          []string
	StatusOverrides  []status.Definition
	Rules            Rules
	ServerAddress    string
	AIPromptTemplate string

	byName map[string]int
}

// Card returns a fresh copy of the named card.
func (c *LoadedConfig) Card(name string) (*game.Card, bool) {
	i, ok := c.byName[normalize(name)]
	if !ok {
		return nil, false
	}
	return c.Cards[i].Clone(), true
}

// Characters lists the character cards in file order.
func (c *LoadedConfig) Characters() []game.Card {
	out := make([]game.Card, 0, 4)
	for _, card := range c.Cards {
		if card.Type == game.CardCharacter {
			out = append(out, card)
		}
	}
	return out
}

// Deck returns the card list of a named deck, or the default deck when name
// is empty.
func (c *LoadedConfig) Deck(name string) ([]string, bool) {
	if name == "" {
		name = c.DefaultDeck
	}
	d, ok := c.Decks[name]
	return d, ok
}

// LoadConfig reads the configuration file at path. Files ending in .yaml or
// .yml are parsed as YAML, anything else as JSON. It requires a non-empty
// `card_list`.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &rc)
	default:
		err = json.Unmarshal(b, &rc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg, err := build(rc)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func build(rc rawConfig) (*LoadedConfig, error) {
	if len(rc.CardList) == 0 {
		return nil, fmt.Errorf("card_list is empty (provide 'card_list' array)")
	}

	// Cross-entry validation: unique card names (case-insensitive), decks,
	// rewards and threats referencing known cards.
	byName := make(map[string]int, len(rc.CardList))
	characters := 0
	for i, c := range rc.CardList {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("card entry %d missing 'name'", i)
		}
		if c.Type == "" {
			return nil, fmt.Errorf("card '%s' missing 'type'", c.Name)
		}
		key := normalize(c.Name)
		if _, exists := byName[key]; exists {
			return nil, fmt.Errorf("duplicate card name '%s'", c.Name)
		}
		byName[key] = i
		if c.Type == game.CardCharacter {
			characters++
		}
	}
	if characters == 0 {
		return nil, fmt.Errorf("card_list has no character cards")
	}

	decks := make(map[string][]string, len(rc.Decks))
	for _, d := range rc.Decks {
		if d.Name == "" {
			return nil, fmt.Errorf("deck entry missing 'name'")
		}
		if _, dup := decks[d.Name]; dup {
			return nil, fmt.Errorf("duplicate deck '%s'", d.Name)
		}
		for _, n := range d.Cards {
			i, ok := byName[normalize(n)]
			if !ok {
				return nil, fmt.Errorf("deck '%s' references unknown card '%s'", d.Name, n)
			}
			if rc.CardList[i].Type == game.CardCharacter {
				return nil, fmt.Errorf("deck '%s' contains character card '%s'", d.Name, n)
			}
		}
		decks[d.Name] = d.Cards
	}
	defaultDeck := rc.DefaultDeck
	if defaultDeck == "" && len(rc.Decks) > 0 {
		defaultDeck = rc.Decks[0].Name
	}
	if defaultDeck != "" {
		if _, ok := decks[defaultDeck]; !ok {
			return nil, fmt.Errorf("default_deck '%s' is not defined", defaultDeck)
		}
	}

	for _, n := range rc.Rewards {
		if _, ok := byName[normalize(n)]; !ok {
			return nil, fmt.Errorf("rewards references unknown card '%s'", n)
		}
	}
	for _, n := range rc.Threats {
		i, ok := byName[normalize(n)]
		if !ok {
			return nil, fmt.Errorf("threats references unknown card '%s'", n)
		}
		if rc.CardList[i].Type != game.CardEncounter {
			return nil, fmt.Errorf("threat '%s' must be an encounter card", n)
		}
	}
	for _, d := range rc.StatusEffects {
		if strings.TrimSpace(d.ID) == "" {
			return nil, fmt.Errorf("status effect entry missing 'id'")
		}
	}

	rules := DefaultRules()
	if r := rc.Rules; r != nil {
		if r.APPerRound > 0 {
			rules.APPerRound = r.APPerRound
		}
		if r.HandSize > 0 {
			rules.HandSize = r.HandSize
		}
		if r.BarSize > 0 {
			rules.BarSize = r.BarSize
		}
		if r.ThreatBonusAP > 0 {
			rules.ThreatBonusAP = r.ThreatBonusAP
		}
		if r.PlacementDelayMS != nil && *r.PlacementDelayMS >= 0 {
			rules.PlacementDelay = time.Duration(*r.PlacementDelayMS) * time.Millisecond
		}
		if r.AIThinkDelayMS != nil && *r.AIThinkDelayMS >= 0 {
			rules.AIThinkDelay = time.Duration(*r.AIThinkDelayMS) * time.Millisecond
		}
	}

	addr := ":8080"
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}

	return &LoadedConfig{
		Cards:            rc.CardList,
		Decks:            decks,
		DefaultDeck:      defaultDeck,
		Rewards:          rc.Rewards,
		Threats:          rc.Threats,
		StatusOverrides:  rc.StatusEffects,
		Rules:            rules,
		ServerAddress:    addr,
		AIPromptTemplate: strings.TrimSpace(rc.AIPrompt),
		byName:           byName,
	}, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
