package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ericogr/cardduel/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "card_list": [
    {"name": "Knight", "type": "character", "hp": 20, "energy": 10, "morale": 5, "alignment": "lawful good", "stats": {"str": 3, "end": 2}},
    {"name": "Sword", "type": "item", "slot": "handR", "atk": 3, "max_durability": 5},
    {"name": "Attack", "type": "action", "energy_cost": 1},
    {"name": "Power Strike", "type": "skill", "atk": 2, "energy_cost": 2},
    {"name": "Goblin Ambush", "type": "encounter", "atk": 4}
  ],
  "decks": [{"name": "starter", "cards": ["Sword", "Attack", "Attack", "Power Strike"]}],
  "rewards": ["Sword"],
  "threats": ["Goblin Ambush"],
  "rules": {"ap_per_round": 4, "placement_delay_ms": 0},
  "ai_prompt": "  You are {{name}}.  "
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfig_JSON(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "cfg.json", sampleJSON))
	require.NoError(t, err)

	assert.Len(t, cfg.Cards, 5)
	assert.Equal(t, "starter", cfg.DefaultDeck)
	deck, ok := cfg.Deck("")
	require.True(t, ok)
	assert.Len(t, deck, 4)

	assert.Equal(t, 4, cfg.Rules.APPerRound)
	assert.Equal(t, time.Duration(0), cfg.Rules.PlacementDelay)
	assert.Equal(t, DefaultRules().AIThinkDelay, cfg.Rules.AIThinkDelay)
	assert.Equal(t, DefaultRules().HandSize, cfg.Rules.HandSize)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "You are {{name}}.", cfg.AIPromptTemplate)

	chars := cfg.Characters()
	require.Len(t, chars, 1)
	assert.Equal(t, "Knight", chars[0].Name)
}

func TestLoadedConfig_CardReturnsFreshCopy(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "cfg.json", sampleJSON))
	require.NoError(t, err)

	a, ok := cfg.Card("  sword ")
	require.True(t, ok)
	b, _ := cfg.Card("Sword")
	assert.NotSame(t, a, b)
	assert.Equal(t, 5, a.Durability)
	a.Durability = 1
	assert.Equal(t, 5, b.Durability)

	_, ok = cfg.Card("Axe")
	assert.False(t, ok)
}

func TestLoadConfig_YAML(t *testing.T) {
	body := `
card_list:
  - name: Rogue
    type: character
    hp: 15
    alignment: chaotic neutral
  - name: Dagger
    type: item
    atk: 2
    slot: handL
server:
  address: ":9090"
status_effects:
  - id: frozen
    name: Frozen
    duration: 1
    blocks_actions: true
`
	cfg, err := LoadConfig(writeFile(t, "cfg.yaml", body))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, game.CardItem, cfg.Cards[1].Type)
	require.Len(t, cfg.StatusOverrides, 1)
	assert.True(t, cfg.StatusOverrides[0].BlocksActions)
	assert.Empty(t, cfg.DefaultDeck)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty", `{"card_list": []}`, "card_list is empty"},
		{"no name", `{"card_list": [{"type": "character"}]}`, "missing 'name'"},
		{"no type", `{"card_list": [{"name": "X"}]}`, "missing 'type'"},
		{"duplicate", `{"card_list": [{"name": "X", "type": "character"}, {"name": "x", "type": "item"}]}`, "duplicate card name"},
		{"no character", `{"card_list": [{"name": "X", "type": "item"}]}`, "no character cards"},
		{"unknown deck card", `{"card_list": [{"name": "K", "type": "character"}], "decks": [{"name": "d", "cards": ["Y"]}]}`, "unknown card 'Y'"},
		{"character in deck", `{"card_list": [{"name": "K", "type": "character"}], "decks": [{"name": "d", "cards": ["K"]}]}`, "contains character card"},
		{"missing default deck", `{"card_list": [{"name": "K", "type": "character"}], "default_deck": "nope"}`, "default_deck 'nope'"},
		{"unknown reward", `{"card_list": [{"name": "K", "type": "character"}], "rewards": ["Gem"]}`, "rewards references unknown card"},
		{"threat not encounter", `{"card_list": [{"name": "K", "type": "character"}, {"name": "S", "type": "item"}], "threats": ["S"]}`, "must be an encounter card"},
		{"status without id", `{"card_list": [{"name": "K", "type": "character"}], "status_effects": [{"name": "Frozen"}]}`, "missing 'id'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "cfg.json", tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadConfig_ReadAndParseErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = LoadConfig(writeFile(t, "bad.json", "{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestParseEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CARDDUEL_AI_TIMEOUT", "5s")
	t.Setenv("CARDDUEL_CONFIG", "/tmp/duel.yaml")

	e, err := ParseEnv()
	require.NoError(t, err)
	assert.True(t, e.AIEnabled())
	assert.Equal(t, 5*time.Second, e.AITimeout)
	assert.Equal(t, 30*time.Minute, e.IdleTTL)
	assert.Equal(t, "/tmp/duel.yaml", e.ConfigPath)
	assert.Equal(t, "./data/cardduel.db", e.DBPath)
}

func TestParseEnv_BadDuration(t *testing.T) {
	t.Setenv("CARDDUEL_IDLE_TTL", "forever")
	_, err := ParseEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestLoadConfig_SampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "cardduel_config.json"))
	require.NoError(t, err)
	assert.Len(t, cfg.Characters(), 3)
	assert.Equal(t, "vanguard", cfg.DefaultDeck)
	for name := range cfg.Decks {
		cards, ok := cfg.Deck(name)
		require.True(t, ok)
		assert.NotEmpty(t, cards, name)
	}
	assert.Contains(t, cfg.AIPromptTemplate, "{{personality}}")
}
