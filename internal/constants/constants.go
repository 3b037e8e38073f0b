package constants

import "time"

// Centralized constants for headers, env keys and OpenAI integration.
const (
	// Environment variable keys
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvConfigPath     = "CARDDUEL_CONFIG"
	EnvDBPath         = "CARDDUEL_DB"
	EnvAIModel        = "CARDDUEL_AI_MODEL"
	EnvAITimeout      = "CARDDUEL_AI_TIMEOUT"
	EnvIdleTTL        = "CARDDUEL_IDLE_TTL"
	EnvOpenAIBaseURL  = "CARDDUEL_OPENAI_BASE_URL"
	DefaultConfigPath = "./cardduel_config.json"
	DefaultDBPath     = "./data/cardduel.db"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	ContentTypeJSON     = "application/json"

	// Authorization prefix
	BearerPrefix = "Bearer "

	// OpenAI API endpoints and base URL
	OpenAIBaseURL             = "https://api.openai.com"
	OpenAIChatCompletionsPath = "/v1/chat/completions"

	// OpenAI model names and typical parameters
	OpenAIChatModel         = "gpt-5-nano"
	OpenAIMaxCompletionToks = 3100
)

// Engine pacing and limits. Delays only pace the UI; any value >= 0 is correct.
const (
	DefaultPlacementDelay = 400 * time.Millisecond
	DefaultAIThinkDelay   = 800 * time.Millisecond
	DefaultAITimeout      = 30 * time.Second
	DefaultIdleTTL        = 30 * time.Minute
	DefaultAPPerRound     = 3
	DefaultHandSize       = 5
	DefaultBarSize        = 3
	DefaultThreatBonusAP  = 2
)

// Routes used by the backend router
const (
	RouteAPIPrefix     = "/api"
	RouteVersion       = "/version"
	RouteCardsParse    = "/cards/parse"
	RouteDuels         = "/duels"
	RouteDuelByCode    = "/duels/:code"
	RouteDuelEquip     = "/duels/:code/equip"
	RouteDuelEquipDone = "/duels/:code/equip/done"
	RouteDuelPlace     = "/duels/:code/place"
	RouteDuelPass      = "/duels/:code/pass"
	RouteThreatDefend  = "/duels/:code/threat/defend"
	RouteThreatSkip    = "/duels/:code/threat/skip"
	RouteDuelEvents    = "/duels/:code/events"
	RouteDuelDecisions = "/duels/:code/ai-decisions"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyDetails = "details"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest     = "Invalid request"
	ErrInvalidDuelCode    = "Invalid duel code"
	ErrDuelNotFound       = "Duel not found"
	ErrFailedCreateDuel   = "Failed to create duel"
	ErrFailedFetchDuels   = "Failed to fetch duels"
	ErrFailedEncodeDuel   = "Failed to encode duel"
	ErrDuelFinished       = "Duel is finished"
	ErrActionRejected     = "Action rejected"
	ErrWebsocketUpgrade   = "Failed to open event stream"
	ErrUnknownCharacter   = "Unknown character card"
	ErrFailedStoreAction  = "Failed to store action"
	ErrEffectTextRequired = "text is required"
)

// Logging field names
const (
	LogFieldDuel     = "duel"
	LogFieldRound    = "round"
	LogFieldPhase    = "phase"
	LogFieldSide     = "side"
	LogFieldEpoch    = "epoch"
	LogFieldRequest  = "request_id"
	LogFieldSource   = "source"
	LogFieldName     = "name"
	LogFieldKey      = "key"
	LogFieldAddr     = "addr"
	LogFieldEffectID = "effect_id"
	LogFieldAttempt  = "attempt"
)
