// Package ai places cards for the computer opponent. A Director asks a chat
// model for a placement plan and falls back to a deterministic heuristic
// whenever the model is unavailable or answers with something unusable.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/dedupe"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/openaiclient"
	"github.com/google/uuid"
)

// ChatClient is the generic request/response client the director wraps.
// *openaiclient.Client satisfies it.
type ChatClient interface {
	Complete(ctx context.Context, msgs []openaiclient.Message) (string, error)
}

// State of a director.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitialized   State = "initialized"
	StateRequesting    State = "requesting"
	StateIdle          State = "idle"
)

// Personality shapes the system prompt.
type Personality string

const (
	PersonalityAggressive Personality = "aggressive"
	PersonalityTactical   Personality = "tactical"
	PersonalityBalanced   Personality = "balanced"
)

// ErrNoStacks means the reply had no usable JSON object with a stacks array.
var ErrNoStacks = errors.New("reply has no stacks array")

// NoticeFallback is shown on the first failed model call of a streak.
const NoticeFallback = "The opponent's strategist is unavailable; it is playing on instinct."

const defaultSystemPrompt = "You are {{name}}, a {{personality}} card duelist ({{alignment}}). " +
	"Each turn you receive a JSON description of your hand, resources and free bar positions. " +
	"Reply with a JSON object {\"stacks\":[{\"position\":int,\"coreCard\":string,\"modifiers\":[string]}],\"strategy\":string}. " +
	"Only use cards from your hand, never exceed your AP or energy."

const strictRetryPrompt = "Your previous reply could not be parsed. Reply with ONLY one JSON object of the form " +
	"{\"stacks\":[{\"position\":0,\"coreCard\":\"Card Name\",\"modifiers\":[]}],\"strategy\":\"short text\"} and nothing else."

// Director is one opponent's decision maker. Methods are safe for
// concurrent use.
type Director struct {
	client ChatClient
	key    string

	mu           sync.Mutex
	state        State
	name         string
	personality  Personality
	systemPrompt string
}

// NewDirector wraps client. key scopes request deduplication (usually the
// duel code). A nil client makes every request use the fallback.
func NewDirector(client ChatClient, key string) *Director {
	return &Director{client: client, key: key, state: StateUninitialized}
}

// State returns the current state.
func (d *Director) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Personality returns the derived personality.
func (d *Director) Personality() Personality {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.personality
}

// SystemPrompt returns the prompt built by Initialize.
func (d *Director) SystemPrompt() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.systemPrompt
}

// PersonalityFor maps alignment text to a personality.
func PersonalityFor(alignment string) Personality {
	a := strings.ToLower(alignment)
	switch {
	case strings.Contains(a, "chaotic"), strings.Contains(a, "evil"):
		return PersonalityAggressive
	case strings.Contains(a, "lawful"):
		return PersonalityTactical
	}
	return PersonalityBalanced
}

// Initialize derives the personality and builds the system prompt from
// template, using the built-in prompt when template is empty.
func (d *Director) Initialize(name, alignment, template string) {
	p := PersonalityFor(alignment)
	prompt := strings.TrimSpace(template)
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	if alignment == "" {
		alignment = "unaligned"
	}
	prompt = strings.NewReplacer(
		"{{name}}", name,
		"{{personality}}", string(p),
		"{{alignment}}", alignment,
	).Replace(prompt)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
	d.personality = p
	d.systemPrompt = prompt
	d.state = StateInitialized
}

// RequestPlacement returns a placement plan for req. It never fails: any
// problem yields the fallback plan with Failed set. Concurrent calls for the
// same epoch share one model request.
func (d *Director) RequestPlacement(ctx context.Context, epoch uint64, req PlacementRequest) Decision {
	d.mu.Lock()
	if d.state == StateUninitialized || d.client == nil {
		d.mu.Unlock()
		dec := PlanFallback(req)
		dec.Epoch = epoch
		return dec
	}
	d.state = StateRequesting
	prompt := d.systemPrompt
	d.mu.Unlock()

	v, _, err := dedupe.Do(ctx, &dedupe.PlacementGroup, dedupe.PlacementKey(d.key, epoch), func() (interface{}, error) {
		return d.ask(ctx, epoch, prompt, req)
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = StateIdle

	var dec Decision
	if err == nil {
		dec, _ = v.(Decision)
		dec.Epoch = epoch
		return dec
	}
	dec = PlanFallback(req)
	dec.Epoch = epoch
	dec.Failed = true
	logging.Error("ai placement fell back", err, logging.Fields{
		constants.LogFieldDuel:  d.key,
		constants.LogFieldEpoch: epoch,
	})
	return dec
}

// ask performs the model call with one stricter retry on a parse failure.
// Transport errors are returned immediately.
func (d *Director) ask(ctx context.Context, epoch uint64, systemPrompt string, req PlacementRequest) (Decision, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Decision{}, fmt.Errorf("encode placement request: %w", err)
	}
	requestID := uuid.New().String()
	msgs := []openaiclient.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: string(payload)},
	}

	for attempt := 1; attempt <= 2; attempt++ {
		fields := logging.Fields{
			constants.LogFieldDuel:    d.key,
			constants.LogFieldEpoch:   epoch,
			constants.LogFieldRequest: requestID,
			constants.LogFieldAttempt: attempt,
		}
		reply, err := d.client.Complete(ctx, msgs)
		if err != nil {
			logging.Error("ai placement request failed", err, fields)
			return Decision{}, err
		}
		dec, perr := ParseDecision(reply)
		if perr == nil {
			dec.Source = SourceModel
			dec.RequestID = requestID
			logging.Info("ai placement received", fields)
			return dec, nil
		}
		logging.Warn("ai placement unparseable", fields)
		if attempt == 2 {
			return Decision{}, perr
		}
		msgs = append(msgs,
			openaiclient.Message{Role: "assistant", Content: reply},
			openaiclient.Message{Role: "user", Content: strictRetryPrompt},
		)
	}
	return Decision{}, ErrNoStacks
}

// ParseDecision extracts the first-to-last brace substring of reply and
// decodes it. A missing or null stacks field is an error.
func ParseDecision(reply string) (Decision, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return Decision{}, ErrNoStacks
	}
	var raw struct {
		Stacks   *[]StackPlan `json:"stacks"`
		Strategy string       `json:"strategy"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrNoStacks, err)
	}
	if raw.Stacks == nil {
		return Decision{}, ErrNoStacks
	}
	return Decision{Stacks: *raw.Stacks, Strategy: raw.Strategy}, nil
}
