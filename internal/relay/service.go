package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/engaged-dev/engaged/internal/config"
)

var (
	// ErrNotConfigured means the upstream endpoint is missing from config
	ErrNotConfigured = errors.New("relay endpoint not configured")
	// ErrNoToken means the Direct Line endpoint answered without a token
	ErrNoToken = errors.New("no token received from Direct Line endpoint")
	// ErrUpstream wraps transport and status failures from the upstream
	ErrUpstream = errors.New("upstream request failed")
)

const requestTimeout = 10 * time.Second

// BotToken is the Direct Line token response forwarded to the chat widget
type BotToken struct {
	Token          string         `json:"token"`
	ConversationID string         `json:"conversationId,omitempty"`
	Meta           map[string]any `json:"meta"`
	ExpiresIn      int            `json:"expires_in"`
}

// Service forwards requests to the conversational-bot token endpoint
// and the workflow-automation flow URL. Both upstreams are external
// collaborators; this service only shapes payloads and relays.
type Service struct {
	client *http.Client
	cfg    *config.Config
	logger zerolog.Logger
}

// NewService creates a relay service with a timeout-bound HTTP client
func NewService(cfg *config.Config, logger zerolog.Logger) *Service {
	return &Service{
		client: &http.Client{Timeout: requestTimeout},
		cfg:    cfg,
		logger: logger,
	}
}

// BotToken fetches a fresh Direct Line token from the configured endpoint
func (s *Service) BotToken(ctx context.Context) (*BotToken, error) {
	endpoint := s.cfg.Relay.DirectLineTokenEndpoint
	if endpoint == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// The Direct Line demo endpoint rejects default Go user agents
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var token BotToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if token.Token == "" {
		return nil, ErrNoToken
	}

	if token.ExpiresIn == 0 {
		token.ExpiresIn = 3600
	}
	// Room for data the bot should see; intentionally empty for now
	token.Meta = map[string]any{}

	return &token, nil
}

// TriggerWorkflow posts the payload to the configured Power Automate
// flow URL with the fixed participant summary attached, and returns the
// flow's response body
func (s *Service) TriggerWorkflow(ctx context.Context, payload map[string]any) (any, error) {
	flowURL := s.cfg.Relay.PowerAutomateFlowURL
	if flowURL == "" {
		return nil, ErrNotConfigured
	}

	if payload == nil {
		payload = map[string]any{}
	}
	payload["participantSummary"] = map[string]string{
		"level": "Beginner",
		"goal":  "Weight loss",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, flowURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		// Flows may answer with non-JSON bodies; pass them through as-is
		return string(raw), nil
	}
	return data, nil
}
