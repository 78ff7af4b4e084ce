package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storyreel/internal/services"
)

const defaultHTTPTimeout = 300 * time.Second

// Config captures text-to-speech endpoint and voice settings.
type Config struct {
	APIKey          string
	BaseURL         string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	Style           float64
	SpeakerBoost    bool
	TimeoutSeconds  int
}

// Client talks to an ElevenLabs-compatible streaming synthesis endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a speech client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.VoiceID = strings.TrimSpace(cfg.VoiceID)
	cfg.ModelID = strings.TrimSpace(cfg.ModelID)
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// StatusError reports a non-OK synthesis response. It matches
// services.ErrUpstream under errors.Is.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speech request: http %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return services.ErrUpstream }

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Synthesize streams narration audio for text into w and returns the number
// of bytes written. The response body is copied as it arrives.
func (c *Client) Synthesize(ctx context.Context, text string, w io.Writer) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, services.Wrap(services.ErrValidation, "speech", "synthesize", "text required", nil)
	}
	if c.cfg.APIKey == "" {
		return 0, services.Wrap(services.ErrConfiguration, "speech", "synthesize", "api key required", nil)
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "v1", "text-to-speech", c.cfg.VoiceID, "stream")
	if err != nil {
		return 0, fmt.Errorf("speech request: build url: %w", err)
	}
	encoded, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       c.cfg.Stability,
			SimilarityBoost: c.cfg.SimilarityBoost,
			Style:           c.cfg.Style,
			UseSpeakerBoost: c.cfg.SpeakerBoost,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("speech request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return 0, fmt.Errorf("speech request: new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrUpstream, "speech", "synthesize", "http error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return 0, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, services.Wrap(services.ErrIO, "speech", "synthesize", "copy audio stream", err)
	}
	if written == 0 {
		return 0, services.Wrap(services.ErrUpstream, "speech", "synthesize", "empty audio stream", nil)
	}
	return written, nil
}

// HealthCheck reports whether the client has credentials and a voice.
func (c *Client) HealthCheck(context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("speech: api key required (set speech.api_key or ELEVENLABS_API_KEY)")
	}
	if c.cfg.VoiceID == "" {
		return errors.New("speech: voice id required")
	}
	return nil
}

// errorMessage extracts detail.message from JSON error bodies and falls back
// to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Detail struct {
			Message string `json:"message"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail.Message != "" {
		return payload.Detail.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "<empty>"
	}
	return msg
}
