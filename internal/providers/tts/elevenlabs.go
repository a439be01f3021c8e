package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"

	// englishModel is the fast English-only model; non-English narration
	// switches to the multilingual model for pronunciation quality.
	englishModel      = "eleven_turbo_v2"
	multilingualModel = "eleven_multilingual_v2"

	maxAttempts  = 3
	retryBackoff = 2 * time.Second

	// Voice ids are long opaque strings; anything longer than this is
	// treated as an id rather than a display name.
	voiceIDMinLen = 16
)

// SpeechRequest describes one narration clip.
type SpeechRequest struct {
	Text     string
	VoiceID  string
	Language string // ISO 639-1; empty means English
}

// Synthesizer turns a script into an encoded audio clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// VoiceLister exposes the account's available narration voices.
type VoiceLister interface {
	Voices(ctx context.Context) (map[string]string, error)
}

// Options controls how the ElevenLabs client is configured.
type Options struct {
	APIKey         string
	BaseURL        string
	DefaultVoiceID string
	HTTPClient     *http.Client
	Logger         *infra.Logger
}

// Client is a thin facade over the ElevenLabs TTS and voices APIs. The voice
// catalog is fetched once and cached for the process lifetime.
type Client struct {
	apiKey         string
	baseURL        string
	defaultVoiceID string
	httpClient     *http.Client
	logger         *infra.Logger

	mu     sync.Mutex
	voices map[string]string
}

type speechPayload struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
	LanguageCode  string        `json:"language_code,omitempty"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type voicesResponse struct {
	Voices []struct {
		Name    string `json:"name"`
		VoiceID string `json:"voice_id"`
	} `json:"voices"`
}

// NewClient constructs an ElevenLabs client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("tts: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:         opts.APIKey,
		baseURL:        baseURL,
		defaultVoiceID: opts.DefaultVoiceID,
		httpClient:     httpClient,
		logger:         opts.Logger,
	}, nil
}

// DefaultVoiceID returns the provider default narration voice.
func (c *Client) DefaultVoiceID() string { return c.defaultVoiceID }

// Synthesize renders the text with the given voice and returns mp3 bytes.
func (c *Client) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("tts: text is required")
	}
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = c.defaultVoiceID
	}
	if voiceID == "" {
		return nil, errors.New("tts: no voice available")
	}

	model := englishModel
	if !domain.IsEnglish(req.Language) {
		model = multilingualModel
	}
	payload := speechPayload{
		Text:          req.Text,
		ModelID:       model,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	}
	if req.Language != "" {
		payload.LanguageCode = req.Language
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tts: encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
		audio, retryable, err := c.synthesize(ctx, voiceID, body)
		if err == nil {
			return audio, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if c.logger != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("tts: transient synthesis failure")
		}
	}
	return nil, fmt.Errorf("tts: synthesis failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) synthesize(ctx context.Context, voiceID string, body []byte) (audio []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech/"+voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("tts: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, true, fmt.Errorf("tts: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("tts: status %d: %s", resp.StatusCode, truncate(data, 256))
	}
	if len(data) == 0 {
		return nil, false, errors.New("tts: empty audio response")
	}
	return data, false, nil
}

// Voices returns displayName -> voiceID for the account, cached after the
// first successful fetch.
func (c *Client) Voices(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voices != nil {
		return c.voices, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("tts: build voices request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: voices request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("tts: read voices response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts: voices status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed voicesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("tts: decode voices response: %w", err)
	}
	voices := make(map[string]string, len(parsed.Voices))
	for _, v := range parsed.Voices {
		if v.Name != "" && v.VoiceID != "" {
			voices[v.Name] = v.VoiceID
		}
	}
	c.voices = voices
	return voices, nil
}

// ResolveVoice maps a display name onto a voice id. Long opaque strings pass
// through unchanged; names are matched case-insensitively with a substring
// fallback, and an unknown name falls back to the provider default.
func (c *Client) ResolveVoice(ctx context.Context, nameOrID string) (string, error) {
	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		return c.defaultVoiceID, nil
	}
	if len(nameOrID) >= voiceIDMinLen {
		return nameOrID, nil
	}
	voices, err := c.Voices(ctx)
	if err != nil {
		return "", err
	}
	lower := strings.ToLower(nameOrID)
	for name, id := range voices {
		if strings.ToLower(name) == lower {
			return id, nil
		}
	}
	for name, id := range voices {
		if strings.Contains(strings.ToLower(name), lower) {
			return id, nil
		}
	}
	if c.logger != nil {
		c.logger.Warn().Str("voice", nameOrID).Msg("tts: voice not found, using default")
	}
	return c.defaultVoiceID, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
