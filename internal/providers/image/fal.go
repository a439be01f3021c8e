package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
)

const (
	defaultBaseURL = "https://fal.run"
	defaultModel   = "fal-ai/nano-banana"

	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

// Request describes one image to generate. The prompt is the raw scene
// prompt; the style suffix and negative prompt are applied here so every
// caller gets the same treatment for a given style.
type Request struct {
	Prompt string
	Style  domain.Style
}

// Generator produces one still image per request.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Options controls how the fal.ai client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// FalClient generates images through fal.ai's queue-less run endpoint.
type FalClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type falRequest struct {
	Prompt              string `json:"prompt"`
	NegativePrompt      string `json:"negative_prompt,omitempty"`
	AspectRatio         string `json:"aspect_ratio"`
	NumInferenceSteps   int    `json:"num_inference_steps"`
	EnableSafetyChecker bool   `json:"enable_safety_checker"`
}

type falResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// NewFalClient constructs a fal.ai image generator.
func NewFalClient(opts Options) (*FalClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("image: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	return &FalClient{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

// Generate requests a 16:9 still for the prompt and downloads the result.
func (c *FalClient) Generate(ctx context.Context, req Request) ([]byte, error) {
	treatment := treatmentFor(req.Style)
	payload, err := json.Marshal(falRequest{
		Prompt:            req.Prompt + treatment.suffix,
		NegativePrompt:    treatment.negative,
		AspectRatio:       "16:9",
		NumInferenceSteps: 8,
	})
	if err != nil {
		return nil, fmt.Errorf("image: encode request: %w", err)
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
		data, retryable, err := c.generate(ctx, payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if c.logger != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("image: transient generation failure")
		}
	}
	return nil, fmt.Errorf("image: generation failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *FalClient) generate(ctx context.Context, payload []byte) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.model, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("image: build request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("image: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, true, fmt.Errorf("image: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("image: status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed falResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, fmt.Errorf("image: decode response: %w", err)
	}
	if len(parsed.Images) == 0 || parsed.Images[0].URL == "" {
		return nil, false, errors.New("image: response carries no image")
	}

	img, err := c.download(ctx, parsed.Images[0].URL)
	if err != nil {
		return nil, true, err
	}
	return img, false, nil
}

func (c *FalClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("image: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image: download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("image: read download: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image: empty download")
	}
	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
