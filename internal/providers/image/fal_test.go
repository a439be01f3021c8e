package image

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestGenerateDownloadsFirstImage(t *testing.T) {
	var captured falRequest
	client, err := NewFalClient(Options{
		APIKey:  "dummy",
		BaseURL: "https://fal.test",
		Model:   "fal-ai/nano-banana",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			switch {
			case r.Method == http.MethodPost:
				if got := r.Header.Get("Authorization"); got != "Key dummy" {
					t.Errorf("Authorization = %q", got)
				}
				if got := r.URL.String(); got != "https://fal.test/fal-ai/nano-banana" {
					t.Errorf("url = %q", got)
				}
				body, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(body, &captured); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				return response(http.StatusOK, `{"images":[{"url":"https://cdn.fal.test/img.png"},{"url":"https://cdn.fal.test/other.png"}]}`), nil
			default:
				if got := r.URL.String(); got != "https://cdn.fal.test/img.png" {
					t.Errorf("download url = %q", got)
				}
				return response(http.StatusOK, "png-bytes"), nil
			}
		})},
	})
	if err != nil {
		t.Fatalf("NewFalClient: %v", err)
	}

	img, err := client.Generate(context.Background(), Request{Prompt: "a pulley system", Style: domain.StylePencil})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(img) != "png-bytes" {
		t.Fatalf("image = %q", img)
	}
	if !strings.HasPrefix(captured.Prompt, "a pulley system, detailed graphite pencil sketch") {
		t.Errorf("prompt = %q", captured.Prompt)
	}
	if !strings.Contains(captured.NegativePrompt, "color, ink") {
		t.Errorf("negative_prompt = %q", captured.NegativePrompt)
	}
	if captured.AspectRatio != "16:9" {
		t.Errorf("aspect_ratio = %q", captured.AspectRatio)
	}
	if captured.NumInferenceSteps != 8 {
		t.Errorf("num_inference_steps = %d", captured.NumInferenceSteps)
	}
}

func TestGenerateUnknownStyleFallsBackToNormal(t *testing.T) {
	var captured falRequest
	client, err := NewFalClient(Options{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method == http.MethodPost {
				body, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(body, &captured)
				return response(http.StatusOK, `{"images":[{"url":"https://cdn.fal.test/img.png"}]}`), nil
			}
			return response(http.StatusOK, "png"), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewFalClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), Request{Prompt: "x", Style: domain.Style("watercolor")}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(captured.Prompt, "flat vector graphics") {
		t.Errorf("prompt = %q, want normal treatment", captured.Prompt)
	}
}

func TestGenerateNonRetryableStatus(t *testing.T) {
	attempts := 0
	client, err := NewFalClient(Options{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempts++
			return response(http.StatusUnprocessableEntity, `{"detail":"bad prompt"}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewFalClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestGenerateEmptyImageList(t *testing.T) {
	client, err := NewFalClient(Options{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return response(http.StatusOK, `{"images":[]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewFalClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error")
	}
}
