package tts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
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

func newTestClient(t *testing.T, transport roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:         "dummy",
		BaseURL:        "https://eleven.test",
		DefaultVoiceID: "21m00Tcm4TlvDq8ikWAM",
		HTTPClient:     &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestSynthesizeEnglishUsesTurboModel(t *testing.T) {
	var captured speechPayload
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("xi-api-key"); got != "dummy" {
			t.Errorf("xi-api-key = %q", got)
		}
		if !strings.HasSuffix(r.URL.Path, "/text-to-speech/voice-123-4567890abc") {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return response(http.StatusOK, "mp3-bytes"), nil
	})

	audio, err := client.Synthesize(context.Background(), SpeechRequest{
		Text:    "Gravity pulls things down.",
		VoiceID: "voice-123-4567890abc",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("audio = %q", audio)
	}
	if captured.ModelID != "eleven_turbo_v2" {
		t.Errorf("model_id = %q", captured.ModelID)
	}
	if captured.LanguageCode != "" {
		t.Errorf("language_code = %q, want empty", captured.LanguageCode)
	}
	if captured.VoiceSettings.Stability != 0.5 || captured.VoiceSettings.SimilarityBoost != 0.75 {
		t.Errorf("voice_settings = %+v", captured.VoiceSettings)
	}
}

func TestSynthesizeNonEnglishUsesMultilingualModel(t *testing.T) {
	var captured speechPayload
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		return response(http.StatusOK, "mp3"), nil
	})

	if _, err := client.Synthesize(context.Background(), SpeechRequest{Text: "La gravedad", Language: "es"}); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if captured.ModelID != "eleven_multilingual_v2" {
		t.Errorf("model_id = %q", captured.ModelID)
	}
	if captured.LanguageCode != "es" {
		t.Errorf("language_code = %q", captured.LanguageCode)
	}
}

func TestSynthesizeEmptyTextRejected(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatal("unexpected request")
		return nil, nil
	})
	if _, err := client.Synthesize(context.Background(), SpeechRequest{Text: "  "}); err == nil {
		t.Fatal("expected error")
	}
}

func TestVoicesCachedAfterFirstFetch(t *testing.T) {
	fetches := 0
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		fetches++
		return response(http.StatusOK, `{"voices":[{"name":"Rachel","voice_id":"21m00Tcm4TlvDq8ikWAM"},{"name":"Homer Simpson","voice_id":"onwK4e9ZLuTAKqWW03F9"}]}`), nil
	})

	for i := 0; i < 3; i++ {
		voices, err := client.Voices(context.Background())
		if err != nil {
			t.Fatalf("Voices: %v", err)
		}
		if voices["Rachel"] != "21m00Tcm4TlvDq8ikWAM" {
			t.Fatalf("voices = %v", voices)
		}
	}
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1", fetches)
	}
}

func TestResolveVoice(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return response(http.StatusOK, `{"voices":[{"name":"Rachel","voice_id":"rachel-id-123456789"},{"name":"Homer Simpson","voice_id":"homer-id-1234567890"}]}`), nil
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty uses default", "", "21m00Tcm4TlvDq8ikWAM"},
		{"long strings pass through", "onwK4e9ZLuTAKqWW03F9", "onwK4e9ZLuTAKqWW03F9"},
		{"exact name", "rachel", "rachel-id-123456789"},
		{"substring match", "homer", "homer-id-1234567890"},
		{"unknown falls back", "marge", "21m00Tcm4TlvDq8ikWAM"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := client.ResolveVoice(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("ResolveVoice(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ResolveVoice(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
