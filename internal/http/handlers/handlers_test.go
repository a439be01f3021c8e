package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/progress"
)

type fakeVoices struct {
	voices map[string]string
	err    error
}

func (f *fakeVoices) Voices(ctx context.Context) (map[string]string, error) {
	return f.voices, f.err
}

type fakeVideos struct {
	videos []domain.Video
	err    error
}

func (f *fakeVideos) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Video, error) {
	return f.videos, f.err
}

type fakeHistory struct {
	entries []domain.History
}

func (f *fakeHistory) ListByOwner(ctx context.Context, ownerID int64) ([]domain.History, error) {
	return f.entries, nil
}

type fakeJobs struct {
	run func(ctx context.Context, req domain.GenerationRequest, fallback string, reporter *progress.Reporter) error
}

func (f *fakeJobs) Run(ctx context.Context, req domain.GenerationRequest, fallback string, reporter *progress.Reporter) error {
	return f.run(ctx, req, fallback, reporter)
}

func newApp() *App {
	return &App{
		Voices:  &fakeVoices{voices: map[string]string{"Rachel": "21m00Tcm4TlvDq8ikWAM"}},
		Videos:  &fakeVideos{},
		History: &fakeHistory{},
		Logger:  zerolog.Nop(),
	}
}

func TestListVoices(t *testing.T) {
	app := newApp()
	rec := httptest.NewRecorder()
	app.ListVoices(rec, httptest.NewRequest(http.MethodGet, "/voices", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Voices map[string]string `json:"voices"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Voices["Rachel"] != "21m00Tcm4TlvDq8ikWAM" {
		t.Fatalf("voices = %v", body.Voices)
	}
}

func TestListVoicesProviderFailure(t *testing.T) {
	app := newApp()
	app.Voices = &fakeVoices{err: errors.New("upstream down")}
	rec := httptest.NewRecorder()
	app.ListVoices(rec, httptest.NewRequest(http.MethodGet, "/voices", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListVideosRequiresOwner(t *testing.T) {
	app := newApp()
	rec := httptest.NewRecorder()
	app.ListVideos(rec, httptest.NewRequest(http.MethodGet, "/videos", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListVideos(t *testing.T) {
	app := newApp()
	app.Videos = &fakeVideos{videos: []domain.Video{{ID: 1, Title: "gravity", OwnerID: 7}}}
	rec := httptest.NewRecorder()
	app.ListVideos(rec, httptest.NewRequest(http.MethodGet, "/videos?owner_id=7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Videos []domain.Video `json:"videos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Videos) != 1 || body.Videos[0].Title != "gravity" {
		t.Fatalf("videos = %+v", body.Videos)
	}
}

func dialGenerate(t *testing.T, app *App) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(app.Generate))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGenerateStreamsProgress(t *testing.T) {
	app := newApp()
	app.Jobs = &fakeJobs{run: func(ctx context.Context, req domain.GenerationRequest, fallback string, reporter *progress.Reporter) error {
		if req.Topic != "gravity" {
			t.Errorf("topic = %q", req.Topic)
		}
		reporter.Processing("Planning the story...")
		reporter.Success(42, "http://localhost:8080/static/videos/x.mp4")
		return nil
	}}

	conn := dialGenerate(t, app)
	if err := conn.WriteJSON(map[string]any{"topic": "gravity", "style": "normal", "owner_id": 7}); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}

	var events []domain.ProgressEvent
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var ev domain.ProgressEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		events = append(events, ev)
		if ev.Terminal() {
			break
		}
	}

	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Status != domain.ProgressProcessing {
		t.Errorf("first = %+v", events[0])
	}
	last := events[1]
	if last.Status != domain.ProgressSuccess || last.VideoID != 42 || last.VideoURL == "" {
		t.Fatalf("terminal = %+v", last)
	}
}

func TestGenerateInvalidDescriptor(t *testing.T) {
	app := newApp()
	app.Jobs = &fakeJobs{run: func(ctx context.Context, req domain.GenerationRequest, fallback string, reporter *progress.Reporter) error {
		t.Error("job must not start on a bad descriptor")
		reporter.Close()
		return nil
	}}

	conn := dialGenerate(t, app)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev domain.ProgressEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Status != domain.ProgressError {
		t.Fatalf("event = %+v", ev)
	}
}

func TestGenerateDisconnectCancelsJob(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	app := newApp()
	app.Jobs = &fakeJobs{run: func(ctx context.Context, req domain.GenerationRequest, fallback string, reporter *progress.Reporter) error {
		defer reporter.Close()
		close(started)
		select {
		case <-ctx.Done():
			close(cancelled)
			return ctx.Err()
		case <-time.After(10 * time.Second):
			t.Error("job was never cancelled")
			return nil
		}
	}}

	conn := dialGenerate(t, app)
	if err := conn.WriteJSON(map[string]any{"topic": "gravity", "owner_id": 7}); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	<-started
	conn.Close()

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("cancel never propagated")
	}
}
