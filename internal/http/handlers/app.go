package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
	"github.com/aayush-wiz/doodle-ai-app/internal/pipeline"
	"github.com/aayush-wiz/doodle-ai-app/internal/progress"
)

// VideoLister reads persisted videos.
type VideoLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Video, error)
}

// HistoryLister reads past generation queries.
type HistoryLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.History, error)
}

// VoiceCatalog exposes the narration voices available to clients.
type VoiceCatalog interface {
	Voices(ctx context.Context) (map[string]string, error)
}

// JobRunner drives one generation job; satisfied by pipeline.Coordinator.
type JobRunner interface {
	Run(ctx context.Context, req domain.GenerationRequest, fallbackLanguage string, reporter *progress.Reporter) error
}

var _ JobRunner = (*pipeline.Coordinator)(nil)

// App carries the handler dependencies.
type App struct {
	Jobs    JobRunner
	Voices  VoiceCatalog
	Videos  VideoLister
	History HistoryLister
	Logger  infra.Logger

	// AllowedOrigins gates websocket upgrades; empty allows same-origin only.
	AllowedOrigins []string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
