package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aayush-wiz/doodle-ai-app/internal/assembler"
	"github.com/aayush-wiz/doodle-ai-app/internal/assetgen"
	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
	"github.com/aayush-wiz/doodle-ai-app/internal/progress"
)

// Fixed narration voices for the dialogue roster. An explicit request voice
// overrides both.
var speakerVoices = map[string]string{
	"Homer": "onwK4e9ZLuTAKqWW03F9",
	"Lisa":  "21m00Tcm4TlvDq8ikWAM",
}

var dialogueSpeakers = []string{"Homer", "Lisa"}

// Planner produces a validated beat manifest for a topic.
type Planner interface {
	Plan(ctx context.Context, topic string, tpl domain.TemplateConfig, language string, maxBeats int) (*domain.BeatManifest, error)
}

// AssetGenerator fills in per-unit images and narration.
type AssetGenerator interface {
	Generate(ctx context.Context, job assetgen.Job) (*assetgen.Result, error)
}

// Renderer encodes a scene plan into the final artifact.
type Renderer interface {
	Render(ctx context.Context, plan *assembler.Plan, workDir, outPath string) error
}

// VoiceResolver maps a requested voice name onto a provider voice id.
type VoiceResolver interface {
	ResolveVoice(ctx context.Context, nameOrID string) (string, error)
	DefaultVoiceID() string
}

// QuotaChecker enforces the owner's plan allowance before work starts.
type QuotaChecker interface {
	CheckQuota(ctx context.Context, ownerID int64) (*domain.User, error)
}

// ResultStore persists the video, its history entry and the usage counter in
// one transaction.
type ResultStore interface {
	SaveResult(ctx context.Context, video *domain.Video, query string) error
}

// ArtifactStore moves the rendered file into durable storage.
type ArtifactStore interface {
	SaveFile(ctx context.Context, key, srcPath string) (string, error)
	URL(key string) string
}

// Coordinator drives one generation job through planning, asset generation,
// assembly and persistence, publishing ordered progress along the way.
type Coordinator struct {
	planner    Planner
	assets     AssetGenerator
	renderer   Renderer
	voices     VoiceResolver
	quota      QuotaChecker
	results    ResultStore
	store      ArtifactStore
	workRoot   string
	jobTimeout time.Duration
	logger     infra.Logger
}

// New constructs a Coordinator.
func New(planner Planner, assets AssetGenerator, renderer Renderer, voices VoiceResolver, quota QuotaChecker, results ResultStore, store ArtifactStore, workRoot string, jobTimeout time.Duration, logger infra.Logger) *Coordinator {
	if jobTimeout <= 0 {
		jobTimeout = 15 * time.Minute
	}
	return &Coordinator{
		planner:    planner,
		assets:     assets,
		renderer:   renderer,
		voices:     voices,
		quota:      quota,
		results:    results,
		store:      store,
		workRoot:   workRoot,
		jobTimeout: jobTimeout,
		logger:     logger,
	}
}

// Run executes one job to completion. The reporter receives processing events
// per stage and exactly one terminal event; if ctx is cancelled (the client
// disconnected) the stream is closed without a terminal event and nothing is
// persisted. fallbackLanguage fills the request's language when empty.
func (c *Coordinator) Run(ctx context.Context, req domain.GenerationRequest, fallbackLanguage string, reporter *progress.Reporter) error {
	defer reporter.Close()

	req.Normalize(fallbackLanguage)
	if err := req.Validate(); err != nil {
		reporter.Error(err.Error())
		return err
	}
	if _, err := c.quota.CheckQuota(ctx, req.OwnerID); err != nil {
		return c.fail(ctx, reporter, req, err)
	}

	jobID := uuid.NewString()
	log := c.logger.With().Str("job_id", jobID).Int64("owner_id", req.OwnerID).Logger()
	log.Info().Str("topic", req.Topic).Str("style", string(req.Style)).Str("language", req.Language).Msg("pipeline: job accepted")

	jobCtx, cancel := context.WithTimeout(ctx, c.jobTimeout)
	defer cancel()

	workDir := filepath.Join(c.workRoot, "job_"+jobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return c.fail(ctx, reporter, req, fmt.Errorf("create work dir: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn().Err(err).Str("dir", workDir).Msg("pipeline: scratch cleanup failed")
		}
	}()

	voiceID, err := c.voices.ResolveVoice(jobCtx, req.Voice)
	if err != nil {
		return c.fail(ctx, reporter, req, fmt.Errorf("resolve voice: %w", err))
	}
	explicitVoice := ""
	if req.Voice != "" {
		explicitVoice = voiceID
	}

	tpl := templateConfigFor(req.Style, c.voices.DefaultVoiceID())

	reporter.Processing("Planning the story...")
	manifest, err := c.planner.Plan(jobCtx, req.Topic, tpl, req.Language, req.MaxBeats)
	if err != nil {
		return c.fail(ctx, reporter, req, err)
	}

	reporter.Processing("Generating images and narration...")
	assets, err := c.assets.Generate(jobCtx, assetgen.Job{
		Manifest: manifest,
		Template: tpl,
		Style:    req.Style,
		Voice:    explicitVoice,
		Language: req.Language,
		WorkDir:  workDir,
	})
	if err != nil {
		return c.fail(ctx, reporter, req, err)
	}

	reporter.Processing("Assembling the video...")
	plan, err := assembler.BuildPlan(manifest, tpl, assets.Units, req.Style)
	if err != nil {
		return c.fail(ctx, reporter, req, &domain.AssemblyError{Err: err})
	}
	outPath := filepath.Join(workDir, "final.mp4")
	if err := c.renderer.Render(jobCtx, plan, workDir, outPath); err != nil {
		return c.fail(ctx, reporter, req, err)
	}

	key := fmt.Sprintf("videos/%s.mp4", jobID)
	key, err = c.store.SaveFile(jobCtx, key, outPath)
	if err != nil {
		return c.fail(ctx, reporter, req, fmt.Errorf("store artifact: %w", err))
	}

	video := &domain.Video{
		Title:      req.Topic,
		StorageKey: key,
		URL:        c.store.URL(key),
		OwnerID:    req.OwnerID,
	}
	if err := c.results.SaveResult(jobCtx, video, req.Topic); err != nil {
		return c.fail(ctx, reporter, req, fmt.Errorf("persist result: %w", err))
	}

	log.Info().Int64("video_id", video.ID).Str("url", video.URL).Float64("duration_s", plan.Total()).Msg("pipeline: job succeeded")
	reporter.Success(video.ID, video.URL)
	return nil
}

// fail reports a terminal error, unless the connection context itself is gone:
// a cancelled client gets no terminal event and nothing is persisted.
func (c *Coordinator) fail(ctx context.Context, reporter *progress.Reporter, req domain.GenerationRequest, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.logger.Info().Int64("owner_id", req.OwnerID).Str("topic", req.Topic).Msg("pipeline: job cancelled")
		return ctxErr
	}
	c.logger.Error().Err(err).Int64("owner_id", req.OwnerID).Str("topic", req.Topic).Msg("pipeline: job failed")
	reporter.Error(userFacingDetail(err))
	return err
}

// userFacingDetail keeps provider internals out of the client-visible detail
// while preserving the failure class.
func userFacingDetail(err error) string {
	var planErr *domain.PlanningError
	var assetErr *domain.AssetGenerationError
	var asmErr *domain.AssemblyError
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "free plan limit reached"
	case errors.Is(err, domain.ErrNotFound):
		return "unknown user"
	case errors.As(err, &planErr):
		return "could not plan a story for this topic"
	case errors.As(err, &assetErr):
		return assetErr.Error()
	case errors.As(err, &asmErr):
		return "video assembly failed"
	case errors.Is(err, context.DeadlineExceeded):
		return "generation timed out"
	default:
		return "generation failed"
	}
}

// templateConfigFor assembles the planner/assetgen knobs for a style.
func templateConfigFor(style domain.Style, defaultVoiceID string) domain.TemplateConfig {
	tpl := domain.TemplateConfig{
		Template:       domain.TemplateFor(style),
		DefaultVoiceID: defaultVoiceID,
	}
	if tpl.Template == domain.TemplateDialogue {
		tpl.Speakers = dialogueSpeakers
		tpl.SpeakerVoices = speakerVoices
	}
	return tpl
}
