package assetgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
	"github.com/aayush-wiz/doodle-ai-app/internal/providers/image"
	"github.com/aayush-wiz/doodle-ai-app/internal/providers/tts"
)

// ImageGenerator produces one still image per request.
type ImageGenerator interface {
	Generate(ctx context.Context, req image.Request) ([]byte, error)
}

// SpeechSynthesizer produces one narration clip per request.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req tts.SpeechRequest) ([]byte, error)
}

// DurationProber measures the playable duration of an encoded audio file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Job carries everything asset generation needs for one manifest.
type Job struct {
	Manifest *domain.BeatManifest
	Template domain.TemplateConfig
	Style    domain.Style
	Voice    string // explicit request override, already resolved to an id
	Language string
	WorkDir  string
}

// Result maps every content unit of the manifest to its generated assets.
type Result struct {
	Units map[domain.UnitRef]domain.GeneratedAsset
}

// Generator fills in per-unit image and audio assets with bounded
// concurrency. A process-wide semaphore caps in-flight provider calls across
// jobs; each job additionally bounds its own unit workers.
type Generator struct {
	images      ImageGenerator
	speech      SpeechSynthesizer
	probe       DurationProber
	global      *semaphore.Weighted
	unitWorkers int
	logger      infra.Logger
}

// New constructs a Generator. globalCap and unitWorkers must be positive.
func New(images ImageGenerator, speech SpeechSynthesizer, probe DurationProber, globalCap, unitWorkers int, logger infra.Logger) *Generator {
	if globalCap <= 0 {
		globalCap = 1
	}
	if unitWorkers <= 0 {
		unitWorkers = 1
	}
	return &Generator{
		images:      images,
		speech:      speech,
		probe:       probe,
		global:      semaphore.NewWeighted(int64(globalCap)),
		unitWorkers: unitWorkers,
		logger:      logger,
	}
}

// Generate attempts every content unit of every beat. A failing unit marks
// its beat failed without cancelling siblings; once all beats have been
// attempted, any failure yields an AssetGenerationError naming each failing
// beat id and the partial assets are discarded by the caller.
func (g *Generator) Generate(ctx context.Context, job Job) (*Result, error) {
	result := &Result{Units: make(map[domain.UnitRef]domain.GeneratedAsset)}

	var mu sync.Mutex
	failed := make(map[int]struct{})

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(g.unitWorkers)

	for _, beat := range job.Manifest.Beats {
		for unit := 0; unit < beat.Units(job.Template.Template); unit++ {
			// Cooperative cancellation between units: stop scheduling new
			// work once the job context is gone, but let what is already in
			// flight finish.
			if err := ctx.Err(); err != nil {
				break
			}
			beat, unit := beat, unit
			grp.Go(func() error {
				ref := domain.UnitRef{BeatID: beat.ID, Unit: unit}
				asset, err := g.generateUnit(grpCtx, job, beat, unit)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed[beat.ID] = struct{}{}
					g.logger.Error().Err(err).
						Int("beat_id", beat.ID).
						Int("unit", unit).
						Msg("assetgen: unit failed")
					return nil // siblings keep going
				}
				result.Units[ref] = asset
				return nil
			})
		}
	}
	_ = grp.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		ids := make([]int, 0, len(failed))
		for id := range failed {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		return nil, &domain.AssetGenerationError{BeatIDs: ids}
	}
	return result, nil
}

func (g *Generator) generateUnit(ctx context.Context, job Job, beat domain.Beat, unit int) (domain.GeneratedAsset, error) {
	var none domain.GeneratedAsset

	prompt, script, speaker := unitContent(job, beat, unit)
	if script == "" {
		return none, fmt.Errorf("unit %d has no script", unit)
	}

	imgPath := filepath.Join(job.WorkDir, fmt.Sprintf("beat_%d_unit_%d.png", beat.ID, unit))
	audioPath := filepath.Join(job.WorkDir, fmt.Sprintf("beat_%d_unit_%d.mp3", beat.ID, unit))

	// A provider call that has started runs to completion even if the client
	// disconnects; only the job deadline still bounds it. Cancellation is
	// honored at the semaphore, before each call starts.
	callCtx, cancel := detachCancel(ctx)
	defer cancel()

	if err := g.acquire(ctx); err != nil {
		return none, err
	}
	img, err := g.images.Generate(callCtx, image.Request{Prompt: prompt, Style: job.Style})
	g.global.Release(1)
	if err != nil {
		return none, fmt.Errorf("generate image: %w", err)
	}
	if err := os.WriteFile(imgPath, img, 0o644); err != nil {
		return none, fmt.Errorf("write image: %w", err)
	}

	if err := g.acquire(ctx); err != nil {
		return none, err
	}
	audio, err := g.speech.Synthesize(callCtx, tts.SpeechRequest{
		Text:     script,
		VoiceID:  job.Template.VoiceFor(speaker, job.Voice),
		Language: job.Language,
	})
	g.global.Release(1)
	if err != nil {
		return none, fmt.Errorf("generate audio: %w", err)
	}
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return none, fmt.Errorf("write audio: %w", err)
	}

	duration, err := g.probe.Duration(callCtx, audioPath)
	if err != nil {
		return none, fmt.Errorf("probe audio duration: %w", err)
	}

	return domain.GeneratedAsset{
		ImagePath:     imgPath,
		AudioPath:     audioPath,
		AudioDuration: duration,
	}, nil
}

func (g *Generator) acquire(ctx context.Context) error {
	if err := g.global.Acquire(ctx, 1); err != nil {
		return err
	}
	return nil
}

// detachCancel derives a context that keeps the parent's deadline but not its
// cancellation.
func detachCancel(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return detached, func() {}
}

// unitContent resolves the image prompt, spoken script and speaker for one
// content unit, dispatching on the template variant.
func unitContent(job Job, beat domain.Beat, unit int) (prompt, script, speaker string) {
	if job.Template.Template == domain.TemplateDialogue {
		turn := beat.Dialogue[unit]
		return dialoguePrompt(turn), turn.AudioScript, turn.Speaker
	}
	part := beat.Parts[unit]
	return part.ImagePrompt, part.NarrationScript, ""
}
