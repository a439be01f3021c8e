package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
	"github.com/aayush-wiz/doodle-ai-app/internal/providers/llm"
)

// LLM is the completion capability the planner consumes.
type LLM interface {
	CompleteJSON(ctx context.Context, messages []llm.Message) ([]byte, error)
}

// Planner turns (topic, template, language) into a validated beat manifest.
type Planner struct {
	llm     LLM
	retries int
	logger  infra.Logger
}

// New constructs a planner. retries is the number of corrective re-asks after
// the first attempt; schema violations are re-asked, transport failures are
// handled inside the LLM client and surface here as terminal.
func New(client LLM, retries int, logger infra.Logger) *Planner {
	if retries < 0 {
		retries = 0
	}
	return &Planner{llm: client, retries: retries, logger: logger}
}

// Plan obtains a schema-valid manifest and truncates it to maxBeats (0 means
// unbounded), keeping the lowest beat ids in manifest order. Exhausting the
// retry budget yields a PlanningError.
func (p *Planner) Plan(ctx context.Context, topic string, tpl domain.TemplateConfig, language string, maxBeats int) (*domain.BeatManifest, error) {
	messages := []llm.Message{
		{Role: "user", Content: promptFor(tpl, topic, language)},
	}

	attempts := p.retries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := p.llm.CompleteJSON(ctx, messages)
		if err != nil {
			return nil, &domain.PlanningError{Attempts: attempt, Err: err}
		}

		manifest, err := parseManifest(raw)
		if err == nil {
			err = manifest.Validate(tpl.Template)
		}
		if err == nil {
			p.logger.Info().
				Str("topic", topic).
				Str("template", string(tpl.Template)).
				Int("beats", len(manifest.Beats)).
				Int("attempt", attempt).
				Msg("planner: manifest accepted")
			manifest.Truncate(maxBeats)
			return manifest, nil
		}

		lastErr = err
		p.logger.Warn().Err(err).Int("attempt", attempt).Msg("planner: manifest rejected")

		// Carry the rejected output and the violation back so the model can
		// correct its own manifest instead of starting over.
		messages = append(messages,
			llm.Message{Role: "assistant", Content: string(raw)},
			llm.Message{Role: "user", Content: correctivePrompt(err)},
		)
	}

	return nil, &domain.PlanningError{Attempts: attempts, Err: lastErr}
}

func parseManifest(raw []byte) (*domain.BeatManifest, error) {
	var manifest domain.BeatManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("manifest is not valid JSON: %w", err)
	}
	return &manifest, nil
}
