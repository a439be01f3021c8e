package assembler

import (
	"fmt"
	"sort"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
)

// Padding applied after each unit so narration never runs edge to edge.
const (
	partPause     = 0.3 // between sequential parts of one beat
	dialoguePause = 0.5 // after each dialogue turn
	beatEndHold   = 1.0 // hold on the completed frame of a parts beat
)

// Treatment selects the visual animation applied to a scene.
type Treatment string

const (
	// TreatmentReveal wipes the drawing in from the left while narration plays.
	TreatmentReveal Treatment = "reveal"
	// TreatmentBubble shows the finished frame statically, speech bubble and all.
	TreatmentBubble Treatment = "bubble"
)

// Scene is one fully resolved clip of the final cut: a still image shown for
// Duration seconds with its narration underneath.
type Scene struct {
	Ref       domain.UnitRef
	ImagePath string
	AudioPath string
	Audio     float64 // narration length in seconds
	Hold      float64 // silence appended after the narration
	Treatment Treatment
}

// Duration is the total on-screen time of the scene.
func (s Scene) Duration() float64 {
	return s.Audio + s.Hold
}

// Plan is the deterministic cut list for one manifest. Building it touches no
// external tools, so ordering and timing are testable in isolation.
type Plan struct {
	Scenes []Scene
	Style  domain.Style
}

// Total returns the planned runtime in seconds.
func (p *Plan) Total() float64 {
	var total float64
	for _, s := range p.Scenes {
		total += s.Duration()
	}
	return total
}

// BuildPlan orders beats by ascending id and lays their units out back to
// back. Every unit must have a complete asset; a missing or partial asset is
// an error because assembly only ever runs after generation fully succeeded.
func BuildPlan(manifest *domain.BeatManifest, tpl domain.TemplateConfig, assets map[domain.UnitRef]domain.GeneratedAsset, style domain.Style) (*Plan, error) {
	beats := make([]domain.Beat, len(manifest.Beats))
	copy(beats, manifest.Beats)
	sort.Slice(beats, func(i, j int) bool { return beats[i].ID < beats[j].ID })

	plan := &Plan{Style: style}
	for _, beat := range beats {
		units := beat.Units(tpl.Template)
		for unit := 0; unit < units; unit++ {
			ref := domain.UnitRef{BeatID: beat.ID, Unit: unit}
			asset, ok := assets[ref]
			if !ok || !asset.Complete() {
				return nil, fmt.Errorf("beat %d unit %d: asset incomplete", beat.ID, unit)
			}

			scene := Scene{
				Ref:       ref,
				ImagePath: asset.ImagePath,
				AudioPath: asset.AudioPath,
				Audio:     asset.AudioDuration,
			}
			if tpl.Template == domain.TemplateDialogue {
				scene.Treatment = TreatmentBubble
				scene.Hold = dialoguePause
			} else {
				scene.Treatment = TreatmentReveal
				scene.Hold = partPause
				if unit == units-1 {
					scene.Hold += beatEndHold
				}
			}
			plan.Scenes = append(plan.Scenes, scene)
		}
	}
	if len(plan.Scenes) == 0 {
		return nil, fmt.Errorf("manifest produced no scenes")
	}
	return plan, nil
}
