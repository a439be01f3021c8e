package domain

import (
	"fmt"
	"sort"
)

// Template identifies the manifest schema variant the planner must produce.
// It is derived from the requested style, never set by the client directly.
type Template string

const (
	// TemplateParts produces beats with 1-3 diagram parts narrated in turn.
	TemplateParts Template = "parts"
	// TemplateDialogue produces beats as an exchange between fixed characters.
	TemplateDialogue Template = "dialogue"
)

// MaxPartsPerBeat bounds the Parts variant; the reveal layout supports
// left/center/right sections only.
const MaxPartsPerBeat = 3

// TemplateFor maps a style onto its manifest template.
func TemplateFor(style Style) Template {
	if style == StyleCartoon {
		return TemplateDialogue
	}
	return TemplateParts
}

// TemplateConfig carries the per-template knobs the planner and asset
// generator need: the fixed speaker roster with their default narration
// voices, and the provider default used for everything else. It is explicit
// configuration, passed in rather than read from globals.
type TemplateConfig struct {
	Template       Template
	Speakers       []string
	SpeakerVoices  map[string]string
	DefaultVoiceID string
}

// VoiceFor resolves the narration voice for a content unit: an explicit
// request override wins, then the speaker's fixed voice, then the default.
func (c TemplateConfig) VoiceFor(speaker, override string) string {
	if override != "" {
		return override
	}
	if id, ok := c.SpeakerVoices[speaker]; ok && id != "" {
		return id
	}
	return c.DefaultVoiceID
}

// Part is one visual section of a Parts-variant beat.
type Part struct {
	Position        int    `json:"position"`
	ImagePrompt     string `json:"image_prompt"`
	NarrationScript string `json:"narration_script"`
	VisualDesc      string `json:"visual_desc"`
}

// Turn is one dialogue exchange of a Dialogue-variant beat.
type Turn struct {
	Speaker         string `json:"speaker"`
	BubbleText      string `json:"bubble_text"`
	VisualDesc      string `json:"visual_desc"`
	CharacterAction string `json:"character_action"`
	AudioScript     string `json:"audio_script"`
}

// Beat is one unit of the video timeline. Exactly one of Parts or Dialogue
// is populated, selected by the template at planning time.
type Beat struct {
	ID       int    `json:"beat_id"`
	Parts    []Part `json:"parts,omitempty"`
	Dialogue []Turn `json:"dialogue,omitempty"`
}

// Units returns the number of content units in the beat under the template.
func (b Beat) Units(tpl Template) int {
	if tpl == TemplateDialogue {
		return len(b.Dialogue)
	}
	return len(b.Parts)
}

// BeatManifest is the structured plan produced by the planner. Insertion
// order is presentation order.
type BeatManifest struct {
	Topic string `json:"topic"`
	Beats []Beat `json:"beats"`
}

// Validate checks the manifest against the template schema. It never coerces
// one variant into the other; a mismatch is a schema violation.
func (m *BeatManifest) Validate(tpl Template) error {
	if m == nil {
		return fmt.Errorf("manifest is nil")
	}
	if len(m.Beats) == 0 {
		return fmt.Errorf("manifest has no beats")
	}
	seen := make(map[int]struct{}, len(m.Beats))
	for i, beat := range m.Beats {
		if beat.ID <= 0 {
			return fmt.Errorf("beat %d: beat_id must be a positive integer", i)
		}
		if _, dup := seen[beat.ID]; dup {
			return fmt.Errorf("beat_id %d is duplicated", beat.ID)
		}
		seen[beat.ID] = struct{}{}

		switch tpl {
		case TemplateDialogue:
			if len(beat.Dialogue) == 0 {
				return fmt.Errorf("beat %d: dialogue template requires a dialogue list", beat.ID)
			}
			if len(beat.Parts) > 0 {
				return fmt.Errorf("beat %d: dialogue template must not carry parts", beat.ID)
			}
			for j, turn := range beat.Dialogue {
				if turn.Speaker == "" {
					return fmt.Errorf("beat %d turn %d: speaker is required", beat.ID, j)
				}
				if turn.BubbleText == "" {
					return fmt.Errorf("beat %d turn %d: bubble_text is required", beat.ID, j)
				}
				if turn.AudioScript == "" {
					return fmt.Errorf("beat %d turn %d: audio_script is required", beat.ID, j)
				}
			}
		default:
			if len(beat.Parts) == 0 {
				return fmt.Errorf("beat %d: parts template requires a parts list", beat.ID)
			}
			if len(beat.Dialogue) > 0 {
				return fmt.Errorf("beat %d: parts template must not carry dialogue", beat.ID)
			}
			if len(beat.Parts) > MaxPartsPerBeat {
				return fmt.Errorf("beat %d: at most %d parts allowed, got %d", beat.ID, MaxPartsPerBeat, len(beat.Parts))
			}
			for j, part := range beat.Parts {
				if part.ImagePrompt == "" {
					return fmt.Errorf("beat %d part %d: image_prompt is required", beat.ID, j)
				}
				if part.NarrationScript == "" {
					return fmt.Errorf("beat %d part %d: narration_script is required", beat.ID, j)
				}
			}
		}
	}
	return nil
}

// Truncate keeps the maxBeats lowest beat ids in manifest order. A maxBeats
// of zero means unbounded. Applied only after the manifest validated.
func (m *BeatManifest) Truncate(maxBeats int) {
	if maxBeats <= 0 || len(m.Beats) <= maxBeats {
		return
	}
	ids := make([]int, len(m.Beats))
	for i, beat := range m.Beats {
		ids[i] = beat.ID
	}
	sort.Ints(ids)
	cutoff := ids[maxBeats-1]

	kept := m.Beats[:0]
	for _, beat := range m.Beats {
		if beat.ID <= cutoff {
			kept = append(kept, beat)
		}
	}
	m.Beats = kept
}
