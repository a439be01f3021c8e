package domain

import (
	"strings"
	"testing"
)

func partsBeat(id int, n int) Beat {
	b := Beat{ID: id}
	for i := 0; i < n; i++ {
		b.Parts = append(b.Parts, Part{
			Position:        i + 1,
			ImagePrompt:     "a diagram",
			NarrationScript: "some narration",
		})
	}
	return b
}

func dialogueBeat(id int, n int) Beat {
	b := Beat{ID: id}
	for i := 0; i < n; i++ {
		b.Dialogue = append(b.Dialogue, Turn{
			Speaker:     "Homer",
			BubbleText:  "D'oh!",
			AudioScript: "D'oh!",
		})
	}
	return b
}

func TestTemplateFor(t *testing.T) {
	if got := TemplateFor(StyleCartoon); got != TemplateDialogue {
		t.Fatalf("TemplateFor(cartoon) = %q", got)
	}
	for _, style := range []Style{StyleNormal, StyleSolid, StylePencil} {
		if got := TemplateFor(style); got != TemplateParts {
			t.Fatalf("TemplateFor(%s) = %q", style, got)
		}
	}
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tpl     Template
		beats   []Beat
		wantErr string
	}{
		{
			name:  "valid parts",
			tpl:   TemplateParts,
			beats: []Beat{partsBeat(1, 2), partsBeat(2, 3)},
		},
		{
			name:  "valid dialogue",
			tpl:   TemplateDialogue,
			beats: []Beat{dialogueBeat(1, 2)},
		},
		{
			name:    "empty manifest",
			tpl:     TemplateParts,
			beats:   nil,
			wantErr: "no beats",
		},
		{
			name:    "non-positive beat id",
			tpl:     TemplateParts,
			beats:   []Beat{partsBeat(0, 1)},
			wantErr: "positive integer",
		},
		{
			name:    "duplicate beat id",
			tpl:     TemplateParts,
			beats:   []Beat{partsBeat(1, 1), partsBeat(1, 1)},
			wantErr: "duplicated",
		},
		{
			name:    "too many parts",
			tpl:     TemplateParts,
			beats:   []Beat{partsBeat(1, 4)},
			wantErr: "at most 3 parts",
		},
		{
			name:    "dialogue under parts template",
			tpl:     TemplateParts,
			beats:   []Beat{dialogueBeat(1, 1)},
			wantErr: "requires a parts list",
		},
		{
			name:    "parts under dialogue template",
			tpl:     TemplateDialogue,
			beats:   []Beat{partsBeat(1, 1)},
			wantErr: "requires a dialogue list",
		},
		{
			name: "mixed variants in one beat",
			tpl:  TemplateDialogue,
			beats: []Beat{{
				ID:       1,
				Parts:    partsBeat(1, 1).Parts,
				Dialogue: dialogueBeat(1, 1).Dialogue,
			}},
			wantErr: "must not carry parts",
		},
		{
			name: "missing narration script",
			tpl:  TemplateParts,
			beats: []Beat{{
				ID:    1,
				Parts: []Part{{ImagePrompt: "a diagram"}},
			}},
			wantErr: "narration_script",
		},
		{
			name: "missing audio script",
			tpl:  TemplateDialogue,
			beats: []Beat{{
				ID:       1,
				Dialogue: []Turn{{Speaker: "Lisa", BubbleText: "hi"}},
			}},
			wantErr: "audio_script",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := &BeatManifest{Topic: "gravity", Beats: tc.beats}
			err := m.Validate(tc.tpl)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestManifestTruncate(t *testing.T) {
	t.Run("keeps lowest ids in manifest order", func(t *testing.T) {
		m := &BeatManifest{Beats: []Beat{
			partsBeat(3, 1), partsBeat(1, 1), partsBeat(4, 1), partsBeat(2, 1),
		}}
		m.Truncate(2)
		if len(m.Beats) != 2 {
			t.Fatalf("len = %d, want 2", len(m.Beats))
		}
		if m.Beats[0].ID != 1 || m.Beats[1].ID != 2 {
			t.Fatalf("ids = %d,%d, want 1,2 in manifest order", m.Beats[0].ID, m.Beats[1].ID)
		}
	})

	t.Run("zero means unbounded", func(t *testing.T) {
		m := &BeatManifest{Beats: []Beat{partsBeat(1, 1), partsBeat(2, 1)}}
		m.Truncate(0)
		if len(m.Beats) != 2 {
			t.Fatalf("len = %d, want 2", len(m.Beats))
		}
	})

	t.Run("limit above size is a no-op", func(t *testing.T) {
		m := &BeatManifest{Beats: []Beat{partsBeat(1, 1)}}
		m.Truncate(5)
		if len(m.Beats) != 1 {
			t.Fatalf("len = %d, want 1", len(m.Beats))
		}
	})
}

func TestVoiceFor(t *testing.T) {
	cfg := TemplateConfig{
		Template:       TemplateDialogue,
		SpeakerVoices:  map[string]string{"Homer": "homer-voice"},
		DefaultVoiceID: "default-voice",
	}
	if got := cfg.VoiceFor("Homer", "override-voice"); got != "override-voice" {
		t.Fatalf("override: got %q", got)
	}
	if got := cfg.VoiceFor("Homer", ""); got != "homer-voice" {
		t.Fatalf("speaker: got %q", got)
	}
	if got := cfg.VoiceFor("Lisa", ""); got != "default-voice" {
		t.Fatalf("default: got %q", got)
	}
}

func TestBeatUnits(t *testing.T) {
	if got := partsBeat(1, 3).Units(TemplateParts); got != 3 {
		t.Fatalf("parts units = %d", got)
	}
	if got := dialogueBeat(1, 2).Units(TemplateDialogue); got != 2 {
		t.Fatalf("dialogue units = %d", got)
	}
}
