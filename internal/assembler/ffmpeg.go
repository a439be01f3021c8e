package assembler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
	"github.com/aayush-wiz/doodle-ai-app/internal/infra"
)

const (
	frameWidth  = 1280
	frameHeight = 720
	frameRate   = 30
)

// Encoder renders a Plan into a single mp4 by shelling out to ffmpeg: one
// pass per scene, then a concat pass over the clips.
type Encoder struct {
	ffmpegPath string
	logger     infra.Logger
}

// NewEncoder constructs an encoder; path defaults to "ffmpeg" on PATH.
func NewEncoder(path string, logger infra.Logger) *Encoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &Encoder{ffmpegPath: path, logger: logger}
}

// Render encodes every scene into workDir and concatenates them into
// outPath. Any ffmpeg failure surfaces as an AssemblyError.
func (e *Encoder) Render(ctx context.Context, plan *Plan, workDir, outPath string) error {
	clips := make([]string, 0, len(plan.Scenes))
	for i, scene := range plan.Scenes {
		clip := filepath.Join(workDir, fmt.Sprintf("scene_%03d.mp4", i))
		if err := e.renderScene(ctx, scene, clip); err != nil {
			return &domain.AssemblyError{Err: fmt.Errorf("scene %d (beat %d unit %d): %w", i, scene.Ref.BeatID, scene.Ref.Unit, err)}
		}
		clips = append(clips, clip)
	}

	if err := e.concat(ctx, clips, workDir, outPath); err != nil {
		return &domain.AssemblyError{Err: fmt.Errorf("concat: %w", err)}
	}

	e.logger.Info().
		Int("scenes", len(plan.Scenes)).
		Float64("duration_s", plan.Total()).
		Str("path", outPath).
		Msg("assembler: render complete")
	return nil
}

// renderScene turns one still image plus its narration into a clip. The
// reveal treatment wipes the drawing in from the left over the narration; the
// bubble treatment shows the finished frame for the whole scene.
func (e *Encoder) renderScene(ctx context.Context, scene Scene, outPath string) error {
	dur := scene.Duration()

	fit := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=white,setsar=1",
		frameWidth, frameHeight, frameWidth, frameHeight,
	)

	var filter string
	switch scene.Treatment {
	case TreatmentReveal:
		// Left-to-right wipe: a white canvas underneath, the drawing cropped to
		// a growing even width and overlaid at the origin. The wipe finishes
		// with the narration so the hold shows the completed frame.
		reveal := scene.Audio
		filter = fmt.Sprintf(
			"color=white:s=%dx%d:r=%d:d=%.3f[bg];[0:v]%s[img];[img]crop=w='max(2,floor(iw*min(t/%.3f,1)/2)*2)':h=ih:x=0:y=0[wipe];[bg][wipe]overlay=0:0[v]",
			frameWidth, frameHeight, frameRate, dur, fit, reveal,
		)
	default:
		filter = fmt.Sprintf("[0:v]%s[v]", fit)
	}

	args := []string{
		"-y",
		"-loop", "1",
		"-i", scene.ImagePath,
		"-i", scene.AudioPath,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "1:a",
		"-t", fmt.Sprintf("%.3f", dur),
		"-r", fmt.Sprintf("%d", frameRate),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-af", fmt.Sprintf("apad=pad_dur=%.3f", scene.Hold),
		"-shortest",
		outPath,
	}
	return e.run(ctx, args)
}

// concat joins the scene clips with the concat demuxer. The clips share codec
// settings so a stream copy is enough.
func (e *Encoder) concat(ctx context.Context, clips []string, workDir, outPath string) error {
	var list strings.Builder
	for _, clip := range clips {
		fmt.Fprintf(&list, "file '%s'\n", clip)
	}
	listPath := filepath.Join(workDir, "scenes.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outPath,
	}
	return e.run(ctx, args)
}

func (e *Encoder) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String(), 512))
	}
	return nil
}

// tail keeps only the last n bytes of ffmpeg's stderr, which is where the
// actual error lands.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
