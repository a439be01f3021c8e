package assembler

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobe measures media durations by shelling out to ffprobe.
type FFprobe struct {
	path string
}

// NewFFprobe constructs a prober; path defaults to "ffprobe" on PATH.
func NewFFprobe(path string) *FFprobe {
	if path == "" {
		path = "ffprobe"
	}
	return &FFprobe{path: path}
}

// Duration returns the playable duration of the file in seconds.
func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.path,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: parse duration: %w", path, err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("ffprobe %s: non-positive duration", path)
	}
	return dur, nil
}
