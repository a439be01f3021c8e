package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Style selects the visual treatment applied to image prompts and rendering.
type Style string

const (
	StyleNormal  Style = "normal"
	StyleSolid   Style = "solid"
	StylePencil  Style = "pencil"
	StyleCartoon Style = "cartoon"
)

// DefaultLanguage is the narration language used when the request omits one.
const DefaultLanguage = "en"

var knownStyles = map[Style]struct{}{
	StyleNormal:  {},
	StyleSolid:   {},
	StylePencil:  {},
	StyleCartoon: {},
}

// GenerationRequest describes one topic-to-video job. It is immutable once
// the job starts.
type GenerationRequest struct {
	Topic    string `json:"topic"`
	Style    Style  `json:"style"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
	MaxBeats int    `json:"max_beats"`
	OwnerID  int64  `json:"owner_id"`
}

// Normalize trims fields and applies defaults. fallbackLanguage is the
// language resolved for the connection (headers, GeoIP) and is used only when
// the descriptor leaves language empty.
func (r *GenerationRequest) Normalize(fallbackLanguage string) {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Voice = strings.TrimSpace(r.Voice)
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
	if r.Style == "" {
		r.Style = StyleNormal
	}
	if r.Language == "" {
		r.Language = strings.ToLower(strings.TrimSpace(fallbackLanguage))
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
}

// Validate rejects malformed requests before any pipeline work starts.
func (r GenerationRequest) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidRequest)
	}
	if _, ok := knownStyles[r.Style]; !ok {
		return fmt.Errorf("%w: unsupported style %q", ErrInvalidRequest, r.Style)
	}
	if r.MaxBeats < 0 {
		return fmt.Errorf("%w: max_beats must be >= 0", ErrInvalidRequest)
	}
	if r.OwnerID <= 0 {
		return fmt.Errorf("%w: owner_id is required", ErrInvalidRequest)
	}
	if r.Language != "" {
		if _, err := language.Parse(r.Language); err != nil {
			return fmt.Errorf("%w: invalid language %q", ErrInvalidRequest, r.Language)
		}
	}
	return nil
}

// IsEnglish reports whether narration should use the fast English TTS model.
func IsEnglish(lang string) bool {
	switch strings.ToLower(lang) {
	case "", "en", "en-us", "en-gb":
		return true
	}
	return false
}
