package domain

import "time"

// Video is the persisted record of a fully assembled artifact. It is written
// only on pipeline success, together with its History row.
type Video struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	StorageKey string    `json:"storage_key"`
	URL        string    `json:"url"`
	OwnerID    int64     `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// History links the original query to the video it produced.
type History struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Query     string    `json:"query"`
	VideoID   int64     `json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UnitRef addresses one content unit (a Part or a Turn) within a manifest.
type UnitRef struct {
	BeatID int
	Unit   int
}

// GeneratedAsset holds the local references for one content unit. Both the
// image and the audio must be present before assembly may use the unit.
type GeneratedAsset struct {
	ImagePath     string
	AudioPath     string
	AudioDuration float64 // seconds, measured from the encoded clip
}

// Complete reports whether the unit can be assembled.
func (a GeneratedAsset) Complete() bool {
	return a.ImagePath != "" && a.AudioPath != "" && a.AudioDuration > 0
}
