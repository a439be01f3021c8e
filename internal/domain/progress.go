package domain

// ProgressStatus enumerates the wire statuses of a progress event.
type ProgressStatus string

const (
	ProgressQueued     ProgressStatus = "queued"
	ProgressProcessing ProgressStatus = "processing"
	ProgressSuccess    ProgressStatus = "success"
	ProgressError      ProgressStatus = "error"
)

// ProgressEvent is one entry of a job's append-only progress stream. Stage is
// a monotonically non-decreasing index assigned by the reporter; Success and
// Error are terminal.
type ProgressEvent struct {
	Status   ProgressStatus `json:"status"`
	Stage    int            `json:"stage"`
	Message  string         `json:"message,omitempty"`
	Detail   string         `json:"detail,omitempty"`
	VideoID  int64          `json:"id,omitempty"`
	VideoURL string         `json:"video_url,omitempty"`
}

// Terminal reports whether no further events may follow.
func (e ProgressEvent) Terminal() bool {
	return e.Status == ProgressSuccess || e.Status == ProgressError
}
