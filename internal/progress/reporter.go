package progress

import (
	"sync"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
)

const eventBuffer = 64

// Reporter delivers the ordered progress stream of one generation job to a
// single consumer. Events carry a monotonically increasing stage index so the
// consumer can assert ordering; exactly one terminal event ends the stream.
type Reporter struct {
	mu     sync.Mutex
	events chan domain.ProgressEvent
	stage  int
	closed bool
}

// NewReporter constructs a reporter with a buffered stream so the pipeline is
// not blocked by a slow consumer in the common case.
func NewReporter() *Reporter {
	return &Reporter{events: make(chan domain.ProgressEvent, eventBuffer)}
}

// Events is the consumer side of the stream. It is closed after the terminal
// event has been delivered.
func (r *Reporter) Events() <-chan domain.ProgressEvent {
	return r.events
}

// Processing publishes a non-terminal stage update.
func (r *Reporter) Processing(message string) {
	r.publish(domain.ProgressEvent{
		Status:  domain.ProgressProcessing,
		Message: message,
	})
}

// Success publishes the terminal success event and closes the stream.
func (r *Reporter) Success(videoID int64, videoURL string) {
	r.publish(domain.ProgressEvent{
		Status:   domain.ProgressSuccess,
		VideoID:  videoID,
		VideoURL: videoURL,
	})
	r.Close()
}

// Error publishes the terminal error event and closes the stream.
func (r *Reporter) Error(detail string) {
	r.publish(domain.ProgressEvent{
		Status: domain.ProgressError,
		Detail: detail,
	})
	r.Close()
}

// Close ends the stream without publishing. Used on cancellation, where the
// consumer is already gone and no terminal event should be fabricated.
func (r *Reporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.events)
}

func (r *Reporter) publish(ev domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.stage++
	ev.Stage = r.stage
	r.events <- ev
}
