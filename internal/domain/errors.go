package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrQuotaExceeded  = errors.New("quota exceeded")
)

// PlanningError reports that the planner could not obtain a schema-valid
// manifest within its retry budget.
type PlanningError struct {
	Attempts int
	Err      error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// AssetGenerationError reports every beat that failed to produce a complete
// asset set. Sibling beats keep generating; the job still fails as a whole.
type AssetGenerationError struct {
	BeatIDs []int
}

func (e *AssetGenerationError) Error() string {
	ids := make([]string, len(e.BeatIDs))
	for i, id := range e.BeatIDs {
		ids[i] = strconv.Itoa(id)
	}
	return "asset generation failed for beats " + strings.Join(ids, ", ")
}

// AssemblyError reports a failure while rendering or concatenating scenes.
type AssemblyError struct {
	Err error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly failed: %v", e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
