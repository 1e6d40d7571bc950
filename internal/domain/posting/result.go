package posting

import "fmt"

// Status is the outcome of a posting attempt.
type Status string

const (
	// StatusPosted means a new entry was written.
	StatusPosted Status = "POSTED"
	// StatusAlreadyPosted means the event had an entry; nothing was written.
	StatusAlreadyPosted Status = "ALREADY_POSTED"
	// StatusSkipped means a posting account could not be resolved.
	StatusSkipped Status = "SKIPPED"
)

// Result reports what a posting attempt did. Lookup failures are results,
// not errors, so the caller can keep the document transition and surface a
// warning.
type Result struct {
	Status Status `json:"status"`
	Entry  *Entry `json:"entry,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Posted builds a result for a newly written entry.
func Posted(e *Entry) Result {
	return Result{Status: StatusPosted, Entry: e}
}

// AlreadyPosted builds a result for an event that had an entry.
func AlreadyPosted(e *Entry) Result {
	return Result{Status: StatusAlreadyPosted, Entry: e}
}

// Skipped builds a result for an event that could not be posted.
func Skipped(format string, args ...any) Result {
	return Result{Status: StatusSkipped, Reason: fmt.Sprintf(format, args...)}
}

// IsSkipped reports whether nothing could be posted.
func (r Result) IsSkipped() bool {
	return r.Status == StatusSkipped
}

// HasEntry reports whether the event has a journal entry.
func (r Result) HasEntry() bool {
	return r.Entry != nil
}
