package poem

import "fmt"

const (
	ReasonRequestFailed = "request failed"
	ReasonInvalidShape  = "invalid response shape"
	ReasonUnreachable   = "upstream unreachable"
)

// ValidationError reports a defect in caller input; no upstream call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError reports an unreachable provider, a non-2xx status or a
// malformed completion. Status is 0 when no HTTP status was received.
type UpstreamError struct {
	Reason string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s (status %d)", e.Reason, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %v", e.Reason, e.Err)
	}
	return "upstream " + e.Reason
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
