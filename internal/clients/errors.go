package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// UpstreamTimeoutError marks an upstream call that exceeded its own budget.
// Callers recover by falling back to cached data where available.
type UpstreamTimeoutError struct {
	Collaborator string
	Err          error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("%s call timed out: %v", e.Collaborator, e.Err)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

func (e *UpstreamTimeoutError) IsTransient() bool { return true }

// UpstreamMalformedError marks an unexpected upstream response shape.
type UpstreamMalformedError struct {
	Collaborator string
	Reason       string
	Err          error
}

func (e *UpstreamMalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s returned malformed response (%s): %v", e.Collaborator, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s returned malformed response: %s", e.Collaborator, e.Reason)
}

func (e *UpstreamMalformedError) Unwrap() error { return e.Err }

func (e *UpstreamMalformedError) IsTransient() bool { return false }

// classifyError converts transport-level failures into the typed taxonomy.
func classifyError(collaborator string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamTimeoutError{Collaborator: collaborator, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &UpstreamTimeoutError{Collaborator: collaborator, Err: err}
	}

	return fmt.Errorf("%s call failed: %w", collaborator, err)
}

// IsTimeout reports whether err is an upstream timeout.
func IsTimeout(err error) bool {
	var te *UpstreamTimeoutError
	return errors.As(err, &te)
}
