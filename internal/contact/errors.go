package contact

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSubmissionInFlight is returned when Submit is called while a previous
// submission has not resolved yet. The call has no other effect.
var ErrSubmissionInFlight = errors.New("contact: submission already in flight")

// ValidationError reports required fields left empty. It never changes the
// flow's status.
type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("contact: missing required field(s): %s", strings.Join(names, ", "))
}

// DeliveryError wraps the failure reported by the email relay.
type DeliveryError struct {
	Cause error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("contact: delivery failed: %v", e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }
