package booking

import "fmt"

// InvalidTransitionError reports a lifecycle transition attempted from an
// incompatible state. The booking record is left untouched.
type InvalidTransitionError struct {
	BookingID string
	From      string
	To        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %s: invalid transition %s -> %s", e.BookingID, e.From, e.To)
}
