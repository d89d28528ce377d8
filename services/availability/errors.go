package availability

import "fmt"

// InvalidScheduleError reports a malformed or overlapping time window on a
// schedule update. Nothing is written when it is returned.
type InvalidScheduleError struct {
	Day    string
	Field  string
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	if e.Day != "" {
		return fmt.Sprintf("invalid schedule (%s, %s): %s", e.Day, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid schedule (%s): %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown provider or booking id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// SlotUnavailableError reports a conflict detected at validation time or a
// creation race lost at the storage boundary. Callers should re-request
// availability.
type SlotUnavailableError struct {
	Reason string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot unavailable: %s", e.Reason)
}
