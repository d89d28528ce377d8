package models

import "time"

// Booking statuses. Completed, cancelled and rejected are terminal.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
	BookingRejected   = "rejected"
)

// StatusEvent is one append-only entry in a booking's history. Events are
// never rewritten or removed.
type StatusEvent struct {
	Status string    `bson:"status" json:"status"`
	At     time.Time `bson:"at" json:"at"`
	Actor  string    `bson:"actor" json:"actor"` // "customer", "provider" or "system"
	Notes  string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Booking represents one scheduled engagement. Bookings are never hard
// deleted; cancellation is a status change so historical conflict queries
// stay correct.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	ProviderID string `bson:"provider_id" json:"providerId"`
	CustomerID string `bson:"customer_id" json:"customerId"`
	ServiceID  string `bson:"service_id" json:"serviceId"`

	Date     string `bson:"date" json:"date"`         // "2006-01-02"
	Start    int    `bson:"start" json:"start"`       // minutes from midnight
	End      int    `bson:"end" json:"end"`           // Start + Duration
	Duration int    `bson:"duration" json:"duration"` // minutes
	WindowID string `bson:"window_id,omitempty" json:"windowId,omitempty"`

	Status        string        `bson:"status" json:"status"`
	StatusHistory []StatusEvent `bson:"status_history" json:"statusHistory"`

	ActualDuration int       `bson:"actual_duration,omitempty" json:"actualDuration,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// ActiveStatuses are the statuses that constrain future slot generation.
func ActiveStatuses() []string {
	return []string{BookingPending, BookingConfirmed, BookingInProgress}
}

// IsTerminalStatus reports whether no further transition can leave s.
func IsTerminalStatus(s string) bool {
	switch s {
	case BookingCompleted, BookingCancelled, BookingRejected:
		return true
	}
	return false
}

// BookingRequest is the payload the booking collaborator supplies.
type BookingRequest struct {
	ProviderID string `json:"providerId" binding:"required"`
	CustomerID string `json:"customerId" binding:"required"`
	ServiceID  string `json:"serviceId" binding:"required"`
	Date       string `json:"date" binding:"required"`      // "2006-01-02"
	StartTime  string `json:"startTime" binding:"required"` // "HH:MM"
	Duration   int    `json:"duration" binding:"required"`  // minutes
}
