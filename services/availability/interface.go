package availability

import (
	"context"
	"time"

	"homely/models"
)

// ScheduleUpdate carries a schedule change. Exactly one of Days or
// LegacyDays should be set; legacy payloads are adapted at this boundary.
// Nil policy fields leave the stored value untouched.
type ScheduleUpdate struct {
	Days               *models.WeekSchedule     `json:"days,omitempty"`
	LegacyDays         models.LegacyDaySchedule `json:"legacyDays,omitempty"`
	BufferTime         *int                     `json:"bufferTime,omitempty"`
	MinNoticeTime      *int                     `json:"minNoticeTime,omitempty"`
	MaxAdvanceBooking  *int                     `json:"maxAdvanceBooking,omitempty"`
	AutoAcceptBookings *bool                    `json:"autoAcceptBookings,omitempty"`
}

// DayAvailability is the resolved view of one provider-day: the windows in
// effect after exceptions are applied.
type DayAvailability struct {
	Schedule      *models.WeeklySchedule
	Windows       []models.TimeWindow
	Weekday       time.Weekday
	ExceptionDate string // set when windows come from a custom_hours exception
	Unavailable   bool
}

// AvailabilityService computes bookable slots from weekly schedules,
// exceptions and existing bookings.
type AvailabilityService interface {
	// GetAvailability returns the provider's schedule with exceptions,
	// materializing and persisting the default schedule on first access.
	GetAvailability(ctx context.Context, providerID string) (*models.WeeklySchedule, error)
	UpdateWeeklySchedule(ctx context.Context, providerID string, update ScheduleUpdate) (*models.WeeklySchedule, error)
	AddException(ctx context.Context, providerID string, entry models.ExceptionEntry) error
	RemoveException(ctx context.Context, providerID, date string) error
	ListExceptions(ctx context.Context, providerID, from, to string) ([]models.ExceptionEntry, error)
	// GetAvailableSlots returns "HH:MM" start times for the date and
	// duration. A fully unavailable or exception-blocked date yields an
	// empty list, never an error.
	GetAvailableSlots(ctx context.Context, providerID, date string, durationMin int) ([]string, error)
	CheckSlotAvailability(ctx context.Context, providerID, date, startClock, endClock string) (models.SlotCheckResult, error)
	// ResolveDay applies exceptions over the weekly schedule for one date.
	ResolveDay(ctx context.Context, providerID, date string) (*DayAvailability, error)
	// InvalidateSlots bumps the provider's availability version so cached
	// slot responses are bypassed after a mutation.
	InvalidateSlots(ctx context.Context, providerID string)
}
