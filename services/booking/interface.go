package booking

import (
	"context"
	"time"

	bookingRepo "homely/database/repository/booking"
	"homely/models"
	"homely/services/availability"

	"github.com/hibiken/asynq"
)

// ProviderDayLocker serializes booking writes per (provider, date).
// Satisfied by utils.SlotLocker.
type ProviderDayLocker interface {
	WithProviderDayLock(ctx context.Context, providerID, date string, fn func(ctx context.Context) error) error
}

// Actors recorded in status history entries.
const (
	ActorCustomer = "customer"
	ActorProvider = "provider"
	ActorSystem   = "system"
)

// BookingService drives a booking's lifecycle from creation through its
// terminal state.
type BookingService interface {
	// CreateBooking validates the requested slot against the availability
	// engine and persists the booking under the provider-day lock. The
	// initial status is confirmed when the provider auto-accepts, else
	// pending.
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	// Accept moves pending -> confirmed (provider only). The note, when
	// present, records an estimated arrival.
	Accept(ctx context.Context, bookingID, note string) (*models.Booking, error)
	// Reject moves pending -> rejected and releases held capacity. A reason
	// is required.
	Reject(ctx context.Context, bookingID, reason string) (*models.Booking, error)
	// Start moves confirmed -> in_progress (provider only).
	Start(ctx context.Context, bookingID string) (*models.Booking, error)
	// Complete moves in_progress -> completed, recording the actual
	// duration when supplied, and releases held capacity.
	Complete(ctx context.Context, bookingID string, actualDuration int) (*models.Booking, error)
	// Cancel moves any active state -> cancelled and releases held
	// capacity. A reason is required.
	Cancel(ctx context.Context, bookingID, actor, reason string) (*models.Booking, error)
	// ExpireIfPending system-cancels a booking that is still pending; a
	// booking in any other state is left alone.
	ExpireIfPending(ctx context.Context, bookingID string) error
	// ExpireStalePending sweeps pending bookings older than the accept TTL.
	ExpireStalePending(ctx context.Context) (int, error)
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo            bookingRepo.BookingRepository
	AvailabilitySvc availability.AvailabilityService
	Locker          ProviderDayLocker
	TaskClient      *asynq.Client // nil disables expiry task scheduling
	PendingTTL      time.Duration
	Clock           func() time.Time // nil means time.Now
}

func (s *DefaultBookingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}
