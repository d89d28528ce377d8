// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"

	"homely/database"
	"homely/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// WindowLocator identifies the TimeWindow a booking holds capacity on.
// Weekday addresses the recurring schedule; ExceptionDate, when set,
// addresses a custom-hours exception instead.
type WindowLocator struct {
	ProviderID    string
	Weekday       int    // 0 = Sunday, matches time.Weekday
	ExceptionDate string // empty when the window lives in the weekly days array
	WindowID      string
}

// BookingRepository is the persistence boundary for booking records and the
// window occupancy counters they hold.
type BookingRepository interface {
	GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// ListForProviderDay returns bookings for (provider, date) whose status is
	// in statuses; pass nil for all statuses.
	ListForProviderDay(ctx context.Context, providerID, date string, statuses []string) ([]models.Booking, error)
	// CreateHoldingCapacity inserts the booking and increments the owning
	// window's currentBookings in one transaction. It fails with
	// ErrWindowChanged when the located window no longer exists.
	CreateHoldingCapacity(ctx context.Context, booking *models.Booking, loc WindowLocator) error
	// AppendStatus atomically moves a booking from expectedStatus to
	// event.Status and appends event to the history. It fails with
	// ErrStatusChanged when the booking is no longer in expectedStatus.
	AppendStatus(ctx context.Context, bookingID, expectedStatus string, event models.StatusEvent, actualDuration int) error
	// ReleaseCapacity decrements the window's currentBookings (never below zero).
	ReleaseCapacity(ctx context.Context, loc WindowLocator) error
	// ListPendingOlderThan returns pending bookings created before the cutoff,
	// used by the expiry worker.
	ListPendingOlderThan(ctx context.Context, cutoffUnix int64) ([]models.Booking, error)
	EnsureIndexes() error
}

type mongoBookingRepo struct {
	bookingColl  *mongo.Collection
	scheduleColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	return &mongoBookingRepo{
		bookingColl:  db.Collection("bookings"),
		scheduleColl: db.Collection("schedules"),
	}
}
