// File: database/repository/booking/booking_mongo.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homely/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no booking matches the given id.
	ErrNotFound = errors.New("booking not found")
	// ErrStatusChanged is returned when a guarded status update loses a race.
	ErrStatusChanged = errors.New("booking status changed concurrently")
	// ErrWindowChanged is returned when the booking's target window no
	// longer exists at write time (a schedule rewrite raced the booking).
	ErrWindowChanged = errors.New("target window no longer exists")
)

// GetBookingByID retrieves a booking by its ID.
func (repo *mongoBookingRepo) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctxWithTimeout, bson.M{"id": bookingID}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

// ListForProviderDay returns a provider's bookings on a date, optionally
// filtered by status, ordered by start time.
func (repo *mongoBookingRepo) ListForProviderDay(ctx context.Context, providerID, date string, statuses []string) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"provider_id": providerID, "date": date}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := repo.bookingColl.Find(ctxWithTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings for %s on %s: %w", providerID, date, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	for cursor.Next(ctxWithTimeout) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}

// AppendStatus moves the booking to event.Status if it is still in
// expectedStatus, appending the event to the append-only history.
func (repo *mongoBookingRepo) AppendStatus(ctx context.Context, bookingID, expectedStatus string, event models.StatusEvent, actualDuration int) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "status": expectedStatus}
	set := bson.M{
		"status":     event.Status,
		"updated_at": event.At,
	}
	if actualDuration > 0 {
		set["actual_duration"] = actualDuration
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"status_history": event},
	}
	res, err := repo.bookingColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStatusChanged
	}
	return nil
}

// ListPendingOlderThan returns pending bookings created before the cutoff.
func (repo *mongoBookingRepo) ListPendingOlderThan(ctx context.Context, cutoffUnix int64) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.BookingPending,
		"created_at": bson.M{"$lt": time.Unix(cutoffUnix, 0)},
	}
	cursor, err := repo.bookingColl.Find(ctxWithTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding stale pending bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	for cursor.Next(ctxWithTimeout) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}
