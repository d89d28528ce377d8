// File: database/repository/booking/transaction.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"homely/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// capacityPath returns the update path and array filters addressing the
// located window's currentBookings counter.
func capacityPath(loc WindowLocator, windowFilter bson.M) (string, []interface{}) {
	if loc.ExceptionDate != "" {
		return "exceptions.$[e].customHours.$[w].currentBookings", []interface{}{
			bson.M{"e.date": loc.ExceptionDate},
			windowFilter,
		}
	}
	return fmt.Sprintf("days.%d.timeSlots.$[w].currentBookings", loc.Weekday), []interface{}{windowFilter}
}

// CreateHoldingCapacity inserts the booking and increments the owning
// window's occupancy counter in a single transaction. The counter tallies
// active bookings held anywhere on the window; whether a particular
// interval is full is the service's overlap check, taken under the
// provider-day lock. When the window no longer exists the transaction
// aborts with ErrWindowChanged so the caller can surface a
// slot-unavailable condition.
func (repo *mongoBookingRepo) CreateHoldingCapacity(ctx context.Context, booking *models.Booking, loc WindowLocator) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := repo.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}

		windowFilter := bson.M{"w.id": loc.WindowID}
		path, arrayFilters := capacityPath(loc, windowFilter)

		update := bson.M{
			"$inc": bson.M{path: 1},
			"$set": bson.M{"updatedAt": time.Now()},
		}
		opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: arrayFilters})
		res, err := repo.scheduleColl.UpdateOne(sc, bson.M{"providerId": loc.ProviderID}, update, opts)
		if err != nil {
			return fmt.Errorf("hold window capacity failed: %w", err)
		}
		// The window vanished between resolution and write, e.g. a schedule
		// rewrite or exception removal raced the booking.
		if res.ModifiedCount == 0 {
			return ErrWindowChanged
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}

// ReleaseCapacity decrements the located window's occupancy counter.
// The guard keeps the counter from going negative when a release races a
// schedule rewrite.
func (repo *mongoBookingRepo) ReleaseCapacity(ctx context.Context, loc WindowLocator) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	windowFilter := bson.M{
		"w.id":              loc.WindowID,
		"w.currentBookings": bson.M{"$gt": 0},
	}
	path, arrayFilters := capacityPath(loc, windowFilter)

	update := bson.M{
		"$inc": bson.M{path: -1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: arrayFilters})
	if _, err := repo.scheduleColl.UpdateOne(ctxWithTimeout, bson.M{"providerId": loc.ProviderID}, update, opts); err != nil {
		return fmt.Errorf("release window capacity failed: %w", err)
	}
	return nil
}
