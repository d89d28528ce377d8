// File: database/repository/availability/availability_mongo.go
package availabilityRepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"homely/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetSchedule retrieves a provider's schedule document.
func (repo *mongoAvailabilityRepo) GetSchedule(ctx context.Context, providerID string) (*models.WeeklySchedule, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var schedule models.WeeklySchedule
	filter := bson.M{"providerId": providerID}
	if err := repo.coll.FindOne(ctxWithTimeout, filter).Decode(&schedule); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching schedule for provider %s: %w", providerID, err)
	}
	return &schedule, nil
}

// UpsertSchedule writes the full schedule document, creating it if absent.
func (repo *mongoAvailabilityRepo) UpsertSchedule(ctx context.Context, schedule *models.WeeklySchedule) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	schedule.UpdatedAt = time.Now()
	filter := bson.M{"providerId": schedule.ProviderID}
	opts := options.Replace().SetUpsert(true)
	if _, err := repo.coll.ReplaceOne(ctxWithTimeout, filter, schedule, opts); err != nil {
		return fmt.Errorf("error upserting schedule for provider %s: %w", schedule.ProviderID, err)
	}
	return nil
}

// AddException replaces any entry for the same date with the new one in a
// single update, so concurrent writers for one date can never leave two
// entries or drop the winner.
func (repo *mongoAvailabilityRepo) AddException(ctx context.Context, providerID string, entry models.ExceptionEntry) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID}
	res, err := repo.coll.UpdateOne(ctxWithTimeout, filter, replaceExceptionPipeline(entry))
	if err != nil {
		return fmt.Errorf("error adding exception for %s on %s: %w", providerID, entry.Date, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no schedule document for provider %s", providerID)
	}
	return nil
}

// replaceExceptionPipeline builds an aggregation-pipeline update that filters
// out the date's old entry and appends the new one atomically.
func replaceExceptionPipeline(entry models.ExceptionEntry) mongo.Pipeline {
	return mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"exceptions": bson.M{"$concatArrays": bson.A{
			bson.M{"$filter": bson.M{
				"input": bson.M{"$ifNull": bson.A{"$exceptions", bson.A{}}},
				"as":    "e",
				"cond":  bson.M{"$ne": bson.A{"$$e.date", entry.Date}},
			}},
			bson.A{entry},
		}},
		"updatedAt": "$$NOW",
	}}}}
}

// RemoveException deletes the entry for the date; removing a missing entry is a no-op.
func (repo *mongoAvailabilityRepo) RemoveException(ctx context.Context, providerID, date string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID}
	update := bson.M{
		"$pull": bson.M{"exceptions": bson.M{"date": date}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	if _, err := repo.coll.UpdateOne(ctxWithTimeout, filter, update); err != nil {
		return fmt.Errorf("error removing exception for %s on %s: %w", providerID, date, err)
	}
	return nil
}

// ListExceptions returns exceptions with from <= date <= to, ordered by date.
// ISO dates compare correctly as strings.
func (repo *mongoAvailabilityRepo) ListExceptions(ctx context.Context, providerID, from, to string) ([]models.ExceptionEntry, error) {
	schedule, err := repo.GetSchedule(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, nil
	}

	var entries []models.ExceptionEntry
	for _, e := range schedule.Exceptions {
		if (from == "" || e.Date >= from) && (to == "" || e.Date <= to) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}
