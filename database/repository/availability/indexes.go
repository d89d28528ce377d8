// FILE: database/repository/availability/indexes.go
package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the schedules collection.
func (repo *mongoAvailabilityRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// One schedule document per provider.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_provider"),
		},
		// Exception lookups by date.
		{
			Keys:    bson.D{{Key: "providerId", Value: 1}, {Key: "exceptions.date", Value: 1}},
			Options: options.Index().SetName("provider_exception_date_idx"),
		},
	}

	_, err := repo.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create schedule indexes: %w", err)
	}
	return nil
}
