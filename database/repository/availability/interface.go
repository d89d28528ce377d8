// File: database/repository/availability/interface.go
package availabilityRepo

import (
	"context"

	"homely/database"
	"homely/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityRepository is the persistence boundary for weekly schedules
// and their date exceptions.
type AvailabilityRepository interface {
	// GetSchedule returns the stored schedule, or nil when the provider has
	// none yet (the service materializes defaults in that case).
	GetSchedule(ctx context.Context, providerID string) (*models.WeeklySchedule, error)
	UpsertSchedule(ctx context.Context, schedule *models.WeeklySchedule) error
	// AddException replaces any existing entry for the same date (last write wins).
	AddException(ctx context.Context, providerID string, entry models.ExceptionEntry) error
	// RemoveException is a no-op when no entry exists for the date.
	RemoveException(ctx context.Context, providerID, date string) error
	ListExceptions(ctx context.Context, providerID, from, to string) ([]models.ExceptionEntry, error)
	EnsureIndexes() error
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new MongoDB AvailabilityRepository.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	return &mongoAvailabilityRepo{
		coll: database.DB().Collection("schedules"),
	}
}
