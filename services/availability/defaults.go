package availability

import (
	"time"

	"homely/models"

	"github.com/google/uuid"
)

// Default working hours materialized on first access for a provider with no
// stored schedule. Policy, not mechanism: callers may override via upsert.
const (
	defaultWorkStart         = "09:00"
	defaultWorkEnd           = "17:00"
	defaultMaxAdvanceBooking = 30 // days
)

// DefaultWeeklySchedule returns the Monday-Friday 09:00-17:00 schedule with
// weekends unavailable.
func DefaultWeeklySchedule(providerID string) *models.WeeklySchedule {
	var week models.WeekSchedule
	for d := time.Monday; d <= time.Friday; d++ {
		week.SetDay(d, models.DaySchedule{
			IsAvailable: true,
			TimeSlots: []models.TimeWindow{{
				ID:                    uuid.New().String(),
				StartTime:             defaultWorkStart,
				EndTime:               defaultWorkEnd,
				MaxConcurrentBookings: 1,
			}},
		})
	}
	return &models.WeeklySchedule{
		ProviderID:        providerID,
		Days:              week,
		MaxAdvanceBooking: defaultMaxAdvanceBooking,
	}
}
