package availability

import (
	"fmt"
	"time"

	"homely/models"

	"github.com/google/uuid"
)

// The legacy per-day {start,end,isActive} format predates the occupancy
// counters on canonical windows. The adapter lives at the API boundary only;
// slot generation always runs on the canonical form.

// ToCanonical converts a legacy schedule to the canonical week. Each active
// legacy slot becomes a fresh window with default capacity; inactive slots
// are dropped. A day with no active slots is marked unavailable.
func ToCanonical(legacy models.LegacyDaySchedule) (models.WeekSchedule, error) {
	var week models.WeekSchedule
	for name, slots := range legacy {
		weekday, err := weekdayIndex(name)
		if err != nil {
			return week, err
		}
		day := models.DaySchedule{}
		for _, s := range slots {
			if !s.IsActive {
				continue
			}
			day.TimeSlots = append(day.TimeSlots, models.TimeWindow{
				ID:                    uuid.New().String(),
				StartTime:             s.Start,
				EndTime:               s.End,
				IsBooked:              false,
				MaxConcurrentBookings: 1,
				CurrentBookings:       0,
			})
		}
		day.IsAvailable = len(day.TimeSlots) > 0
		week[weekday] = day
	}
	return week, nil
}

// ToLegacy converts a canonical week to the legacy shape. A window is
// active while it still has spare capacity.
func ToLegacy(week models.WeekSchedule) models.LegacyDaySchedule {
	legacy := make(models.LegacyDaySchedule, 7)
	for i := time.Sunday; i <= time.Saturday; i++ {
		day := week.Day(i)
		slots := make([]models.LegacySlot, 0, len(day.TimeSlots))
		for _, w := range day.TimeSlots {
			slots = append(slots, models.LegacySlot{
				Start:    w.StartTime,
				End:      w.EndTime,
				IsActive: !w.IsBooked && w.CurrentBookings < w.MaxConcurrentBookings,
			})
		}
		legacy[models.WeekdayName(i)] = slots
	}
	return legacy
}

func weekdayIndex(name string) (int, error) {
	for i := time.Sunday; i <= time.Saturday; i++ {
		if models.WeekdayName(i) == name {
			return int(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
