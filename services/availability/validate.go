package availability

import (
	"fmt"
	"sort"
	"time"

	"homely/models"
	"homely/utils"

	"github.com/google/uuid"
)

// ValidateWeekSchedule checks every day's windows: parseable times,
// start < end, and no overlap between windows of the same day. The engine
// does not merge or reorder a provider's windows; overlap is a caller error.
// Windows without an id are assigned one in place.
func ValidateWeekSchedule(week *models.WeekSchedule) error {
	for d := time.Sunday; d <= time.Saturday; d++ {
		day := week[int(d)]
		name := models.WeekdayName(d)

		type span struct {
			start, end int
		}
		spans := make([]span, 0, len(day.TimeSlots))
		for i := range day.TimeSlots {
			w := &day.TimeSlots[i]
			if w.ID == "" {
				w.ID = uuid.New().String()
			}
			if w.MaxConcurrentBookings <= 0 {
				w.MaxConcurrentBookings = 1
			}
			start, err := utils.ClockToMinutes(w.StartTime)
			if err != nil {
				return &InvalidScheduleError{Day: name, Field: "startTime", Reason: err.Error()}
			}
			end, err := utils.ClockToMinutes(w.EndTime)
			if err != nil {
				return &InvalidScheduleError{Day: name, Field: "endTime", Reason: err.Error()}
			}
			if start >= end {
				return &InvalidScheduleError{
					Day: name, Field: "timeSlots",
					Reason: fmt.Sprintf("window %s-%s has start >= end", w.StartTime, w.EndTime),
				}
			}
			spans = append(spans, span{start, end})
		}

		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
		for i := 1; i < len(spans); i++ {
			if spans[i].start < spans[i-1].end {
				return &InvalidScheduleError{
					Day: name, Field: "timeSlots",
					Reason: fmt.Sprintf("windows overlap around %s", utils.MinutesToClock(spans[i].start)),
				}
			}
		}
		week[int(d)] = day
	}
	return nil
}

// validateExceptionEntry checks an exception before it is stored.
func validateExceptionEntry(entry *models.ExceptionEntry) error {
	if _, err := time.Parse("2006-01-02", entry.Date); err != nil {
		return &InvalidScheduleError{Field: "date", Reason: fmt.Sprintf("invalid date %q", entry.Date)}
	}
	switch entry.Type {
	case models.ExceptionUnavailable, models.ExceptionSpecialPricing:
	case models.ExceptionCustomHours:
		if len(entry.CustomHours) == 0 {
			return &InvalidScheduleError{Field: "customHours", Reason: "custom_hours exception requires customHours"}
		}
		for i := range entry.CustomHours {
			w := &entry.CustomHours[i]
			if w.ID == "" {
				w.ID = uuid.New().String()
			}
			if w.MaxConcurrentBookings <= 0 {
				w.MaxConcurrentBookings = 1
			}
			start, err := utils.ClockToMinutes(w.StartTime)
			if err != nil {
				return &InvalidScheduleError{Field: "customHours", Reason: err.Error()}
			}
			end, err := utils.ClockToMinutes(w.EndTime)
			if err != nil {
				return &InvalidScheduleError{Field: "customHours", Reason: err.Error()}
			}
			if start >= end {
				return &InvalidScheduleError{Field: "customHours", Reason: "window has start >= end"}
			}
		}
	default:
		return &InvalidScheduleError{Field: "type", Reason: fmt.Sprintf("unknown exception type %q", entry.Type)}
	}
	return nil
}
