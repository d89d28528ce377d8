package availability

import (
	"sort"

	"homely/models"
	"homely/utils"

	"go.uber.org/zap"
)

// GenerateSlots enumerates candidate start times (minutes from midnight) for
// a booking of durationMin across the given windows, in ascending order.
//
// Packing is back-to-back within a window: the cursor advances by the full
// duration, and a window ending exactly at cursor+duration still yields that
// last slot. Occupancy is not consulted here: the stored currentBookings
// counter tallies active bookings anywhere in the window, so a wide window
// with one booking must still offer its other slots. The conflict resolver
// weighs each candidate against the bookings that actually overlap it.
func GenerateSlots(windows []models.TimeWindow, durationMin int) []int {
	if durationMin <= 0 {
		return nil
	}
	logger := utils.GetLogger()

	seen := make(map[int]bool)
	var candidates []int

	for _, w := range windows {
		if w.IsBooked {
			continue
		}

		start, err := utils.ClockToMinutes(w.StartTime)
		if err != nil {
			logger.Warn("skipping malformed time window", zap.String("windowId", w.ID), zap.Error(err))
			continue
		}
		end, err := utils.ClockToMinutes(w.EndTime)
		if err != nil {
			logger.Warn("skipping malformed time window", zap.String("windowId", w.ID), zap.Error(err))
			continue
		}
		if start >= end {
			logger.Warn("skipping inverted time window",
				zap.String("windowId", w.ID), zap.String("start", w.StartTime), zap.String("end", w.EndTime))
			continue
		}

		for cursor := start; cursor+durationMin <= end; cursor += durationMin {
			if !seen[cursor] {
				seen[cursor] = true
				candidates = append(candidates, cursor)
			}
		}
	}

	sort.Ints(candidates)
	return candidates
}
