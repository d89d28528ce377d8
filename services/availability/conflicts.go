package availability

import (
	"homely/models"
	"homely/utils"
)

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not conflict.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}

// constrains reports whether a booking's status still blocks future slots.
func constrains(b models.Booking) bool {
	switch b.Status {
	case models.BookingPending, models.BookingConfirmed, models.BookingInProgress:
		return true
	}
	return false
}

// concurrencyAt returns the highest concurrency limit among open windows
// fully containing [start, end). Zero when no window contains the interval.
func concurrencyAt(windows []models.TimeWindow, start, end int) int {
	limit := 0
	for _, w := range windows {
		if w.IsBooked {
			continue
		}
		ws, err := utils.ClockToMinutes(w.StartTime)
		if err != nil {
			continue
		}
		we, err := utils.ClockToMinutes(w.EndTime)
		if err != nil {
			continue
		}
		if ws <= start && end <= we && w.MaxConcurrentBookings > limit {
			limit = w.MaxConcurrentBookings
		}
	}
	return limit
}

// FilterConflicting removes candidates whose interval [c, c+duration) is
// already at its window's concurrency limit: a candidate survives while
// fewer active bookings overlap it than the containing window allows
// simultaneously. Completed, cancelled and rejected bookings never
// constrain.
func FilterConflicting(candidates []int, durationMin int, windows []models.TimeWindow, bookings []models.Booking) []int {
	if len(bookings) == 0 {
		return candidates
	}

	var free []int
	for _, c := range candidates {
		limit := concurrencyAt(windows, c, c+durationMin)
		if limit <= 0 {
			limit = 1
		}
		if CountConflicts(c, c+durationMin, bookings) < limit {
			free = append(free, c)
		}
	}
	return free
}

// CountConflicts counts active bookings overlapping the interval
// [start, end) in minutes from midnight.
func CountConflicts(start, end int, bookings []models.Booking) int {
	count := 0
	for _, b := range bookings {
		if !constrains(b) {
			continue
		}
		if Overlaps(start, end, b.Start, b.End) {
			count++
		}
	}
	return count
}
