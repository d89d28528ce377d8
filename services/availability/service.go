package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	availabilityRepo "homely/database/repository/availability"
	bookingRepo "homely/database/repository/booking"
	"homely/models"
	"homely/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultAvailabilityService is the production implementation backed by the
// schedule and booking repositories, with a version-keyed Redis cache in
// front of slot computation.
type DefaultAvailabilityService struct {
	Repo        availabilityRepo.AvailabilityRepository
	BookingRepo bookingRepo.BookingRepository
	Cache       *redis.Client
	CacheTTL    time.Duration
	Clock       func() time.Time // nil means time.Now
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// GetAvailability returns the stored schedule, materializing the default
// Monday-Friday schedule on first access.
func (s *DefaultAvailabilityService) GetAvailability(ctx context.Context, providerID string) (*models.WeeklySchedule, error) {
	schedule, err := s.Repo.GetSchedule(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if schedule != nil {
		return schedule, nil
	}

	schedule = DefaultWeeklySchedule(providerID)
	if err := ValidateWeekSchedule(&schedule.Days); err != nil {
		return nil, err
	}
	if err := s.Repo.UpsertSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("materialized default schedule", zap.String("providerId", providerID))
	return schedule, nil
}

// UpdateWeeklySchedule validates and stores a schedule change. Legacy-form
// payloads are converted through the format adapter first; the legacy form
// is never persisted.
func (s *DefaultAvailabilityService) UpdateWeeklySchedule(ctx context.Context, providerID string, update ScheduleUpdate) (*models.WeeklySchedule, error) {
	schedule, err := s.GetAvailability(ctx, providerID)
	if err != nil {
		return nil, err
	}

	days := update.Days
	if days == nil && update.LegacyDays != nil {
		week, err := ToCanonical(update.LegacyDays)
		if err != nil {
			return nil, &InvalidScheduleError{Field: "days", Reason: err.Error()}
		}
		days = &week
	}
	if days != nil {
		if err := ValidateWeekSchedule(days); err != nil {
			return nil, err
		}
		schedule.Days = *days
	}

	if update.BufferTime != nil {
		if *update.BufferTime < 0 {
			return nil, &InvalidScheduleError{Field: "bufferTime", Reason: "must be >= 0"}
		}
		schedule.BufferTime = *update.BufferTime
	}
	if update.MinNoticeTime != nil {
		if *update.MinNoticeTime < 0 {
			return nil, &InvalidScheduleError{Field: "minNoticeTime", Reason: "must be >= 0"}
		}
		schedule.MinNoticeTime = *update.MinNoticeTime
	}
	if update.MaxAdvanceBooking != nil {
		if *update.MaxAdvanceBooking < 0 {
			return nil, &InvalidScheduleError{Field: "maxAdvanceBooking", Reason: "must be >= 0"}
		}
		schedule.MaxAdvanceBooking = *update.MaxAdvanceBooking
	}
	if update.AutoAcceptBookings != nil {
		schedule.AutoAcceptBookings = *update.AutoAcceptBookings
	}

	if err := s.Repo.UpsertSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	s.InvalidateSlots(ctx, providerID)
	return schedule, nil
}

// AddException stores a date override; an existing entry for the same date
// is replaced (last write wins).
func (s *DefaultAvailabilityService) AddException(ctx context.Context, providerID string, entry models.ExceptionEntry) error {
	if err := validateExceptionEntry(&entry); err != nil {
		return err
	}
	// Ensure the schedule document exists before pushing into it.
	if _, err := s.GetAvailability(ctx, providerID); err != nil {
		return err
	}
	if err := s.Repo.AddException(ctx, providerID, entry); err != nil {
		return err
	}
	s.InvalidateSlots(ctx, providerID)
	return nil
}

// RemoveException deletes the override for the date; removing a date with
// no exception is a no-op.
func (s *DefaultAvailabilityService) RemoveException(ctx context.Context, providerID, date string) error {
	if err := s.Repo.RemoveException(ctx, providerID, date); err != nil {
		return err
	}
	s.InvalidateSlots(ctx, providerID)
	return nil
}

// ListExceptions returns the provider's exceptions within [from, to].
func (s *DefaultAvailabilityService) ListExceptions(ctx context.Context, providerID, from, to string) ([]models.ExceptionEntry, error) {
	return s.Repo.ListExceptions(ctx, providerID, from, to)
}

// ResolveDay applies the date's exception (if any) over the weekly schedule.
func (s *DefaultAvailabilityService) ResolveDay(ctx context.Context, providerID, date string) (*DayAvailability, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	schedule, err := s.GetAvailability(ctx, providerID)
	if err != nil {
		return nil, err
	}

	resolved := &DayAvailability{Schedule: schedule, Weekday: day.Weekday()}
	for _, e := range schedule.Exceptions {
		if e.Date != date {
			continue
		}
		switch e.Type {
		case models.ExceptionUnavailable:
			resolved.Unavailable = true
			return resolved, nil
		case models.ExceptionCustomHours:
			resolved.Windows = e.CustomHours
			resolved.ExceptionDate = date
			return resolved, nil
		}
		// special_pricing does not alter availability.
		break
	}

	weekly := schedule.Days.Day(day.Weekday())
	if !weekly.IsAvailable {
		resolved.Unavailable = true
		return resolved, nil
	}
	resolved.Windows = weekly.TimeSlots
	return resolved, nil
}

// GetAvailableSlots computes the bookable start times for (provider, date,
// duration): exceptions over weekly windows, slot generation, conflict
// filtering against active bookings, then notice and horizon policy.
func (s *DefaultAvailabilityService) GetAvailableSlots(ctx context.Context, providerID, date string, durationMin int) ([]string, error) {
	if durationMin <= 0 {
		return []string{}, nil
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	now := s.now()

	// Cached entries hold the conflict-filtered list; the notice cutoff
	// keeps moving while the entry lives, so it is re-applied on every hit.
	cacheKey := s.slotCacheKey(ctx, providerID, date, durationMin)
	if cached, ok := s.cachedSlots(ctx, cacheKey); ok {
		return applyNoticeFilter(cached.Slots, day, cached.MinNoticeHours, now), nil
	}

	resolved, err := s.ResolveDay(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	if resolved.Unavailable || len(resolved.Windows) == 0 {
		return []string{}, nil
	}

	// Dates beyond the advance-booking horizon are simply not offered.
	if h := resolved.Schedule.MaxAdvanceBooking; h > 0 {
		horizon := now.AddDate(0, 0, h)
		if day.After(horizon) {
			return []string{}, nil
		}
	}

	candidates := GenerateSlots(resolved.Windows, durationMin)
	if len(candidates) == 0 {
		return []string{}, nil
	}

	bookings, err := s.BookingRepo.ListForProviderDay(ctx, providerID, date, models.ActiveStatuses())
	if err != nil {
		return nil, err
	}
	free := FilterConflicting(candidates, durationMin, resolved.Windows, bookings)

	slots := make([]string, 0, len(free))
	for _, c := range free {
		slots = append(slots, utils.MinutesToClock(c))
	}

	s.storeSlots(ctx, cacheKey, cachedDaySlots{
		Slots:          slots,
		MinNoticeHours: resolved.Schedule.MinNoticeTime,
	})
	return applyNoticeFilter(slots, day, resolved.Schedule.MinNoticeTime, now), nil
}

// applyNoticeFilter drops start times closer to now than the minimum notice.
func applyNoticeFilter(slots []string, day time.Time, minNoticeHours int, now time.Time) []string {
	earliest := now.Add(time.Duration(minNoticeHours) * time.Hour)
	dayMidnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())

	kept := make([]string, 0, len(slots))
	for _, clock := range slots {
		start, err := utils.ClockToMinutes(clock)
		if err != nil {
			continue
		}
		if dayMidnight.Add(time.Duration(start) * time.Minute).Before(earliest) {
			continue
		}
		kept = append(kept, clock)
	}
	return kept
}

// CheckSlotAvailability runs the overlap test for an arbitrary requested
// interval rather than an enumerated candidate.
func (s *DefaultAvailabilityService) CheckSlotAvailability(ctx context.Context, providerID, date, startClock, endClock string) (models.SlotCheckResult, error) {
	start, err := utils.ClockToMinutes(startClock)
	if err != nil {
		return models.SlotCheckResult{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := utils.ClockToMinutes(endClock)
	if err != nil {
		return models.SlotCheckResult{}, fmt.Errorf("invalid end: %w", err)
	}
	if start >= end {
		return models.SlotCheckResult{}, fmt.Errorf("start %s must be before end %s", startClock, endClock)
	}

	bookings, err := s.BookingRepo.ListForProviderDay(ctx, providerID, date, models.ActiveStatuses())
	if err != nil {
		return models.SlotCheckResult{}, err
	}

	conflicts := CountConflicts(start, end, bookings)
	return models.SlotCheckResult{
		IsAvailable:         conflicts == 0,
		ConflictingBookings: conflicts,
	}, nil
}

// InvalidateSlots bumps the provider's availability version; stale cached
// slot lists keyed on the old version simply age out.
func (s *DefaultAvailabilityService) InvalidateSlots(ctx context.Context, providerID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Incr(ctx, slotVersionKey(providerID)).Err(); err != nil {
		utils.GetLogger().Warn("failed to bump slot version", zap.String("providerId", providerID), zap.Error(err))
	}
}

func slotVersionKey(providerID string) string {
	return fmt.Sprintf("slotsver:%s", providerID)
}

func (s *DefaultAvailabilityService) slotCacheKey(ctx context.Context, providerID, date string, durationMin int) string {
	if s.Cache == nil {
		return ""
	}
	ver, err := s.Cache.Get(ctx, slotVersionKey(providerID)).Int64()
	if err != nil && err != redis.Nil {
		return ""
	}
	return fmt.Sprintf("slots:%s:%d:%s:%d", providerID, ver, date, durationMin)
}

// cachedDaySlots is the cache payload: the conflict-filtered start times
// plus the notice policy needed to re-filter them at read time.
type cachedDaySlots struct {
	Slots          []string `json:"slots"`
	MinNoticeHours int      `json:"minNoticeHours"`
}

func (s *DefaultAvailabilityService) cachedSlots(ctx context.Context, key string) (cachedDaySlots, bool) {
	if s.Cache == nil || key == "" {
		return cachedDaySlots{}, false
	}
	raw, err := s.Cache.Get(ctx, key).Result()
	if err != nil {
		return cachedDaySlots{}, false
	}
	var entry cachedDaySlots
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return cachedDaySlots{}, false
	}
	return entry, true
}

func (s *DefaultAvailabilityService) storeSlots(ctx context.Context, key string, entry cachedDaySlots) {
	if s.Cache == nil || key == "" {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.Cache.Set(ctx, key, raw, ttl).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache slots", zap.String("key", key), zap.Error(err))
	}
}
