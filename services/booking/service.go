package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "homely/database/repository/booking"
	"homely/models"
	"homely/services/availability"
	"homely/services/tasks"
	"homely/utils"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const dayMinutes = 24 * 60

// CreateBooking validates the request against the provider's resolved
// availability and persists the booking while holding the provider-day lock,
// so two customers racing for the last opening cannot both succeed.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	start, err := utils.ClockToMinutes(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid startTime: %w", err)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	end := start + req.Duration
	if end > dayMinutes {
		return nil, fmt.Errorf("booking cannot run past midnight")
	}

	var booking *models.Booking
	lockErr := s.Locker.WithProviderDayLock(ctx, req.ProviderID, req.Date, func(ctx context.Context) error {
		resolved, err := s.AvailabilitySvc.ResolveDay(ctx, req.ProviderID, req.Date)
		if err != nil {
			return err
		}
		if resolved.Unavailable {
			return &availability.SlotUnavailableError{Reason: "provider is not available on this date"}
		}

		now := s.now()
		if h := resolved.Schedule.MaxAdvanceBooking; h > 0 && day.After(now.AddDate(0, 0, h)) {
			return &availability.SlotUnavailableError{Reason: "date is beyond the advance booking horizon"}
		}
		slotStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location()).
			Add(time.Duration(start) * time.Minute)
		if slotStart.Before(now.Add(time.Duration(resolved.Schedule.MinNoticeTime) * time.Hour)) {
			return &availability.SlotUnavailableError{Reason: "slot does not meet the minimum notice"}
		}

		window := containingWindow(resolved.Windows, start, end)
		if window == nil {
			return &availability.SlotUnavailableError{Reason: "no open window covers the requested time"}
		}

		active, err := s.Repo.ListForProviderDay(ctx, req.ProviderID, req.Date, models.ActiveStatuses())
		if err != nil {
			return err
		}
		if availability.CountConflicts(start, end, active) >= window.MaxConcurrentBookings {
			return &availability.SlotUnavailableError{Reason: "requested time conflicts with an existing booking"}
		}

		status := models.BookingPending
		if resolved.Schedule.AutoAcceptBookings {
			status = models.BookingConfirmed
		}
		booking = &models.Booking{
			ID:         uuid.NewString(),
			ProviderID: req.ProviderID,
			CustomerID: req.CustomerID,
			ServiceID:  req.ServiceID,
			Date:       req.Date,
			Start:      start,
			End:        end,
			Duration:   req.Duration,
			WindowID:   window.ID,
			Status:     status,
			StatusHistory: []models.StatusEvent{{
				Status: status,
				At:     now,
				Actor:  ActorCustomer,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		}

		loc := bookingRepo.WindowLocator{
			ProviderID:    req.ProviderID,
			Weekday:       int(day.Weekday()),
			ExceptionDate: resolved.ExceptionDate,
			WindowID:      window.ID,
		}
		if err := s.Repo.CreateHoldingCapacity(ctx, booking, loc); err != nil {
			if errors.Is(err, bookingRepo.ErrWindowChanged) {
				return &availability.SlotUnavailableError{Reason: "the schedule changed while booking, retry"}
			}
			return err
		}
		return nil
	})
	if lockErr != nil {
		if errors.Is(lockErr, utils.ErrLockNotAcquired) {
			return nil, &availability.SlotUnavailableError{Reason: "another booking for this day is in progress, retry shortly"}
		}
		return nil, lockErr
	}

	s.AvailabilitySvc.InvalidateSlots(ctx, req.ProviderID)
	if booking.Status == models.BookingPending {
		s.scheduleExpiry(booking.ID)
	}

	utils.GetLogger().Info("booking created",
		zap.String("bookingId", booking.ID),
		zap.String("providerId", booking.ProviderID),
		zap.String("status", booking.Status))
	return booking, nil
}

// containingWindow returns the first open window that fully contains
// [start, end), or nil. The occupancy counter is not consulted: it counts
// active bookings anywhere in the window, and whether this particular
// interval is full is decided by the overlap count against the window's
// concurrency limit.
func containingWindow(windows []models.TimeWindow, start, end int) *models.TimeWindow {
	for i := range windows {
		w := &windows[i]
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
		if ws <= start && end <= we {
			return w
		}
	}
	return nil
}

func (s *DefaultBookingService) scheduleExpiry(bookingID string) {
	if s.TaskClient == nil || s.PendingTTL <= 0 {
		return
	}
	task, err := tasks.NewBookingExpiryTask(bookingID)
	if err != nil {
		utils.GetLogger().Warn("failed to build expiry task", zap.String("bookingId", bookingID), zap.Error(err))
		return
	}
	if _, err := s.TaskClient.Enqueue(task, asynq.ProcessIn(s.PendingTTL)); err != nil {
		// The sweeper in the worker picks up anything the queue missed.
		utils.GetLogger().Warn("failed to enqueue expiry task", zap.String("bookingId", bookingID), zap.Error(err))
	}
}

// GetBooking fetches a booking by id.
func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &availability.NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	return b, nil
}
