package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "homely/database/repository/booking"
	"homely/models"
	"homely/services/availability"
	"homely/utils"

	"go.uber.org/zap"
)

// transitions is the lifecycle state machine: every legal move out of each
// non-terminal state. Terminal states have no entry.
var transitions = map[string][]string{
	models.BookingPending:    {models.BookingConfirmed, models.BookingRejected, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress: {models.BookingCompleted, models.BookingCancelled},
}

func canTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// transition applies one guarded state change, appending exactly one history
// event. releaseCapacity frees the held window slot for reject, cancel and
// complete.
func (s *DefaultBookingService) transition(ctx context.Context, bookingID, to, actor, notes string, actualDuration int, releaseCapacity bool) (*models.Booking, error) {
	b, err := s.Repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &availability.NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}

	if !canTransition(b.Status, to) {
		return nil, &InvalidTransitionError{BookingID: bookingID, From: b.Status, To: to}
	}

	event := models.StatusEvent{
		Status: to,
		At:     s.now(),
		Actor:  actor,
		Notes:  notes,
	}
	if err := s.Repo.AppendStatus(ctx, bookingID, b.Status, event, actualDuration); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusChanged) {
			return nil, &InvalidTransitionError{BookingID: bookingID, From: b.Status, To: to}
		}
		return nil, err
	}

	if releaseCapacity {
		s.releaseCapacity(ctx, b)
	}
	s.AvailabilitySvc.InvalidateSlots(ctx, b.ProviderID)

	b.Status = to
	b.UpdatedAt = event.At
	if actualDuration > 0 {
		b.ActualDuration = actualDuration
	}
	b.StatusHistory = append(b.StatusHistory, event)
	return b, nil
}

// releaseCapacity frees the booking's held window occupancy. The release is
// best-effort: the status change has already committed, so failures are
// logged rather than surfaced.
func (s *DefaultBookingService) releaseCapacity(ctx context.Context, b *models.Booking) {
	if b.WindowID == "" {
		return
	}
	logger := utils.GetLogger()

	day, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		logger.Warn("cannot release capacity for booking with bad date",
			zap.String("bookingId", b.ID), zap.String("date", b.Date))
		return
	}

	loc := bookingRepo.WindowLocator{
		ProviderID: b.ProviderID,
		Weekday:    int(day.Weekday()),
		WindowID:   b.WindowID,
	}
	// When the day's windows come from a custom-hours exception the counter
	// lives on the exception entry instead of the weekly array.
	if resolved, err := s.AvailabilitySvc.ResolveDay(ctx, b.ProviderID, b.Date); err == nil && resolved.ExceptionDate != "" {
		for _, w := range resolved.Windows {
			if w.ID == b.WindowID {
				loc.ExceptionDate = resolved.ExceptionDate
				break
			}
		}
	}

	if err := s.Repo.ReleaseCapacity(ctx, loc); err != nil {
		logger.Warn("failed to release window capacity",
			zap.String("bookingId", b.ID), zap.String("windowId", b.WindowID), zap.Error(err))
	}
}

// Accept moves a pending booking to confirmed.
func (s *DefaultBookingService) Accept(ctx context.Context, bookingID, note string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingConfirmed, ActorProvider, note, 0, false)
}

// Reject declines a pending booking and releases its slot.
func (s *DefaultBookingService) Reject(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("rejection requires a reason")
	}
	return s.transition(ctx, bookingID, models.BookingRejected, ActorProvider, reason, 0, true)
}

// Start marks a confirmed booking as underway.
func (s *DefaultBookingService) Start(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingInProgress, ActorProvider, "", 0, false)
}

// Complete finishes an in-progress booking, recording the actual duration
// when supplied. The record is kept for historical queries; it no longer
// constrains future slots.
func (s *DefaultBookingService) Complete(ctx context.Context, bookingID string, actualDuration int) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingCompleted, ActorProvider, "", actualDuration, true)
}

// Cancel withdraws an active booking and releases its slot.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, actor, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("cancellation requires a reason")
	}
	if actor == "" {
		actor = ActorCustomer
	}
	return s.transition(ctx, bookingID, models.BookingCancelled, actor, reason, 0, true)
}

// ExpireIfPending system-cancels a booking that was never accepted. A
// booking in any other state is left untouched.
func (s *DefaultBookingService) ExpireIfPending(ctx context.Context, bookingID string) error {
	b, err := s.Repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if b.Status != models.BookingPending {
		return nil
	}
	_, err = s.transition(ctx, bookingID, models.BookingCancelled, ActorSystem, "provider did not accept in time", 0, true)
	if err != nil {
		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) {
			// Lost a race with a real transition; nothing to expire.
			return nil
		}
	}
	return err
}

// ExpireStalePending sweeps pending bookings older than the accept TTL.
// It backs up the per-booking expiry tasks in case an enqueue was lost.
func (s *DefaultBookingService) ExpireStalePending(ctx context.Context) (int, error) {
	if s.PendingTTL <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.PendingTTL)
	stale, err := s.Repo.ListPendingOlderThan(ctx, cutoff.Unix())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range stale {
		if err := s.ExpireIfPending(ctx, b.ID); err != nil {
			utils.GetLogger().Warn("failed to expire pending booking", zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}
