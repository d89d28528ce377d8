// File: services/tasks/expiry.go
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"homely/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeBookingExpiry is the task type for pending-booking expiry. One task is
// enqueued per booking at creation, delayed by the provider accept TTL.
const TypeBookingExpiry = "booking:expiry"

// BookingExpiryPayload carries the booking to expire.
type BookingExpiryPayload struct {
	BookingID string `json:"bookingId"`
}

// PendingExpirer is the slice of the booking service the expiry handler needs.
type PendingExpirer interface {
	ExpireIfPending(ctx context.Context, bookingID string) error
}

// NewBookingExpiryTask builds the delayed expiry task for a pending booking.
func NewBookingExpiryTask(bookingID string) (*asynq.Task, error) {
	payload, err := json.Marshal(BookingExpiryPayload{BookingID: bookingID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal expiry payload: %w", err)
	}
	return asynq.NewTask(TypeBookingExpiry, payload), nil
}

// NewBookingExpiryHandler returns the asynq handler that expires the booking
// if it is still pending when the task fires.
func NewBookingExpiryHandler(svc PendingExpirer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p BookingExpiryPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("failed to unmarshal expiry payload: %w", err)
		}
		utils.GetLogger().Info("processing booking expiry", zap.String("bookingId", p.BookingID))
		return svc.ExpireIfPending(ctx, p.BookingID)
	}
}
