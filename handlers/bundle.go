// File: handlers/bundle.go
package handlers

import (
	"homely/services/availability"
	bookingSvc "homely/services/booking"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Availability *AvailabilityHandler
	Booking      *BookingHandler
}

// NewHandlerBundle wires the services into their handlers.
func NewHandlerBundle(availabilitySvc availability.AvailabilityService, bookingService bookingSvc.BookingService) *HandlerBundle {
	return &HandlerBundle{
		Availability: &AvailabilityHandler{Service: availabilitySvc},
		Booking:      &BookingHandler{Service: bookingService},
	}
}
