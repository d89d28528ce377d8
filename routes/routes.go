package routes

import (
	"net/http"
	"time"

	"homely/handlers"
	"homely/middleware"
	"homely/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers schedule, exception and slot endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers/:id")
	{
		api.GET("/availability", hb.Availability.GetAvailabilityHandler)
		api.PUT("/availability", hb.Availability.UpdateAvailabilityHandler)

		api.GET("/availability/exceptions", hb.Availability.ListExceptionsHandler)
		api.POST("/availability/exceptions", hb.Availability.AddExceptionHandler)
		api.DELETE("/availability/exceptions/:date", hb.Availability.RemoveExceptionHandler)

		api.GET("/slots", hb.Availability.GetSlotsHandler)
		api.GET("/slots/check", hb.Availability.CheckSlotHandler)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.POST("", hb.Booking.CreateBookingHandler)
		api.GET("/:id", hb.Booking.GetBookingHandler)
		api.POST("/:id/accept", hb.Booking.AcceptBookingHandler)
		api.POST("/:id/reject", hb.Booking.RejectBookingHandler)
		api.POST("/:id/start", hb.Booking.StartBookingHandler)
		api.POST("/:id/complete", hb.Booking.CompleteBookingHandler)
		api.POST("/:id/cancel", hb.Booking.CancelBookingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint. An unhealthy
// snapshot answers 503 so load balancers pull the instance.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}
