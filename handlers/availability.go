package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"homely/models"
	"homely/services/availability"
	bookingSvc "homely/services/booking"
	"homely/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler exposes schedule, exception and slot endpoints.
type AvailabilityHandler struct {
	Service availability.AvailabilityService
}

// writeServiceError maps service errors onto HTTP statuses shared by the
// availability and booking endpoints.
func writeServiceError(c *gin.Context, err error) {
	var invalidSchedule *availability.InvalidScheduleError
	var notFound *availability.NotFoundError
	var unavailable *availability.SlotUnavailableError
	var invalidTransition *bookingSvc.InvalidTransitionError

	switch {
	case errors.As(err, &invalidSchedule):
		utils.JSONError(c, http.StatusUnprocessableEntity, "Invalid schedule", err.Error())
	case errors.As(err, &notFound):
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
	case errors.As(err, &unavailable):
		utils.JSONError(c, http.StatusConflict, "Slot unavailable", err.Error())
	case errors.As(err, &invalidTransition):
		utils.JSONError(c, http.StatusConflict, "Invalid transition", err.Error())
	default:
		utils.GetLogger().Error("request failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("id")
	schedule, err := h.Service.GetAvailability(c.Request.Context(), providerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *AvailabilityHandler) UpdateAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("id")

	var update availability.ScheduleUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	schedule, err := h.Service.UpdateWeeklySchedule(c.Request.Context(), providerID, update)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *AvailabilityHandler) AddExceptionHandler(c *gin.Context) {
	providerID := c.Param("id")

	var entry models.ExceptionEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	if err := h.Service.AddException(c.Request.Context(), providerID, entry); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Exception stored", "date": entry.Date})
}

func (h *AvailabilityHandler) RemoveExceptionHandler(c *gin.Context) {
	providerID := c.Param("id")
	date := c.Param("date")

	if err := h.Service.RemoveException(c.Request.Context(), providerID, date); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exception removed", "date": date})
}

func (h *AvailabilityHandler) ListExceptionsHandler(c *gin.Context) {
	providerID := c.Param("id")
	exceptions, err := h.Service.ListExceptions(c.Request.Context(), providerID, c.Query("from"), c.Query("to"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if exceptions == nil {
		exceptions = []models.ExceptionEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"exceptions": exceptions})
}

func (h *AvailabilityHandler) GetSlotsHandler(c *gin.Context) {
	providerID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "missing required query parameter: date")
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("duration", "60"))
	if err != nil || duration <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "duration must be a positive number of minutes")
		return
	}

	slots, err := h.Service.GetAvailableSlots(c.Request.Context(), providerID, date, duration)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"providerId": providerID,
		"date":       date,
		"duration":   duration,
		"slots":      slots,
	})
}

func (h *AvailabilityHandler) CheckSlotHandler(c *gin.Context) {
	providerID := c.Param("id")
	date := c.Query("date")
	start := c.Query("start")
	end := c.Query("end")
	if date == "" || start == "" || end == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "missing required query parameters: date, start, end")
		return
	}

	result, err := h.Service.CheckSlotAvailability(c.Request.Context(), providerID, date, start, end)
	if err != nil {
		var notFound *availability.NotFoundError
		if errors.As(err, &notFound) {
			writeServiceError(c, err)
			return
		}
		utils.JSONError(c, http.StatusBadRequest, "Invalid slot check", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}
