package handlers

import (
	"net/http"

	"homely/models"
	bookingSvc "homely/services/booking"
	"homely/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the booking lifecycle endpoints.
type BookingHandler struct {
	Service bookingSvc.BookingService
}

func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	booking, err := h.Service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	booking, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) AcceptBookingHandler(c *gin.Context) {
	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body) // note is optional

	booking, err := h.Service.Accept(c.Request.Context(), c.Param("id"), body.Note)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) RejectBookingHandler(c *gin.Context) {
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "a rejection reason is required")
		return
	}

	booking, err := h.Service.Reject(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) StartBookingHandler(c *gin.Context) {
	booking, err := h.Service.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	var body struct {
		ActualDuration int `json:"actualDuration"`
	}
	_ = c.ShouldBindJSON(&body) // actual duration is optional

	booking, err := h.Service.Complete(c.Request.Context(), c.Param("id"), body.ActualDuration)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var body struct {
		Actor  string `json:"actor"`
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "a cancellation reason is required")
		return
	}

	booking, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), body.Actor, body.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
