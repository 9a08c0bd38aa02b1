package handlers

import (
	"errors"
	"net/http"

	"github.com/Pushkar2103/parkezy-new/middleware"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the renter side of the reservation engine.
type BookingHandler struct {
	Engine booking.ReservationEngine
	Logger *zap.Logger
}

func NewBookingHandler(engine booking.ReservationEngine, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Engine: engine, Logger: logger}
}

// ClaimHandler claims a slot. A booking whose checkout could not be opened yet
// is answered with 202 so the client can retry through the checkout route.
func (h *BookingHandler) ClaimHandler(c *gin.Context) {
	var req models.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.Engine.ClaimAndReserve(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		if b != nil && errors.Is(err, booking.ErrGatewayUnreachable) {
			c.JSON(http.StatusAccepted, gin.H{"booking": b, "message": "Payment gateway unavailable, retry checkout later"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// ResumeCheckoutHandler opens the payment checkout of a held booking.
func (h *BookingHandler) ResumeCheckoutHandler(c *gin.Context) {
	b, err := h.Engine.ResumePayment(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Engine.GetBooking(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) ListCurrentHandler(c *gin.Context) {
	h.list(c, false)
}

func (h *BookingHandler) ListHistoryHandler(c *gin.Context) {
	h.list(c, true)
}

func (h *BookingHandler) list(c *gin.Context, history bool) {
	list, err := h.Engine.ListRenterBookings(c.Request.Context(), middleware.CallerID(c), history)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) CancelRequestHandler(c *gin.Context) {
	b, err := h.Engine.RequestCancel(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) CompleteRequestHandler(c *gin.Context) {
	b, err := h.Engine.RequestComplete(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
