package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Pushkar2103/parkezy-new/middleware"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 << 10

// PaymentHandler carries both payment verification paths.
type PaymentHandler struct {
	Engine booking.ReservationEngine
	Logger *zap.Logger
}

func NewPaymentHandler(engine booking.ReservationEngine, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Engine: engine, Logger: logger}
}

// VerifyHandler is the client poll after returning from checkout.
func (h *PaymentHandler) VerifyHandler(c *gin.Context) {
	var in models.VerifyPaymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.Engine.ConfirmPayment(c.Request.Context(), in.OrderID)
	if b != nil && b.RenterID != middleware.CallerID(c) {
		writeError(c, booking.ErrNotAuthorized)
		return
	}
	if err != nil {
		if b != nil && errors.Is(err, booking.ErrGatewayUnreachable) {
			c.JSON(http.StatusAccepted, gin.H{"booking": b, "message": "Payment status not available yet"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// WebhookHandler receives gateway callbacks. It is unauthenticated; the
// signature over the raw body is the only credential.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		bindError(c, err)
		return
	}

	b, err := h.Engine.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, booking.ErrNotFound) {
		// Orders from elsewhere on the same account; acknowledge so they are not redelivered.
		h.Logger.Warn("webhook for unknown order", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"received": true}
	if b != nil {
		resp["bookingId"] = b.ID
		resp["status"] = b.Status
	}
	c.JSON(http.StatusOK, resp)
}
