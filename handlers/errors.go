package handlers

import (
	"errors"
	"net/http"

	"github.com/Pushkar2103/parkezy-new/services/booking"
	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError maps engine sentinels to HTTP statuses in the standard error envelope.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, booking.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, booking.ErrSignatureInvalid):
		status, code = http.StatusBadRequest, "signature_invalid"
	case errors.Is(err, booking.ErrNotAuthorized):
		status, code = http.StatusForbidden, "not_authorized"
	case errors.Is(err, booking.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, booking.ErrSlotUnavailable):
		status, code = http.StatusConflict, "slot_unavailable"
	case errors.Is(err, booking.ErrNotPending):
		status, code = http.StatusConflict, "not_pending"
	case errors.Is(err, booking.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, booking.ErrPaymentRejected):
		status, code = http.StatusUnprocessableEntity, "payment_rejected"
	case errors.Is(err, booking.ErrGatewayUnreachable):
		status, code = http.StatusBadGateway, "gateway_unreachable"
	}

	message := http.StatusText(status)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = "An unexpected error occurred. Please try again later."
		utils.GetLogger().Error("request failed", zap.Error(err))
	}
	utils.JSONErrorCode(c, status, code, message, details)
}

func bindError(c *gin.Context, err error) {
	utils.JSONErrorCode(c, http.StatusBadRequest, "invalid_input", "Invalid input", err.Error())
}
