package handlers

import (
	"net/http"

	"github.com/Pushkar2103/parkezy-new/middleware"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/booking"

	"github.com/gin-gonic/gin"
)

// OwnerHandler serves the owner's request inbox and decisions.
type OwnerHandler struct {
	Engine booking.ReservationEngine
}

func NewOwnerHandler(engine booking.ReservationEngine) *OwnerHandler {
	return &OwnerHandler{Engine: engine}
}

type decisionInput struct {
	Decision models.Decision `json:"decision" binding:"required"`
}

func (h *OwnerHandler) PendingRequestsHandler(c *gin.Context) {
	list, err := h.Engine.PendingRequests(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *OwnerHandler) CancelDecisionHandler(c *gin.Context) {
	var in decisionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	b, err := h.Engine.RespondCancel(c.Request.Context(), c.Param("id"), middleware.CallerID(c), in.Decision)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *OwnerHandler) CompleteDecisionHandler(c *gin.Context) {
	var in decisionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	b, err := h.Engine.RespondComplete(c.Request.Context(), c.Param("id"), middleware.CallerID(c), in.Decision)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
