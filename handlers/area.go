package handlers

import (
	"net/http"

	"github.com/Pushkar2103/parkezy-new/middleware"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/area"

	"github.com/gin-gonic/gin"
)

// AreaHandler exposes listing management.
type AreaHandler struct {
	Service area.AreaService
}

func NewAreaHandler(svc area.AreaService) *AreaHandler {
	return &AreaHandler{Service: svc}
}

func (h *AreaHandler) CreateAreaHandler(c *gin.Context) {
	var in models.AreaInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	a, slots, err := h.Service.CreateArea(c.Request.Context(), middleware.CallerID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"area": a, "slots": slots})
}

func (h *AreaHandler) UpdateAreaHandler(c *gin.Context) {
	var in models.AreaUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.Service.UpdateArea(c.Request.Context(), c.Param("id"), middleware.CallerID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": a})
}

func (h *AreaHandler) DeleteAreaHandler(c *gin.Context) {
	if err := h.Service.DeleteArea(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AreaHandler) ListOwnerAreasHandler(c *gin.Context) {
	areas, err := h.Service.ListOwnerAreas(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if areas == nil {
		areas = []models.Area{}
	}
	c.JSON(http.StatusOK, gin.H{"areas": areas})
}

// ListSlotsHandler returns the area and its slots with live state.
func (h *AreaHandler) ListSlotsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.Service.GetArea(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	slots, err := h.Service.ListSlots(ctx, a.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": a, "slots": slots})
}
