package handlers

import (
	"net/http"

	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest dependency snapshot from the health monitor.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.CheckedAt.IsZero() && !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": http.StatusText(code), "health": status})
}
