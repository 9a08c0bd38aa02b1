package routes

import (
	"time"

	"github.com/Pushkar2103/parkezy-new/handlers"
	"github.com/Pushkar2103/parkezy-new/middleware"
	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAreaRoutes registers listing endpoints.
func RegisterAreaRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/areas")
	{
		api.Use(middleware.IdentityMiddleware())
		api.GET("/:id/slots", hb.ListSlotsHandler)

		owner := api.Group("")
		owner.Use(middleware.RequireRole(utils.RoleOwner))
		owner.POST("", hb.CreateAreaHandler)
		owner.GET("/mine", hb.ListOwnerAreasHandler)
		owner.PUT("/:id", hb.UpdateAreaHandler)
		owner.DELETE("/:id", hb.DeleteAreaHandler)
	}
}

// RegisterBookingRoutes registers the renter side of the reservation engine.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.IdentityMiddleware())
		api.POST("", hb.ClaimHandler)
		api.GET("", hb.ListCurrentHandler)
		api.GET("/history", hb.ListHistoryHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.POST("/:id/checkout", hb.ResumeCheckoutHandler)
		api.POST("/:id/cancel-request", hb.CancelRequestHandler)
		api.POST("/:id/complete-request", hb.CompleteRequestHandler)
	}
}

// RegisterOwnerRoutes registers the owner request inbox and decisions.
func RegisterOwnerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/owner")
	{
		api.Use(middleware.IdentityMiddleware(), middleware.RequireRole(utils.RoleOwner))
		api.GET("/requests", hb.PendingRequestsHandler)
		api.POST("/bookings/:id/cancel-decision", hb.CancelDecisionHandler)
		api.POST("/bookings/:id/complete-decision", hb.CompleteDecisionHandler)
	}
}

// RegisterPaymentRoutes registers both payment verification paths.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payment")
	{
		// Gateway callbacks carry a signature instead of a bearer token.
		api.POST("/webhook", hb.PaymentWebhookHandler)
		api.POST("/verify", middleware.IdentityMiddleware(), hb.VerifyPaymentHandler)
	}
}

// RegisterOpsRoutes registers health and metrics endpoints.
func RegisterOpsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
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

	RegisterAreaRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterOwnerRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterOpsRoutes(r, hb)
}
