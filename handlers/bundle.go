package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Area endpoints
	CreateAreaHandler     gin.HandlerFunc
	UpdateAreaHandler     gin.HandlerFunc
	DeleteAreaHandler     gin.HandlerFunc
	ListOwnerAreasHandler gin.HandlerFunc
	ListSlotsHandler      gin.HandlerFunc

	// Renter booking endpoints
	ClaimHandler           gin.HandlerFunc
	ListCurrentHandler     gin.HandlerFunc
	ListHistoryHandler     gin.HandlerFunc
	GetBookingHandler      gin.HandlerFunc
	ResumeCheckoutHandler  gin.HandlerFunc
	CancelRequestHandler   gin.HandlerFunc
	CompleteRequestHandler gin.HandlerFunc

	// Owner endpoints
	PendingRequestsHandler  gin.HandlerFunc
	CancelDecisionHandler   gin.HandlerFunc
	CompleteDecisionHandler gin.HandlerFunc

	// Payment endpoints
	VerifyPaymentHandler  gin.HandlerFunc
	PaymentWebhookHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handler methods into a bundle.
func NewHandlerBundle(areas *AreaHandler, bookings *BookingHandler, owners *OwnerHandler, payments *PaymentHandler, health gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		CreateAreaHandler:     areas.CreateAreaHandler,
		UpdateAreaHandler:     areas.UpdateAreaHandler,
		DeleteAreaHandler:     areas.DeleteAreaHandler,
		ListOwnerAreasHandler: areas.ListOwnerAreasHandler,
		ListSlotsHandler:      areas.ListSlotsHandler,

		ClaimHandler:           bookings.ClaimHandler,
		ListCurrentHandler:     bookings.ListCurrentHandler,
		ListHistoryHandler:     bookings.ListHistoryHandler,
		GetBookingHandler:      bookings.GetBookingHandler,
		ResumeCheckoutHandler:  bookings.ResumeCheckoutHandler,
		CancelRequestHandler:   bookings.CancelRequestHandler,
		CompleteRequestHandler: bookings.CompleteRequestHandler,

		PendingRequestsHandler:  owners.PendingRequestsHandler,
		CancelDecisionHandler:   owners.CancelDecisionHandler,
		CompleteDecisionHandler: owners.CompleteDecisionHandler,

		VerifyPaymentHandler:  payments.VerifyHandler,
		PaymentWebhookHandler: payments.WebhookHandler,

		HealthHandler: health,
	}
}
