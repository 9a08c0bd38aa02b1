package models

// PaymentOutcome is what the gateway reports for an order.
type PaymentOutcome string

const (
	OutcomePending PaymentOutcome = "pending"
	OutcomePaid    PaymentOutcome = "paid"
	OutcomeFailed  PaymentOutcome = "failed"
)

// OrderRequest asks the gateway to open a checkout for a booking.
type OrderRequest struct {
	OrderID   string
	BookingID string
	RenterID  string
	Amount    int64
	Currency  string
}

// OrderSession is the gateway's handle for an opened checkout.
type OrderSession struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// WebhookEvent is a verified gateway callback.
type WebhookEvent struct {
	OrderID   string
	SessionID string
	Outcome   PaymentOutcome
	Type      string
}

// VerifyPaymentInput is the client-poll verification body.
type VerifyPaymentInput struct {
	OrderID string `json:"orderId" binding:"required"`
}
