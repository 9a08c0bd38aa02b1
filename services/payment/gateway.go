package payment

import (
	"context"
	"errors"

	"github.com/Pushkar2103/parkezy-new/models"
)

var (
	// ErrGatewayUnreachable marks a transient gateway failure. The booking stays pending.
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")
	// ErrSignatureInvalid marks a callback that failed authentication.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	// ErrOrderRejected marks a request the gateway refused outright.
	ErrOrderRejected = errors.New("payment order rejected")
)

// --- Interfaces ---

// Gateway is the reconciliation contract with an external payment provider.
type Gateway interface {
	// CreateOrder opens a checkout for req and returns the handle the renter pays through.
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.OrderSession, error)
	// QueryOrder reports the current outcome of an order.
	QueryOrder(ctx context.Context, orderID, sessionID string) (models.PaymentOutcome, error)
	// ParseWebhook authenticates a callback and extracts the reported outcome.
	// It returns ErrSignatureInvalid without touching anything else.
	ParseWebhook(payload []byte, signature string) (*models.WebhookEvent, error)
}
