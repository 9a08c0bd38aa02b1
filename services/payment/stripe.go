package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Pushkar2103/parkezy-new/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeConfig configures the Stripe Checkout gateway.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string // {order_id} is replaced with the order id
	CancelURL     string
	// BackendURL overrides the API base URL. Empty means api.stripe.com.
	BackendURL string
}

// StripeGateway implements Gateway with Stripe Checkout sessions.
type StripeGateway struct {
	sc     *client.API
	cfg    StripeConfig
	logger *zap.Logger
}

// --- NewStripeGateway Constructor ---
func NewStripeGateway(cfg StripeConfig, logger *zap.Logger) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		// Retries belong to the caller; an outage must surface as ErrGatewayUnreachable.
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BackendURL != "" {
		backendCfg.URL = stripe.String(cfg.BackendURL)
	}

	sc := &client.API{}
	sc.Init(cfg.SecretKey, &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
	})

	return &StripeGateway{sc: sc, cfg: cfg, logger: logger}
}

var _ Gateway = (*StripeGateway)(nil)

// --- Orders ---

func (g *StripeGateway) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.OrderSession, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrOrderRejected)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.OrderID),
		SuccessURL:        stripe.String(expandOrderURL(g.cfg.SuccessURL, req.OrderID)),
		CancelURL:         stripe.String(expandOrderURL(g.cfg.CancelURL, req.OrderID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Parking slot reservation"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("bookingId", req.BookingID)
	params.AddMetadata("renterId", req.RenterID)
	params.SetIdempotencyKey(req.OrderID)

	sess, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Warn("stripe checkout session creation failed",
			zap.String("orderID", req.OrderID), zap.Error(err))
		return nil, classifyStripeError(err)
	}

	g.logger.Info("stripe checkout session created",
		zap.String("orderID", req.OrderID), zap.String("sessionID", sess.ID))
	return &models.OrderSession{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

func (g *StripeGateway) QueryOrder(ctx context.Context, orderID, sessionID string) (models.PaymentOutcome, error) {
	if sessionID == "" {
		return models.OutcomePending, fmt.Errorf("%w: order %s has no checkout session", ErrOrderRejected, orderID)
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return models.OutcomePending, classifyStripeError(err)
	}
	if sess.ClientReferenceID != "" && sess.ClientReferenceID != orderID {
		return models.OutcomePending, fmt.Errorf("%w: session %s belongs to order %s", ErrOrderRejected, sessionID, sess.ClientReferenceID)
	}
	return sessionOutcome(sess), nil
}

// --- Webhooks ---

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*models.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	out := &models.WebhookEvent{Type: string(event.Type), Outcome: models.OutcomePending}
	if !strings.HasPrefix(out.Type, "checkout.session.") {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	out.OrderID = sess.ClientReferenceID
	out.SessionID = sess.ID

	switch out.Type {
	case "checkout.session.completed":
		out.Outcome = sessionOutcome(&sess)
	case "checkout.session.async_payment_succeeded":
		out.Outcome = models.OutcomePaid
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		out.Outcome = models.OutcomeFailed
	}
	return out, nil
}

func sessionOutcome(sess *stripe.CheckoutSession) models.PaymentOutcome {
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return models.OutcomePaid
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		return models.OutcomeFailed
	default:
		return models.OutcomePending
	}
}

// classifyStripeError maps transport failures and 5xx replies to ErrGatewayUnreachable.
func classifyStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError || stripeErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", ErrGatewayUnreachable, stripeErr.Msg)
		}
		return fmt.Errorf("%w: %s", ErrOrderRejected, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
}

func expandOrderURL(tmpl, orderID string) string {
	return strings.ReplaceAll(tmpl, "{order_id}", orderID)
}
