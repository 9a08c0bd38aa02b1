package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/events"
	"github.com/Pushkar2103/parkezy-new/utils"

	"go.uber.org/zap"
)

const (
	triggerPoll    = "poll"
	triggerWebhook = "webhook"
)

var (
	holdPending = repository.BookingMatch{
		Statuses:        []models.BookingStatus{models.BookingHeld},
		PaymentStatuses: []models.PaymentStatus{models.PaymentPending},
	}
	abandonedUnpaid = repository.BookingMatch{
		Statuses:        []models.BookingStatus{models.BookingCancelled},
		PaymentStatuses: []models.PaymentStatus{models.PaymentFailed},
	}
)

// ConfirmPayment is the client-poll verification. It asks the gateway for the
// order's outcome and applies it. A booking whose payment already left pending
// is returned as stored.
func (e *DefaultReservationEngine) ConfirmPayment(ctx context.Context, orderID string) (*models.Booking, error) {
	b, err := e.Bookings.GetByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	if !needsGateway(b) {
		utils.PaymentResolutions.WithLabelValues(triggerPoll, "noop").Inc()
		return b, nil
	}

	outcome, err := e.Gateway.QueryOrder(ctx, orderID, b.PaymentSessionID)
	if err != nil {
		// Payment stays pending; a later poll, the webhook or the sweep resolves it.
		utils.PaymentResolutions.WithLabelValues(triggerPoll, "error").Inc()
		return b, fmt.Errorf("query order %s: %w", orderID, err)
	}
	return e.applyOutcome(ctx, b, outcome, triggerPoll)
}

// HandleWebhook authenticates a gateway callback before anything else and then
// applies the reported outcome. Events that carry no terminal outcome return nil.
func (e *DefaultReservationEngine) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.Booking, error) {
	ev, err := e.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		utils.PaymentResolutions.WithLabelValues(triggerWebhook, "rejected").Inc()
		return nil, err
	}
	if ev.OrderID == "" || ev.Outcome == models.OutcomePending {
		e.logger().Debug("webhook ignored", zap.String("type", ev.Type), zap.String("orderID", ev.OrderID))
		return nil, nil
	}

	b, err := e.Bookings.GetByOrderID(ctx, ev.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("order %s: %w", ev.OrderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", ev.OrderID, err)
	}
	return e.applyOutcome(ctx, b, ev.Outcome, triggerWebhook)
}

// needsGateway reports whether a gateway outcome could still change b.
func needsGateway(b *models.Booking) bool {
	if b.PaymentStatus == models.PaymentPending {
		return true
	}
	// A swept hold may still have been paid at the gateway.
	return abandonedUnpaid.Matches(b) && b.PaymentSessionID != ""
}

// applyOutcome resolves a pending payment exactly once. Every write is
// conditional on payment still being pending, so the poll and the webhook
// cannot both activate or both release the slot.
func (e *DefaultReservationEngine) applyOutcome(ctx context.Context, b *models.Booking, outcome models.PaymentOutcome, trigger string) (*models.Booking, error) {
	log := e.logger().With(zap.String("bookingID", b.ID), zap.String("orderID", b.ExternalOrderID),
		zap.String("trigger", trigger), zap.String("outcome", string(outcome)))

	switch outcome {
	case models.OutcomePaid:
		updated, err := e.transition(ctx, b, holdPending,
			repository.BookingChange{Status: models.BookingActive, PaymentStatus: models.PaymentPaid})
		if errors.Is(err, repository.ErrConflict) {
			return e.lateCapture(ctx, b.ID, trigger)
		}
		if err != nil {
			utils.PaymentResolutions.WithLabelValues(trigger, "error").Inc()
			return nil, fmt.Errorf("mark booking %s paid: %w", b.ID, err)
		}
		e.activateSlot(ctx, updated)
		utils.PaymentResolutions.WithLabelValues(trigger, "paid").Inc()
		log.Info("payment confirmed, booking active")
		e.publish(ctx, events.TopicBookingActivated, updated, trigger)
		return updated, nil

	case models.OutcomeFailed:
		updated, err := e.transition(ctx, b, holdPending,
			repository.BookingChange{Status: models.BookingCancelled, PaymentStatus: models.PaymentFailed})
		if errors.Is(err, repository.ErrConflict) {
			utils.PaymentResolutions.WithLabelValues(trigger, "noop").Inc()
			return e.loadBooking(ctx, b.ID)
		}
		if err != nil {
			utils.PaymentResolutions.WithLabelValues(trigger, "error").Inc()
			return nil, fmt.Errorf("mark booking %s failed: %w", b.ID, err)
		}
		e.releaseSlot(ctx, updated, "payment failed")
		utils.PaymentResolutions.WithLabelValues(trigger, "failed").Inc()
		log.Info("payment failed, booking cancelled")
		e.publish(ctx, events.TopicBookingCancelled, updated, "payment failed")
		return updated, nil

	default:
		utils.PaymentResolutions.WithLabelValues(trigger, "pending").Inc()
		return b, nil
	}
}

// lateCapture handles a paid report that lost the race for the pending booking.
// If the hold sweep had abandoned the booking, money was taken for a slot the
// renter no longer holds, so the booking is flagged for refund.
func (e *DefaultReservationEngine) lateCapture(ctx context.Context, bookingID, trigger string) (*models.Booking, error) {
	current, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !abandonedUnpaid.Matches(current) {
		utils.PaymentResolutions.WithLabelValues(trigger, "noop").Inc()
		return current, nil
	}

	refunded, err := e.transition(ctx, current, abandonedUnpaid,
		repository.BookingChange{PaymentStatus: models.PaymentRefunded})
	if errors.Is(err, repository.ErrConflict) {
		utils.PaymentResolutions.WithLabelValues(trigger, "noop").Inc()
		return e.loadBooking(ctx, bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("flag refund for booking %s: %w", bookingID, err)
	}
	utils.PaymentResolutions.WithLabelValues(trigger, "refund_owed").Inc()
	e.logger().Warn("payment captured after hold expired, refund owed",
		zap.String("bookingID", bookingID), zap.String("trigger", trigger))
	e.publish(ctx, events.TopicRefundOwed, refunded, "paid after hold expired")
	return refunded, nil
}
