package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/events"
	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClaimAndReserve claims the slot and records a held booking for it.
// Free bookings are activated immediately; priced bookings get a gateway order.
// When the gateway is unreachable the held booking is returned together with an
// error matching ErrGatewayUnreachable, and ResumePayment can open the order later.
func (e *DefaultReservationEngine) ClaimAndReserve(ctx context.Context, renterID string, req models.ReservationRequest) (*models.Booking, error) {
	now := e.now()
	if err := validateReservation(req, renterID, now); err != nil {
		return nil, err
	}

	slot, err := e.Slots.GetByID(ctx, req.SlotID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("slot %s: %w", req.SlotID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", req.SlotID, err)
	}

	b := &models.Booking{
		ID:            uuid.New().String(),
		RenterID:      renterID,
		SlotID:        slot.ID,
		AreaID:        slot.AreaID,
		VehicleTag:    strings.TrimSpace(req.VehicleTag),
		WindowStart:   req.WindowStart,
		WindowEnd:     req.WindowEnd,
		Status:        models.BookingHeld,
		AmountDue:     req.AmountDue,
		PaymentStatus: models.PaymentNone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if b.AmountDue > 0 {
		b.PaymentStatus = models.PaymentPending
		b.Currency = e.Config.Currency
		b.ExternalOrderID = newOrderID(now)
	}

	if err := e.createBooking(ctx, b, now); err != nil {
		return nil, err
	}

	if b.AmountDue == 0 {
		return e.finalizeFree(ctx, b)
	}
	return e.openOrder(ctx, b)
}

func validateReservation(req models.ReservationRequest, renterID string, now time.Time) error {
	switch {
	case renterID == "":
		return NewValidationError("renterId", "is required")
	case req.SlotID == "":
		return NewValidationError("slotId", "is required")
	case strings.TrimSpace(req.VehicleTag) == "":
		return NewValidationError("vehicleTag", "is required")
	case req.WindowStart.IsZero() || req.WindowEnd.IsZero():
		return NewValidationError("window", "start and end are required")
	case req.WindowStart.Before(now):
		return NewValidationError("windowStart", "must not be in the past")
	case !req.WindowEnd.After(req.WindowStart):
		return NewValidationError("windowEnd", "must be after windowStart")
	case req.AmountDue < 0:
		return NewValidationError("amountDue", "must not be negative")
	}
	return nil
}

// createBooking is the claim-then-record saga. Claim and insert share a
// transaction when the transactor provides one; the compensating release runs
// either way and is a no-op once a rollback has already undone the claim.
func (e *DefaultReservationEngine) createBooking(ctx context.Context, b *models.Booking, now time.Time) error {
	claimed := false
	err := e.transactor().WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.Slots.Claim(ctx, b.SlotID, b.ID, now); err != nil {
			return err
		}
		claimed = true
		return e.Bookings.Insert(ctx, b)
	})
	if err == nil {
		utils.ClaimsTotal.WithLabelValues("won").Inc()
		e.logger().Info("slot claimed",
			zap.String("bookingID", b.ID), zap.String("slotID", b.SlotID), zap.String("renterID", b.RenterID))
		return nil
	}

	if !claimed {
		switch {
		case errors.Is(err, repository.ErrConflict):
			utils.ClaimsTotal.WithLabelValues("unavailable").Inc()
			return fmt.Errorf("slot %s: %w", b.SlotID, ErrSlotUnavailable)
		case errors.Is(err, repository.ErrNotFound):
			utils.ClaimsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("slot %s: %w", b.SlotID, ErrNotFound)
		}
		utils.ClaimsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("claim slot %s: %w", b.SlotID, err)
	}

	utils.ClaimsTotal.WithLabelValues("error").Inc()
	e.compensateClaim(ctx, b, err)
	return fmt.Errorf("record booking for slot %s: %w", b.SlotID, err)
}

// finalizeFree activates a zero-cost booking without involving the gateway.
func (e *DefaultReservationEngine) finalizeFree(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	updated, err := e.transition(ctx, b,
		repository.BookingMatch{
			Statuses:        []models.BookingStatus{models.BookingHeld},
			PaymentStatuses: []models.PaymentStatus{models.PaymentNone},
		},
		repository.BookingChange{Status: models.BookingActive},
	)
	if err != nil {
		// The booking stays held; the hold sweep cancels it and frees the slot.
		return nil, fmt.Errorf("activate free booking %s: %w", b.ID, err)
	}
	e.activateSlot(ctx, updated)
	e.publish(ctx, events.TopicBookingActivated, updated, "free")
	return updated, nil
}

// openOrder asks the gateway for a checkout and stores its handle on the booking.
func (e *DefaultReservationEngine) openOrder(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	sess, err := e.Gateway.CreateOrder(ctx, models.OrderRequest{
		OrderID:   b.ExternalOrderID,
		BookingID: b.ID,
		RenterID:  b.RenterID,
		Amount:    b.AmountDue,
		Currency:  b.Currency,
	})
	if errors.Is(err, ErrGatewayUnreachable) {
		e.logger().Warn("gateway unreachable, booking left pending",
			zap.String("bookingID", b.ID), zap.String("orderID", b.ExternalOrderID), zap.Error(err))
		return b, fmt.Errorf("open order %s: %w", b.ExternalOrderID, err)
	}
	if err != nil {
		// The gateway refused the order; nobody can pay for this hold, so give the slot back.
		e.abandon(ctx, b, "order rejected")
		return nil, fmt.Errorf("open order %s: %w", b.ExternalOrderID, err)
	}

	updated, err := e.transition(ctx, b,
		repository.BookingMatch{
			Statuses:        []models.BookingStatus{models.BookingHeld},
			PaymentStatuses: []models.PaymentStatus{models.PaymentPending},
		},
		repository.BookingChange{PaymentSessionID: sess.SessionID, CheckoutURL: sess.CheckoutURL},
	)
	if errors.Is(err, repository.ErrConflict) {
		// A webhook or the sweep already resolved it.
		return e.loadBooking(ctx, b.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("store checkout for booking %s: %w", b.ID, err)
	}
	return updated, nil
}

// ResumePayment opens the gateway order for a held booking whose first attempt failed.
// A booking that already has a checkout is returned unchanged.
func (e *DefaultReservationEngine) ResumePayment(ctx context.Context, bookingID, renterID string) (*models.Booking, error) {
	b, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != renterID {
		return nil, ErrNotAuthorized
	}
	if b.Status != models.BookingHeld || b.PaymentStatus != models.PaymentPending {
		return nil, fmt.Errorf("booking %s is %s/%s: %w", b.ID, b.Status, b.PaymentStatus, ErrInvalidState)
	}
	if b.PaymentSessionID != "" {
		return b, nil
	}
	return e.openOrder(ctx, b)
}

// abandon cancels a held booking and frees its slot.
func (e *DefaultReservationEngine) abandon(ctx context.Context, b *models.Booking, reason string) {
	change := repository.BookingChange{Status: models.BookingCancelled}
	if b.PaymentStatus == models.PaymentPending {
		change.PaymentStatus = models.PaymentFailed
	}
	updated, err := e.transition(ctx, b,
		repository.BookingMatch{
			Statuses:        []models.BookingStatus{models.BookingHeld},
			PaymentStatuses: []models.PaymentStatus{models.PaymentNone, models.PaymentPending},
		},
		change,
	)
	if err != nil {
		e.logger().Warn("could not abandon held booking",
			zap.String("bookingID", b.ID), zap.String("reason", reason), zap.Error(err))
		return
	}
	e.releaseSlot(ctx, updated, reason)
	e.publish(ctx, events.TopicBookingCancelled, updated, reason)
}
