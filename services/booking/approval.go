package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/events"

	"go.uber.org/zap"
)

// RequestCancel asks the owner to cancel an active booking before its window starts.
func (e *DefaultReservationEngine) RequestCancel(ctx context.Context, bookingID, requesterID string) (*models.Booking, error) {
	b, err := e.renterBooking(ctx, bookingID, requesterID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingActive {
		return nil, fmt.Errorf("cannot request cancellation of a %s booking: %w", b.Status, ErrInvalidState)
	}
	if !e.now().Before(b.WindowStart) {
		return nil, fmt.Errorf("booking window already started: %w", ErrInvalidState)
	}
	return e.request(ctx, b, models.BookingCancelRequested)
}

// RequestComplete asks the owner to close an active booking during its window.
func (e *DefaultReservationEngine) RequestComplete(ctx context.Context, bookingID, requesterID string) (*models.Booking, error) {
	b, err := e.renterBooking(ctx, bookingID, requesterID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingActive {
		return nil, fmt.Errorf("cannot request completion of a %s booking: %w", b.Status, ErrInvalidState)
	}
	now := e.now()
	if now.Before(b.WindowStart) || !now.Before(b.WindowEnd) {
		return nil, fmt.Errorf("booking is outside its window: %w", ErrInvalidState)
	}
	return e.request(ctx, b, models.BookingCompleteRequested)
}

func (e *DefaultReservationEngine) renterBooking(ctx context.Context, bookingID, requesterID string) (*models.Booking, error) {
	b, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != requesterID {
		return nil, ErrNotAuthorized
	}
	return b, nil
}

func (e *DefaultReservationEngine) request(ctx context.Context, b *models.Booking, to models.BookingStatus) (*models.Booking, error) {
	updated, err := e.transition(ctx, b,
		repository.BookingMatch{Statuses: []models.BookingStatus{models.BookingActive}},
		repository.BookingChange{Status: to},
	)
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("booking %s changed before the request: %w", b.ID, ErrInvalidState)
	}
	if err != nil {
		return nil, fmt.Errorf("request %s for booking %s: %w", to, b.ID, err)
	}
	e.logger().Info("owner approval requested",
		zap.String("bookingID", b.ID), zap.String("status", string(to)))
	return updated, nil
}

// RespondCancel applies the owner's decision on a pending cancellation.
// Approval cancels the booking, frees the slot and flags a paid booking for refund.
func (e *DefaultReservationEngine) RespondCancel(ctx context.Context, bookingID, ownerID string, decision models.Decision) (*models.Booking, error) {
	return e.respond(ctx, bookingID, ownerID, decision, models.BookingCancelRequested, models.BookingCancelled)
}

// RespondComplete applies the owner's decision on a pending completion.
func (e *DefaultReservationEngine) RespondComplete(ctx context.Context, bookingID, ownerID string, decision models.Decision) (*models.Booking, error) {
	return e.respond(ctx, bookingID, ownerID, decision, models.BookingCompleteRequested, models.BookingCompleted)
}

func (e *DefaultReservationEngine) respond(
	ctx context.Context,
	bookingID, ownerID string,
	decision models.Decision,
	pending, approved models.BookingStatus,
) (*models.Booking, error) {
	if !decision.Valid() {
		return nil, NewValidationError("decision", "must be approve or deny")
	}

	b, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := e.authorizeOwner(ctx, b, ownerID); err != nil {
		return nil, err
	}
	if b.Status != pending {
		return nil, fmt.Errorf("booking %s is %s: %w", b.ID, b.Status, ErrNotPending)
	}

	// The status is re-checked by the conditional write; of two concurrent
	// responders only one can move the booking out of the requested state.
	match := repository.BookingMatch{
		Statuses:        []models.BookingStatus{pending},
		PaymentStatuses: []models.PaymentStatus{b.PaymentStatus},
	}
	change := repository.BookingChange{Status: models.BookingActive}
	if decision == models.DecisionApprove {
		change.Status = approved
		if approved == models.BookingCancelled && b.PaymentStatus == models.PaymentPaid {
			change.PaymentStatus = models.PaymentRefunded
		}
	}

	updated, err := e.transition(ctx, b, match, change)
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("booking %s already answered: %w", b.ID, ErrNotPending)
	}
	if err != nil {
		return nil, fmt.Errorf("respond to booking %s: %w", b.ID, err)
	}

	e.logger().Info("owner responded",
		zap.String("bookingID", b.ID), zap.String("ownerID", ownerID),
		zap.String("decision", string(decision)), zap.String("status", string(updated.Status)))

	if decision == models.DecisionDeny {
		return updated, nil
	}

	e.releaseSlot(ctx, updated, string(approved))
	switch approved {
	case models.BookingCancelled:
		e.publish(ctx, events.TopicBookingCancelled, updated, "owner approved cancellation")
		if updated.PaymentStatus == models.PaymentRefunded {
			e.publish(ctx, events.TopicRefundOwed, updated, "cancelled before window")
		}
	case models.BookingCompleted:
		e.publish(ctx, events.TopicBookingCompleted, updated, "owner approved completion")
	}
	return updated, nil
}

// authorizeOwner checks that ownerID controls the area of b's slot.
func (e *DefaultReservationEngine) authorizeOwner(ctx context.Context, b *models.Booking, ownerID string) error {
	owner, err := e.Registry.OwnerOf(ctx, b.AreaID)
	if errors.Is(err, ErrNotFound) {
		return ErrNotAuthorized
	}
	if err != nil {
		return fmt.Errorf("resolve owner of area %s: %w", b.AreaID, err)
	}
	if owner == "" || owner != ownerID {
		return ErrNotAuthorized
	}
	return nil
}
