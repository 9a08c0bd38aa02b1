package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// newOrderID returns an id of the form order_<unixnano>_<8 hex>.
func newOrderID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("order_%d_%s", at.UnixNano(), suffix)
}

// loadBooking maps a missing record to ErrNotFound.
func (e *DefaultReservationEngine) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := e.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	return b, nil
}

// transition runs a conditional update and records the new status.
func (e *DefaultReservationEngine) transition(
	ctx context.Context,
	b *models.Booking,
	match repository.BookingMatch,
	change repository.BookingChange,
) (*models.Booking, error) {
	change.UpdatedAt = e.now()
	updated, err := e.Bookings.CompareAndSet(ctx, b.ID, match, change)
	if err != nil {
		return nil, err
	}
	if change.Status != "" && change.Status != b.Status {
		utils.BookingTransitions.WithLabelValues(string(change.Status)).Inc()
	}
	return updated, nil
}

// releaseSlot frees the slot held by b. A false result from the store means it was already free.
func (e *DefaultReservationEngine) releaseSlot(ctx context.Context, b *models.Booking, reason string) bool {
	released, err := e.Slots.Release(ctx, b.SlotID, b.ID)
	if err != nil {
		// The hold sweep releases slots whose booking is already terminal.
		e.logger().Error("slot release failed, leaving it to the hold sweep",
			zap.String("bookingID", b.ID), zap.String("slotID", b.SlotID),
			zap.String("reason", reason), zap.Error(err))
		return false
	}
	if !released {
		e.logger().Debug("slot already released",
			zap.String("bookingID", b.ID), zap.String("slotID", b.SlotID), zap.String("reason", reason))
	}
	return released
}

// activateSlot moves the slot held by b to occupied.
func (e *DefaultReservationEngine) activateSlot(ctx context.Context, b *models.Booking) bool {
	activated, err := e.Slots.Activate(ctx, b.SlotID, b.ID)
	if err != nil {
		// The hold sweep repairs active bookings whose slot is still held.
		e.logger().Error("slot activation failed, leaving it to the hold sweep",
			zap.String("bookingID", b.ID), zap.String("slotID", b.SlotID), zap.Error(err))
		return false
	}
	if !activated {
		e.logger().Warn("slot not held by booking on activation",
			zap.String("bookingID", b.ID), zap.String("slotID", b.SlotID))
	}
	return activated
}

func (e *DefaultReservationEngine) publish(ctx context.Context, eventType string, b *models.Booking, reason string) {
	event := models.LifecycleEvent{
		Type:       eventType,
		BookingID:  b.ID,
		SlotID:     b.SlotID,
		AreaID:     b.AreaID,
		RenterID:   b.RenterID,
		Status:     b.Status,
		Payment:    b.PaymentStatus,
		AmountDue:  b.AmountDue,
		Currency:   b.Currency,
		Reason:     reason,
		OccurredAt: e.now(),
	}
	if err := e.publisher().Publish(context.WithoutCancel(ctx), event); err != nil {
		e.logger().Warn("lifecycle event not published",
			zap.String("type", eventType), zap.String("bookingID", b.ID), zap.Error(err))
	}
}
