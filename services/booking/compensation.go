package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/events"
	"github.com/Pushkar2103/parkezy-new/utils"

	"go.uber.org/zap"
)

const (
	defaultCompensationAttempts = 5
	defaultCompensationBackoff  = 200 * time.Millisecond
)

// compensateClaim gives back a slot whose booking could not be recorded.
// It retries with doubling backoff; when every attempt fails the slot stays
// held, which is reported for manual reconciliation. The hold sweep frees it
// as an orphan once the grace period passes.
func (e *DefaultReservationEngine) compensateClaim(ctx context.Context, b *models.Booking, cause error) {
	// The caller may already be gone; the compensation must still run.
	ctx = context.WithoutCancel(ctx)
	log := e.logger().With(zap.String("bookingID", b.ID), zap.String("slotID", b.SlotID))

	attempts := e.Config.CompensationAttempts
	if attempts <= 0 {
		attempts = defaultCompensationAttempts
	}
	backoff := e.Config.CompensationBackoff
	if backoff <= 0 {
		backoff = defaultCompensationBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		released, err := e.Slots.Release(ctx, b.SlotID, b.ID)
		if err == nil {
			log.Info("claim compensated",
				zap.Bool("released", released), zap.Int("attempt", attempt), zap.NamedError("cause", cause))
			e.voidUnrecorded(ctx, b, log)
			return
		}
		lastErr = err
		log.Warn("compensation attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	utils.CompensationFailures.Inc()
	log.Error("compensation exhausted, slot left held for manual reconciliation",
		zap.Int("attempts", attempts), zap.NamedError("cause", cause), zap.Error(lastErr))
	e.publish(ctx, events.TopicCompensationFailed, b, lastErr.Error())
}

// voidUnrecorded cancels the booking when a failed insert was in fact
// persisted, so no held booking outlives its released slot.
func (e *DefaultReservationEngine) voidUnrecorded(ctx context.Context, b *models.Booking, log *zap.Logger) {
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
	switch {
	case err == nil:
		log.Warn("booking was recorded despite the insert error, cancelled it")
		e.publish(ctx, events.TopicBookingCancelled, updated, "ledger write failed")
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrConflict):
		// Never recorded, or already resolved elsewhere.
	default:
		log.Error("could not cancel possibly recorded booking", zap.Error(err))
	}
}
