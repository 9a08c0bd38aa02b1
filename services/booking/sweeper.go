package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/events"
	"github.com/Pushkar2103/parkezy-new/utils"

	"go.uber.org/zap"
)

const (
	sweepHolds   = "holds"
	sweepExpired = "expired"

	defaultHoldGracePeriod = 10 * time.Minute
)

// SweepHeldTimeouts reclaims slots held longer than the grace period.
// Only bookings still held with an unresolved payment are cancelled; anything
// the reconciler already resolved is skipped by the conditional write.
func (e *DefaultReservationEngine) SweepHeldTimeouts(ctx context.Context) (models.SweepReport, error) {
	var report models.SweepReport
	started := time.Now()
	defer func() {
		utils.SweepDuration.WithLabelValues(sweepHolds).Observe(time.Since(started).Seconds())
		utils.SweepReleased.WithLabelValues(sweepHolds).Add(float64(report.Released))
	}()

	grace := e.Config.HoldGracePeriod
	if grace <= 0 {
		grace = defaultHoldGracePeriod
	}
	cutoff := e.now().Add(-grace)

	slots, err := e.Slots.FindHeldBefore(ctx, cutoff)
	if err != nil {
		return report, fmt.Errorf("list stale holds: %w", err)
	}

	for _, slot := range slots {
		report.Scanned++
		e.sweepHold(ctx, slot, &report)
	}

	if report.Scanned > 0 {
		e.logger().Info("hold sweep finished",
			zap.Int("scanned", report.Scanned), zap.Int("released", report.Released),
			zap.Int("cancelled", report.Cancelled), zap.Int("repaired", report.Repaired),
			zap.Int("skipped", report.Skipped), zap.Int("failed", report.Failed))
	}
	return report, nil
}

func (e *DefaultReservationEngine) sweepHold(ctx context.Context, slot models.Slot, report *models.SweepReport) {
	log := e.logger().With(zap.String("slotID", slot.ID), zap.String("bookingID", slot.Holder))

	b, err := e.Bookings.GetByID(ctx, slot.Holder)
	if errors.Is(err, repository.ErrNotFound) {
		// The ledger write never happened and compensation did not get through.
		e.sweepRelease(ctx, slot, report, log, "orphan hold")
		return
	}
	if err != nil {
		report.Failed++
		log.Error("hold sweep could not load booking", zap.Error(err))
		return
	}

	switch {
	case b.Status == models.BookingHeld:
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
		if errors.Is(err, repository.ErrConflict) {
			report.Skipped++
			return
		}
		if err != nil {
			report.Failed++
			log.Error("hold sweep could not cancel booking", zap.Error(err))
			return
		}
		report.Cancelled++
		e.sweepRelease(ctx, slot, report, log, "hold expired")
		e.publish(ctx, events.TopicBookingCancelled, updated, "hold expired")

	case b.Status == models.BookingActive:
		// Paid or free but the slot was never moved to occupied.
		ok, err := e.Slots.Activate(ctx, slot.ID, b.ID)
		if err != nil {
			report.Failed++
			log.Error("hold sweep could not activate slot", zap.Error(err))
			return
		}
		if ok {
			report.Repaired++
			log.Info("activated slot of active booking")
		} else {
			report.Skipped++
		}

	case b.Status.IsTerminal():
		// A release after cancellation or completion did not get through.
		e.sweepRelease(ctx, slot, report, log, "terminal booking")

	default:
		report.Skipped++
	}
}

func (e *DefaultReservationEngine) sweepRelease(ctx context.Context, slot models.Slot, report *models.SweepReport, log *zap.Logger, reason string) {
	released, err := e.Slots.Release(ctx, slot.ID, slot.Holder)
	if err != nil {
		report.Failed++
		log.Error("hold sweep could not release slot", zap.String("reason", reason), zap.Error(err))
		return
	}
	if released {
		report.Released++
		log.Info("hold released", zap.String("reason", reason))
	} else {
		report.Skipped++
	}
}

// SweepExpiredActive completes active bookings whose window has ended and frees their slots.
func (e *DefaultReservationEngine) SweepExpiredActive(ctx context.Context) (models.SweepReport, error) {
	var report models.SweepReport
	started := time.Now()
	defer func() {
		utils.SweepDuration.WithLabelValues(sweepExpired).Observe(time.Since(started).Seconds())
		utils.SweepReleased.WithLabelValues(sweepExpired).Add(float64(report.Released))
	}()

	bookings, err := e.Bookings.FindActiveEndedBefore(ctx, e.now())
	if err != nil {
		return report, fmt.Errorf("list expired bookings: %w", err)
	}

	for i := range bookings {
		b := &bookings[i]
		report.Scanned++

		updated, err := e.transition(ctx, b,
			repository.BookingMatch{Statuses: []models.BookingStatus{models.BookingActive}},
			repository.BookingChange{Status: models.BookingCompleted},
		)
		if errors.Is(err, repository.ErrConflict) {
			report.Skipped++
			continue
		}
		if err != nil {
			report.Failed++
			e.logger().Error("expiry sweep could not complete booking", zap.String("bookingID", b.ID), zap.Error(err))
			continue
		}

		report.Completed++
		if e.releaseSlot(ctx, updated, "window ended") {
			report.Released++
		}
		e.publish(ctx, events.TopicBookingCompleted, updated, "window ended")
	}

	if report.Scanned > 0 {
		e.logger().Info("expiry sweep finished",
			zap.Int("scanned", report.Scanned), zap.Int("completed", report.Completed),
			zap.Int("released", report.Released), zap.Int("skipped", report.Skipped), zap.Int("failed", report.Failed))
	}
	return report, nil
}
