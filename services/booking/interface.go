package booking

import (
	"context"
	"time"

	"github.com/Pushkar2103/parkezy-new/database"
	bookingRepo "github.com/Pushkar2103/parkezy-new/database/repository/booking"
	slotRepo "github.com/Pushkar2103/parkezy-new/database/repository/slot"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/events"
	"github.com/Pushkar2103/parkezy-new/services/payment"

	"go.uber.org/zap"
)

// ReservationEngine is the slot reservation and booking lifecycle engine.
type ReservationEngine interface {
	ClaimAndReserve(ctx context.Context, renterID string, req models.ReservationRequest) (*models.Booking, error)
	ResumePayment(ctx context.Context, bookingID, renterID string) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, orderID string) (*models.Booking, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.Booking, error)

	RequestCancel(ctx context.Context, bookingID, requesterID string) (*models.Booking, error)
	RequestComplete(ctx context.Context, bookingID, requesterID string) (*models.Booking, error)
	RespondCancel(ctx context.Context, bookingID, ownerID string, decision models.Decision) (*models.Booking, error)
	RespondComplete(ctx context.Context, bookingID, ownerID string, decision models.Decision) (*models.Booking, error)

	SweepHeldTimeouts(ctx context.Context) (models.SweepReport, error)
	SweepExpiredActive(ctx context.Context) (models.SweepReport, error)

	GetBooking(ctx context.Context, bookingID, callerID string) (*models.Booking, error)
	ListRenterBookings(ctx context.Context, renterID string, history bool) ([]models.Booking, error)
	PendingRequests(ctx context.Context, ownerID string) ([]models.Booking, error)
}

// Registry is the listing registry: which owner controls which area.
type Registry interface {
	OwnerOf(ctx context.Context, areaID string) (string, error)
	AreaIDsOf(ctx context.Context, ownerID string) ([]string, error)
}

// EngineConfig holds the business-level tunables.
type EngineConfig struct {
	HoldGracePeriod      time.Duration
	CompensationAttempts int
	CompensationBackoff  time.Duration
	Currency             string
}

// DefaultReservationEngine implements ReservationEngine on top of the slot store and booking ledger.
// All coordination happens through their conditional updates.
type DefaultReservationEngine struct {
	Slots    slotRepo.SlotRepository
	Bookings bookingRepo.BookingRepository
	Registry Registry
	Gateway  payment.Gateway
	Tx       database.Transactor
	Events   events.Publisher
	Logger   *zap.Logger
	Config   EngineConfig
	// Now is the engine clock. Nil means time.Now.
	Now func() time.Time
}

var _ ReservationEngine = (*DefaultReservationEngine)(nil)

func (e *DefaultReservationEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *DefaultReservationEngine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *DefaultReservationEngine) transactor() database.Transactor {
	if e.Tx == nil {
		return database.NoopTransactor{}
	}
	return e.Tx
}

func (e *DefaultReservationEngine) publisher() events.Publisher {
	if e.Events == nil {
		return events.NopPublisher{}
	}
	return e.Events
}
