package booking

import (
	"context"
	"fmt"

	"github.com/Pushkar2103/parkezy-new/models"
)

var (
	currentStatuses = []models.BookingStatus{
		models.BookingHeld,
		models.BookingActive,
		models.BookingCancelRequested,
		models.BookingCompleteRequested,
	}
	historyStatuses = []models.BookingStatus{
		models.BookingCancelled,
		models.BookingCompleted,
	}
	requestedStatuses = []models.BookingStatus{
		models.BookingCancelRequested,
		models.BookingCompleteRequested,
	}
)

// GetBooking returns a booking to its renter or to the owner of its area.
func (e *DefaultReservationEngine) GetBooking(ctx context.Context, bookingID, callerID string) (*models.Booking, error) {
	b, err := e.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID == callerID {
		return b, nil
	}
	if err := e.authorizeOwner(ctx, b, callerID); err != nil {
		return nil, err
	}
	return b, nil
}

// ListRenterBookings lists a renter's current bookings, or the finished ones when history is set.
func (e *DefaultReservationEngine) ListRenterBookings(ctx context.Context, renterID string, history bool) ([]models.Booking, error) {
	statuses := currentStatuses
	if history {
		statuses = historyStatuses
	}
	out, err := e.Bookings.ListByRenter(ctx, renterID, statuses)
	if err != nil {
		return nil, fmt.Errorf("list bookings of renter %s: %w", renterID, err)
	}
	return out, nil
}

// PendingRequests lists bookings awaiting a decision across the owner's areas.
func (e *DefaultReservationEngine) PendingRequests(ctx context.Context, ownerID string) ([]models.Booking, error) {
	areaIDs, err := e.Registry.AreaIDsOf(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list areas of owner %s: %w", ownerID, err)
	}
	out, err := e.Bookings.ListByAreas(ctx, areaIDs, requestedStatuses)
	if err != nil {
		return nil, fmt.Errorf("list pending requests of owner %s: %w", ownerID, err)
	}
	return out, nil
}
