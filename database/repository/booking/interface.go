// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRepository is the booking ledger. Records are never deleted.
type BookingRepository interface {
	Insert(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Booking, error)
	ListByRenter(ctx context.Context, renterID string, statuses []models.BookingStatus) ([]models.Booking, error)
	ListByAreas(ctx context.Context, areaIDs []string, statuses []models.BookingStatus) ([]models.Booking, error)
	FindActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)

	// CompareAndSet applies change only while the stored booking satisfies match,
	// returning the updated record or repository.ErrConflict.
	CompareAndSet(ctx context.Context, id string, match repository.BookingMatch, change repository.BookingChange) (*models.Booking, error)
}

// MongoBookingRepo stores bookings in the "bookings" collection.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}

var _ BookingRepository = (*MongoBookingRepo)(nil)
