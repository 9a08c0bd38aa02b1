// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"time"

	"github.com/Pushkar2103/parkezy-new/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SlotRepository is the single owner of slot reservation state.
// Claim, Activate and Release are conditional updates; nothing else mutates a slot's state.
type SlotRepository interface {
	CreateMany(ctx context.Context, slots []models.Slot) error
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
	ListByArea(ctx context.Context, areaID string) ([]models.Slot, error)
	DeleteByArea(ctx context.Context, areaID string) (int64, error)

	// Claim moves an available slot to held for bookingID. A missing slot yields
	// repository.ErrNotFound and a slot that is not available yields repository.ErrConflict.
	Claim(ctx context.Context, slotID, bookingID string, at time.Time) error
	// Activate moves held to occupied while bookingID is the holder.
	Activate(ctx context.Context, slotID, bookingID string) (bool, error)
	// Release frees the slot while bookingID is the holder. It reports false when
	// the slot was already released or claimed by someone else.
	Release(ctx context.Context, slotID, bookingID string) (bool, error)
	FindHeldBefore(ctx context.Context, cutoff time.Time) ([]models.Slot, error)
}

// MongoSlotRepo stores slots in the "slots" collection.
type MongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo(db *mongo.Database) *MongoSlotRepo {
	return &MongoSlotRepo{
		coll: db.Collection("slots"),
	}
}

var _ SlotRepository = (*MongoSlotRepo)(nil)
