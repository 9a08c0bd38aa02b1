// File: database/repository/slot/state.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *MongoSlotRepo) Claim(ctx context.Context, slotID, bookingID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "state": models.SlotAvailable}
	update := bson.M{"$set": bson.M{
		"state":  models.SlotHeld,
		"holder": bookingID,
		"heldAt": at,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if isWriteConflict(err) {
		// Inside a transaction a concurrent claim surfaces as a conflict, not as a miss.
		return fmt.Errorf("claim slot %s: %w", slotID, repository.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("claim slot %s failed: %w", slotID, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Lost the race or the slot does not exist; tell the two apart.
	err = r.coll.FindOne(ctx, bson.M{"id": slotID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup slot %s failed: %w", slotID, err)
	}
	return repository.ErrConflict
}

const (
	writeConflictCode       = 112
	transientTransactionTag = "TransientTransactionError"
)

// isWriteConflict reports a server-side conflict with another transaction.
func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(writeConflictCode) || se.HasErrorLabel(transientTransactionTag)
}

func (r *MongoSlotRepo) Activate(ctx context.Context, slotID, bookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "state": models.SlotHeld, "holder": bookingID}
	update := bson.M{"$set": bson.M{"state": models.SlotOccupied}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("activate slot %s failed: %w", slotID, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoSlotRepo) Release(ctx context.Context, slotID, bookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":     slotID,
		"holder": bookingID,
		"state":  bson.M{"$in": bson.A{models.SlotHeld, models.SlotOccupied}},
	}
	update := bson.M{
		"$set":   bson.M{"state": models.SlotAvailable},
		"$unset": bson.M{"holder": "", "heldAt": ""},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("release slot %s failed: %w", slotID, err)
	}
	return res.ModifiedCount == 1, nil
}
