// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoSlotRepo) CreateMany(ctx context.Context, slots []models.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if len(slots) == 0 {
		return nil
	}
	docs := make([]interface{}, len(slots))
	for i, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		if slot.State == "" {
			slot.State = models.SlotAvailable
		}
		docs[i] = slot
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("insert slots failed: %w", err)
	}
	return nil
}

func (r *MongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find slot %s failed: %w", slotID, err)
	}
	return &slot, nil
}

func (r *MongoSlotRepo) ListByArea(ctx context.Context, areaID string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "slotLabel", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"areaId": areaID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *MongoSlotRepo) DeleteByArea(ctx context.Context, areaID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"areaId": areaID})
	if err != nil {
		return 0, fmt.Errorf("delete slots of area %s failed: %w", areaID, err)
	}
	return res.DeletedCount, nil
}

func (r *MongoSlotRepo) FindHeldBefore(ctx context.Context, cutoff time.Time) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"state":  models.SlotHeld,
		"heldAt": bson.M{"$lt": cutoff},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}
