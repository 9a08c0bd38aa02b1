// FILE: database/repository/slot/indexes.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the slots collection.
func (r *MongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Labels are unique within an area.
		{
			Keys:    bson.D{{Key: "areaId", Value: 1}, {Key: "slotLabel", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("area_label_idx"),
		},
		// Hold-timeout sweep scans held slots by age.
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "heldAt", Value: 1}},
			Options: options.Index().SetName("state_heldAt_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}
