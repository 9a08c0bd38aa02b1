// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (r *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One gateway order maps to one booking; free bookings carry no order id.
		{
			Keys: bson.D{{Key: "externalOrderId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_external_order_id").
				SetPartialFilterExpression(bson.M{"externalOrderId": bson.M{"$type": "string"}}),
		},
		{
			Keys:    bson.D{{Key: "renterId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("renter_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "areaId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("area_status_idx"),
		},
		// Expiry sweep.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "windowEnd", Value: 1}},
			Options: options.Index().SetName("status_windowEnd_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
