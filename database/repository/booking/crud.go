// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoBookingRepo) Insert(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoBookingRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"externalOrderId": orderID})
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	err := r.coll.FindOne(ctx, filter).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking failed: %w", err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) ListByRenter(ctx context.Context, renterID string, statuses []models.BookingStatus) ([]models.Booking, error) {
	filter := bson.M{"renterId": renterID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoBookingRepo) ListByAreas(ctx context.Context, areaIDs []string, statuses []models.BookingStatus) ([]models.Booking, error) {
	if len(areaIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{"areaId": bson.M{"$in": areaIDs}}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
}

func (r *MongoBookingRepo) FindActiveEndedBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":    models.BookingActive,
		"windowEnd": bson.M{"$lte": cutoff},
	}
	return r.find(ctx, filter, options.Find())
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
