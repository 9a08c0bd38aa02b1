// File: database/repository/area/crud.go
package areaRepo

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

func (r *MongoAreaRepo) Create(ctx context.Context, area *models.Area) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, area); err != nil {
		return fmt.Errorf("insert area failed: %w", err)
	}
	return nil
}

func (r *MongoAreaRepo) GetByID(ctx context.Context, id string) (*models.Area, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var area models.Area
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&area)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find area %s failed: %w", id, err)
	}
	return &area, nil
}

func (r *MongoAreaRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Area, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var areas []models.Area
	if err := cursor.All(ctx, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

// Update writes the editable fields of area.
func (r *MongoAreaRepo) Update(ctx context.Context, area *models.Area) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":         area.Name,
		"location":     area.Location,
		"pricePerHour": area.PricePerHour,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": area.ID}, update)
	if err != nil {
		return fmt.Errorf("update area %s failed: %w", area.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoAreaRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete area %s failed: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the necessary indexes on the areas collection.
func (r *MongoAreaRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}},
			Options: options.Index().SetName("owner_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create area indexes: %w", err)
	}
	return nil
}
