// File: database/repository/area/interface.go
package areaRepo

import (
	"context"

	"github.com/Pushkar2103/parkezy-new/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AreaRepository is the listing registry.
type AreaRepository interface {
	Create(ctx context.Context, area *models.Area) error
	GetByID(ctx context.Context, id string) (*models.Area, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Area, error)
	Update(ctx context.Context, area *models.Area) error
	Delete(ctx context.Context, id string) error
}

// MongoAreaRepo stores areas in the "areas" collection.
type MongoAreaRepo struct {
	coll *mongo.Collection
}

// NewMongoAreaRepo constructs a new MongoDB AreaRepository.
func NewMongoAreaRepo(db *mongo.Database) *MongoAreaRepo {
	return &MongoAreaRepo{coll: db.Collection("areas")}
}

var _ AreaRepository = (*MongoAreaRepo)(nil)
