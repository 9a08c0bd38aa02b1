package area

import (
	"context"
	"fmt"

	areaRepo "github.com/Pushkar2103/parkezy-new/database/repository/area"
	slotRepo "github.com/Pushkar2103/parkezy-new/database/repository/slot"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/booking"

	"go.uber.org/zap"
)

// MaxSlotsPerArea bounds the bulk slot creation of a single listing.
const MaxSlotsPerArea = 500

// AreaService manages owner listings and answers the engine's ownership lookups.
type AreaService interface {
	booking.Registry

	CreateArea(ctx context.Context, ownerID string, in models.AreaInput) (*models.Area, []models.Slot, error)
	UpdateArea(ctx context.Context, areaID, ownerID string, in models.AreaUpdate) (*models.Area, error)
	DeleteArea(ctx context.Context, areaID, ownerID string) error
	GetArea(ctx context.Context, areaID string) (*models.Area, error)
	ListOwnerAreas(ctx context.Context, ownerID string) ([]models.Area, error)
	ListSlots(ctx context.Context, areaID string) ([]models.Slot, error)
}

// DefaultAreaService is the production implementation.
type DefaultAreaService struct {
	Areas  areaRepo.AreaRepository
	Slots  slotRepo.SlotRepository
	Cache  OwnerCache
	Logger *zap.Logger
}

func NewDefaultAreaService(
	areas areaRepo.AreaRepository,
	slots slotRepo.SlotRepository,
	cache OwnerCache,
	logger *zap.Logger,
) (*DefaultAreaService, error) {
	if areas == nil || slots == nil {
		return nil, fmt.Errorf("area service initialization error: one or more dependencies are nil")
	}
	if cache == nil {
		cache = NopOwnerCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAreaService{Areas: areas, Slots: slots, Cache: cache, Logger: logger}, nil
}

var _ AreaService = (*DefaultAreaService)(nil)
