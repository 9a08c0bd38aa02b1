package area

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/booking"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- Listings ---

// CreateArea records the listing and creates its slots S1..Sn, all available.
// If the slots cannot be written the area record is removed again.
func (s *DefaultAreaService) CreateArea(ctx context.Context, ownerID string, in models.AreaInput) (*models.Area, []models.Slot, error) {
	if err := validateInput(ownerID, in); err != nil {
		return nil, nil, err
	}

	area := &models.Area{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(in.Name),
		Location:     strings.TrimSpace(in.Location),
		TotalSlots:   in.TotalSlots,
		PricePerHour: in.PricePerHour,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Areas.Create(ctx, area); err != nil {
		return nil, nil, fmt.Errorf("create area: %w", err)
	}

	slots := make([]models.Slot, 0, in.TotalSlots)
	for i := 1; i <= in.TotalSlots; i++ {
		slots = append(slots, models.Slot{
			ID:     uuid.New().String(),
			AreaID: area.ID,
			Label:  fmt.Sprintf("S%d", i),
			State:  models.SlotAvailable,
		})
	}
	if err := s.Slots.CreateMany(ctx, slots); err != nil {
		if _, derr := s.Slots.DeleteByArea(context.WithoutCancel(ctx), area.ID); derr != nil {
			s.Logger.Error("could not remove partial slots", zap.String("areaID", area.ID), zap.Error(derr))
		}
		if derr := s.Areas.Delete(context.WithoutCancel(ctx), area.ID); derr != nil {
			s.Logger.Error("could not remove area after slot failure", zap.String("areaID", area.ID), zap.Error(derr))
		}
		return nil, nil, fmt.Errorf("create slots of area %s: %w", area.ID, err)
	}

	if err := s.Cache.Set(ctx, area.ID, ownerID); err != nil {
		s.Logger.Warn("owner cache write failed", zap.String("areaID", area.ID), zap.Error(err))
	}
	s.Logger.Info("area created",
		zap.String("areaID", area.ID), zap.String("ownerID", ownerID), zap.Int("slots", len(slots)))
	return area, slots, nil
}

func validateInput(ownerID string, in models.AreaInput) error {
	switch {
	case ownerID == "":
		return booking.NewValidationError("ownerId", "is required")
	case strings.TrimSpace(in.Name) == "":
		return booking.NewValidationError("name", "is required")
	case in.TotalSlots < 1 || in.TotalSlots > MaxSlotsPerArea:
		return booking.NewValidationError("totalSlots", fmt.Sprintf("must be between 1 and %d", MaxSlotsPerArea))
	case in.PricePerHour < 0:
		return booking.NewValidationError("pricePerHour", "must not be negative")
	}
	return nil
}

// UpdateArea edits the name, location or hourly price of the owner's listing.
// Prices of existing bookings are not touched.
func (s *DefaultAreaService) UpdateArea(ctx context.Context, areaID, ownerID string, in models.AreaUpdate) (*models.Area, error) {
	area, err := s.GetArea(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if area.OwnerID != ownerID {
		return nil, booking.ErrNotAuthorized
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, booking.NewValidationError("name", "must not be empty")
		}
		area.Name = strings.TrimSpace(*in.Name)
	}
	if in.Location != nil {
		area.Location = strings.TrimSpace(*in.Location)
	}
	if in.PricePerHour != nil {
		if *in.PricePerHour < 0 {
			return nil, booking.NewValidationError("pricePerHour", "must not be negative")
		}
		area.PricePerHour = *in.PricePerHour
	}

	if err := s.Areas.Update(ctx, area); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("area %s: %w", areaID, booking.ErrNotFound)
		}
		return nil, fmt.Errorf("update area %s: %w", areaID, err)
	}
	s.Logger.Info("area updated", zap.String("areaID", areaID), zap.String("ownerID", ownerID))
	return area, nil
}

// DeleteArea removes an idle listing and its slots. Bookings stay in the ledger
// as history. An area with any held or occupied slot is refused.
func (s *DefaultAreaService) DeleteArea(ctx context.Context, areaID, ownerID string) error {
	area, err := s.GetArea(ctx, areaID)
	if err != nil {
		return err
	}
	if area.OwnerID != ownerID {
		return booking.ErrNotAuthorized
	}

	slots, err := s.Slots.ListByArea(ctx, areaID)
	if err != nil {
		return fmt.Errorf("list slots of area %s: %w", areaID, err)
	}
	for _, slot := range slots {
		if !slot.IsFree() {
			return fmt.Errorf("slot %s is %s: %w", slot.Label, slot.State, booking.ErrInvalidState)
		}
	}

	removed, err := s.Slots.DeleteByArea(ctx, areaID)
	if err != nil {
		return fmt.Errorf("delete slots of area %s: %w", areaID, err)
	}
	if err := s.Areas.Delete(ctx, areaID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete area %s: %w", areaID, err)
	}
	if err := s.Cache.Invalidate(ctx, areaID); err != nil {
		s.Logger.Warn("owner cache invalidation failed", zap.String("areaID", areaID), zap.Error(err))
	}

	s.Logger.Info("area deleted", zap.String("areaID", areaID), zap.Int64("slots", removed))
	return nil
}

func (s *DefaultAreaService) GetArea(ctx context.Context, areaID string) (*models.Area, error) {
	area, err := s.Areas.GetByID(ctx, areaID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("area %s: %w", areaID, booking.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load area %s: %w", areaID, err)
	}
	return area, nil
}

func (s *DefaultAreaService) ListOwnerAreas(ctx context.Context, ownerID string) ([]models.Area, error) {
	areas, err := s.Areas.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list areas of owner %s: %w", ownerID, err)
	}
	return areas, nil
}

// ListSlots returns the area's slots with their live state.
func (s *DefaultAreaService) ListSlots(ctx context.Context, areaID string) ([]models.Slot, error) {
	if _, err := s.GetArea(ctx, areaID); err != nil {
		return nil, err
	}
	slots, err := s.Slots.ListByArea(ctx, areaID)
	if err != nil {
		return nil, fmt.Errorf("list slots of area %s: %w", areaID, err)
	}
	return slots, nil
}

// --- Registry ---

// OwnerOf resolves the owner of an area, reading through the owner cache.
// A cache failure falls back to the store.
func (s *DefaultAreaService) OwnerOf(ctx context.Context, areaID string) (string, error) {
	owner, ok, err := s.Cache.Get(ctx, areaID)
	if err != nil {
		s.Logger.Warn("owner cache read failed", zap.String("areaID", areaID), zap.Error(err))
	}
	if ok {
		return owner, nil
	}

	area, err := s.GetArea(ctx, areaID)
	if err != nil {
		return "", err
	}
	if err := s.Cache.Set(ctx, areaID, area.OwnerID); err != nil {
		s.Logger.Debug("owner cache write failed", zap.String("areaID", areaID), zap.Error(err))
	}
	return area.OwnerID, nil
}

func (s *DefaultAreaService) AreaIDsOf(ctx context.Context, ownerID string) ([]string, error) {
	areas, err := s.ListOwnerAreas(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(areas))
	for _, a := range areas {
		ids = append(ids, a.ID)
	}
	return ids, nil
}
