// File: database/repository/memory/slots.go
package memoryRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	slotRepo "github.com/Pushkar2103/parkezy-new/database/repository/slot"
	"github.com/Pushkar2103/parkezy-new/models"

	"github.com/google/uuid"
)

// SlotStore keeps slots in process memory. Every state change is a
// check-and-set under the store mutex, mirroring the Mongo filters.
type SlotStore struct {
	mu    sync.Mutex
	slots map[string]models.Slot
}

func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[string]models.Slot)}
}

var _ slotRepo.SlotRepository = (*SlotStore)(nil)

func (s *SlotStore) CreateMany(_ context.Context, slots []models.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range slots {
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		if _, exists := s.slots[slot.ID]; exists {
			return fmt.Errorf("slot %s already exists", slot.ID)
		}
		if slot.State == "" {
			slot.State = models.SlotAvailable
		}
		s.slots[slot.ID] = slot
	}
	return nil
}

func (s *SlotStore) GetByID(_ context.Context, slotID string) (*models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copySlot(slot), nil
}

func (s *SlotStore) ListByArea(_ context.Context, areaID string) ([]models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Slot
	for _, slot := range s.slots {
		if slot.AreaID == areaID {
			out = append(out, *copySlot(slot))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s *SlotStore) DeleteByArea(_ context.Context, areaID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, slot := range s.slots {
		if slot.AreaID == areaID {
			delete(s.slots, id)
			n++
		}
	}
	return n, nil
}

func (s *SlotStore) Claim(_ context.Context, slotID, bookingID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return repository.ErrNotFound
	}
	if slot.State != models.SlotAvailable {
		return repository.ErrConflict
	}
	heldAt := at
	slot.State = models.SlotHeld
	slot.Holder = bookingID
	slot.HeldAt = &heldAt
	s.slots[slotID] = slot
	return nil
}

func (s *SlotStore) Activate(_ context.Context, slotID, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || slot.State != models.SlotHeld || slot.Holder != bookingID {
		return false, nil
	}
	slot.State = models.SlotOccupied
	s.slots[slotID] = slot
	return true, nil
}

func (s *SlotStore) Release(_ context.Context, slotID, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || slot.State == models.SlotAvailable || slot.Holder != bookingID {
		return false, nil
	}
	slot.State = models.SlotAvailable
	slot.Holder = ""
	slot.HeldAt = nil
	s.slots[slotID] = slot
	return true, nil
}

func (s *SlotStore) FindHeldBefore(_ context.Context, cutoff time.Time) ([]models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Slot
	for _, slot := range s.slots {
		if slot.State == models.SlotHeld && slot.HeldAt != nil && slot.HeldAt.Before(cutoff) {
			out = append(out, *copySlot(slot))
		}
	}
	return out, nil
}

func copySlot(slot models.Slot) *models.Slot {
	c := slot
	if slot.HeldAt != nil {
		t := *slot.HeldAt
		c.HeldAt = &t
	}
	return &c
}
