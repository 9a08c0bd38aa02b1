// File: database/repository/memory/areas.go
package memoryRepo

import (
	"context"
	"fmt"
	"sync"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	areaRepo "github.com/Pushkar2103/parkezy-new/database/repository/area"
	"github.com/Pushkar2103/parkezy-new/models"
)

// AreaStore keeps listings in process memory.
type AreaStore struct {
	mu    sync.RWMutex
	areas map[string]models.Area
}

func NewAreaStore() *AreaStore {
	return &AreaStore{areas: make(map[string]models.Area)}
}

var _ areaRepo.AreaRepository = (*AreaStore)(nil)

func (s *AreaStore) Create(_ context.Context, area *models.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.areas[area.ID]; exists {
		return fmt.Errorf("area %s already exists", area.ID)
	}
	s.areas[area.ID] = *area
	return nil
}

func (s *AreaStore) GetByID(_ context.Context, id string) (*models.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	area, ok := s.areas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &area, nil
}

func (s *AreaStore) ListByOwner(_ context.Context, ownerID string) ([]models.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Area
	for _, area := range s.areas {
		if area.OwnerID == ownerID {
			out = append(out, area)
		}
	}
	return out, nil
}

func (s *AreaStore) Update(_ context.Context, area *models.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.areas[area.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name, cur.Location, cur.PricePerHour = area.Name, area.Location, area.PricePerHour
	s.areas[area.ID] = cur
	return nil
}

func (s *AreaStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.areas, id)
	return nil
}
