// File: database/repository/memory/bookings.go
package memoryRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	bookingRepo "github.com/Pushkar2103/parkezy-new/database/repository/booking"
	"github.com/Pushkar2103/parkezy-new/models"
)

// BookingStore keeps the ledger in process memory.
type BookingStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	byOrder  map[string]string
}

func NewBookingStore() *BookingStore {
	return &BookingStore{
		bookings: make(map[string]models.Booking),
		byOrder:  make(map[string]string),
	}
}

var _ bookingRepo.BookingRepository = (*BookingStore)(nil)

func (s *BookingStore) Insert(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[b.ID]; exists {
		return fmt.Errorf("booking %s already exists", b.ID)
	}
	if b.ExternalOrderID != "" {
		if _, taken := s.byOrder[b.ExternalOrderID]; taken {
			return fmt.Errorf("order %s already mapped", b.ExternalOrderID)
		}
		s.byOrder[b.ExternalOrderID] = b.ID
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *BookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *BookingStore) GetByOrderID(_ context.Context, orderID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byOrder[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	b := s.bookings[id]
	return &b, nil
}

func (s *BookingStore) ListByRenter(_ context.Context, renterID string, statuses []models.BookingStatus) ([]models.Booking, error) {
	match := repository.BookingMatch{Statuses: statuses}
	return s.collect(func(b *models.Booking) bool {
		return b.RenterID == renterID && match.Matches(b)
	}, byCreatedDesc), nil
}

func (s *BookingStore) ListByAreas(_ context.Context, areaIDs []string, statuses []models.BookingStatus) ([]models.Booking, error) {
	areas := make(map[string]struct{}, len(areaIDs))
	for _, id := range areaIDs {
		areas[id] = struct{}{}
	}
	match := repository.BookingMatch{Statuses: statuses}
	return s.collect(func(b *models.Booking) bool {
		_, ok := areas[b.AreaID]
		return ok && match.Matches(b)
	}, byUpdatedDesc), nil
}

func (s *BookingStore) FindActiveEndedBefore(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	return s.collect(func(b *models.Booking) bool {
		return b.Status == models.BookingActive && !b.WindowEnd.After(cutoff)
	}, byCreatedDesc), nil
}

func (s *BookingStore) CompareAndSet(
	_ context.Context,
	id string,
	match repository.BookingMatch,
	change repository.BookingChange,
) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || !match.Matches(&b) {
		return nil, repository.ErrConflict
	}
	if change.ExternalOrderID != "" && change.ExternalOrderID != b.ExternalOrderID {
		if _, taken := s.byOrder[change.ExternalOrderID]; taken {
			return nil, fmt.Errorf("order %s already mapped", change.ExternalOrderID)
		}
		delete(s.byOrder, b.ExternalOrderID)
		s.byOrder[change.ExternalOrderID] = id
	}
	change.Apply(&b)
	s.bookings[id] = b
	return &b, nil
}

func (s *BookingStore) collect(keep func(*models.Booking) bool, less func(a, b *models.Booking) bool) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if keep(&b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func byCreatedDesc(a, b *models.Booking) bool { return a.CreatedAt.After(b.CreatedAt) }
func byUpdatedDesc(a, b *models.Booking) bool { return a.UpdatedAt.After(b.UpdatedAt) }
