package area

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	memoryRepo "github.com/Pushkar2103/parkezy-new/database/repository/memory"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/booking"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type mapCache struct {
	mu     sync.Mutex
	owners map[string]string
	gets   int
}

func (c *mapCache) Get(_ context.Context, areaID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	owner, ok := c.owners[areaID]
	return owner, ok, nil
}

func (c *mapCache) Set(_ context.Context, areaID, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners[areaID] = ownerID
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, areaID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.owners, areaID)
	return nil
}

func newTestService(t *testing.T, cache OwnerCache) (*DefaultAreaService, *memoryRepo.SlotStore) {
	t.Helper()
	slots := memoryRepo.NewSlotStore()
	svc, err := NewDefaultAreaService(memoryRepo.NewAreaStore(), slots, cache, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDefaultAreaService() error = %v", err)
	}
	return svc, slots
}

func TestCreateAreaCreatesLabelledSlots(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	area, slots, err := svc.CreateArea(ctx, "owner-1", models.AreaInput{Name: " Mall Lot ", TotalSlots: 3, PricePerHour: 40})
	if err != nil {
		t.Fatalf("CreateArea() error = %v", err)
	}
	if area.Name != "Mall Lot" || area.OwnerID != "owner-1" || area.TotalSlots != 3 {
		t.Errorf("area = %+v", area)
	}
	if len(slots) != 3 {
		t.Fatalf("slots = %d, want 3", len(slots))
	}

	listed, err := svc.ListSlots(ctx, area.ID)
	if err != nil {
		t.Fatalf("ListSlots() error = %v", err)
	}
	for i, want := range []string{"S1", "S2", "S3"} {
		if listed[i].Label != want || listed[i].State != models.SlotAvailable || listed[i].AreaID != area.ID {
			t.Errorf("slot %d = %+v, want available %s", i, listed[i], want)
		}
	}
}

func TestCreateAreaValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	tests := []struct {
		name  string
		owner string
		in    models.AreaInput
	}{
		{name: "no owner", in: models.AreaInput{Name: "a", TotalSlots: 1}},
		{name: "blank name", owner: "o", in: models.AreaInput{Name: " ", TotalSlots: 1}},
		{name: "zero slots", owner: "o", in: models.AreaInput{Name: "a"}},
		{name: "too many slots", owner: "o", in: models.AreaInput{Name: "a", TotalSlots: MaxSlotsPerArea + 1}},
		{name: "negative price", owner: "o", in: models.AreaInput{Name: "a", TotalSlots: 1, PricePerHour: -5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.CreateArea(context.Background(), tc.owner, tc.in); !errors.Is(err, booking.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdateArea(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	area, _, err := svc.CreateArea(ctx, "owner-1", models.AreaInput{Name: "Lot", Location: "Pune", TotalSlots: 2, PricePerHour: 40})
	if err != nil {
		t.Fatal(err)
	}

	name, price := " Riverside Lot ", int64(55)
	updated, err := svc.UpdateArea(ctx, area.ID, "owner-1", models.AreaUpdate{Name: &name, PricePerHour: &price})
	if err != nil {
		t.Fatalf("UpdateArea() error = %v", err)
	}
	if updated.Name != "Riverside Lot" || updated.PricePerHour != 55 || updated.Location != "Pune" || updated.TotalSlots != 2 {
		t.Errorf("updated = %+v", updated)
	}
	if got, _ := svc.GetArea(ctx, area.ID); got.Name != "Riverside Lot" || got.PricePerHour != 55 {
		t.Errorf("stored area = %+v", got)
	}

	blank, negative := "  ", int64(-1)
	tests := []struct {
		name  string
		id    string
		owner string
		in    models.AreaUpdate
		want  error
	}{
		{name: "wrong owner", id: area.ID, owner: "owner-2", in: models.AreaUpdate{Name: &name}, want: booking.ErrNotAuthorized},
		{name: "unknown area", id: "missing", owner: "owner-1", want: booking.ErrNotFound},
		{name: "blank name", id: area.ID, owner: "owner-1", in: models.AreaUpdate{Name: &blank}, want: booking.ErrValidation},
		{name: "negative price", id: area.ID, owner: "owner-1", in: models.AreaUpdate{PricePerHour: &negative}, want: booking.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.UpdateArea(ctx, tc.id, tc.owner, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
	if got, _ := svc.GetArea(ctx, area.ID); got.Name != "Riverside Lot" || got.PricePerHour != 55 {
		t.Errorf("rejected updates changed the area: %+v", got)
	}
}

func TestDeleteArea(t *testing.T) {
	ctx := context.Background()

	t.Run("idle area", func(t *testing.T) {
		cache := &mapCache{owners: map[string]string{}}
		svc, slots := newTestService(t, cache)
		area, _, err := svc.CreateArea(ctx, "owner-1", models.AreaInput{Name: "Lot", TotalSlots: 2})
		if err != nil {
			t.Fatal(err)
		}
		if err := svc.DeleteArea(ctx, area.ID, "owner-1"); err != nil {
			t.Fatalf("DeleteArea() error = %v", err)
		}
		if left, _ := slots.ListByArea(ctx, area.ID); len(left) != 0 {
			t.Errorf("slots left = %d", len(left))
		}
		if _, ok := cache.owners[area.ID]; ok {
			t.Error("owner cache not invalidated")
		}
		if _, err := svc.GetArea(ctx, area.ID); !errors.Is(err, booking.ErrNotFound) {
			t.Errorf("GetArea() after delete error = %v", err)
		}
	})

	t.Run("wrong owner", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		area, _, _ := svc.CreateArea(ctx, "owner-1", models.AreaInput{Name: "Lot", TotalSlots: 1})
		if err := svc.DeleteArea(ctx, area.ID, "owner-2"); !errors.Is(err, booking.ErrNotAuthorized) {
			t.Fatalf("error = %v, want ErrNotAuthorized", err)
		}
	})

	t.Run("slot in use", func(t *testing.T) {
		svc, slots := newTestService(t, nil)
		area, created, _ := svc.CreateArea(ctx, "owner-1", models.AreaInput{Name: "Lot", TotalSlots: 2})
		if err := slots.Claim(ctx, created[1].ID, "booking-1", time.Now()); err != nil {
			t.Fatal(err)
		}
		if err := svc.DeleteArea(ctx, area.ID, "owner-1"); !errors.Is(err, booking.ErrInvalidState) {
			t.Fatalf("error = %v, want ErrInvalidState", err)
		}
		if left, _ := slots.ListByArea(ctx, area.ID); len(left) != 2 {
			t.Errorf("slots left = %d, want 2", len(left))
		}
	})
}

func TestOwnerLookups(t *testing.T) {
	ctx := context.Background()
	cache := &mapCache{owners: map[string]string{}}
	svc, _ := newTestService(t, cache)

	a1, _, _ := svc.CreateArea(ctx, "owner-1", models.AreaInput{Name: "One", TotalSlots: 1})
	a2, _, _ := svc.CreateArea(ctx, "owner-1", models.AreaInput{Name: "Two", TotalSlots: 1})
	_, _, _ = svc.CreateArea(ctx, "owner-2", models.AreaInput{Name: "Three", TotalSlots: 1})

	delete(cache.owners, a1.ID)
	owner, err := svc.OwnerOf(ctx, a1.ID)
	if err != nil || owner != "owner-1" {
		t.Fatalf("OwnerOf() = %q, %v", owner, err)
	}
	if cache.owners[a1.ID] != "owner-1" {
		t.Error("store lookup did not fill the cache")
	}

	if _, err := svc.OwnerOf(ctx, "missing"); !errors.Is(err, booking.ErrNotFound) {
		t.Errorf("OwnerOf(missing) error = %v, want ErrNotFound", err)
	}

	ids, err := svc.AreaIDsOf(ctx, "owner-1")
	if err != nil {
		t.Fatalf("AreaIDsOf() error = %v", err)
	}
	got := map[string]bool{}
	for _, id := range ids {
		got[id] = true
	}
	if len(ids) != 2 || !got[a1.ID] || !got[a2.ID] {
		t.Errorf("AreaIDsOf() = %v", ids)
	}
}

func TestOwnerOfSurvivesRedisOutage(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	svc, _ := newTestService(t, NewRedisOwnerCache(client, time.Minute))
	ctx := context.Background()
	area, _, err := svc.CreateArea(ctx, "owner-1", models.AreaInput{Name: "Lot", TotalSlots: 1})
	if err != nil {
		t.Fatalf("CreateArea() error = %v", err)
	}

	owner, err := svc.OwnerOf(ctx, area.ID)
	if err != nil || owner != "owner-1" {
		t.Fatalf("OwnerOf() = %q, %v", owner, err)
	}
}
