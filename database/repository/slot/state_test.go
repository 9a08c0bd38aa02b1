package slotRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Pushkar2103/parkezy-new/database/repository"
	"github.com/Pushkar2103/parkezy-new/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updateResponse(matched, modified int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: modified},
	)
}

func TestClaim(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("available slot is claimed", func(mt *mtest.T) {
		repo := NewMongoSlotRepo(mt.DB)
		mt.AddMockResponses(updateResponse(1, 1))

		if err := repo.Claim(ctx, "slot-1", "booking-1", time.Now()); err != nil {
			mt.Fatalf("Claim() error = %v", err)
		}
	})

	mt.Run("held slot reports conflict", func(mt *mtest.T) {
		repo := NewMongoSlotRepo(mt.DB)
		mt.AddMockResponses(
			updateResponse(0, 0),
			mtest.CreateCursorResponse(0, "parkezy.slots", mtest.FirstBatch, bson.D{
				{Key: "id", Value: "slot-1"},
				{Key: "state", Value: string(models.SlotHeld)},
				{Key: "holder", Value: "booking-0"},
			}),
		)

		err := repo.Claim(ctx, "slot-1", "booking-1", time.Now())
		if !errors.Is(err, repository.ErrConflict) {
			mt.Fatalf("Claim() error = %v, want ErrConflict", err)
		}
	})

	mt.Run("transaction write conflict reports conflict", func(mt *mtest.T) {
		repo := NewMongoSlotRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    112,
			Name:    "WriteConflict",
			Message: "Write conflict during plan execution",
			Labels:  []string{"TransientTransactionError"},
		}))

		err := repo.Claim(ctx, "slot-1", "booking-1", time.Now())
		if !errors.Is(err, repository.ErrConflict) {
			mt.Fatalf("Claim() error = %v, want ErrConflict", err)
		}
	})

	mt.Run("other server errors are not conflicts", func(mt *mtest.T) {
		repo := NewMongoSlotRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := repo.Claim(ctx, "slot-1", "booking-1", time.Now())
		if err == nil || errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
			mt.Fatalf("Claim() error = %v, want a plain failure", err)
		}
	})

	mt.Run("missing slot reports not found", func(mt *mtest.T) {
		repo := NewMongoSlotRepo(mt.DB)
		mt.AddMockResponses(
			updateResponse(0, 0),
			mtest.CreateCursorResponse(0, "parkezy.slots", mtest.FirstBatch),
		)

		err := repo.Claim(ctx, "nope", "booking-1", time.Now())
		if !errors.Is(err, repository.ErrNotFound) {
			mt.Fatalf("Claim() error = %v, want ErrNotFound", err)
		}
	})
}

func TestActivateAndRelease(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	tests := []struct {
		name     string
		modified int
		want     bool
	}{
		{name: "holder matches", modified: 1, want: true},
		{name: "holder mismatch or already done", modified: 0, want: false},
	}

	for _, tc := range tests {
		mt.Run("activate "+tc.name, func(mt *mtest.T) {
			repo := NewMongoSlotRepo(mt.DB)
			mt.AddMockResponses(updateResponse(tc.modified, tc.modified))

			got, err := repo.Activate(ctx, "slot-1", "booking-1")
			if err != nil {
				mt.Fatalf("Activate() error = %v", err)
			}
			if got != tc.want {
				mt.Errorf("Activate() = %v, want %v", got, tc.want)
			}
		})

		mt.Run("release "+tc.name, func(mt *mtest.T) {
			repo := NewMongoSlotRepo(mt.DB)
			mt.AddMockResponses(updateResponse(tc.modified, tc.modified))

			got, err := repo.Release(ctx, "slot-1", "booking-1")
			if err != nil {
				mt.Fatalf("Release() error = %v", err)
			}
			if got != tc.want {
				mt.Errorf("Release() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFindHeldBefore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes held slots", func(mt *mtest.T) {
		repo := NewMongoSlotRepo(mt.DB)
		heldAt := time.Now().Add(-15 * time.Minute).UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "parkezy.slots", mtest.FirstBatch,
			bson.D{
				{Key: "id", Value: "slot-1"},
				{Key: "areaId", Value: "area-1"},
				{Key: "slotLabel", Value: "S1"},
				{Key: "state", Value: string(models.SlotHeld)},
				{Key: "holder", Value: "booking-1"},
				{Key: "heldAt", Value: heldAt},
			},
		))

		slots, err := repo.FindHeldBefore(context.Background(), time.Now().Add(-10*time.Minute))
		if err != nil {
			mt.Fatalf("FindHeldBefore() error = %v", err)
		}
		if len(slots) != 1 {
			mt.Fatalf("len(slots) = %d, want 1", len(slots))
		}
		if slots[0].Holder != "booking-1" || slots[0].HeldAt == nil || !slots[0].HeldAt.Equal(heldAt) {
			mt.Errorf("unexpected slot %+v", slots[0])
		}
	})
}
