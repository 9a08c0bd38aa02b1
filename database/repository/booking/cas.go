// File: database/repository/booking/cas.go
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

func (r *MongoBookingRepo) CompareAndSet(
	ctx context.Context,
	id string,
	match repository.BookingMatch,
	change repository.BookingChange,
) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := matchFilter(id, match)
	set := changeSet(change)
	if len(set) == 0 {
		return nil, fmt.Errorf("empty change for booking %s", id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update booking %s failed: %w", id, err)
	}
	return &updated, nil
}

func matchFilter(id string, match repository.BookingMatch) bson.M {
	filter := bson.M{"id": id}
	if len(match.Statuses) > 0 {
		filter["status"] = bson.M{"$in": match.Statuses}
	}
	if len(match.PaymentStatuses) > 0 {
		filter["paymentStatus"] = bson.M{"$in": match.PaymentStatuses}
	}
	return filter
}

func changeSet(change repository.BookingChange) bson.M {
	set := bson.M{}
	if change.Status != "" {
		set["status"] = change.Status
	}
	if change.PaymentStatus != "" {
		set["paymentStatus"] = change.PaymentStatus
	}
	if change.ExternalOrderID != "" {
		set["externalOrderId"] = change.ExternalOrderID
	}
	if change.PaymentSessionID != "" {
		set["paymentSessionId"] = change.PaymentSessionID
	}
	if change.CheckoutURL != "" {
		set["checkoutUrl"] = change.CheckoutURL
	}
	if !change.UpdatedAt.IsZero() {
		set["updatedAt"] = change.UpdatedAt
	}
	return set
}
