package repository

import (
	"errors"
	"time"

	"github.com/Pushkar2103/parkezy-new/models"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional update did not match the expected state.
	ErrConflict = errors.New("record changed concurrently")
)

// BookingMatch is the expected current state of a booking for a conditional update.
// Empty slices match any value.
type BookingMatch struct {
	Statuses        []models.BookingStatus
	PaymentStatuses []models.PaymentStatus
}

// Matches reports whether b satisfies the match.
func (m BookingMatch) Matches(b *models.Booking) bool {
	if len(m.Statuses) > 0 && !containsStatus(m.Statuses, b.Status) {
		return false
	}
	if len(m.PaymentStatuses) > 0 && !containsPayment(m.PaymentStatuses, b.PaymentStatus) {
		return false
	}
	return true
}

// BookingChange lists the fields a conditional update writes. Zero values are left untouched.
type BookingChange struct {
	Status           models.BookingStatus
	PaymentStatus    models.PaymentStatus
	ExternalOrderID  string
	PaymentSessionID string
	CheckoutURL      string
	UpdatedAt        time.Time
}

// Apply writes the change onto b.
func (c BookingChange) Apply(b *models.Booking) {
	if c.Status != "" {
		b.Status = c.Status
	}
	if c.PaymentStatus != "" {
		b.PaymentStatus = c.PaymentStatus
	}
	if c.ExternalOrderID != "" {
		b.ExternalOrderID = c.ExternalOrderID
	}
	if c.PaymentSessionID != "" {
		b.PaymentSessionID = c.PaymentSessionID
	}
	if c.CheckoutURL != "" {
		b.CheckoutURL = c.CheckoutURL
	}
	if !c.UpdatedAt.IsZero() {
		b.UpdatedAt = c.UpdatedAt
	}
}

func containsStatus(list []models.BookingStatus, s models.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsPayment(list []models.PaymentStatus, s models.PaymentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
