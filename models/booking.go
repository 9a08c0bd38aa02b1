package models

import "time"

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	BookingHeld              BookingStatus = "held"
	BookingActive            BookingStatus = "active"
	BookingCancelRequested   BookingStatus = "cancel_requested"
	BookingCancelled         BookingStatus = "cancelled"
	BookingCompleteRequested BookingStatus = "complete_requested"
	BookingCompleted         BookingStatus = "completed"
)

// IsTerminal reports whether no field but the payment marker may change anymore.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// PaymentStatus tracks the payment side of a booking.
type PaymentStatus string

const (
	PaymentNone     PaymentStatus = "none"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking binds a renter to a slot for a time window.
type Booking struct {
	ID               string        `bson:"id" json:"id"`
	RenterID         string        `bson:"renterId" json:"renterId"`
	SlotID           string        `bson:"slotId" json:"slotId"`
	AreaID           string        `bson:"areaId" json:"areaId"`
	VehicleTag       string        `bson:"vehicleTag" json:"vehicleTag"`
	WindowStart      time.Time     `bson:"windowStart" json:"windowStart"`
	WindowEnd        time.Time     `bson:"windowEnd" json:"windowEnd"`
	Status           BookingStatus `bson:"status" json:"status"`
	AmountDue        int64         `bson:"amountDue" json:"amountDue"` // minor currency units
	Currency         string        `bson:"currency,omitempty" json:"currency,omitempty"`
	PaymentStatus    PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	ExternalOrderID  string        `bson:"externalOrderId,omitempty" json:"externalOrderId,omitempty"`
	PaymentSessionID string        `bson:"paymentSessionId,omitempty" json:"paymentSessionId,omitempty"`
	CheckoutURL      string        `bson:"checkoutUrl,omitempty" json:"checkoutUrl,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// ReservationRequest is the renter input for claiming a slot.
type ReservationRequest struct {
	SlotID      string    `json:"slotId" binding:"required"`
	VehicleTag  string    `json:"vehicleTag" binding:"required"`
	WindowStart time.Time `json:"windowStart" binding:"required"`
	WindowEnd   time.Time `json:"windowEnd" binding:"required"`
	AmountDue   int64     `json:"amountDue"`
}

// Decision is an owner's answer to a cancel or complete request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionDeny
}
