package models

import "time"

// SweepReport summarises one pass of a release sweep.
type SweepReport struct {
	Scanned   int `json:"scanned"`
	Released  int `json:"released"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Repaired  int `json:"repaired"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// SweepTaskPayload is carried by scheduled sweep tasks.
type SweepTaskPayload struct {
	Kind        string    `json:"kind"` // "holds" or "expired"
	ScheduledAt time.Time `json:"scheduledAt"`
}

// LifecycleEvent is published whenever a booking changes in a way other systems care about.
type LifecycleEvent struct {
	Type       string        `json:"type"`
	BookingID  string        `json:"bookingId"`
	SlotID     string        `json:"slotId,omitempty"`
	AreaID     string        `json:"areaId,omitempty"`
	RenterID   string        `json:"renterId,omitempty"`
	Status     BookingStatus `json:"status,omitempty"`
	Payment    PaymentStatus `json:"paymentStatus,omitempty"`
	AmountDue  int64         `json:"amountDue,omitempty"`
	Currency   string        `json:"currency,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}
