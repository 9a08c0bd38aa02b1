package models

import "time"

// SlotState is the reservation state of a physical slot.
type SlotState string

const (
	SlotAvailable SlotState = "available"
	SlotHeld      SlotState = "held"
	SlotOccupied  SlotState = "occupied"
)

// Slot is one physical parking space. Holder is set exactly when State is held or occupied.
type Slot struct {
	ID     string     `bson:"id" json:"id"`
	AreaID string     `bson:"areaId" json:"areaId"`
	Label  string     `bson:"slotLabel" json:"slotLabel"`
	State  SlotState  `bson:"state" json:"state"`
	Holder string     `bson:"holder,omitempty" json:"holder,omitempty"` // booking id
	HeldAt *time.Time `bson:"heldAt,omitempty" json:"heldAt,omitempty"`
}

// IsFree reports whether the slot can be claimed.
func (s Slot) IsFree() bool {
	return s.State == SlotAvailable
}
