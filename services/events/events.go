package events

import (
	"context"
	"sync"

	"github.com/Pushkar2103/parkezy-new/models"
)

// Routing keys for booking lifecycle events.
const (
	TopicBookingActivated   = "booking.activated"
	TopicBookingCancelled   = "booking.cancelled"
	TopicBookingCompleted   = "booking.completed"
	TopicRefundOwed         = "refund.owed"
	TopicCompensationFailed = "compensation.failed"
)

// Publisher delivers lifecycle events to other systems.
type Publisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.LifecycleEvent) error { return nil }
func (NopPublisher) Close() error                                        { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
}

func (r *Recorder) Publish(_ context.Context, event models.LifecycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a snapshot of everything published so far.
func (r *Recorder) Events() []models.LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LifecycleEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of the given type were published.
func (r *Recorder) Count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
