package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Pushkar2103/parkezy-new/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSweepHeldTimeouts = "sweep:held-timeouts"
	TypeSweepExpired      = "sweep:expired-active"

	KindHolds   = "holds"
	KindExpired = "expired"
)

// TypeForKind maps a sweep kind to its task type.
func TypeForKind(kind string) (string, error) {
	switch kind {
	case KindHolds:
		return TypeSweepHeldTimeouts, nil
	case KindExpired:
		return TypeSweepExpired, nil
	}
	return "", fmt.Errorf("unknown sweep kind %q", kind)
}

// NewSweepTask builds a sweep task. Retries are off since the next tick runs the sweep again.
func NewSweepTask(kind string, scheduledAt time.Time, timeout time.Duration) (*asynq.Task, error) {
	taskType, err := TypeForKind(kind)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(models.SweepTaskPayload{Kind: kind, ScheduledAt: scheduledAt})
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.MaxRetry(0)}
	if timeout > 0 {
		opts = append(opts, asynq.Timeout(timeout))
	}
	return asynq.NewTask(taskType, b, opts...), nil
}

// ParseSweepPayload decodes a sweep task payload.
func ParseSweepPayload(task *asynq.Task) (models.SweepTaskPayload, error) {
	var p models.SweepTaskPayload
	if len(task.Payload()) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", task.Type(), err)
	}
	return p, nil
}
