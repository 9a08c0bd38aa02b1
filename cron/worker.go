package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pushkar2103/parkezy-new/config"
	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Sweeper is the part of the reservation engine the release scheduler drives.
type Sweeper interface {
	SweepHeldTimeouts(ctx context.Context) (models.SweepReport, error)
	SweepExpiredActive(ctx context.Context) (models.SweepReport, error)
}

// RedisOpt returns the asynq connection for the sweep queue DB.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewSweepMux routes both sweep task types to the engine.
func NewSweepMux(s Sweeper, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSweepHeldTimeouts, handleSweepTask(tasks.KindHolds, s.SweepHeldTimeouts, logger))
	mux.HandleFunc(tasks.TypeSweepExpired, handleSweepTask(tasks.KindExpired, s.SweepExpiredActive, logger))
	return mux
}

func handleSweepTask(kind string, sweep func(context.Context) (models.SweepReport, error), logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseSweepPayload(task)
		if err != nil {
			logger.Error("invalid sweep payload", zap.String("type", task.Type()), zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if p.Kind != "" && p.Kind != kind {
			return fmt.Errorf("task %s carries sweep kind %q: %w", task.Type(), p.Kind, asynq.SkipRetry)
		}
		_, err = runSweep(ctx, kind, sweep, logger)
		return err
	}
}

// runSweep executes one sweep and logs its report.
func runSweep(ctx context.Context, kind string, sweep func(context.Context) (models.SweepReport, error), logger *zap.Logger) (models.SweepReport, error) {
	started := time.Now()
	report, err := sweep(ctx)
	if err != nil {
		logger.Error("sweep failed", zap.String("sweep", kind), zap.Error(err))
		return report, err
	}
	logger.Debug("sweep done",
		zap.String("sweep", kind), zap.Int("scanned", report.Scanned),
		zap.Int("released", report.Released), zap.Duration("took", time.Since(started)))
	return report, nil
}

// SweepWorker runs the asynq server and the periodic scheduler for the sweeps.
type SweepWorker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

// WorkerConfig holds the sweep schedule.
type WorkerConfig struct {
	HoldEvery   time.Duration
	ExpiryEvery time.Duration
	Concurrency int
}

func NewSweepWorker(opt asynq.RedisConnOpt, s Sweeper, cfg WorkerConfig, logger *zap.Logger) (*SweepWorker, error) {
	if cfg.HoldEvery <= 0 || cfg.ExpiryEvery <= 0 {
		return nil, errors.New("sweep intervals must be positive")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{"default": 1},
	})
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})

	for kind, every := range map[string]time.Duration{tasks.KindHolds: cfg.HoldEvery, tasks.KindExpired: cfg.ExpiryEvery} {
		task, err := tasks.NewSweepTask(kind, time.Time{}, every)
		if err != nil {
			return nil, err
		}
		// Unique keeps a slow sweep from piling up copies of itself across processes.
		entryID, err := scheduler.Register("@every "+every.String(), task, asynq.Unique(every))
		if err != nil {
			return nil, fmt.Errorf("register %s sweep: %w", kind, err)
		}
		logger.Info("sweep scheduled", zap.String("sweep", kind), zap.Duration("every", every), zap.String("entryID", entryID))
	}

	return &SweepWorker{server: srv, scheduler: scheduler, mux: NewSweepMux(s, logger), logger: logger}, nil
}

// Start launches the worker and the scheduler, retrying the worker start with backoff.
func (w *SweepWorker) Start() error {
	const maxAttempts = 5
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = w.server.Start(w.mux); err == nil {
			break
		}
		w.logger.Warn("sweep worker failed to start",
			zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}
	if err != nil {
		return fmt.Errorf("start sweep worker: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return fmt.Errorf("start sweep scheduler: %w", err)
	}
	w.logger.Info("sweep worker started")
	return nil
}

func (w *SweepWorker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.logger.Info("sweep worker stopped")
}
