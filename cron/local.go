package cron

import (
	"context"
	"errors"
	"time"

	"github.com/Pushkar2103/parkezy-new/models"
	"github.com/Pushkar2103/parkezy-new/services/tasks"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LocalScheduler runs the sweeps inside this process. Use it only when a
// single process serves the store.
type LocalScheduler struct {
	cron   *robfig.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewLocalScheduler(s Sweeper, cfg WorkerConfig, logger *zap.Logger) (*LocalScheduler, error) {
	if cfg.HoldEvery <= 0 || cfg.ExpiryEvery <= 0 {
		return nil, errors.New("sweep intervals must be positive")
	}

	cronLogger := robfig.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	c := robfig.New(robfig.WithChain(
		robfig.Recover(cronLogger),
		robfig.SkipIfStillRunning(cronLogger),
	))

	ctx, cancel := context.WithCancel(context.Background())
	ls := &LocalScheduler{cron: c, ctx: ctx, cancel: cancel}

	jobs := []struct {
		kind  string
		every time.Duration
		sweep func(context.Context) (models.SweepReport, error)
	}{
		{tasks.KindHolds, cfg.HoldEvery, s.SweepHeldTimeouts},
		{tasks.KindExpired, cfg.ExpiryEvery, s.SweepExpiredActive},
	}
	for _, job := range jobs {
		job := job
		if _, err := c.AddFunc("@every "+job.every.String(), func() {
			runCtx, done := context.WithTimeout(ls.ctx, job.every)
			defer done()
			_, _ = runSweep(runCtx, job.kind, job.sweep, logger)
		}); err != nil {
			cancel()
			return nil, err
		}
	}
	return ls, nil
}

func (l *LocalScheduler) Start() { l.cron.Start() }

// Stop cancels running sweeps and waits for them to return.
func (l *LocalScheduler) Stop() {
	l.cancel()
	<-l.cron.Stop().Done()
}

// Entries reports the number of scheduled jobs.
func (l *LocalScheduler) Entries() int { return len(l.cron.Entries()) }
