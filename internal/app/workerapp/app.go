package workerapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ivankudzin/matrimony/internal/config"
	"github.com/ivankudzin/matrimony/internal/jobs/premium"
	pgrepo "github.com/ivankudzin/matrimony/internal/repo/postgres"
)

const (
	defaultSweepSchedule = "@every 15m"
	jobTimeout           = time.Minute
)

type job interface {
	Run(ctx context.Context) error
}

type App struct {
	cfg      config.Config
	logger   *zap.Logger
	postgres *pgxpool.Pool
	sweep    job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for worker app: %w", err)
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		postgres: pool,
		sweep:    premium.NewJob(pgrepo.NewProfileRepo(pool), logger),
	}, nil
}

// Run sweeps once on start, then on the configured schedule until ctx is done.
func (a *App) Run(ctx context.Context) error {
	scheduler, err := newScheduler(ctx, a.cfg.Worker.PremiumSweepSchedule, a.sweep, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("worker app started", zap.String("premium_sweep_schedule", a.cfg.Worker.PremiumSweepSchedule))
	runJob(ctx, "premium_sweep", a.sweep, a.logger)

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()

	a.logger.Info("worker app stopped")
	return nil
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
}

func newScheduler(ctx context.Context, spec string, sweep job, logger *zap.Logger) (*cron.Cron, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = defaultSweepSchedule
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() {
		runJob(ctx, "premium_sweep", sweep, logger)
	}); err != nil {
		return nil, fmt.Errorf("schedule premium sweep %q: %w", spec, err)
	}
	return c, nil
}

// runJob logs failures instead of returning them so one bad run does not
// stop the schedule.
func runJob(ctx context.Context, name string, j job, logger *zap.Logger) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	started := time.Now()
	if err := j.Run(runCtx); err != nil {
		logger.Error("worker job failed", zap.String("job", name), zap.Error(err))
		return
	}
	logger.Debug("worker job finished", zap.String("job", name), zap.Duration("duration", time.Since(started)))
}
