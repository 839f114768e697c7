// Package worker runs background jobs. The only job today is the
// dashboard cache warmer, which rebuilds hot dashboards on a schedule so
// interactive requests mostly hit Redis.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/outboundhq/salesops-platform/internal/dashboard"
	"github.com/outboundhq/salesops-platform/internal/sdrs"
	"github.com/outboundhq/salesops-platform/pkg/logging"
)

// DashboardBuilder is the slice of the dashboard service the warmer needs.
type DashboardBuilder interface {
	SDRDashboard(ctx context.Context, sdrID, month string) (*dashboard.SDRDashboard, error)
	ManagerDashboard(ctx context.Context, month string) (*dashboard.ManagerDashboard, error)
}

// RosterSource lists the SDRs whose dashboards get warmed.
type RosterSource interface {
	ListActive(ctx context.Context) ([]sdrs.SDR, error)
}

// Warmer periodically rebuilds the current-month dashboards.
type Warmer struct {
	builder  DashboardBuilder
	roster   RosterSource
	schedule string
	logger   *logging.Logger
	cron     *cron.Cron
}

// NewWarmer creates a warmer on the given cron schedule (standard spec,
// "@every 10m" style descriptors included).
func NewWarmer(builder DashboardBuilder, roster RosterSource, schedule string, logger *logging.Logger) *Warmer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Warmer{
		builder:  builder,
		roster:   roster,
		schedule: schedule,
		logger:   logger.WithComponent("warmer"),
		cron:     cron.New(),
	}
}

// Start registers the job and launches the cron loop. The first warm runs
// immediately so a fresh deploy does not wait out the schedule.
func (w *Warmer) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.schedule, func() { w.Warm(ctx) }); err != nil {
		return err
	}
	go w.Warm(ctx)
	w.cron.Start()
	w.logger.Info("cache warmer started", "schedule", w.schedule)
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (w *Warmer) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.logger.Info("cache warmer stopped")
}

// Warm rebuilds the manager dashboard and every active SDR's dashboard
// for the current month. Per-SDR failures are logged and skipped so one
// bad row cannot starve the rest of the roster.
func (w *Warmer) Warm(ctx context.Context) {
	start := time.Now()

	if _, err := w.builder.ManagerDashboard(ctx, ""); err != nil {
		w.logger.Warn("manager dashboard warm failed", "error", err)
	}

	roster, err := w.roster.ListActive(ctx)
	if err != nil {
		w.logger.Error("roster load failed, skipping sdr warm", "error", err)
		return
	}

	warmed := 0
	for _, sdr := range roster {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.builder.SDRDashboard(ctx, sdr.ID, ""); err != nil {
			w.logger.Warn("sdr dashboard warm failed", "sdr_id", sdr.ID, "error", err)
			continue
		}
		warmed++
	}

	w.logger.Info("warm cycle complete",
		"sdrs_warmed", warmed,
		"roster_size", len(roster),
		"duration_ms", time.Since(start).Milliseconds())
}
