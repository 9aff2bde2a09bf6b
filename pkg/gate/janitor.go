package gate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically sweeps expired cache entries, idle rate-limit
// windows, and stale budget ledgers so memory stays bounded between
// requests.
type Janitor struct {
	pipeline *Pipeline
	cron     *cron.Cron
	logger   *slog.Logger
	interval time.Duration
}

// NewJanitor creates a janitor sweeping the pipeline every interval.
// A non-positive interval defaults to one minute.
func NewJanitor(pipeline *Pipeline, interval time.Duration, logger *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		pipeline: pipeline,
		cron:     cron.New(),
		logger:   logger,
		interval: interval,
	}
}

// Start schedules the sweep and begins running it in the background.
func (j *Janitor) Start() error {
	spec := fmt.Sprintf("@every %s", j.interval)
	if _, err := j.cron.AddFunc(spec, j.sweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	j.cron.Start()
	j.logger.Info("janitor started", "interval", j.interval)
	return nil
}

// Stop halts the schedule and waits for any in-flight sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("janitor stopped")
}

func (j *Janitor) sweep() {
	start := time.Now()
	removed := j.pipeline.Sweep()
	if removed > 0 {
		j.logger.Debug("sweep completed",
			"removed", removed,
			"duration", time.Since(start),
		)
	}
}
