package pipeline

import (
	"context"
	"time"

	"github.com/mcpcrawl/mcpcrawl/pkg/store"
)

// scheduler owns the ticker goroutine behind EnableSchedule; stop closes
// quit and waits on done so DisableSchedule never returns while a tick is
// mid-dispatch.
type scheduler struct {
	quit chan struct{}
	done chan struct{}
}

// Status reports the Runner's current enablement and activity, the shape
// behind the `status` CLI command.
type Status struct {
	Enabled         bool
	ScheduleEnabled bool
	Active          bool
	LastRun         *RunResult
}

// Enable flips the crawler on. A fresh deployment starts disabled
// (Config.Enabled defaults false until an operator runs `enable`); a
// disabled Runner's RunOnce reports status "skipped" and its scheduled
// ticks are dropped with a logged warning, both without touching the
// network or the store.
func (r *Runner) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = true
}

// Disable flips the crawler off. A run already in flight is not
// interrupted; only future RunOnce calls and scheduled ticks are affected.
func (r *Runner) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = false
}

// IsEnabled reports whether the crawler is currently allowed to run.
func (r *Runner) IsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// EnableSchedule starts a background goroutine that calls RunOnce every
// Config.ScheduleInterval, using ctx as the parent for every triggered run.
// Calling it while a schedule is already running is a no-op.
func (r *Runner) EnableSchedule(ctx context.Context) {
	r.mu.Lock()
	if r.schedule != nil {
		r.mu.Unlock()
		return
	}
	sch := &scheduler{quit: make(chan struct{}), done: make(chan struct{})}
	r.schedule = sch
	r.mu.Unlock()

	go func() {
		defer close(sch.done)
		ticker := time.NewTicker(r.Config.ScheduleInterval)
		defer ticker.Stop()
		r.Logger.Info("schedule enabled", "interval", r.Config.ScheduleInterval)
		for {
			select {
			case <-ticker.C:
				if !r.IsEnabled() {
					r.Logger.Warn("scheduled tick skipped: crawler disabled")
					continue
				}
				if _, err := r.RunOnce(ctx); err != nil {
					r.Logger.Error("scheduled run failed", "err", err)
				}
			case <-sch.quit:
				return
			}
		}
	}()
}

// DisableSchedule stops the ticker goroutine started by EnableSchedule and
// blocks until it has exited. A run already in flight is left to finish.
func (r *Runner) DisableSchedule() {
	r.mu.Lock()
	sch := r.schedule
	r.schedule = nil
	r.mu.Unlock()
	if sch == nil {
		return
	}
	close(sch.quit)
	<-sch.done
	r.Logger.Info("schedule disabled")
}

// ScheduleEnabled reports whether a schedule goroutine is currently
// running.
func (r *Runner) ScheduleEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedule != nil
}

// Status reports the Runner's current enablement and activity.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Enabled:         r.enabled,
		ScheduleEnabled: r.schedule != nil,
		Active:          r.active,
		LastRun:         r.lastRun,
	}
}

// History returns the n most recent recorded runs, most recent first. n<=0
// returns every run ever recorded.
func (r *Runner) History(ctx context.Context, n int) ([]store.RunRecord, error) {
	return r.Store.History(ctx, n)
}
