package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gnmyt/MCDash-sub000/internal/platform"
)

// BackupFunc triggers the external backup engine.
type BackupFunc func(ctx context.Context) error

// Runner polls the schedule store and executes due schedules. There is no
// cron syntax; schedules are plain intervals checked once per tick.
type Runner struct {
	Store   *Store
	Adapter platform.Adapter
	Backup  BackupFunc
	Tick    time.Duration // defaults to a minute
}

func (r *Runner) Run(ctx context.Context) {
	tick := r.Tick
	if tick <= 0 {
		tick = time.Minute
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			r.runDue(ctx, now)
		}
	}
}

func (r *Runner) runDue(ctx context.Context, now time.Time) {
	due, err := r.Store.Due(ctx, now)
	if err != nil {
		slog.Error("schedule poll failed", "error", err)
		return
	}
	for _, rec := range due {
		runID := uuid.NewString()
		if err := r.execute(ctx, rec); err != nil {
			slog.Error("schedule failed", "schedule", rec.Name, "action", rec.Action, "run", runID, "error", err)
		} else {
			slog.Info("schedule ran", "schedule", rec.Name, "action", rec.Action, "run", runID)
		}
		if err := r.Store.MarkRun(ctx, rec.ID, now); err != nil {
			slog.Error("schedule mark failed", "schedule", rec.Name, "error", err)
		}
	}
}

func (r *Runner) execute(ctx context.Context, rec ScheduleRecord) error {
	switch rec.Action {
	case ActionCommand:
		return r.Adapter.SendCommand(ctx, rec.Payload)
	case ActionRestart:
		// The supervisor restarts the process after a clean stop.
		return r.Adapter.SendCommand(ctx, "stop")
	case ActionBackup:
		if r.Backup == nil {
			slog.Warn("backup schedule with no backup engine configured", "schedule", rec.Name)
			return nil
		}
		return r.Backup(ctx)
	default:
		slog.Warn("unknown schedule action", "schedule", rec.Name, "action", rec.Action)
		return nil
	}
}
