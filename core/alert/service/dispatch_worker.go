package service

import (
	"context"

	"github.com/goto/salt/log"
	"github.com/robfig/cron/v3"

	"github.com/goto/sentinel/core/alert"
	"github.com/goto/sentinel/internal/errors"
	"github.com/goto/sentinel/internal/telemetry"
)

const DefaultSchedule = "@every 1m"

type PendingSender interface {
	SendPending(ctx context.Context) error
}

// DispatchWorker sends pending alerts on a cron schedule, a run is skipped while
// the previous one is still in progress.
type DispatchWorker struct {
	logger   log.Logger
	sender   PendingSender
	spec     string
	schedule *cron.Cron
}

func NewDispatchWorker(logger log.Logger, sender PendingSender, spec string) *DispatchWorker {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &DispatchWorker{
		logger: logger,
		sender: sender,
		spec:   spec,
		schedule: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
	}
}

func (w *DispatchWorker) Start(ctx context.Context) error {
	_, err := w.schedule.AddFunc(w.spec, func() { w.dispatch(ctx) })
	if err != nil {
		return errors.InvalidArgument(alert.EntityFreshnessAlert, "invalid schedule "+w.spec+": "+err.Error())
	}
	w.schedule.Start()
	w.logger.Info("dispatch worker started", "schedule", w.spec)
	return nil
}

func (w *DispatchWorker) dispatch(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("recovered from panic in dispatch worker", "panic", r)
			telemetry.LogPanic(alert.EntityFreshnessAlert, "dispatch worker panic")
		}
	}()

	if err := w.sender.SendPending(ctx); err != nil {
		w.logger.Error("error sending pending alerts", "error", err)
	}
}

// Stop stops scheduling and waits for a running dispatch to finish.
func (w *DispatchWorker) Stop() {
	<-w.schedule.Stop().Done()
}
