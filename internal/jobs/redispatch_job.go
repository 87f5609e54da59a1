package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// RedispatchJob periodically retries driver matching for deliveries stuck in
// pending. Deliveries end up pending when dispatch found no claimable driver;
// this job picks them up as drivers come back into the pool.
type RedispatchJob struct {
	handler  commands.RedispatchPendingCommandHandler
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

// NewRedispatchJob creates a job that runs the redispatch handler on the
// given cron schedule (with a seconds field, e.g. "*/15 * * * * *").
func NewRedispatchJob(
	handler commands.RedispatchPendingCommandHandler,
	schedule string,
	logger *slog.Logger,
) *RedispatchJob {
	return &RedispatchJob{
		handler:  handler,
		cron:     cron.New(cron.WithSeconds()),
		schedule: schedule,
		logger:   logger.With("component", "redispatch_job"),
	}
}

// Start schedules the job. An empty driver pool is not an error condition;
// the handler simply leaves the deliveries pending for the next run.
func (j *RedispatchJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()

		if err := j.handler.Handle(ctx, commands.NewRedispatchPendingCommand()); err != nil {
			j.logger.ErrorContext(ctx, "Redispatch job failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Redispatch job started", "schedule", j.schedule)
	return nil
}

// Stop stops the redispatch job.
func (j *RedispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Redispatch job stopped")
}
