// Package jobs provides scheduled background tasks for the dispatch system.
//
// The only job today is the redispatch job, which retries driver matching
// for pending deliveries on a configurable cron schedule. Jobs are managed
// through JobManager so the composition root starts and stops them as one.
package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	redispatchJob *RedispatchJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	redispatchHandler commands.RedispatchPendingCommandHandler,
	redispatchSchedule string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		redispatchJob: NewRedispatchJob(redispatchHandler, redispatchSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.redispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start redispatch job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.redispatchJob.Stop()
}
