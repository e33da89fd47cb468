package jobs

import (
	"fmt"
	"time"

	"carrental-backend/internal/config"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/observability"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos    *Repositories
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Repositories holds the stores the jobs read from. *postgres.Store satisfies all of them.
type Repositories struct {
	Bookings repository.BookingRepository
	History  repository.HistoryRepository
	Users    repository.UserRepository
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email service.EmailService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos *Repositories, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		repos:    repos,
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and records the outcome.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			observability.JobRunsTotal.WithLabelValues(jobName, "panic").Inc()
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	if err = jobFunc(); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		observability.JobRunsTotal.WithLabelValues(jobName, "error").Inc()
		return err
	}
	observability.JobRunsTotal.WithLabelValues(jobName, "ok").Inc()
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendPickupReminders()
	jr.AuditHistoryHeads()
}
