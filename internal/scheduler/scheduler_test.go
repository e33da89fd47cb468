package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"carrental-backend/internal/config"
	"carrental-backend/internal/jobs"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.PickupReminders = "0 */15 * * * *"
	cfg.Scheduler.HistoryAudit = "0 0 4 * * *"

	s := NewScheduler(jobs.NewJobRunner(&jobs.Repositories{}, &jobs.Services{}, cfg))
	assert.Equal(t, 2, s.JobCount())

	s.Start()
	s.Stop()
}

func TestNewScheduler_SkipsInvalidSpec(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.PickupReminders = "not a cron spec"
	cfg.Scheduler.HistoryAudit = "0 0 4 * * *"

	s := NewScheduler(jobs.NewJobRunner(&jobs.Repositories{}, &jobs.Services{}, cfg))
	assert.Equal(t, 1, s.JobCount())
}
