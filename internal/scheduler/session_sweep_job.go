package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ccotek/cocoti-pool-flow/internal/config"
	"github.com/ccotek/cocoti-pool-flow/internal/flow"
	"github.com/ccotek/cocoti-pool-flow/internal/logger"
)

// SessionSweepJob evicts expired wizard sessions
type SessionSweepJob struct {
	sessions *flow.Registry
	config   *config.Config
}

// NewSessionSweepJob creates the session sweeper
func NewSessionSweepJob(sessions *flow.Registry, cfg *config.Config) *SessionSweepJob {
	return &SessionSweepJob{
		sessions: sessions,
		config:   cfg,
	}
}

// GetName job name
func (j *SessionSweepJob) GetName() string {
	return "session_sweeper"
}

// GetSchedule schedule definition
func (j *SessionSweepJob) GetSchedule() gocron.JobDefinition {
	interval := j.config.Session.SweepInterval
	if interval <= 0 {
		interval = 60
	}
	return gocron.DurationJob(time.Duration(interval) * time.Second)
}

// Execute runs one sweep
func (j *SessionSweepJob) Execute() {
	removed := j.sessions.Sweep(time.Now())
	if removed > 0 {
		logger.Info("Session sweeper evicted %d expired sessions, %d remaining", removed, j.sessions.Len())
	}
}
