package scheduler

import (
	"github.com/go-co-op/gocron/v2"

	"github.com/ccotek/cocoti-pool-flow/internal/config"
	"github.com/ccotek/cocoti-pool-flow/internal/flow"
	"github.com/ccotek/cocoti-pool-flow/internal/logger"
)

// Manager job manager
type Manager struct {
	scheduler gocron.Scheduler
	sessions  *flow.Registry
	config    *config.Config
}

// NewManager creates the job manager
func NewManager(sessions *flow.Registry, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		sessions:  sessions,
		config:    cfg,
	}
}

// Start creates a manager, registers the jobs and starts the scheduler
func Start(sessions *flow.Registry, cfg *config.Config) *Manager {
	manager := NewManager(sessions, cfg)

	manager.RegisterJobs()
	manager.scheduler.Start()

	logger.Info("Job manager started successfully")
	return manager
}

// RegisterJobs registers all jobs
func (m *Manager) RegisterJobs() {
	m.RegisterSessionSweepJob()
}

// RegisterSessionSweepJob registers the expired-session sweeper
func (m *Manager) RegisterSessionSweepJob() {
	job := NewSessionSweepJob(m.sessions, m.config)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop shuts the scheduler down
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Job manager stopped")
}
