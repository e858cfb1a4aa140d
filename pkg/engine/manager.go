package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ethanbaker/prospector/pkg/utils"
	"github.com/robfig/cron/v3"
)

// DefaultPollInterval is how often the scheduler drives a full pass over all
// active automations.
const DefaultPollInterval = 3 * time.Minute

// Manager is the process-wide scheduler that drives discrete ticks over all
// active automations. Exactly one orchestrator instance is assumed.
type Manager struct {
	store      StoreInterface
	sessions   *SessionRegistry
	dispatcher *Dispatcher
	interval   time.Duration

	// Lifecycle
	mutex      sync.Mutex
	running    bool
	cron       *cron.Cron
	quit       chan struct{}
	lastRunAt  *time.Time
	lastReport *TickReport

	// Held for the duration of one tick; ticks never overlap.
	tickMutex sync.Mutex
}

// ManagerOptions contains the collaborators and knobs for the Manager
type ManagerOptions struct {
	Store    StoreInterface   `json:"-" yaml:"-"`
	Sessions *SessionRegistry `json:"-" yaml:"-"`
	Senders  Senders          `json:"-" yaml:"-"`

	Now func() time.Time `json:"-" yaml:"-"` // test clock, defaults to time.Now
}

// Status is the externally visible scheduler state
type Status struct {
	Running    bool       `json:"running"`
	LastRunAt  *time.Time `json:"last_run_at"`
	IntervalMs int64      `json:"interval_ms"`
}

// NewManager creates a new automation engine manager. Interval, per-tick cap
// and call timeout come from config (ENGINE_POLL_MS, ENGINE_PER_TICK_CAP,
// ENGINE_CALL_TIMEOUT_MS).
func NewManager(cfg *utils.Config, opts *ManagerOptions) (*Manager, error) {
	if opts == nil || opts.Store == nil {
		return nil, fmt.Errorf("a valid store must be provided")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("a valid session registry must be provided")
	}

	interval := DefaultPollInterval
	if ms := cfg.GetIntWithDefault("ENGINE_POLL_MS", 0); ms > 0 {
		interval = time.Duration(ms) * time.Millisecond
	}

	dispatcher := NewDispatcher(opts.Store, opts.Sessions, opts.Senders, &DispatcherOptions{
		PerTickCap:  cfg.GetIntWithDefault("ENGINE_PER_TICK_CAP", DefaultPerTickCap),
		CallTimeout: time.Duration(cfg.GetIntWithDefault("ENGINE_CALL_TIMEOUT_MS", 0)) * time.Millisecond,
		Now:         opts.Now,
	})

	return &Manager{
		store:      opts.Store,
		sessions:   opts.Sessions,
		dispatcher: dispatcher,
		interval:   interval,
	}, nil
}

// Dispatcher exposes the underlying dispatcher
func (m *Manager) Dispatcher() *Dispatcher {
	return m.dispatcher
}

// Start begins the periodic timer and immediately triggers one pass without
// waiting for the first interval. Idempotent: if already running, no-op.
func (m *Manager) Start() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.running {
		return
	}

	m.quit = make(chan struct{})
	m.cron = cron.New()
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.interval), func() {
		m.RunOnce(context.Background())
	}); err != nil {
		log.Printf("[ENGINE]: Failed to schedule tick: %v", err)
		return
	}
	m.cron.Start()

	go m.RunOnce(context.Background())

	m.running = true
	log.Printf("[ENGINE]: Automation engine started (interval %s)", m.interval)
}

// Stop cancels the timer. Idempotent. An in-flight tick runs to completion,
// but a cooperative check between automations ends it early.
func (m *Manager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.running {
		return
	}

	close(m.quit)
	m.cron.Stop()
	m.cron = nil
	m.running = false
	log.Printf("[ENGINE]: Automation engine stopped")
}

// Status returns the current scheduler state
func (m *Manager) Status() Status {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return Status{
		Running:    m.running,
		LastRunAt:  m.lastRunAt,
		IntervalMs: m.interval.Milliseconds(),
	}
}

// LastReport returns the report of the most recently completed tick, or nil
func (m *Manager) LastReport() *TickReport {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.lastReport
}

// RunOnce executes one full orchestration pass over all active automations,
// sequentially. A failure while processing one automation never aborts the
// remaining automations. If a tick is already in progress the overlapping
// call is skipped, so two ticks never run concurrently.
func (m *Manager) RunOnce(ctx context.Context) *TickReport {
	if !m.tickMutex.TryLock() {
		return nil
	}
	defer m.tickMutex.Unlock()

	started := time.Now()
	m.mutex.Lock()
	m.lastRunAt = &started
	quit := m.quit
	m.mutex.Unlock()

	report := &TickReport{StartedAt: started}

	automations, err := m.store.ListActiveAutomations(ctx)
	if err != nil {
		log.Printf("[ENGINE]: Failed to list active automations: %v", err)
		report.FinishedAt = time.Now()
		m.saveReport(report)
		return report
	}

	for _, automation := range automations {
		if stopped(quit) {
			log.Printf("[ENGINE]: Stop requested, ending tick early")
			break
		}

		// Total limit reached: the automation has run its course.
		if automation.Limits.Total > 0 && automation.Stats.Requests >= automation.Limits.Total {
			automation.Status = AutomationCompleted
			if err := m.store.SaveAutomation(ctx, automation); err != nil {
				log.Printf("[ENGINE]: Failed to complete automation '%s': %v", automation.ID, err)
			}
			continue
		}

		automationReport := m.dispatcher.Dispatch(ctx, automation)
		if automationReport.Err != nil {
			log.Printf("[ENGINE]: Automation '%s' failed this tick: %v", automation.ID, automationReport.Err)
		}
		report.Automations = append(report.Automations, automationReport)
	}

	report.FinishedAt = time.Now()
	m.saveReport(report)
	return report
}

func (m *Manager) saveReport(report *TickReport) {
	m.mutex.Lock()
	m.lastReport = report
	m.mutex.Unlock()
}

func stopped(quit chan struct{}) bool {
	if quit == nil {
		return false
	}
	select {
	case <-quit:
		return true
	default:
		return false
	}
}
