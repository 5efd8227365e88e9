package scheduler

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"
)

// ManagerConfig is the poller template applied to every watched user.
type ManagerConfig struct {
	Window         time.Duration
	Interval       time.Duration
	IncludeExpired bool
	Deduplicate    bool
	Notify         NotifyFunc
}

// Manager runs one expiration poller per watched user. Watch and Unwatch are
// reference counted so several connections of one user share a poller.
type Manager struct {
	cfg    ManagerConfig
	finder ExpiringFinder
	clock  clock.Clock
	logger *zap.Logger

	mu      sync.Mutex
	pollers map[string]*watch
}

type watch struct {
	poller *Poller
	refs   int
}

// NewManager creates a Manager.
func NewManager(cfg ManagerConfig, finder ExpiringFinder, clk clock.Clock, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		finder:  finder,
		clock:   clk,
		logger:  logger,
		pollers: make(map[string]*watch),
	}
}

// Watch starts polling for userID unless a poller is already running.
func (m *Manager) Watch(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.pollers[userID]; ok {
		w.refs++
		return
	}

	p, err := StartPoller(PollerConfig{
		UserID:         userID,
		Window:         m.cfg.Window,
		Interval:       m.cfg.Interval,
		IncludeExpired: m.cfg.IncludeExpired,
		Deduplicate:    m.cfg.Deduplicate,
		Notify:         m.cfg.Notify,
	}, m.finder, m.clock, m.logger)
	if err != nil {
		m.logger.Error("failed to start expiration poller", zap.String("user_id", userID), zap.Error(err))
		return
	}
	m.pollers[userID] = &watch{poller: p, refs: 1}
}

// Unwatch releases one reference and stops the poller when none remain.
func (m *Manager) Unwatch(userID string) {
	m.mu.Lock()
	w, ok := m.pollers[userID]
	if !ok {
		m.mu.Unlock()
		return
	}
	w.refs--
	if w.refs > 0 {
		m.mu.Unlock()
		return
	}
	delete(m.pollers, userID)
	m.mu.Unlock()

	w.poller.Stop()
}

// Watching returns the number of users with a running poller.
func (m *Manager) Watching() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pollers)
}

// StopAll stops every poller.
func (m *Manager) StopAll() {
	m.mu.Lock()
	pollers := m.pollers
	m.pollers = make(map[string]*watch)
	m.mu.Unlock()

	for _, w := range pollers {
		w.poller.Stop()
	}
}
