// Package scheduler runs the periodic background work: per-user expiration
// polling and booking status reconciliation.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/carhub/service-rental/internal/application"
)

// DefaultPollInterval is used when PollerConfig.Interval is zero.
const DefaultPollInterval = time.Hour

// ExpiringFinder lists a user's active bookings close to their end date.
type ExpiringFinder interface {
	ExpiringBookings(ctx context.Context, userID string, window time.Duration, includeExpired bool) ([]application.ExpiringBooking, error)
}

// NotifyFunc is called once per matching booking per tick.
type NotifyFunc func(ctx context.Context, userID string, b application.ExpiringBooking)

// PollerConfig configures one user's expiration poller.
type PollerConfig struct {
	UserID         string
	Window         time.Duration
	Interval       time.Duration
	IncludeExpired bool
	// Deduplicate suppresses repeat notifications for a booking already
	// reported by this poller. Off by default: every tick reports every match.
	Deduplicate bool
	Notify      NotifyFunc
}

// Validate checks the config and fills in the default interval.
func (c *PollerConfig) Validate() error {
	if c.UserID == "" {
		return errors.New("poller: user ID is required")
	}
	if c.Window <= 0 {
		return errors.New("poller: window must be positive")
	}
	if c.Interval < 0 {
		return errors.New("poller: interval must not be negative")
	}
	if c.Interval == 0 {
		c.Interval = DefaultPollInterval
	}
	if c.Notify == nil {
		return errors.New("poller: notify callback is required")
	}
	return nil
}

// Poller scans one user's bookings on every interval. The first scan happens
// one interval after start.
type Poller struct {
	cfg    PollerConfig
	finder ExpiringFinder
	clock  clock.Clock
	logger *zap.Logger

	notified map[string]struct{}

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartPoller validates cfg and starts polling in the background.
func StartPoller(cfg PollerConfig, finder ExpiringFinder, clk clock.Clock, logger *zap.Logger) (*Poller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Poller{
		cfg:      cfg,
		finder:   finder,
		clock:    clk,
		logger:   logger.With(zap.String("user_id", cfg.UserID)),
		notified: make(map[string]struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()

	p.logger.Debug("expiration poller started",
		zap.Duration("interval", cfg.Interval),
		zap.Duration("window", cfg.Window),
	)
	return p, nil
}

// Stop ends polling. A scan already in progress runs to completion before
// Stop returns. Calling Stop more than once is safe.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Poller) run() {
	defer close(p.done)

	for {
		select {
		case <-p.stop:
			p.logger.Debug("expiration poller stopped")
			return
		case <-p.clock.After(p.cfg.Interval):
			p.Scan(context.Background())
		}
	}
}

// Scan checks the user's bookings once and returns how many notifications it sent.
func (p *Poller) Scan(ctx context.Context) int {
	matches, err := p.finder.ExpiringBookings(ctx, p.cfg.UserID, p.cfg.Window, p.cfg.IncludeExpired)
	if err != nil {
		p.logger.Error("failed to scan expiring bookings", zap.Error(err))
		return 0
	}

	sent := 0
	for _, m := range matches {
		if p.cfg.Deduplicate {
			if _, seen := p.notified[m.Booking.ID]; seen {
				continue
			}
			p.notified[m.Booking.ID] = struct{}{}
		}
		p.cfg.Notify(ctx, p.cfg.UserID, m)
		sent++
	}
	return sent
}
