package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

const DefaultSweepSchedule = "@every 1m"

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastUsed time.Time
}

// Registry keeps sessions shared between request handlers. Each session is
// accessed under its own lock so handlers never touch one session concurrently.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	cron *cron.Cron
}

// NewRegistry returns a registry expiring sessions idle for longer than ttl.
// A non-positive ttl disables expiry.
func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID()] = &entry{session: s, lastUsed: r.now()}
}

// With runs fn with exclusive access to the session.
func (r *Registry) With(id string, fn func(*Session) error) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r.mu.Lock()
	_, alive := r.entries[id]
	if alive {
		e.lastUsed = r.now()
	}
	r.mu.Unlock()
	if !alive {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	return fn(e.session)
}

// Discard drops a session. Unknown ids are ignored.
func (r *Registry) Discard(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than the ttl and returns how many went.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := r.now().Add(-r.ttl)
	expired := 0
	for id, e := range r.entries {
		if e.lastUsed.Before(deadline) {
			delete(r.entries, id)
			expired++
		}
	}
	if expired > 0 {
		r.logger.Debug("sessions expired", zap.Int("count", expired), zap.Int("left", len(r.entries)))
	}
	return expired
}

// Start schedules Sweep. An empty schedule uses DefaultSweepSchedule.
func (r *Registry) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", schedule, err)
	}
	c.Start()

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	r.logger.Info("session sweeper started", zap.String("schedule", schedule), zap.Duration("ttl", r.ttl))
	return nil
}

// Stop halts the sweeper and waits for a running sweep to finish.
func (r *Registry) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
