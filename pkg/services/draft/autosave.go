package draft

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qb-tools/quote-forge/pkg/models/domain"
)

const (
	// DefaultAutoSaveInterval is the debounce before a dirty draft is pushed
	// to the remote save function.
	DefaultAutoSaveInterval = 10 * time.Second
	// DefaultStatusWindow is how long transient autosave status strings stay
	// visible.
	DefaultStatusWindow = 3 * time.Second
)

// SaveFunc pushes a quotation snapshot to the remote store and returns the
// server-assigned fields.
type SaveFunc func(ctx context.Context, q domain.Quotation) (*domain.ServerAssigned, error)

type SchedulerConfig struct {
	Interval     time.Duration
	StatusWindow time.Duration
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultAutoSaveInterval
	}
	if c.StatusWindow <= 0 {
		c.StatusWindow = DefaultStatusWindow
	}
	return c
}

// Scheduler debounces autosaves: each Schedule call restarts a single-shot
// timer, and a fire only does work when the store is dirty. Failed saves are
// not retried here; the next edit's Schedule is the retry path.
type Scheduler struct {
	store   *Store
	config  SchedulerConfig
	onError func(error)

	mu       sync.Mutex
	timer    *time.Timer
	inFlight bool
}

type SchedulerOption func(*Scheduler)

// WithErrorHandler surfaces save failures to the host (e.g. a notification
// banner). The scheduler itself only records the transient status.
func WithErrorHandler(fn func(error)) SchedulerOption {
	return func(s *Scheduler) { s.onError = fn }
}

func NewScheduler(store *Store, config SchedulerConfig, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:  store,
		config: config.withDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	store.bindCanceler(s)
	return s
}

// Schedule (re)starts the autosave timer. A pending timer is cancelled
// first, so back-to-back edits collapse into one save attempt.
func (s *Scheduler) Schedule(ctx context.Context, save SaveFunc) {
	s.Clear()
	if save == nil {
		return
	}

	// The timer fires long after the scheduling caller has returned, so the
	// save keeps the context's values (logger) but not its cancellation.
	saveCtx := context.WithoutCancel(ctx)

	s.mu.Lock()
	s.timer = time.AfterFunc(s.config.Interval, func() {
		s.fire(saveCtx, save)
	})
	s.mu.Unlock()
}

// Clear cancels the pending timer, if any, with no other side effects.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

func (s *Scheduler) fire(ctx context.Context, save SaveFunc) {
	s.mu.Lock()
	if s.inFlight {
		// a previous save is still outstanding; skip this fire
		s.mu.Unlock()
		return
	}
	if !s.store.IsDirty() {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	logger := zerolog.Ctx(ctx)
	s.store.setStatus("Auto-saving...")

	snapshot := s.store.Quotation()
	assigned, err := save(ctx, snapshot)
	if err != nil {
		logger.Warn().Err(err).Msg("auto-save failed")
		s.transientStatus("Auto-save failed")
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	s.store.MarkAsSaved(ctx, assigned)
	s.transientStatus("Auto-saved " + time.Now().Format("15:04:05"))
}

func (s *Scheduler) transientStatus(status string) {
	s.store.setStatus(status)
	time.AfterFunc(s.config.StatusWindow, func() {
		s.store.clearStatusIf(status)
	})
}
