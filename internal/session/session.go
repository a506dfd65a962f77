// Package session holds per-user application state: the services and trackers of every
// signed-in user, created at login and dropped at logout or after sitting idle.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/identity"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/service"
	"github.com/Lagergrenk/grindmode-sub001/internal/storage"
)

// Session is one user's state. Its repositories are bound to that user's namespace.
type Session struct {
	UserID    string
	Nutrition service.NutritionService
	Workouts  service.WorkoutService
	Progress  service.ProgressService
	StartedAt time.Time
}

// Builder creates the session for a user.
type Builder func(userID string) *Session

// NewBuilder wires services over store for each user. fileStorage may be nil.
func NewBuilder(store repository.Store, fileStorage storage.FileStorage, opts ...service.Option) Builder {
	return func(userID string) *Session {
		user := identity.Static(userID)
		return &Session{
			UserID: userID,
			Nutrition: service.NewNutritionService(
				repository.NewScopedRepository[domain.NutritionEntry](store, user, service.NutritionCollection),
				opts...,
			),
			Workouts: service.NewWorkoutService(
				repository.NewScopedRepository[domain.PlannedWorkouts](store, user, service.PlanCollection),
				repository.NewScopedRepository[domain.ActiveWorkout](store, user, service.WorkoutCollection),
				user,
				opts...,
			),
			Progress: service.NewProgressService(
				repository.NewScopedRepository[domain.ProgressPhoto](store, user, service.ProgressCollection),
				user,
				fileStorage,
				opts...,
			),
			StartedAt: time.Now(),
		}
	}
}

// DefaultIdleTimeout bounds how long an unused session is kept.
const DefaultIdleTimeout = time.Hour

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout ends sessions that have not been acquired for d. Zero keeps sessions
// until logout.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idle = d }
}

// WithNow overrides the clock used for idle tracking.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager tracks live sessions. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	lastSeen map[string]time.Time
	build    Builder
	logger   *slog.Logger
	idle     time.Duration
	now      func() time.Time
}

func NewManager(build Builder, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
		build:    build,
		logger:   logger,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the user's session, creating it on first use.
func (m *Manager) Acquire(userID string) (*Session, error) {
	if userID == "" {
		return nil, repository.ErrNotAuthenticated
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[userID] = m.now()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	s := m.build(userID)
	m.sessions[userID] = s
	m.logger.Info("session started", "user", userID)
	return s, nil
}

// Get returns the user's session if one is live.
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// End drops the user's session and everything cached in it.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	_, ok := m.sessions[userID]
	delete(m.sessions, userID)
	delete(m.lastSeen, userID)
	m.mu.Unlock()
	if ok {
		m.logger.Info("session ended", "user", userID)
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep ends every session idle for longer than the idle timeout and returns how many
// were ended. A user with a still-valid token gets a fresh session on the next request.
func (m *Manager) Sweep() int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)
	var expired []string
	m.mu.Lock()
	for id, seen := range m.lastSeen {
		if seen.Before(cutoff) {
			delete(m.sessions, id)
			delete(m.lastSeen, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()
	for _, id := range expired {
		m.logger.Info("session expired", "user", id, "idle", m.idle)
	}
	return len(expired)
}

// Watch applies auth events from stream and sweeps idle sessions until ctx is done or
// the stream closes.
func (m *Manager) Watch(ctx context.Context, stream *identity.Stream) {
	events, cancel := stream.Subscribe(64)
	defer cancel()

	var sweep <-chan time.Time
	if m.idle > 0 {
		ticker := time.NewTicker(max(m.idle/2, time.Second))
		defer ticker.Stop()
		sweep = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-sweep:
			m.Sweep()
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.apply(ev)
		}
	}
}

func (m *Manager) apply(ev identity.Event) {
	switch ev.State {
	case identity.Authenticated:
		if _, err := m.Acquire(ev.UserID); err != nil {
			m.logger.Warn("ignoring auth event", "state", ev.State.String(), "error", err)
		}
	case identity.Unauthenticated:
		m.End(ev.UserID)
	case identity.Loading:
		m.logger.Debug("auth state loading", "user", ev.UserID)
	}
}
