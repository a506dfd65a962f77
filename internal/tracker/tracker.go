// Package tracker keeps in-memory day, week and all-time views of one kind of user entry
// and reconciles them with the store after writes.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"golang.org/x/sync/errgroup"
)

// State is a point-in-time copy of a tracker's views.
type State[T any] struct {
	SelectedDate        time.Time
	SelectedDateEntries []*T
	AllEntries          []*T
	WeeklyEntries       []*T
	DataVersion         uint64
	Loading             bool
	Error               string
}

// Option configures a Tracker.
type Option func(*options)

type options struct {
	now       func() time.Time
	logger    *slog.Logger
	translate func(error) string
}

// WithNow sets the clock used for "today" and the weekly window.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the tracker's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTranslator sets how fetch errors become State.Error.
func WithTranslator(fn func(error) string) Option {
	return func(o *options) { o.translate = fn }
}

// Tracker holds the views for one user and one entry kind. It is safe for concurrent use.
type Tracker[T any, P domain.Entity[T]] struct {
	source    Source[T]
	now       func() time.Time
	logger    *slog.Logger
	translate func(error) string

	mu         sync.Mutex
	state      State[T]
	generation uint64
	observers  map[int]func(State[T])
	nextID     int
}

// New creates a tracker viewing today. Nothing is fetched until Refresh or Select.
func New[T any, P domain.Entity[T]](source Source[T], opts ...Option) *Tracker[T, P] {
	o := options{
		now:       time.Now,
		logger:    slog.Default(),
		translate: func(err error) string { return err.Error() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Tracker[T, P]{
		source:    source,
		now:       o.now,
		logger:    o.logger,
		translate: o.translate,
		state:     State[T]{SelectedDate: o.now()},
		observers: make(map[int]func(State[T])),
	}
}

// Subscribe registers fn to receive every state change. fn runs on the goroutine that
// caused the change and must not call back into the tracker synchronously.
func (t *Tracker[T, P]) Subscribe(fn func(State[T])) (cancel func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.observers[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.observers, id)
			t.mu.Unlock()
		})
	}
}

// Snapshot returns the current state.
func (t *Tracker[T, P]) Snapshot() State[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copyLocked()
}

// Select changes the viewed day and refetches.
func (t *Tracker[T, P]) Select(ctx context.Context, day time.Time) error {
	t.mu.Lock()
	t.state.SelectedDate = day
	t.mu.Unlock()
	return t.Refresh(ctx)
}

// Day selects day and returns its entries. If a concurrent refresh superseded this one,
// the entries are read from the source directly.
func (t *Tracker[T, P]) Day(ctx context.Context, day time.Time) ([]*T, error) {
	if err := t.Select(ctx, day); err != nil {
		return nil, err
	}
	snap := t.Snapshot()
	if !snap.Loading && domain.DayKey(snap.SelectedDate) == domain.DayKey(day) {
		return snap.SelectedDateEntries, nil
	}
	entries, err := t.source.Day(ctx, day)
	if err != nil {
		return nil, err
	}
	return orEmpty(entries), nil
}

// Reconcile applies a confirmed write locally, then refetches all views. A nil updated
// only bumps the version and refetches.
func (t *Tracker[T, P]) Reconcile(ctx context.Context, updated P) error {
	t.mu.Lock()
	if (*T)(updated) != nil {
		t.state.SelectedDateEntries = upsert[T, P](t.state.SelectedDateEntries, updated)
		t.state.AllEntries = upsert[T, P](t.state.AllEntries, updated)
		t.state.WeeklyEntries = upsert[T, P](t.state.WeeklyEntries, updated)
	}
	t.state.DataVersion++
	t.notifyLocked()
	return t.Refresh(ctx)
}

// Remove drops id from every view, then refetches.
func (t *Tracker[T, P]) Remove(ctx context.Context, id string) error {
	t.mu.Lock()
	t.state.SelectedDateEntries = without[T, P](t.state.SelectedDateEntries, id)
	t.state.AllEntries = without[T, P](t.state.AllEntries, id)
	t.state.WeeklyEntries = without[T, P](t.state.WeeklyEntries, id)
	t.state.DataVersion++
	t.notifyLocked()
	return t.Refresh(ctx)
}

// Refresh refetches the three views concurrently. Results from a refresh that has been
// overtaken by a newer one are discarded. On failure the loaded data is kept and Error is
// set.
func (t *Tracker[T, P]) Refresh(ctx context.Context) error {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	day := t.state.SelectedDate
	t.state.Loading = true
	t.notifyLocked()

	weekStart, weekEnd := WeekBounds(t.now())
	var dayEntries, weekly, all []*T
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dayEntries, err = t.source.Day(gctx, day)
		return err
	})
	g.Go(func() (err error) {
		weekly, err = t.source.Range(gctx, weekStart, weekEnd)
		return err
	})
	g.Go(func() (err error) {
		all, err = t.source.All(gctx)
		return err
	})
	err := g.Wait()

	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		t.logger.Debug("discarding stale refresh", "generation", gen)
		return nil
	}
	t.state.Loading = false
	if err != nil {
		t.state.Error = t.translate(err)
		t.notifyLocked()
		t.logger.Error("refresh failed", "error", err)
		return err
	}
	t.state.SelectedDateEntries = orEmpty(dayEntries)
	t.state.WeeklyEntries = orEmpty(weekly)
	t.state.AllEntries = orEmpty(all)
	t.state.Error = ""
	t.notifyLocked()
	return nil
}

// ReportError records a failed operation in State.Error without touching loaded data.
func (t *Tracker[T, P]) ReportError(err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	t.state.Error = t.translate(err)
	t.notifyLocked()
}

// notifyLocked copies the state, releases the lock and calls observers.
func (t *Tracker[T, P]) notifyLocked() {
	s := t.copyLocked()
	fns := make([]func(State[T]), 0, len(t.observers))
	for _, fn := range t.observers {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (t *Tracker[T, P]) copyLocked() State[T] {
	s := t.state
	s.SelectedDateEntries = clone(s.SelectedDateEntries)
	s.AllEntries = clone(s.AllEntries)
	s.WeeklyEntries = clone(s.WeeklyEntries)
	return s
}

// clone copies list, keeping a loaded empty view distinct from an unloaded one.
func clone[T any](list []*T) []*T {
	if list == nil {
		return nil
	}
	out := make([]*T, len(list))
	copy(out, list)
	return out
}

func upsert[T any, P domain.Entity[T]](list []*T, e P) []*T {
	id := e.Record().ID
	for i, cur := range list {
		if P(cur).Record().ID == id {
			out := append([]*T(nil), list...)
			out[i] = (*T)(e)
			return out
		}
	}
	return append([]*T{(*T)(e)}, list...)
}

func without[T any, P domain.Entity[T]](list []*T, id string) []*T {
	out := make([]*T, 0, len(list))
	for _, cur := range list {
		if P(cur).Record().ID != id {
			out = append(out, cur)
		}
	}
	return out
}

func orEmpty[T any](list []*T) []*T {
	if list == nil {
		return []*T{}
	}
	return list
}
