package service

import (
	"log/slog"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
)

// Scoped collection names, each stored under users/{uid}/.
const (
	NutritionCollection = "nutritionEntries"
	PlanCollection      = "plannedWorkouts"
	WorkoutCollection   = "activeWorkouts"
	ProgressCollection  = "progressPhotos"
)

// ScopedCollections lists every per-user collection, for index setup.
var ScopedCollections = []string{NutritionCollection, PlanCollection, WorkoutCollection, ProgressCollection}

// Option configures a service.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithNow overrides the clock used for "today" and workout timing.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type errorReporter interface {
	ReportError(err error)
}

// fail logs err at the service boundary, surfaces it on t and returns it unchanged.
func fail(logger *slog.Logger, t errorReporter, op string, err error) error {
	if isExpected(err) {
		logger.Warn(op+" rejected", "error", err)
	} else {
		logger.Error(op+" failed", "error", err)
	}
	if t != nil {
		t.ReportError(err)
	}
	return err
}

// isExpected reports whether err is a caller mistake rather than a store failure.
func isExpected(err error) bool {
	_, fault := repository.FaultCodeOf(err)
	return !fault
}
