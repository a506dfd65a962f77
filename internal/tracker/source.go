package tracker

import (
	"context"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
)

// Source supplies the three views a Tracker keeps.
type Source[T any] interface {
	Day(ctx context.Context, day time.Time) ([]*T, error)
	Range(ctx context.Context, start, end time.Time) ([]*T, error)
	All(ctx context.Context) ([]*T, error)
}

type repositorySource[T any] struct {
	repo    repository.Repository[T]
	filters []repository.Filter
}

// RepositorySource reads views from repo. Extra filters narrow every view, e.g. to
// completed workouts only.
func RepositorySource[T any](repo repository.Repository[T], filters ...repository.Filter) Source[T] {
	return &repositorySource[T]{repo: repo, filters: filters}
}

func (s *repositorySource[T]) Day(ctx context.Context, day time.Time) ([]*T, error) {
	if len(s.filters) == 0 {
		return s.repo.GetByDate(ctx, day)
	}
	start, end := domain.DayBounds(day)
	return s.Range(ctx, start, end)
}

func (s *repositorySource[T]) Range(ctx context.Context, start, end time.Time) ([]*T, error) {
	if len(s.filters) == 0 {
		return s.repo.GetByDateRange(ctx, start, end)
	}
	filters := append([]repository.Filter{
		repository.Where(repository.DefaultDateField, repository.OpGreaterOrEqual, start),
		repository.Where(repository.DefaultDateField, repository.OpLessOrEqual, end),
	}, s.filters...)
	return s.repo.Query(ctx, repository.Query{Filters: filters})
}

func (s *repositorySource[T]) All(ctx context.Context) ([]*T, error) {
	if len(s.filters) == 0 {
		return s.repo.GetAll(ctx, 0)
	}
	return s.repo.Query(ctx, repository.Query{Filters: s.filters})
}

// WeekBounds returns the trailing seven calendar days ending with now's day.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	start, _ := domain.DayBounds(now.AddDate(0, 0, -6))
	_, end := domain.DayBounds(now)
	return start, end
}
