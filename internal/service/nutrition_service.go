package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/tracker"
	"github.com/google/uuid"
)

// NutritionTracker holds a user's nutrition views.
type NutritionTracker = tracker.Tracker[domain.NutritionEntry, *domain.NutritionEntry]

type NutritionService interface {
	EntriesOn(ctx context.Context, day time.Time) ([]*domain.NutritionEntry, error)
	AddEntry(ctx context.Context, entry *domain.NutritionEntry) (*domain.NutritionEntry, error)
	UpdateEntry(ctx context.Context, entry *domain.NutritionEntry) (*domain.NutritionEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	UpdateNotes(ctx context.Context, id, notes string) (*domain.NutritionEntry, error)

	// Meal operations recompute the entry's totals before writing.
	AddMeal(ctx context.Context, day time.Time, meal domain.Meal) (*domain.NutritionEntry, error)
	EditMeal(ctx context.Context, entryID string, meal domain.Meal) (*domain.NutritionEntry, error)
	DeleteMeal(ctx context.Context, entryID, mealID string) (*domain.NutritionEntry, error)

	WeeklySummary(ctx context.Context) (domain.WeeklySummary, error)
	TodayTotals(ctx context.Context) (domain.Nutrients, error)
	Tracker() *NutritionTracker
}

type nutritionService struct {
	repo    repository.Repository[domain.NutritionEntry]
	tracker *NutritionTracker
	now     func() time.Time
	logger  *slog.Logger
}

// NewNutritionService creates a NutritionService with its own tracker over repo.
func NewNutritionService(repo repository.Repository[domain.NutritionEntry], opts ...Option) NutritionService {
	o := buildOptions(opts)
	logger := o.logger.With("service", "nutrition")
	return &nutritionService{
		repo: repo,
		tracker: tracker.New[domain.NutritionEntry](tracker.RepositorySource(repo),
			tracker.WithNow(o.now),
			tracker.WithLogger(logger),
			tracker.WithTranslator(UserMessage),
		),
		now:    o.now,
		logger: logger,
	}
}

func (s *nutritionService) Tracker() *NutritionTracker {
	return s.tracker
}

// EntriesOn selects day in the tracker and returns its entries.
func (s *nutritionService) EntriesOn(ctx context.Context, day time.Time) ([]*domain.NutritionEntry, error) {
	entries, err := s.tracker.Day(ctx, day)
	if err != nil {
		return nil, fail(s.logger, nil, "load entries", err)
	}
	return entries, nil
}

// AddEntry saves a new entry. A zero Date is set to the write time.
func (s *nutritionService) AddEntry(ctx context.Context, entry *domain.NutritionEntry) (*domain.NutritionEntry, error) {
	if entry == nil {
		return nil, fail(s.logger, s.tracker, "add entry", repository.ErrInvalidArgument)
	}
	for i := range entry.Meals {
		prepareMeal(&entry.Meals[i], s.now())
	}
	entry.RecalculateTotals()

	var opts []repository.AddOption
	if entry.Date.IsZero() {
		opts = append(opts, repository.StampDate())
	}
	if _, err := s.repo.Add(ctx, entry, opts...); err != nil {
		return nil, fail(s.logger, s.tracker, "add entry", err)
	}
	s.reconcile(ctx, entry)
	return entry, nil
}

// UpdateEntry replaces an entry's date, meals and notes. A zero Date keeps the stored one.
func (s *nutritionService) UpdateEntry(ctx context.Context, entry *domain.NutritionEntry) (*domain.NutritionEntry, error) {
	if entry == nil || entry.ID == "" {
		return nil, fail(s.logger, s.tracker, "update entry", repository.ErrInvalidArgument)
	}
	current, err := s.load(ctx, entry.ID)
	if err != nil {
		return nil, fail(s.logger, s.tracker, "update entry", err)
	}
	if !entry.Date.IsZero() {
		current.Date = entry.Date
	}
	current.Meals = entry.Meals
	current.Notes = entry.Notes
	for i := range current.Meals {
		prepareMeal(&current.Meals[i], s.now())
	}
	current.RecalculateTotals()

	updated, err := s.save(ctx, current, repository.Patch{
		"date":        current.Date,
		"meals":       current.Meals,
		"dailyTotals": current.DailyTotals,
		"notes":       current.Notes,
	})
	if err != nil {
		return nil, fail(s.logger, s.tracker, "update entry", err)
	}
	return updated, nil
}

func (s *nutritionService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fail(s.logger, s.tracker, "delete entry", err)
	}
	if err := s.tracker.Remove(ctx, id); err != nil {
		s.logger.Warn("refresh after delete failed", "id", id, "error", err)
	}
	return nil
}

func (s *nutritionService) UpdateNotes(ctx context.Context, id, notes string) (*domain.NutritionEntry, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, fail(s.logger, s.tracker, "update notes", err)
	}
	current.Notes = notes
	updated, err := s.save(ctx, current, repository.Patch{"notes": notes})
	if err != nil {
		return nil, fail(s.logger, s.tracker, "update notes", err)
	}
	return updated, nil
}

// AddMeal appends meal to day's entry, creating the entry if the day has none.
func (s *nutritionService) AddMeal(ctx context.Context, day time.Time, meal domain.Meal) (*domain.NutritionEntry, error) {
	prepareMeal(&meal, s.now())

	existing, err := s.repo.GetByDate(ctx, day)
	if err != nil {
		return nil, fail(s.logger, s.tracker, "add meal", err)
	}
	if len(existing) == 0 {
		entry := &domain.NutritionEntry{Meals: []domain.Meal{meal}}
		entry.Date = day
		entry.RecalculateTotals()
		if _, err := s.repo.Add(ctx, entry); err != nil {
			return nil, fail(s.logger, s.tracker, "add meal", err)
		}
		s.reconcile(ctx, entry)
		return entry, nil
	}

	entry := existing[0]
	entry.Meals = append(entry.Meals, meal)
	updated, err := s.saveMeals(ctx, entry)
	if err != nil {
		return nil, fail(s.logger, s.tracker, "add meal", err)
	}
	return updated, nil
}

// EditMeal replaces the meal with meal.ID in the entry.
func (s *nutritionService) EditMeal(ctx context.Context, entryID string, meal domain.Meal) (*domain.NutritionEntry, error) {
	entry, err := s.load(ctx, entryID)
	if err != nil {
		return nil, fail(s.logger, s.tracker, "edit meal", err)
	}
	i := entry.MealIndex(meal.ID)
	if meal.ID == "" || i < 0 {
		return nil, fail(s.logger, s.tracker, "edit meal", ErrMealNotFound)
	}
	if meal.Time.IsZero() {
		meal.Time = entry.Meals[i].Time
	}
	entry.Meals[i] = meal
	updated, err := s.saveMeals(ctx, entry)
	if err != nil {
		return nil, fail(s.logger, s.tracker, "edit meal", err)
	}
	return updated, nil
}

// DeleteMeal removes a meal. The entry is kept even when it has no meals left.
func (s *nutritionService) DeleteMeal(ctx context.Context, entryID, mealID string) (*domain.NutritionEntry, error) {
	entry, err := s.load(ctx, entryID)
	if err != nil {
		return nil, fail(s.logger, s.tracker, "delete meal", err)
	}
	i := entry.MealIndex(mealID)
	if i < 0 {
		return nil, fail(s.logger, s.tracker, "delete meal", ErrMealNotFound)
	}
	entry.Meals = append(entry.Meals[:i:i], entry.Meals[i+1:]...)
	updated, err := s.saveMeals(ctx, entry)
	if err != nil {
		return nil, fail(s.logger, s.tracker, "delete meal", err)
	}
	return updated, nil
}

// WeeklySummary refreshes the tracker and summarizes the trailing seven days.
func (s *nutritionService) WeeklySummary(ctx context.Context) (domain.WeeklySummary, error) {
	if err := s.tracker.Refresh(ctx); err != nil {
		return domain.WeeklySummary{}, fail(s.logger, nil, "weekly summary", err)
	}
	return domain.SummarizeWeek(s.tracker.Snapshot().WeeklyEntries), nil
}

// TodayTotals sums the totals of every entry dated today.
func (s *nutritionService) TodayTotals(ctx context.Context) (domain.Nutrients, error) {
	if err := s.tracker.Refresh(ctx); err != nil {
		return domain.Nutrients{}, fail(s.logger, nil, "today totals", err)
	}
	return domain.SumTotals(s.tracker.Snapshot().AllEntries, s.now()), nil
}

func (s *nutritionService) load(ctx context.Context, id string) (*domain.NutritionEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

func (s *nutritionService) saveMeals(ctx context.Context, entry *domain.NutritionEntry) (*domain.NutritionEntry, error) {
	entry.RecalculateTotals()
	return s.save(ctx, entry, repository.Patch{
		"meals":       entry.Meals,
		"dailyTotals": entry.DailyTotals,
	})
}

// save validates entry, writes patch and returns the stored entry.
func (s *nutritionService) save(ctx context.Context, entry *domain.NutritionEntry, patch repository.Patch) (*domain.NutritionEntry, error) {
	if err := repository.Validate(entry); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry.ID, patch); err != nil {
		return nil, err
	}
	stored, err := s.load(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	s.reconcile(ctx, stored)
	return stored, nil
}

// reconcile runs after a confirmed write; a failed refetch only shows up in tracker state.
func (s *nutritionService) reconcile(ctx context.Context, entry *domain.NutritionEntry) {
	if err := s.tracker.Reconcile(ctx, entry); err != nil {
		s.logger.Warn("refresh after write failed", "id", entry.ID, "error", err)
	}
}

func prepareMeal(m *domain.Meal, now time.Time) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Time.IsZero() {
		m.Time = now
	}
	if m.Foods == nil {
		m.Foods = []domain.FoodItem{}
	}
}
