package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/identity"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository/memory"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository/mocks"
	"github.com/Lagergrenk/grindmode-sub001/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMealLifecycle_TotalsFollowMeals(t *testing.T) {
	ctx := context.Background()
	svc := nutritionFor(memory.NewStore(), "alice", newClock(today))

	entry, err := svc.AddMeal(ctx, today, domain.Meal{Name: "Breakfast", Foods: []domain.FoodItem{eggs()}})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.Len(t, entry.Meals, 1)
	breakfastID := entry.Meals[0].ID
	require.NotEmpty(t, breakfastID)
	assert.InDelta(t, 156, entry.DailyTotals.Calories, 1e-9)

	entry, err = svc.AddMeal(ctx, today, domain.Meal{Name: "Snack", Foods: []domain.FoodItem{banana()}})
	require.NoError(t, err)
	require.Len(t, entry.Meals, 2)
	snackID := entry.Meals[1].ID
	assert.InDelta(t, 245, entry.DailyTotals.Calories, 1e-9)

	state := svc.Tracker().Snapshot()
	require.Len(t, state.AllEntries, 1, "second meal lands in the same day's entry")
	assert.InDelta(t, 245, state.AllEntries[0].DailyTotals.Calories, 1e-9)

	entry, err = svc.DeleteMeal(ctx, entry.ID, breakfastID)
	require.NoError(t, err)
	assert.InDelta(t, 89, entry.DailyTotals.Calories, 1e-9)

	entry, err = svc.DeleteMeal(ctx, entry.ID, snackID)
	require.NoError(t, err)
	assert.Empty(t, entry.Meals)
	assert.Equal(t, domain.Nutrients{}, entry.DailyTotals)

	entries, err := svc.EntriesOn(ctx, today)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.Nutrients{}, entries[0].DailyTotals)

	totals, err := svc.TodayTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Nutrients{}, totals)
}

func TestEditMeal(t *testing.T) {
	ctx := context.Background()
	svc := nutritionFor(memory.NewStore(), "alice", newClock(today))

	entry, err := svc.AddMeal(ctx, today, domain.Meal{Name: "Breakfast", Foods: []domain.FoodItem{eggs()}})
	require.NoError(t, err)
	meal := entry.Meals[0]

	half := eggs()
	half.Quantity = 100
	meal.Foods = []domain.FoodItem{half}
	entry, err = svc.EditMeal(ctx, entry.ID, meal)
	require.NoError(t, err)
	assert.InDelta(t, 78, entry.DailyTotals.Calories, 1e-9)
	assert.Equal(t, meal.ID, entry.Meals[0].ID)

	_, err = svc.EditMeal(ctx, entry.ID, domain.Meal{ID: "nope", Name: "x"})
	require.ErrorIs(t, err, service.ErrMealNotFound)

	_, err = svc.EditMeal(ctx, "65f0c0ffee0000000000beef", meal)
	require.ErrorIs(t, err, service.ErrEntryNotFound)

	_, err = svc.DeleteMeal(ctx, entry.ID, "nope")
	require.ErrorIs(t, err, service.ErrMealNotFound)
}

func TestAddEntry_UpdateEntry_Notes(t *testing.T) {
	ctx := context.Background()
	clock := newClock(today)
	svc := nutritionFor(memory.NewStore(), "alice", clock)

	entry, err := svc.AddEntry(ctx, &domain.NutritionEntry{
		Meals: []domain.Meal{{Name: "Lunch", Foods: []domain.FoodItem{banana()}}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 89, entry.DailyTotals.Calories, 1e-9)
	assert.False(t, entry.Date.IsZero(), "zero date is stamped")
	assert.NotEmpty(t, entry.Meals[0].ID)

	updated, err := svc.UpdateNotes(ctx, entry.ID, "hungry")
	require.NoError(t, err)
	assert.Equal(t, "hungry", updated.Notes)
	assert.InDelta(t, 89, updated.DailyTotals.Calories, 1e-9)
	assert.True(t, updated.UpdatedAt.After(entry.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(entry.CreatedAt))

	replacement := &domain.NutritionEntry{
		Meals: []domain.Meal{{Name: "Dinner", Foods: []domain.FoodItem{eggs(), banana()}}},
		Notes: "big day",
	}
	replacement.ID = entry.ID
	updated, err = svc.UpdateEntry(ctx, replacement)
	require.NoError(t, err)
	assert.InDelta(t, 245, updated.DailyTotals.Calories, 1e-9)
	assert.Equal(t, "big day", updated.Notes)
	assert.True(t, updated.Date.Equal(entry.Date), "zero date keeps the stored one")

	bad := &domain.NutritionEntry{Meals: []domain.Meal{{Name: "Bad", Foods: []domain.FoodItem{{Name: "x", Quantity: -1}}}}}
	bad.ID = entry.ID
	_, err = svc.UpdateEntry(ctx, bad)
	require.ErrorIs(t, err, repository.ErrInvalidArgument)
	assert.NotEmpty(t, svc.Tracker().Snapshot().Error)

	_, err = svc.UpdateNotes(ctx, "65f0c0ffee0000000000beef", "x")
	require.ErrorIs(t, err, service.ErrEntryNotFound)

	require.NoError(t, svc.DeleteEntry(ctx, entry.ID))
	assert.Empty(t, svc.Tracker().Snapshot().AllEntries)
	require.NoError(t, svc.DeleteEntry(ctx, entry.ID))
}

func TestWeeklySummary(t *testing.T) {
	ctx := context.Background()
	svc := nutritionFor(memory.NewStore(), "alice", newClock(today))

	empty, err := svc.WeeklySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.DaysTracked)
	assert.Zero(t, empty.AverageCalories)

	add := func(daysAgo int, kcal float64) {
		e := &domain.NutritionEntry{Meals: []domain.Meal{{
			Name:  "Day",
			Foods: []domain.FoodItem{{Name: "food", Quantity: 100, Unit: "g", Nutrients: domain.Nutrients{Calories: kcal}}},
		}}}
		e.Date = today.AddDate(0, 0, -daysAgo)
		_, err := svc.AddEntry(ctx, e)
		require.NoError(t, err)
	}
	add(0, 2000)
	add(1, 1800)
	add(6, 2200)
	add(7, 5000)

	s, err := svc.WeeklySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.DaysTracked)
	assert.InDelta(t, 6000, s.TotalCalories, 1e-9)
	assert.InDelta(t, 2000, s.AverageCalories, 1e-9)
}

func TestEntriesOn_EmptyDayIsEmptyList(t *testing.T) {
	svc := nutritionFor(memory.NewStore(), "alice", newClock(today))

	got, err := svc.EntriesOn(context.Background(), today)
	require.NoError(t, err)
	require.NotNil(t, got)
	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))
}

func TestAddEntry_RecalculatesOverCallerTotals(t *testing.T) {
	svc := nutritionFor(memory.NewStore(), "alice", newClock(today))
	e := &domain.NutritionEntry{
		Meals:       []domain.Meal{{Name: "Breakfast", Foods: []domain.FoodItem{eggs()}}},
		DailyTotals: domain.Nutrients{Calories: 9999},
	}
	e.Date = today
	got, err := svc.AddEntry(context.Background(), e)
	require.NoError(t, err)
	assert.InDelta(t, 156, got.DailyTotals.Calories, 1e-9)
}

func TestNutrition_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clock := newClock(today)
	alice := nutritionFor(store, "alice", clock)
	bob := nutritionFor(store, "bob", clock)

	entry, err := alice.AddMeal(ctx, today, domain.Meal{Name: "Breakfast", Foods: []domain.FoodItem{eggs()}})
	require.NoError(t, err)

	entries, err := bob.EntriesOn(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = bob.DeleteMeal(ctx, entry.ID, entry.Meals[0].ID)
	require.ErrorIs(t, err, service.ErrEntryNotFound)

	totals, err := bob.TodayTotals(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.Calories)
}

func TestAddEntry_FailedWriteIsNotApplied(t *testing.T) {
	ctx := context.Background()
	store := &mocks.Store{}
	fault := repository.NewFault(repository.CodeUnavailable, errors.New("no route to host"))
	store.On("Create", mock.Anything, mock.Anything, mock.Anything).Return("", fault)

	repo := repository.NewScopedRepository[domain.NutritionEntry](store, identity.Static("alice"), service.NutritionCollection)
	svc := service.NewNutritionService(repo, service.WithNow(func() time.Time { return today }))

	_, err := svc.AddEntry(ctx, &domain.NutritionEntry{})
	require.ErrorIs(t, err, fault)

	state := svc.Tracker().Snapshot()
	assert.Empty(t, state.AllEntries)
	assert.Equal(t, uint64(0), state.DataVersion)
	assert.Equal(t, service.UserMessage(fault), state.Error)
	store.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
}

func TestEntriesOn_FetchFailureKeepsData(t *testing.T) {
	ctx := context.Background()
	store := &mocks.Store{}
	ns := repository.Namespace{UserID: "alice", Collection: service.NutritionCollection}
	fault := repository.NewFault(repository.CodeDeadlineExceeded, errors.New("timeout"))
	store.On("Find", mock.Anything, ns, mock.Anything).Return(nil, fault)

	repo := repository.NewScopedRepository[domain.NutritionEntry](store, identity.Static("alice"), service.NutritionCollection)
	svc := service.NewNutritionService(repo)

	_, err := svc.EntriesOn(ctx, today)
	require.Error(t, err)
	code, ok := repository.FaultCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, repository.CodeDeadlineExceeded, code)
	assert.Equal(t, "The request took too long. Please try again.", svc.Tracker().Snapshot().Error)
}
