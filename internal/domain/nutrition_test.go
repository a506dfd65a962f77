package domain_test

import (
	"testing"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eggs() domain.FoodItem {
	return domain.FoodItem{
		Name:      "eggs",
		Quantity:  200,
		Unit:      "g",
		Nutrients: domain.Nutrients{Calories: 78, Protein: 6, Carbs: 0.6, Fat: 5},
	}
}

func TestCalculateTotals_ScalesByQuantity(t *testing.T) {
	meals := []domain.Meal{{ID: "m1", Name: "breakfast", Foods: []domain.FoodItem{eggs()}}}

	totals := domain.CalculateTotals(meals)
	assert.InDelta(t, 156, totals.Calories, 1e-9)
	assert.InDelta(t, 12, totals.Protein, 1e-9)
	assert.InDelta(t, 1.2, totals.Carbs, 1e-9)
	assert.InDelta(t, 10, totals.Fat, 1e-9)
}

func TestRecalculateTotals_EmptyMeals(t *testing.T) {
	e := &domain.NutritionEntry{DailyTotals: domain.Nutrients{Calories: 999}}
	e.RecalculateTotals()
	require.NotNil(t, e.Meals)
	assert.Equal(t, domain.Nutrients{}, e.DailyTotals)
}

func TestSummarizeWeek_AveragesOverDistinctDays(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.Local) }
	entry := func(at time.Time, kcal, protein float64) *domain.NutritionEntry {
		e := &domain.NutritionEntry{DailyTotals: domain.Nutrients{Calories: kcal, Protein: protein}}
		e.Date = at
		return e
	}

	s := domain.SummarizeWeek([]*domain.NutritionEntry{
		entry(day(2, 8), 2000, 100),
		entry(day(3, 9), 1800, 90),
		entry(day(4, 20), 2200, 110),
	})
	assert.Equal(t, 3, s.DaysTracked)
	assert.InDelta(t, 2000, s.AverageCalories, 1e-9)
	assert.InDelta(t, 100, s.AverageProtein, 1e-9)
	assert.Equal(t, []string{"2026-03-02", "2026-03-03", "2026-03-04"}, s.Days)

	// Two entries on one day count as one tracked day.
	s = domain.SummarizeWeek([]*domain.NutritionEntry{entry(day(2, 8), 1000, 0), entry(day(2, 19), 1000, 0)})
	assert.Equal(t, 1, s.DaysTracked)
	assert.InDelta(t, 2000, s.AverageCalories, 1e-9)
}

func TestSummarizeWeek_Empty(t *testing.T) {
	s := domain.SummarizeWeek(nil)
	assert.Equal(t, 0, s.DaysTracked)
	assert.Zero(t, s.AverageCalories)
	assert.Zero(t, s.AverageProtein)
}

func TestSumTotals_OnlyMatchingDay(t *testing.T) {
	today := time.Date(2026, 3, 5, 12, 0, 0, 0, time.Local)
	a := &domain.NutritionEntry{DailyTotals: domain.Nutrients{Calories: 500}}
	a.Date = today.Add(-2 * time.Hour)
	b := &domain.NutritionEntry{DailyTotals: domain.Nutrients{Calories: 300}}
	b.Date = today.Add(-24 * time.Hour)

	assert.InDelta(t, 500, domain.SumTotals([]*domain.NutritionEntry{a, b}, today).Calories, 1e-9)
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	start, end := domain.DayBounds(time.Date(2026, 1, 31, 17, 45, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 999_000_000, loc), end)
}
