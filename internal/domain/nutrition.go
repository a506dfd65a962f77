package domain

import (
	"sort"
	"time"
)

// Nutrients holds calories (kcal) and macros (g). On a FoodItem these are per-100-unit
// reference rates; on a NutritionEntry they are absolute totals.
type Nutrients struct {
	Calories float64 `bson:"calories" json:"calories" validate:"gte=0"`
	Protein  float64 `bson:"protein" json:"protein" validate:"gte=0"`
	Carbs    float64 `bson:"carbs" json:"carbs" validate:"gte=0"`
	Fat      float64 `bson:"fat" json:"fat" validate:"gte=0"`
}

// Add returns the element-wise sum of n and o.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
	}
}

// Scale multiplies every value by f.
func (n Nutrients) Scale(f float64) Nutrients {
	return Nutrients{
		Calories: n.Calories * f,
		Protein:  n.Protein * f,
		Carbs:    n.Carbs * f,
		Fat:      n.Fat * f,
	}
}

// FoodItem is one food within a meal. Nutrients are per 100 g/ml.
type FoodItem struct {
	Name      string  `bson:"name" json:"name" validate:"required"`
	Quantity  float64 `bson:"quantity" json:"quantity" validate:"gte=0"`
	Unit      string  `bson:"unit" json:"unit"`
	Nutrients `bson:",inline"`
}

// Contribution is the food's absolute contribution to a total: rates scaled by quantity/100.
func (f FoodItem) Contribution() Nutrients {
	return f.Nutrients.Scale(f.Quantity / 100)
}

// Meal is owned by value by its NutritionEntry.
type Meal struct {
	ID    string     `bson:"id" json:"id" validate:"required"`
	Name  string     `bson:"name" json:"name" validate:"required"`
	Time  time.Time  `bson:"time" json:"time"`
	Foods []FoodItem `bson:"foods" json:"foods" validate:"dive"`
}

// NutritionEntry tracks one day's meals. DailyTotals is a cache of CalculateTotals(Meals)
// and must be refreshed on every meal mutation.
type NutritionEntry struct {
	TimestampedRecord `bson:",inline"`
	Meals             []Meal    `bson:"meals" json:"meals" validate:"dive"`
	DailyTotals       Nutrients `bson:"dailyTotals" json:"dailyTotals"`
	Notes             string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// CalculateTotals recomputes totals from scratch. Never patch totals incrementally.
func CalculateTotals(meals []Meal) Nutrients {
	var total Nutrients
	for _, meal := range meals {
		for _, food := range meal.Foods {
			total = total.Add(food.Contribution())
		}
	}
	return total
}

// RecalculateTotals refreshes the DailyTotals cache from Meals.
func (e *NutritionEntry) RecalculateTotals() {
	if e.Meals == nil {
		e.Meals = []Meal{}
	}
	e.DailyTotals = CalculateTotals(e.Meals)
}

// MealIndex returns the position of the meal with the given id, or -1.
func (e *NutritionEntry) MealIndex(mealID string) int {
	for i, m := range e.Meals {
		if m.ID == mealID {
			return i
		}
	}
	return -1
}

// WeeklySummary aggregates a window of nutrition entries.
type WeeklySummary struct {
	TotalCalories   float64  `json:"totalCalories"`
	TotalProtein    float64  `json:"totalProtein"`
	TotalCarbs      float64  `json:"totalCarbs"`
	TotalFat        float64  `json:"totalFat"`
	AverageCalories float64  `json:"averageCalories"`
	AverageProtein  float64  `json:"averageProtein"`
	DaysTracked     int      `json:"daysTracked"`
	Days            []string `json:"days"`
}

// SummarizeWeek counts distinct local calendar days among entries and averages totals
// over them. Averages are 0 when nothing was tracked.
func SummarizeWeek(entries []*NutritionEntry) WeeklySummary {
	var s WeeklySummary
	days := make(map[string]struct{})
	for _, e := range entries {
		if e == nil {
			continue
		}
		days[DayKey(e.Date.Local())] = struct{}{}
		s.TotalCalories += e.DailyTotals.Calories
		s.TotalProtein += e.DailyTotals.Protein
		s.TotalCarbs += e.DailyTotals.Carbs
		s.TotalFat += e.DailyTotals.Fat
	}
	s.DaysTracked = len(days)
	s.Days = make([]string, 0, len(days))
	for d := range days {
		s.Days = append(s.Days, d)
	}
	sort.Strings(s.Days)
	if s.DaysTracked > 0 {
		s.AverageCalories = s.TotalCalories / float64(s.DaysTracked)
		s.AverageProtein = s.TotalProtein / float64(s.DaysTracked)
	}
	return s
}

// SumTotals adds the DailyTotals of entries dated on day's local calendar day.
func SumTotals(entries []*NutritionEntry, day time.Time) Nutrients {
	var total Nutrients
	key := DayKey(day)
	for _, e := range entries {
		if e != nil && DayKey(e.Date.In(day.Location())) == key {
			total = total.Add(e.DailyTotals)
		}
	}
	return total
}
