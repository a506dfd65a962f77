package service_test

import (
	"sync"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/identity"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/service"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

var today = time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local)

func nutritionFor(store repository.Store, user string, clock *fakeClock) service.NutritionService {
	repo := repository.NewScopedRepository[domain.NutritionEntry](store, identity.Static(user), service.NutritionCollection)
	return service.NewNutritionService(repo, service.WithNow(clock.Now))
}

func eggs() domain.FoodItem {
	return domain.FoodItem{Name: "eggs", Quantity: 200, Unit: "g", Nutrients: domain.Nutrients{Calories: 78, Protein: 6, Carbs: 0.6, Fat: 5}}
}

func banana() domain.FoodItem {
	return domain.FoodItem{Name: "banana", Quantity: 100, Unit: "g", Nutrients: domain.Nutrients{Calories: 89, Protein: 1.1, Carbs: 23, Fat: 0.3}}
}
