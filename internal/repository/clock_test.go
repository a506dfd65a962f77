package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicClock_StrictlyIncreasing(t *testing.T) {
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 500, time.UTC)
	c := NewMonotonicClock(func() time.Time { return frozen })

	first := c.Now()
	second := c.Now()
	assert.Equal(t, frozen.Truncate(time.Millisecond), first)
	assert.Equal(t, first.Add(time.Millisecond), second)
	assert.Equal(t, time.UTC, first.Location())
}

func TestQueryDefaults(t *testing.T) {
	q := Query{}.withDefaults()
	assert.Equal(t, DefaultDateField, q.OrderBy)
	assert.Equal(t, Desc, q.Direction)
	assert.Equal(t, "users/u1/meals/abc", Namespace{UserID: "u1", Collection: "meals"}.DocPath("abc"))
}
