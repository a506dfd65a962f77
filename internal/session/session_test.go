package session_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"github.com/Lagergrenk/grindmode-sub001/internal/identity"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository/memory"
	"github.com/Lagergrenk/grindmode-sub001/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_ReusesSession(t *testing.T) {
	m := session.NewManager(session.NewBuilder(memory.NewStore(), nil), slog.Default())

	_, err := m.Acquire("")
	require.ErrorIs(t, err, repository.ErrNotAuthenticated)

	a, err := m.Acquire("alice")
	require.NoError(t, err)
	again, err := m.Acquire("alice")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, m.Len())

	m.End("alice")
	_, ok := m.Get("alice")
	assert.False(t, ok)
	m.End("alice")
}

func TestSessions_AreScopedToTheirUser(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(session.NewBuilder(memory.NewStore(), nil), slog.Default())
	alice, err := m.Acquire("alice")
	require.NoError(t, err)
	bob, err := m.Acquire("bob")
	require.NoError(t, err)

	now := time.Now()
	_, err = alice.Nutrition.AddMeal(ctx, now, domain.Meal{Name: "Breakfast"})
	require.NoError(t, err)

	entries, err := bob.Nutrition.EntriesOn(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = alice.Nutrition.EntriesOn(ctx, now)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWatch_FollowsAuthEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stream := identity.NewStream(nil)
	m := session.NewManager(session.NewBuilder(memory.NewStore(), nil), slog.Default())

	done := make(chan struct{})
	go func() {
		m.Watch(ctx, stream)
		close(done)
	}()

	// Watch subscribes asynchronously; keep publishing until it is listening.
	require.Eventually(t, func() bool {
		stream.Publish(identity.Event{State: identity.Authenticated, UserID: "alice"})
		_, ok := m.Get("alice")
		return ok
	}, time.Second, 10*time.Millisecond)

	stream.Publish(identity.Event{State: identity.Unauthenticated, UserID: "alice"})
	require.Eventually(t, func() bool {
		_, ok := m.Get("alice")
		return !ok
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestSweep_EndsIdleSessions(t *testing.T) {
	clock := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	m := session.NewManager(session.NewBuilder(memory.NewStore(), nil), slog.Default(),
		session.WithIdleTimeout(time.Hour),
		session.WithNow(func() time.Time { return clock }),
	)

	first, err := m.Acquire("alice")
	require.NoError(t, err)
	_, err = m.Acquire("bob")
	require.NoError(t, err)

	clock = clock.Add(45 * time.Minute)
	_, err = m.Acquire("bob")
	require.NoError(t, err)
	assert.Zero(t, m.Sweep())

	clock = clock.Add(30 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	_, ok := m.Get("alice")
	assert.False(t, ok)
	_, ok = m.Get("bob")
	assert.True(t, ok)

	again, err := m.Acquire("alice")
	require.NoError(t, err)
	assert.NotSame(t, first, again)
}

func TestSweep_DisabledWithZeroTimeout(t *testing.T) {
	clock := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	m := session.NewManager(session.NewBuilder(memory.NewStore(), nil), slog.Default(),
		session.WithIdleTimeout(0),
		session.WithNow(func() time.Time { return clock }),
	)
	_, err := m.Acquire("alice")
	require.NoError(t, err)

	clock = clock.Add(24 * time.Hour)
	assert.Zero(t, m.Sweep())
	assert.Equal(t, 1, m.Len())
}
