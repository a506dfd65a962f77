package identity_test

import (
	"context"
	"testing"

	"github.com/Lagergrenk/grindmode-sub001/internal/identity"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	id, err := identity.Static("u2").CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u2", id)

	_, err = identity.Static("").CurrentUserID(context.Background())
	require.ErrorIs(t, err, repository.ErrNotAuthenticated)
}

func TestStream_PublishSubscribe(t *testing.T) {
	s := identity.NewStream(nil)
	a, cancelA := s.Subscribe(4)
	b, cancelB := s.Subscribe(4)
	defer cancelB()

	s.Publish(identity.Event{State: identity.Authenticated, UserID: "u1"})
	ev := <-a
	assert.Equal(t, identity.Authenticated, ev.State)
	assert.Equal(t, "u1", ev.UserID)
	assert.False(t, ev.At.IsZero())
	assert.Equal(t, "u1", (<-b).UserID)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)

	s.Publish(identity.Event{State: identity.Unauthenticated, UserID: "u1"})
	assert.Equal(t, identity.Unauthenticated, (<-b).State)
}

func TestStream_DropsWhenFull(t *testing.T) {
	s := identity.NewStream(nil)
	ch, cancel := s.Subscribe(1)
	defer cancel()

	s.Publish(identity.Event{State: identity.Loading})
	s.Publish(identity.Event{State: identity.Authenticated, UserID: "u1"})
	assert.Equal(t, identity.Loading, (<-ch).State)
	assert.Len(t, ch, 0)
}

func TestStream_Close(t *testing.T) {
	s := identity.NewStream(nil)
	ch, cancel := s.Subscribe(1)
	s.Close()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	late, _ := s.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
	s.Publish(identity.Event{})
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", identity.Loading.String())
	assert.Equal(t, "authenticated", identity.Authenticated.String())
	assert.Equal(t, "unauthenticated", identity.Unauthenticated.String())
}
