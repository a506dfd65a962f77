package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/identity"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/Lagergrenk/grindmode-sub001/internal/repository/memory"
	"github.com/Lagergrenk/grindmode-sub001/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	stream := identity.NewStream(nil)
	events, cancel := stream.Subscribe(4)
	defer cancel()
	svc := service.NewAuthService(memory.NewUserRepository(), "secret", time.Hour, stream)

	user, err := svc.Register(ctx, "Ada", "Ada@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Register(ctx, "Ada 2", "ada@example.com", "another one")
	require.ErrorIs(t, err, service.ErrUserAlreadyExists)
	_, err = svc.Register(ctx, "Bad", "not-an-email", "pw")
	require.ErrorIs(t, err, repository.ErrInvalidArgument)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, service.ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, service.ErrAuthenticationFailed)

	token, logged, err := svc.Login(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Empty(t, logged.PasswordHash)

	uid, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), uid)

	ev := <-events
	assert.Equal(t, identity.Authenticated, ev.State)
	assert.Equal(t, uid, ev.UserID)

	profile, err := svc.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	assert.Empty(t, profile.PasswordHash)

	svc.Logout(ctx, uid)
	ev = <-events
	assert.Equal(t, identity.Unauthenticated, ev.State)
	assert.Equal(t, uid, ev.UserID)
}

func TestParseToken_Rejects(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	issuer := service.NewAuthService(users, "secret-a", time.Hour, nil)
	verifier := service.NewAuthService(users, "secret-b", time.Hour, nil)

	_, err := issuer.Register(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)
	token, _, err := issuer.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.ErrorIs(t, err, service.ErrInvalidToken)
	_, err = issuer.ParseToken("garbage")
	require.ErrorIs(t, err, service.ErrInvalidToken)

	expired := service.NewAuthService(users, "secret-a", time.Hour, nil,
		service.WithNow(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	old, _, err := expired.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	_, err = issuer.ParseToken(old)
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestNewAuthService_PanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() { service.NewAuthService(memory.NewUserRepository(), "", time.Hour, nil) })
}
