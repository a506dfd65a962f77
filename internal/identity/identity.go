// Package identity resolves the authenticated user for repository calls and publishes
// authentication state transitions.
package identity

import (
	"context"

	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
)

// Static always resolves to one user. Repositories built on it are bound to that user's
// namespace regardless of the call context.
type Static string

func (s Static) CurrentUserID(context.Context) (string, error) {
	if s == "" {
		return "", repository.ErrNotAuthenticated
	}
	return string(s), nil
}
