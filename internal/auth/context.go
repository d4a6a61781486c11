package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelternet/apiserver/internal/store"
	"github.com/shelternet/apiserver/types"
)

var (
	// ErrUnauthenticated is returned when an operation needs an identity
	// and the request carries none, or carries a credential that does not
	// resolve to a user.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrPermissionDenied is returned when the resolved identity lacks
	// the required permission level.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidCredentials is returned on login with a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Context is the request-scoped resolved identity. A zero Context means
// the request is anonymous. It is never persisted.
type Context struct {
	user *types.User
}

// Authenticated reports whether an identity was resolved.
func (c Context) Authenticated() bool {
	return c.user != nil
}

// User returns the resolved identity. ok is false for an anonymous context.
func (c Context) User() (types.User, bool) {
	if c.user == nil {
		return types.User{}, false
	}
	return *c.user, true
}

// UserLookup loads a user by id for credential resolution.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
}

// Resolver turns the raw credential carried on a request into a Context.
type Resolver struct {
	codec *TokenCodec
	users UserLookup
}

func NewResolver(codec *TokenCodec, users UserLookup) *Resolver {
	return &Resolver{codec: codec, users: users}
}

// Resolve builds the request's auth context from the literal credential
// string, exactly as received (no scheme prefix is stripped).
//
// An absent credential yields an anonymous context, not an error. A present
// but malformed or expired credential fails the whole resolution: the
// request is rejected rather than degraded to anonymous, forcing clients
// with stale tokens to log in again. A verified token whose user no longer
// exists is treated the same way.
func (r *Resolver) Resolve(ctx context.Context, rawCredential string) (Context, error) {
	if rawCredential == "" {
		return Context{}, nil
	}

	userID, err := r.codec.Verify(rawCredential)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Context{}, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return Context{}, err
	}

	return Context{user: &user}, nil
}

// RequireUser returns the resolved identity or ErrUnauthenticated.
func RequireUser(actx Context) (types.User, error) {
	user, ok := actx.User()
	if !ok {
		return types.User{}, ErrUnauthenticated
	}
	return user, nil
}

// RequireLevel returns the resolved identity if its permission level equals
// level exactly. There is no hierarchy between levels.
func RequireLevel(actx Context, level string) (types.User, error) {
	user, err := RequireUser(actx)
	if err != nil {
		return types.User{}, err
	}
	if user.PermissionLevel != level {
		return types.User{}, ErrPermissionDenied
	}
	return user, nil
}
