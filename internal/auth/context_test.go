package auth

import (
	"context"
	"testing"

	"github.com/shelternet/apiserver/internal/store"
	"github.com/shelternet/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserLookup struct {
	users map[int64]types.User
	err   error
}

func (f *fakeUserLookup) GetByID(ctx context.Context, id int64) (types.User, error) {
	if f.err != nil {
		return types.User{}, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func TestResolveMissingCredentialIsAnonymous(t *testing.T) {
	resolver := NewResolver(NewTokenCodec("secret"), &fakeUserLookup{})

	actx, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, actx.Authenticated())

	_, ok := actx.User()
	assert.False(t, ok)
}

func TestResolveValidCredential(t *testing.T) {
	codec := NewTokenCodec("secret")
	lookup := &fakeUserLookup{users: map[int64]types.User{
		42: {ID: 42, Username: "kasia", PermissionLevel: types.PermissionUser},
	}}
	resolver := NewResolver(codec, lookup)

	token, err := codec.Issue(42)
	require.NoError(t, err)

	actx, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.True(t, actx.Authenticated())

	user, ok := actx.User()
	require.True(t, ok)
	assert.Equal(t, int64(42), user.ID)
}

// A bad credential aborts resolution entirely; it does not degrade to an
// anonymous request.
func TestResolveBadCredentialFails(t *testing.T) {
	resolver := NewResolver(NewTokenCodec("secret"), &fakeUserLookup{})

	_, err := resolver.Resolve(context.Background(), "garbage-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveDeletedUserFails(t *testing.T) {
	codec := NewTokenCodec("secret")
	resolver := NewResolver(codec, &fakeUserLookup{users: map[int64]types.User{}})

	token, err := codec.Issue(9)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireUser(t *testing.T) {
	_, err := RequireUser(Context{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	user := types.User{ID: 1, PermissionLevel: types.PermissionUser}
	got, err := RequireUser(Context{user: &user})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestRequireLevel(t *testing.T) {
	admin := types.User{ID: 1, PermissionLevel: types.PermissionAdmin}
	regular := types.User{ID: 2, PermissionLevel: types.PermissionUser}

	_, err := RequireLevel(Context{}, types.PermissionAdmin)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = RequireLevel(Context{user: &regular}, types.PermissionAdmin)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Exact equality only: an admin is not implicitly a "user".
	_, err = RequireLevel(Context{user: &admin}, types.PermissionUser)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	got, err := RequireLevel(Context{user: &admin}, types.PermissionAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}
