package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Authenticate(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("secret", time.Hour, 24*time.Hour)
	gate := NewGate(codec)

	pair, err := codec.IssuePair("user-1", "a@x.com")
	require.NoError(t, err)
	foreign, err := NewTokenCodec("other", time.Hour, time.Hour).Issue("user-1", "a@x.com", KindAccess, time.Hour)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		id, err := gate.Authenticate("Bearer " + pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, Identity{SubjectID: "user-1", SubjectEmail: "a@x.com"}, id)
	})

	rejected := map[string]string{
		"empty header":      "",
		"token only":        pair.AccessToken,
		"lowercase scheme":  "bearer " + pair.AccessToken,
		"basic scheme":      "Basic dXNlcjpwYXNz",
		"no space":          "Bearer" + pair.AccessToken,
		"double space":      "Bearer  " + pair.AccessToken,
		"empty token":       "Bearer ",
		"garbage token":     "Bearer not.a.jwt",
		"foreign signature": "Bearer " + foreign,
		"refresh token":     "Bearer " + pair.RefreshToken,
	}
	for name, header := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := gate.Authenticate(header)
			require.ErrorIs(t, err, common.ErrUnauthenticated)
			assert.NotErrorIs(t, err, common.ErrInvalidToken, "sub-reason must not leak")
		})
	}
}

func TestAuthorizeSelf(t *testing.T) {
	t.Parallel()

	id := Identity{SubjectID: "u1", SubjectEmail: "a@x.com"}

	assert.NoError(t, AuthorizeSelf(id, "u1"))
	assert.ErrorIs(t, AuthorizeSelf(id, "u2"), common.ErrForbidden)
	assert.ErrorIs(t, AuthorizeSelf(id, ""), common.ErrForbidden)
	assert.ErrorIs(t, AuthorizeSelf(Identity{}, ""), common.ErrForbidden)
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	want := Identity{SubjectID: "u1", SubjectEmail: "a@x.com"}
	got, ok := IdentityFromContext(WithIdentity(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
