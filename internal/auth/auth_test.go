package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newProvider(t *testing.T) *InMemoryIdentityProvider {
	t.Helper()
	p, err := NewInMemoryIdentityProvider(DefaultUsers(), bcrypt.MinCost)
	require.NoError(t, err)
	return p
}

func TestParseUsers(t *testing.T) {
	specs, err := ParseUsers("alice:pw1:CARD-OWNER|ADMIN, bob:p:w:NON-OWNER")
	require.NoError(t, err)
	require.Equal(t, []UserSpec{
		{Name: "alice", Password: "pw1", Roles: []string{"CARD-OWNER", "ADMIN"}},
		{Name: "bob", Password: "p", Roles: []string{"w:NON-OWNER"}},
	}, specs)

	specs, err = ParseUsers("carol:secret:")
	require.NoError(t, err)
	require.Empty(t, specs[0].Roles)

	for _, raw := range []string{"", " , ", "nopassword", "dave::CARD-OWNER", ":pw:CARD-OWNER"} {
		_, err := ParseUsers(raw)
		require.Error(t, err, raw)
	}
}

func TestAuthenticate(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	id, err := p.Authenticate(ctx, "LeudiX1", "leo123")
	require.NoError(t, err)
	require.Equal(t, "LeudiX1", id.Name)
	require.True(t, id.HasRole(OwnerRole))

	id, err = p.Authenticate(ctx, "Lucy2", "lucy123")
	require.NoError(t, err)
	require.False(t, id.HasRole(OwnerRole))

	_, err = p.Authenticate(ctx, "LeudiX1", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Authenticate(ctx, "nobody", "leo123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDuplicateUsersRejected(t *testing.T) {
	_, err := NewInMemoryIdentityProvider([]UserSpec{
		{Name: "a", Password: "1"},
		{Name: "a", Password: "2"},
	}, bcrypt.MinCost)
	require.Error(t, err)
}

type failingProvider struct{}

func (failingProvider) Authenticate(context.Context, string, string) (Identity, error) {
	return Identity{}, errors.New("directory unavailable")
}

func TestBasicAuth(t *testing.T) {
	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	})
	handler := BasicAuth(newProvider(t), OwnerRole, zap.NewNop())(next)

	tests := []struct {
		name       string
		user, pass string
		noAuth     bool
		wantStatus int
	}{
		{name: "owner", user: "Sarah", pass: "sara123", wantStatus: http.StatusNoContent},
		{name: "no credentials", noAuth: true, wantStatus: http.StatusUnauthorized},
		{name: "bad password", user: "Sarah", pass: "nope", wantStatus: http.StatusUnauthorized},
		{name: "unknown user", user: "Mallory", pass: "sara123", wantStatus: http.StatusUnauthorized},
		{name: "wrong role", user: "Lucy2", pass: "lucy123", wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cashcards", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				require.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
			}
		})
	}
	require.Equal(t, "Sarah", seen.Name)
}

func TestBasicAuthProviderFailure(t *testing.T) {
	handler := BasicAuth(failingProvider{}, OwnerRole, zap.NewNop())(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodGet, "/cashcards", nil)
	req.SetBasicAuth("Sarah", "sara123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
