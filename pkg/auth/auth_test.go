package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Key: "bookstore-test-signing-key-32byte", Issuer: "bookstore", Audience: "clients", TTL: time.Hour}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	require.NoError(t, testConfig().Validate())
	require.ErrorIs(t, Config{}.Validate(), ErrWeakKey)
	require.ErrorIs(t, Config{Key: "secret"}.Validate(), ErrWeakKey)
}

func TestTokenManager_IssueParse(t *testing.T) {
	t.Parallel()
	m := NewTokenManager(testConfig())
	in := Identity{UserID: "4f0c3c9e-6f7d-4b8f-9a36-1c1f0c5f0a11", Username: "alice", Email: "alice@mail.ru", Role: RoleAdmin}

	token, exp, err := m.Issue(in)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	out, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.True(t, out.IsAdmin())
}

func TestTokenManager_ParseRejects(t *testing.T) {
	t.Parallel()
	m := NewTokenManager(testConfig())
	token, _, err := m.Issue(Identity{UserID: "id", Role: RoleUser})
	require.NoError(t, err)

	other := testConfig()
	other.Key = "other"
	wrongKey := NewTokenManager(other)

	aud := testConfig()
	aud.Audience = "somebody-else"
	wrongAud := NewTokenManager(aud)

	expired := NewTokenManager(testConfig())
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name string
		m    *TokenManager
		tok  string
	}{
		{name: "garbage", m: m, tok: "not-a-token"},
		{name: "wrong key", m: wrongKey, tok: token},
		{name: "wrong audience", m: wrongAud, tok: token},
		{name: "expired", m: expired, tok: token},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.m.Parse(tt.tok)
			require.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}

func TestContext(t *testing.T) {
	t.Parallel()
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := SetAuthContext(context.Background(), Identity{UserID: "1", Role: RoleUser})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "1", id.UserID)
	require.False(t, id.IsAdmin())
}

func TestPolicy_Lookup(t *testing.T) {
	t.Parallel()
	p := NewPolicy(Authenticated,
		Rule{Method: "GET", Resource: "Books", Access: Public},
		Rule{Method: AnyMethod, Resource: "Books", Access: Admin},
		Rule{Method: "POST", Resource: "Auth", Access: Public},
		Rule{Method: "POST", Resource: "/Auth/register-admin", Access: Admin},
	)
	tests := []struct {
		method, route string
		want          Access
	}{
		{"GET", "/Books", Public},
		{"GET", "/Books/:id", Public},
		{"POST", "/Books", Admin},
		{"DELETE", "/Books/:id/image", Admin},
		{"POST", "/Auth/login", Public},
		{"POST", "/Auth/register-admin", Admin},
		{"GET", "/cart", Authenticated},
		{"GET", "/books", Public},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, p.Lookup(tt.method, tt.route), "%s %s", tt.method, tt.route)
	}
}

func TestAllows(t *testing.T) {
	t.Parallel()
	user := &Identity{UserID: "1", Role: RoleUser}
	admin := &Identity{UserID: "2", Role: RoleAdmin}

	require.True(t, Allows(Public, nil))
	require.False(t, Allows(Authenticated, nil))
	require.True(t, Allows(Authenticated, user))
	require.False(t, Allows(Admin, user))
	require.True(t, Allows(Admin, admin))
}
