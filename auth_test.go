package sitebuilder

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour, func() time.Time { return now })

	token, err := issuer.Issue("user_1")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", userID)

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
}

func TestTokenIssuerRejects(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	issuer := NewTokenIssuer("secret", time.Hour, clock)
	token, err := issuer.Issue("user_1")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenIssuer("other", time.Hour, clock).Verify(token)
		assert.Error(t, err)
	})
	t.Run("expired", func(t *testing.T) {
		later := NewTokenIssuer("secret", time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
		_, err := later.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})
	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user_2"}).SignedString([]byte("guess"))
		require.NoError(t, err)
		parts[1] = strings.Split(forged, ".")[1]
		_, err = issuer.Verify(strings.Join(parts, "."))
		assert.Error(t, err)
	})
	t.Run("alg none", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			UserID:           "user_1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Verify(unsigned)
		assert.Error(t, err)
	})
	t.Run("missing user id", func(t *testing.T) {
		empty, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = issuer.Verify(empty)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}

func TestLogin(t *testing.T) {
	a := newTestApp(t)
	token, userID := loginAs(t, a)

	got, err := a.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.True(t, strings.HasPrefix(userID, "user_"))
}

func TestLoginFailures(t *testing.T) {
	a := newTestApp(t)
	loginAs(t, a)

	tests := []struct {
		name     string
		username string
		password string
		code     int
		message  string
	}{
		{"unknown user", "bob", testPassword, http.StatusUnauthorized, "User not found"},
		{"wrong password", testUser, "nope", http.StatusUnauthorized, "Incorrect password"},
		{"missing fields", "", "", http.StatusBadRequest, "username and password are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{
				"username": tt.username,
				"password": tt.password,
			})
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.message, decode[apiError](t, rec).Error)
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	a := newTestApp(t, func(c *Config) { c.LoginMaxAttempts = 2 })
	loginAs(t, a)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{"username": testUser, "password": "bad"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := doJSON(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{"username": testUser, "password": testPassword})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	now := time.Now()
	clock := now
	a := newTestApp(t)
	a.now = func() time.Time { return clock }
	a.tokens.now = a.now
	token, _ := loginAs(t, a)

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	routes := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/sites", map[string]string{"template_id": "business-classic"}},
		{http.MethodGet, "/api/sites", nil},
		{http.MethodPut, "/api/sites/site_x/pages/home", map[string]any{"content": map[string]any{"sections": []any{}}, "seo_meta": map[string]any{}}},
		{http.MethodPost, "/api/sites/site_x/pages/home/publish", nil},
		{http.MethodPost, "/api/posts", map[string]string{"title": "t"}},
		{http.MethodGet, "/api/sites/site_x/contact/submissions", nil},
		{http.MethodDelete, "/api/portfolio/item/item_x", nil},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := doJSON(t, a, r.method, r.path, "", r.body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token")

			req := doJSONWithHeader(t, a, r.method, r.path, "Token "+token, r.body)
			assert.Equal(t, http.StatusUnauthorized, req.Code, "wrong scheme")

			rec = doJSON(t, a, r.method, r.path, tampered, r.body)
			assert.Equal(t, http.StatusForbidden, rec.Code, "tampered token")
		})
	}

	clock = now.Add(2 * time.Hour)
	rec := doJSON(t, a, http.MethodPost, "/api/sites", token, map[string]string{"template_id": "business-classic"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "expired token")

	assert.Zero(t, countRows(t, a, "sites"))
	assert.Zero(t, countRows(t, a, "posts"))
}
