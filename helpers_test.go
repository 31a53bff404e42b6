package sitebuilder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eringen/sitebuilder/logger"
)

const (
	testUser     = "alice"
	testPassword = "correct horse battery staple"
)

// newTestApp returns a fully set up App on a fresh SQLite file.
func newTestApp(t *testing.T, mutate ...func(*Config)) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		DatabaseURL:   filepath.Join(dir, "test.db"),
		JWTSecret:     "test-jwt-secret",
		SessionSecret: "test-session-secret",
		UploadDir:     filepath.Join(dir, "uploads"),
		StaticDir:     filepath.Join(dir, "dist"),
		LogLevel:      "debug",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	a := New(cfg, WithLogger(logger.Test(t)))
	require.NoError(t, a.Setup(context.Background()))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// newTestStore returns a migrated Store on a fresh SQLite file.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(DriverSQLite, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

// serve runs a request through the full Echo stack.
func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

// doJSON sends body as JSON with an optional bearer token.
func doJSON(t *testing.T, a *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(a, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// loginAs creates the test user and returns a bearer token and the user id.
func loginAs(t *testing.T, a *App) (token, userID string) {
	t.Helper()
	_, err := a.CreateUser(context.Background(), testUser, testPassword)
	require.NoError(t, err)
	rec := doJSON(t, a, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": testUser,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[loginResponse](t, rec)
	return resp.Token, resp.UserID
}

// createSite creates a site through the API and returns its id.
func createSite(t *testing.T, a *App, token string) string {
	t.Helper()
	rec := doJSON(t, a, http.MethodPost, "/api/sites", token, map[string]string{
		"template_id":  "business-classic",
		"domain_name":  "example.com",
		"color_scheme": "blue",
		"fonts":        "Inter",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]string](t, rec)["site_id"]
	require.True(t, strings.HasPrefix(id, "site_"), id)
	return id
}

func countRows(t *testing.T, a *App, table string) int {
	t.Helper()
	var n int
	require.NoError(t, a.Store.DB().Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

// doJSONWithHeader is doJSON with a raw Authorization header value.
func doJSONWithHeader(t *testing.T, a *App, method, path, authorization string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization)
	return serve(a, req)
}

func newGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
