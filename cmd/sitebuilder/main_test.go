package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/sitebuilder"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "", "init", dir, "--base-url", "https://sites.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, configFileName)

	cfg, err := sitebuilder.LoadConfig(filepath.Join(dir, configFileName))
	require.NoError(t, err)
	assert.Equal(t, "https://sites.example.com", cfg.BaseURL)
	assert.Len(t, cfg.JWTSecret, 64)
	assert.NotEqual(t, cfg.JWTSecret, cfg.SessionSecret)
	assert.DirExists(t, filepath.Join(dir, "data", "uploads"))

	_, err = run(t, "", "init", dir)
	assert.ErrorContains(t, err, "already exists")
}

func TestUserAddSeedMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, "", "migrate", "--db", db)
	require.NoError(t, err)

	out, err := run(t, "", "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "templates seeded")

	out, err = run(t, "hunter2-password\n", "useradd", "carol", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "created user")

	_, err = run(t, "", "useradd", "carol", "--password", "x", "--db", db)
	assert.ErrorContains(t, err, `user "carol" already exists`)

	s, err := sitebuilder.OpenStore(sitebuilder.DriverSQLite, db)
	require.NoError(t, err)
	defer s.Close()
	u, err := s.GetUserByUsername(context.Background(), "carol")
	require.NoError(t, err)
	assert.True(t, sitebuilder.CheckPassword(u.PasswordHash, "hunter2-password"))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "sitebuilder dev\n", out)
}

func TestSitesRequiresLogin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	_, err := run(t, "", "sites", "--server", "http://127.0.0.1:1")
	assert.ErrorContains(t, err, "not logged in")
}

func TestMain(m *testing.M) {
	os.Unsetenv("SITEBUILDER_CONFIG")
	os.Exit(m.Run())
}
