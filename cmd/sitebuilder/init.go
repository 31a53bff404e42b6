package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
)

const configFileName = "sitebuilder.yaml"

var configTemplate = template.Must(template.New(configFileName).Parse(`# sitebuilder configuration. Environment variables override these values.
addr: ":3000"
base_url: "{{.BaseURL}}"

database_driver: sqlite
database_url: "{{.DataDir}}/sitebuilder.db"

jwt_secret: "{{.JWTSecret}}"
session_secret: "{{.SessionSecret}}"
token_ttl: 1h
cookie_secure: false

static_dir: web/dist
upload_dir: "{{.DataDir}}/uploads"

log_level: info
`))

// initData holds the variables of configTemplate.
type initData struct {
	BaseURL       string
	DataDir       string
	JWTSecret     string
	SessionSecret string
}

func newInitCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter config with fresh secrets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd.OutOrStdout(), dir, baseURL)
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:3000", "public URL of the server")
	return cmd
}

func runInit(out io.Writer, dir, baseURL string) error {
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	data := initData{BaseURL: baseURL, DataDir: "data"}
	var err error
	if data.JWTSecret, err = randomSecret(); err != nil {
		return err
	}
	if data.SessionSecret, err = randomSecret(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, data.DataDir, "uploads"), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := configTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(out, "  created %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  sitebuilder -c %s useradd admin\n", path)
	fmt.Fprintf(out, "  sitebuilder -c %s serve\n", path)
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
