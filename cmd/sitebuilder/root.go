package main

import (
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eringen/sitebuilder"
)

var (
	okStyle    = color.New(color.Bold, color.FgHiGreen)
	errorStyle = color.New(color.Bold, color.FgHiRed)
	boldStyle  = color.New(color.Bold)
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	dbDriver   string
	dbURL      string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "sitebuilder",
		Short:         "sitebuilder: website builder server and admin tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", os.Getenv("SITEBUILDER_CONFIG"), "config file (yaml, toml or json)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&g.dbDriver, "db-driver", "", "database driver (sqlite or postgres)")
	pf.StringVar(&g.dbURL, "db", "", "database path or DSN")

	root.AddCommand(
		newServeCmd(g),
		newMigrateCmd(g),
		newSeedCmd(g),
		newUserAddCmd(g),
		newInitCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newTemplatesCmd(),
		newSitesCmd(),
		newStatsCmd(),
		newVersionCmd(),
	)
	return root
}

// load reads the config file and environment, then applies flags set on the
// command line, which take precedence.
func (g *globalFlags) load(cmd *cobra.Command) (sitebuilder.Config, error) {
	cfg, err := sitebuilder.LoadConfig(g.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("db-driver") {
		cfg.DatabaseDriver = g.dbDriver
	}
	if flags.Changed("db") {
		cfg.DatabaseURL = g.dbURL
	}
	return cfg, nil
}

// openApp opens and migrates the database for maintenance commands.
func (g *globalFlags) openApp(cmd *cobra.Command) (*sitebuilder.App, error) {
	cfg, err := g.load(cmd)
	if err != nil {
		return nil, err
	}
	a := sitebuilder.New(cfg)
	if err := a.Open(); err != nil {
		return nil, err
	}
	return a, nil
}

// statePath is where login and logout keep the client session.
func statePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sitebuilder", "session.json"), nil
}
