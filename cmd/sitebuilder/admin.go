package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/sitebuilder"
)

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Sprint("✓")+" database is up to date")
			return nil
		},
	}
}

func newSeedCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in template catalog into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.SeedCatalog(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d templates seeded\n", okStyle.Sprint("✓"), n)
			return nil
		},
	}
}

func newUserAddCmd(g *globalFlags) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "useradd <username>",
		Short: "Create a user that can log in to the CMS",
		Long:  "Create a user. Without --password the password is read from the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			u, err := a.CreateUser(cmd.Context(), args[0], password)
			if errors.Is(err, sitebuilder.ErrConflict) {
				return fmt.Errorf("user %q already exists", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created user %s (%s)\n", okStyle.Sprint("✓"), boldStyle.Sprint(u.Username), u.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for the new user")
	return cmd
}
