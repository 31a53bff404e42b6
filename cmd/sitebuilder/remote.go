package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eringen/sitebuilder/client"
	"github.com/eringen/sitebuilder/client/appstore"
)

func defaultServer() string {
	if s := os.Getenv("SITEBUILDER_SERVER"); s != "" {
		return s
	}
	return "http://localhost:3000"
}

// session loads the persisted client store and returns a client that
// authenticates with it.
func session(server string) (*client.Client, *appstore.Store, string, error) {
	path, err := statePath()
	if err != nil {
		return nil, nil, "", err
	}
	store := appstore.New()
	if err := store.Load(path); err != nil {
		return nil, nil, "", err
	}
	return client.New(server, client.WithTokenSource(store.Token)), store, path, nil
}

func requireLogin(store *appstore.Store) error {
	if !store.Authenticated() {
		return fmt.Errorf("not logged in, run %s first", boldStyle.Sprint("sitebuilder login"))
	}
	return nil
}

func newLoginCmd() *cobra.Command {
	var server, password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in to a sitebuilder server and remember the token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, path, err := session(server)
			if err != nil {
				return err
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			resp, err := c.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			store.Login(resp.Token, resp.UserID)
			if err := store.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s logged in as %s\n", okStyle.Sprint("✓"), boldStyle.Sprint(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", defaultServer(), "server base URL")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, path, err := session("")
			if err != nil {
				return err
			}
			store.Logout()
			return store.Save(path)
		},
	}
}

func newTemplatesCmd() *cobra.Command {
	var server, category string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the template catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, _, err := session(server)
			if err != nil {
				return err
			}
			templates, err := c.ListTemplates(cmd.Context(), category)
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"ID", "Name", "Category"})
			for _, t := range templates {
				table.Append([]string{t.TemplateID, t.Name, t.Category})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", defaultServer(), "server base URL")
	cmd.Flags().StringVar(&category, "category", "", "only list this category")
	return cmd
}

func newSitesCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List your sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, store, _, err := session(server)
			if err != nil {
				return err
			}
			if err := requireLogin(store); err != nil {
				return err
			}
			sites, err := c.ListSites(cmd.Context())
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"Site", "Template", "Domain", "Created"})
			for _, s := range sites {
				table.Append([]string{s.SiteID, s.TemplateID, s.DomainName, s.DateCreated})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", defaultServer(), "server base URL")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var server string
	var days int
	cmd := &cobra.Command{
		Use:   "stats <site_id>",
		Short: "Show page views of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, _, err := session(server)
			if err != nil {
				return err
			}
			if err := requireLogin(store); err != nil {
				return err
			}
			st, err := c.SiteStats(cmd.Context(), args[0], days)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s views, %s unique visitors, %d bot hits (last %d days)\n\n",
				boldStyle.Sprint(st.Views), boldStyle.Sprint(st.UniqueVisitors), st.BotViews, days)
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Page", "Views"})
			for _, p := range st.Pages {
				table.Append([]string{p.Label, strconv.Itoa(p.Views)})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", defaultServer(), "server base URL")
	cmd.Flags().IntVar(&days, "days", 30, "number of days to include (1-366)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sitebuilder version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sitebuilder %s\n", version)
		},
	}
}
