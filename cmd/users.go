package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/client"
	"github.com/aura-baza/aura-hr/internal/metrics"
	"github.com/aura-baza/aura-hr/internal/user"
	"github.com/aura-baza/aura-hr/internal/userview"
	"github.com/aura-baza/aura-hr/pkg/logger"
)

var (
	apiURL      string
	sessionFile string

	loginUsername string
	loginPassword string

	listPage    int
	listLimit   int
	listFilters user.Filters
	listStatus  string
	listMetrics string

	bulkStatus string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users through the HTTP API",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, _, err := newUserClient()
		if err != nil {
			return err
		}
		resp, err := users.Login(cmd.Context(), loginUsername, loginPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s (%s)\n", resp.User.Username, strings.Join(resp.User.Roles, ", "))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the session and forget the stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, _, err := newUserClient()
		if err != nil {
			return err
		}
		return users.Logout(cmd.Context())
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed-in user and what they may do",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, _, err := newUserClient()
		if err != nil {
			return err
		}
		me, err := users.Me(cmd.Context())
		if err != nil {
			return explain(err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "id\t%s\n", me.ID)
		fmt.Fprintf(w, "username\t%s\n", me.Username)
		fmt.Fprintf(w, "name\t%s %s\n", me.FirstName, me.LastName)
		fmt.Fprintf(w, "roles\t%s\n", strings.Join(me.Roles, ", "))
		fmt.Fprintf(w, "can create users\t%t\n", me.Capabilities.CanCreateUsers)
		fmt.Fprintf(w, "can edit users\t%t\n", me.Capabilities.CanEditUsers)
		fmt.Fprintf(w, "can delete users\t%t\n", me.Capabilities.CanDeleteUsers)
		fmt.Fprintf(w, "can manage roles\t%t\n", me.Capabilities.CanManageRoles)
		return w.Flush()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, lg, err := newUserClient()
		if err != nil {
			return err
		}
		listFilters.Status = user.Status(listStatus)
		collectors := metrics.New()

		view := userview.NewSynchronizer(cmd.Context(), users, userview.Query{
			Page:    listPage,
			Limit:   listLimit,
			Filters: listFilters,
		}, lg, userview.WithObserver(collectors))
		defer view.Close()
		view.Wait()

		if listMetrics != "" {
			if err := collectors.WriteTextfile(listMetrics); err != nil {
				lg.Warn("could not write metrics textfile", "path", listMetrics, "error", err)
			}
		}

		state := view.State()
		if state.Err != nil {
			return explain(state.Err)
		}
		printPage(state.Data)
		return nil
	},
}

var bulkStatusCmd = &cobra.Command{
	Use:   "bulk-status ID [ID...]",
	Short: "Set the status of several users at once",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		users, lg, err := newUserClient()
		if err != nil {
			return err
		}

		actions := userview.NewActions(users, lg)
		updated, err := actions.BulkUpdateStatus(cmd.Context(), args, user.Status(bulkStatus))
		if err != nil {
			fmt.Fprintln(os.Stderr, actions.Error())
			return explain(err)
		}
		fmt.Printf("Updated %d of %d users to %s\n", len(updated), len(args), bulkStatus)
		return nil
	},
}

func init() {
	usersCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (defaults to client.base_url)")
	usersCmd.PersistentFlags().StringVar(&sessionFile, "session", "", "session file (defaults to client.session_file)")

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")

	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listLimit, "limit", user.DefaultLimit, "page size")
	listCmd.Flags().StringVar(&listFilters.Search, "search", "", "match username, email or name")
	listCmd.Flags().StringVar(&listStatus, "status", "", "active, inactive, suspended or all")
	listCmd.Flags().StringVar(&listFilters.Department, "department", "", "exact department")
	listCmd.Flags().StringVar(&listFilters.RoleID, "role", "", "role id")
	listCmd.Flags().StringVar(&listMetrics, "metrics-textfile", "", "write fetch metrics to this file (node exporter textfile format)")

	bulkStatusCmd.Flags().StringVar(&bulkStatus, "status", "", "new status")
	_ = bulkStatusCmd.MarkFlagRequired("status")

	usersCmd.AddCommand(loginCmd, logoutCmd, meCmd, listCmd, bulkStatusCmd)
}

func newUserClient() (*client.UserClient, *slog.Logger, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, nil, err
	}
	if err := setupLogger(cfg); err != nil {
		return nil, nil, err
	}
	lg := logger.LoggerWrapper()

	base := cfg.Client.BaseURL
	if apiURL != "" {
		base = apiURL
	}
	path := cfg.Client.SessionFile
	if sessionFile != "" {
		path = sessionFile
	}

	transport := client.NewTransport(client.Config{BaseURL: base, Timeout: cfg.Client.Timeout}, client.NewFileSession(path), lg)
	return client.NewUserClient(transport, lg), lg, nil
}

// explain turns a session expiry into a hint to sign in again and spells out
// every failed field of a validation error.
func explain(err error) error {
	if errors.IsSessionExpired(err) {
		return fmt.Errorf("%w (run `aura-hr users login`)", err)
	}
	if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeValidation {
		return fmt.Errorf("%s", appErr.GetDetailedMessage())
	}
	return err
}

func printPage(page *user.Page) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tSTATUS\tDEPARTMENT\tROLES")
	for _, u := range page.Data {
		roles := make([]string, len(u.Roles))
		for i, r := range u.Roles {
			roles[i] = r.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.FullName(), u.Email, u.Status, u.Department, strings.Join(roles, ", "))
	}
	_ = w.Flush()
	fmt.Printf("page %d of %d, %d users\n", page.Page, page.TotalPages, page.Total)
}
