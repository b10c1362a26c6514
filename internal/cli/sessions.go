// internal/cli/sessions.go
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/law-makers/tablecrawl/internal/auth"
	"github.com/law-makers/tablecrawl/internal/ui"
	"github.com/spf13/cobra"
)

var forceDelete bool

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved login sessions",
	Long: `List, view and delete sessions saved by the login command.

Sessions hold the cookies captured after logging in and are kept in your OS
keyring, or in private files under the data directory when no keyring exists.`,
	Example: `  # List all saved sessions
  $ tablecrawl sessions list

  # View details of a specific session
  $ tablecrawl sessions view work

  # Delete a session without a prompt
  $ tablecrawl sessions delete work --force`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <session-name>",
	Short: "View details of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsView,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsDeleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Delete without asking")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	out := cmd.OutOrStdout()

	names, err := a.Sessions.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintf(out, "\nNo saved sessions found.\n\nCreate one with:\n  %s\n\n", ui.Info("tablecrawl login <url> --session <name>"))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Saved Sessions (" + strconv.Itoa(len(names)) + ")")
	t.AppendHeader(table.Row{"Name", "URL", "Cookies", "Created", "Status"})
	for _, name := range names {
		s, err := a.Sessions.Load(name)
		switch {
		case errors.Is(err, auth.ErrSessionExpired):
			t.AppendRow(table.Row{name, "", "", "", "expired"})
		case err != nil:
			t.AppendRow(table.Row{name, "", "", "", "unreadable"})
		default:
			t.AppendRow(table.Row{name, s.URL, len(s.Cookies), s.CreatedAt.Format(time.DateTime), expiryStatus(s)})
		}
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func runSessionsView(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	out := cmd.OutOrStdout()
	name := args[0]

	s, err := a.Sessions.Load(name)
	if err != nil {
		return err
	}

	pairs := [][2]string{
		{"Name", s.Name},
		{"URL", s.URL},
		{"Created", s.CreatedAt.Format(time.RFC1123)},
		{"Status", expiryStatus(s)},
		{"Cookies", strconv.Itoa(len(s.Cookies))},
	}
	for i, c := range s.Cookies {
		if i >= 5 {
			pairs = append(pairs, [2]string{"", fmt.Sprintf("... and %d more", len(s.Cookies)-5)})
			break
		}
		pairs = append(pairs, [2]string{"", c.Name + " (" + c.Domain + ")"})
	}
	fmt.Fprintln(out)
	ui.KeyValueTable(out, "Session "+name, pairs)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	out := cmd.OutOrStdout()
	name := args[0]

	if !forceDelete {
		fmt.Fprintf(out, "\n%s Delete session %q? [y/N]: ", ui.Warn("!"), name)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := a.Sessions.Delete(name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	fmt.Fprintf(out, "\n%s session %q deleted\n\n", ui.Success("✓"), name)
	return nil
}

func expiryStatus(s *auth.Session) string {
	if s.ExpiresAt.IsZero() {
		return "valid (session cookies)"
	}
	return "valid for " + time.Until(s.ExpiresAt).Round(time.Minute).String()
}
