// internal/cli/login.go
package cli

import (
	"bufio"
	"fmt"
	"time"

	"github.com/law-makers/tablecrawl/internal/auth"
	"github.com/law-makers/tablecrawl/internal/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	loginSession string
	waitSelector string
	loginTimeout time.Duration
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <url>",
	Short: "Log in through a visible browser and save the session",
	Long: `Opens a visible browser window for you to log in to the site that hosts the table.
Once you are in, the cookies are captured and stored in your OS keyring (or a
private file when no keyring is available).

Pass the session name to extract or filters with --session to reuse the login.`,
	Example: `  # Log in and press Enter when the table is visible
  $ tablecrawl login https://example.com/login --session work

  # Finish automatically once the filter group shows up
  $ tablecrawl login https://example.com/login --session work --wait ".el-radio-group"

  # Use the saved session
  $ tablecrawl extract https://example.com/houses --session work`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginSession, "session", "s", "", "Session name to save (required)")
	loginCmd.Flags().StringVarP(&waitSelector, "wait", "w", "", "CSS selector that appears once login is done")
	loginCmd.Flags().DurationVar(&loginTimeout, "login-timeout", 5*time.Minute, "Timeout for the login process")
	_ = loginCmd.MarkFlagRequired("session")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	url := args[0]
	out := cmd.OutOrStdout()

	log.Info().Str("url", url).Str("session", loginSession).Msg("Initiating login")

	fmt.Fprintf(out, "\n%s\n", ui.Bold("Interactive Login"))
	ui.KeyValueTable(out, "", [][2]string{
		{"Session", loginSession},
		{"URL", url},
		{"Waiting for", orDash(waitSelector)},
		{"Timeout", loginTimeout.String()},
	})

	browser := a.VisibleBrowser()
	defer browser.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	session, err := auth.InteractiveLogin(cmd.Context(), browser, auth.LoginOptions{
		SessionName:  loginSession,
		URL:          url,
		WaitSelector: waitSelector,
		Timeout:      loginTimeout,
		Confirm: func() error {
			fmt.Fprintf(out, "%s ", ui.Bold("Log in in the browser window, then press Enter..."))
			_, err := in.ReadString('\n')
			return err
		},
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.Sessions.Save(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(out, "\n%s session %q saved with %d cookies\n", ui.Success("✓"), session.Name, len(session.Cookies))
	if !session.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "  expires %s\n", session.ExpiresAt.Format(time.RFC1123))
	}
	fmt.Fprintf(out, "\n  %s\n\n", ui.Info("tablecrawl extract <url> --session "+session.Name))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
