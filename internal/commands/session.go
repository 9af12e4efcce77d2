package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mmcdole/lumen/internal/adapter"
	"github.com/mmcdole/lumen/internal/auth"
	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/store"
	"github.com/mmcdole/lumen/internal/tui/styles"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(app *App) *cobra.Command {
	var token string
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a bearer token from the portal's identity provider",
		Long: strings.TrimSpace(`
Save a bearer token for the configured server. Without --token the token is
read from the terminal (hidden) or from the first line of stdin.

With --server the server URL is also written to the config file.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				var err error
				if token, err = readToken(cmd); err != nil {
					return err
				}
			}
			token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
			if token == "" {
				return errors.New("token cannot be empty")
			}

			client, err := app.portal()
			if err != nil {
				return err
			}

			if !skipVerify {
				// Any authenticated read proves the backend accepts the token
				if _, err := client.ReadIDs(cmd.Context(), domain.DomainArticles, token); err != nil {
					if errors.Is(err, domain.ErrAuthFailed) {
						return &userError{msg: "The portal rejected that token.", err: err}
					}
					return describe("verify your token", err)
				}
			}

			id := auth.FromToken(token)
			sessions, err := app.sessionStore()
			if err != nil {
				return err
			}
			if err := sessions.Save(store.Session{Token: token, Subject: id.Subject, Admin: id.Admin}); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			if app.ServerURL != "" {
				if err := saveServer(app); err != nil {
					return err
				}
			}

			app.logger.Info("signed in", "subject", id.Subject, "admin", id.Admin)
			fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessStyle.Render("✓")+" Signed in as "+describeIdentity(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token (prompted for when omitted)")
	cmd.Flags().BoolVar(&skipVerify, "no-verify", false, "Save the token without checking it against the server")
	return cmd
}

// readToken prompts on a terminal with echo off; otherwise it reads one line
func readToken(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr()) // Add newline after hidden input
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return line, nil
}

// saveServer persists the --server override
func saveServer(app *App) error {
	var (
		cfg *adapter.Config
		err error
	)
	// Reload so only server.url changes, not other flag or env overrides
	if app.ConfigDir != "" {
		cfg, err = adapter.LoadConfigFrom(app.ConfigDir)
	} else {
		cfg, err = adapter.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.URL = app.cfg.Server.URL

	if app.ConfigDir != "" {
		err = adapter.SaveConfigTo(app.ConfigDir, cfg)
	} else {
		err = adapter.SaveConfig(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token for the configured server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.sessionStore()
			if err != nil {
				return err
			}
			if err := sessions.Clear(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who lumen is signed in as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.sessionStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			sess, err := sessions.Load()
			if errors.Is(err, store.ErrNoSession) {
				fmt.Fprintln(out, "Not signed in to "+app.cfg.Server.URL)
				fmt.Fprintln(out, styles.DimStyle.Render("Run 'lumen login' to sign in."))
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read session: %w", err)
			}

			fmt.Fprintln(out, "Signed in as "+describeIdentity(sess.Identity()))
			fmt.Fprintln(out, styles.DimStyle.Render(fmt.Sprintf("Server: %s", app.cfg.Server.URL)))
			fmt.Fprintln(out, styles.DimStyle.Render(fmt.Sprintf("Since:  %s", sess.SavedAt.Format("2006-01-02 15:04"))))
			return nil
		},
	}
}

func describeIdentity(id domain.Identity) string {
	who := id.Subject
	if who == "" {
		who = "an unnamed user"
	}
	if id.Admin {
		who += " (admin)"
	}
	return who
}
