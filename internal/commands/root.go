// Package commands wires the portal client and engagement stores into the
// lumen command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mmcdole/lumen/internal/adapter"
	"github.com/mmcdole/lumen/internal/adapter/portal"
	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/store"
	"github.com/spf13/cobra"
)

// App holds per-invocation state shared by every command
type App struct {
	ConfigDir string // Empty uses the default config locations
	ServerURL string // Overrides server.url for this invocation
	Version   string

	cfg      *adapter.Config
	logger   *slog.Logger
	closeLog func() error
	client   *portal.Client
	sessions *store.SessionStore
}

// NewRootCmd builds the lumen command tree
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lumen",
		Short: "Read, like and review portal content from the terminal",
		Long: strings.TrimSpace(`
lumen keeps your reading list, likes and review scores on the learning
portal in sync from the command line.

With no subcommand it opens the procedure browser.`),
		Example: strings.TrimSpace(`
  # Sign in once per server
  lumen login --server https://portal.example.com

  # What have I read?
  lumen read list articles

  # Procedures, grouped by section
  lumen procedures --sections`),
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", "", "Read config.yaml and .env from this directory only")
	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", "", "Portal base URL (overrides server.url)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newReadCmd(app))
	cmd.AddCommand(newLikeCmd(app))
	cmd.AddCommand(newReviewCmd(app))
	cmd.AddCommand(newLikedCmd(app))
	cmd.AddCommand(newProceduresCmd(app))
	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newBrowseCmd(app))

	return cmd
}

// Execute runs the command line and releases everything it opened
func Execute(ctx context.Context, version string, args []string) error {
	app := &App{Version: version}
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	defer app.Close()
	return cmd.ExecuteContext(ctx)
}

// setup loads configuration and installs the logger
func (a *App) setup() error {
	var (
		cfg *adapter.Config
		err error
	)
	if a.ConfigDir != "" {
		cfg, err = adapter.LoadConfigFrom(a.ConfigDir)
	} else {
		cfg, err = adapter.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.ServerURL != "" {
		cfg.Server.URL = strings.TrimRight(a.ServerURL, "/")
	}

	logger, closeLog, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
		closeLog = func() error { return nil }
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	a.closeLog = closeLog
	logger.Debug("starting lumen", "version", a.Version, "server", cfg.Server.URL)
	return nil
}

// Close releases the session store and log file
func (a *App) Close() {
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			a.logger.Warn("failed to close session store", "error", err)
		}
		a.sessions = nil
	}
	if a.closeLog != nil {
		_ = a.closeLog()
		a.closeLog = nil
	}
}

// portal returns the API client, creating it on first use
func (a *App) portal() (*portal.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if !a.cfg.IsConfigured() {
		return nil, errors.New("no portal server configured; run 'lumen login --server URL' first")
	}
	client, err := portal.NewClientFromConfig(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// sessionStore opens the session store for the configured server
func (a *App) sessionStore() (*store.SessionStore, error) {
	if a.sessions != nil {
		return a.sessions, nil
	}
	if !a.cfg.IsConfigured() {
		return nil, errors.New("no portal server configured; run 'lumen login --server URL' first")
	}
	sessions, err := store.NewSessionStore(a.cfg.Session.Dir, a.cfg.Server.URL)
	if err != nil {
		return nil, err
	}
	a.sessions = sessions
	return sessions, nil
}

// identity returns the saved identity, or the anonymous one
func (a *App) identity() (domain.Identity, error) {
	sessions, err := a.sessionStore()
	if err != nil {
		return domain.Identity{}, err
	}
	sess, err := sessions.Load()
	if errors.Is(err, store.ErrNoSession) {
		return domain.Anonymous(), nil
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to read session: %w", err)
	}
	return sess.Identity(), nil
}

// userError carries a message for the terminal while keeping the cause
// reachable through errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// describe turns a store or client error into a terminal message
func describe(action string, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return &userError{msg: domain.Describe(action, err), err: err}
}

func parseDomainArg(s string) (domain.Domain, error) {
	return domain.ParseDomain(strings.ToLower(strings.TrimSpace(s)))
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
