package commands

import (
	"github.com/mmcdole/lumen/internal/adapter"
	"github.com/mmcdole/lumen/internal/catalog"
	"github.com/mmcdole/lumen/internal/engagement"
	"github.com/mmcdole/lumen/internal/tui"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse procedures interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, app)
		},
	}
}

func runBrowse(cmd *cobra.Command, app *App) error {
	client, err := app.portal()
	if err != nil {
		return err
	}
	id, err := app.identity()
	if err != nil {
		return err
	}

	svc := tui.Services{
		Catalog: catalog.NewService(client, catalog.Options{
			PageSize:        app.cfg.Listing.PageSize,
			BackendPageSize: app.cfg.Listing.BackendPageSize,
		}, app.logger),
		Reads:    engagement.NewReadTracker(client, app.logger),
		Reviews:  engagement.NewReviewBoard(client, app.logger),
		Likes:    client,
		Opener:   adapter.NewOpener(app.cfg.Browser.Command, app.cfg.Browser.Args, app.logger),
		WebBase:  app.cfg.WebBase(),
		Identity: id,
		PageSize: app.cfg.Listing.PageSize,
	}

	app.logger.Info("starting TUI")
	if err := tui.Run(cmd.Context(), svc, app.logger); err != nil {
		app.logger.Error("TUI error", "error", err)
		return err
	}
	app.logger.Info("shutting down")
	return nil
}
