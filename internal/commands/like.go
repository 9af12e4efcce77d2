package commands

import (
	"fmt"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/engagement"
	"github.com/mmcdole/lumen/internal/tui/styles"
	"github.com/spf13/cobra"
)

func newLikeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "like",
		Short: "Show or change likes",
	}

	cmd.AddCommand(newLikeShowCmd(app))
	cmd.AddCommand(newLikeToggleCmd(app))

	return cmd
}

// likeTarget parses <domain> <id> and builds a loaded tracker
func likeTarget(cmd *cobra.Command, app *App, args []string) (*engagement.LikeTracker, domain.Identity, error) {
	d, err := parseDomainArg(args[0])
	if err != nil {
		return nil, domain.Identity{}, err
	}
	itemID, err := parseIDArg(args[1])
	if err != nil {
		return nil, domain.Identity{}, err
	}
	client, err := app.portal()
	if err != nil {
		return nil, domain.Identity{}, err
	}
	id, err := app.identity()
	if err != nil {
		return nil, domain.Identity{}, err
	}

	tracker := engagement.NewLikeTracker(client, d, itemID, app.logger)
	if err := tracker.Load(cmd.Context(), id); err != nil {
		tracker.Close()
		return nil, domain.Identity{}, describe("load likes", err)
	}
	return tracker, id, nil
}

func printLike(cmd *cobra.Command, state domain.LikeState) {
	line := styles.RenderLike(state.Liked, state.Count)
	if state.Liked {
		line += " (you like this)"
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}

func newLikeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <articles|syntaxes|procedures> <id>",
		Short: "Show the like count and whether you like an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, _, err := likeTarget(cmd, app, args)
			if err != nil {
				return err
			}
			defer tracker.Close()

			printLike(cmd, tracker.State())
			return nil
		},
	}
}

func newLikeToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <articles|syntaxes|procedures> <id>",
		Short: "Like an item, or remove your like",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, id, err := likeTarget(cmd, app, args)
			if err != nil {
				return err
			}
			defer tracker.Close()

			state, err := tracker.Toggle(cmd.Context(), id)
			if err != nil {
				return describe("update your like", err)
			}
			printLike(cmd, state)
			return nil
		},
	}
}
