package commands

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/engagement"
	"github.com/mmcdole/lumen/internal/tui/styles"
	"github.com/spf13/cobra"
)

func newReadCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "List and record what you have read",
	}

	cmd.AddCommand(newReadListCmd(app))
	cmd.AddCommand(newReadMarkCmd(app))

	return cmd
}

func newReadListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <articles|syntaxes|procedures>",
		Short: "Print the ids you have marked read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			client, err := app.portal()
			if err != nil {
				return err
			}
			id, err := app.identity()
			if err != nil {
				return err
			}

			tracker := engagement.NewReadTracker(client, app.logger)
			defer tracker.Close()
			if err := tracker.Refresh(cmd.Context(), d, id); err != nil {
				return describe("load read status", err)
			}

			out := cmd.OutOrStdout()
			if !id.SignedIn() {
				fmt.Fprintln(out, styles.DimStyle.Render("Sign in to see what you have read."))
				return nil
			}

			ids := tracker.Snapshot().IDs
			if len(ids) == 0 {
				fmt.Fprintf(out, "No %s read yet.\n", d)
				return nil
			}
			for _, itemID := range slices.Sorted(maps.Keys(ids)) {
				fmt.Fprintln(out, itemID)
			}
			return nil
		},
	}
}

func newReadMarkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <articles|syntaxes|procedures> <id>...",
		Short: "Mark items read",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			ids := make([]int64, 0, len(args)-1)
			for _, a := range args[1:] {
				itemID, err := parseIDArg(a)
				if err != nil {
					return err
				}
				ids = append(ids, itemID)
			}

			client, err := app.portal()
			if err != nil {
				return err
			}
			id, err := app.identity()
			if err != nil {
				return err
			}
			if !id.SignedIn() {
				return describe("mark "+string(d)+" read", domain.ErrNotSignedIn)
			}

			tracker := engagement.NewReadTracker(client, app.logger)
			defer tracker.Close()
			out := cmd.OutOrStdout()
			for _, itemID := range ids {
				if err := tracker.MarkRead(cmd.Context(), d, itemID, id); err != nil {
					return describe(fmt.Sprintf("mark %s %d read", d.Singular(), itemID), err)
				}
				fmt.Fprintf(out, "%s Marked %s %d read\n", styles.ReadCheck, d.Singular(), itemID)
			}
			return nil
		},
	}
}
