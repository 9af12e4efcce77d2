package commands

import (
	"fmt"

	"github.com/mmcdole/lumen/internal/adapter"
	"github.com/spf13/cobra"
)

func newOpenCmd(app *App) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "open <articles|syntaxes|procedures> <id>",
		Short: "Open an item on the portal website",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			itemID, err := parseIDArg(args[1])
			if err != nil {
				return err
			}
			if !app.cfg.IsConfigured() {
				return fmt.Errorf("no portal server configured; run 'lumen login --server URL' first")
			}

			pageURL, err := adapter.ItemURL(app.cfg.WebBase(), d, itemID)
			if err != nil {
				return err
			}
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), pageURL)
				return nil
			}

			opener := adapter.NewOpener(app.cfg.Browser.Command, app.cfg.Browser.Args, app.logger)
			if err := opener.Open(pageURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Opened "+pageURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the URL instead of opening it")
	return cmd
}
