package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/mmcdole/lumen/internal/catalog"
	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/engagement"
	"github.com/mmcdole/lumen/internal/tui/styles"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newProceduresCmd(app *App) *cobra.Command {
	var page int
	var filter string
	var sections bool

	cmd := &cobra.Command{
		Use:   "procedures",
		Short: "List procedures in step order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("invalid page %d", page)
			}
			client, err := app.portal()
			if err != nil {
				return err
			}
			id, err := app.identity()
			if err != nil {
				return err
			}

			svc := catalog.NewService(client, catalog.Options{
				PageSize:        app.cfg.Listing.PageSize,
				BackendPageSize: app.cfg.Listing.BackendPageSize,
			}, app.logger)
			defer svc.Close()
			reads := engagement.NewReadTracker(client, app.logger)
			defer reads.Close()

			if err := loadListing(cmd.Context(), app, svc, reads, id); err != nil {
				return describe("load procedures", err)
			}

			r := listingRenderer{out: cmd.OutOrStdout(), reads: reads, marks: id.SignedIn()}
			switch {
			case filter != "":
				matches := svc.Filter(filter)
				if len(matches) == 0 {
					fmt.Fprintf(r.out, "No procedures match %q.\n", filter)
					return nil
				}
				r.entries(matches, false)
			case sections:
				for _, s := range svc.Sections() {
					fmt.Fprintln(r.out, styles.SectionStyle.Render(sectionTitle(s.Label)))
					r.entries(s.Entries, false)
				}
			default:
				total := svc.TotalPages()
				if total == 0 {
					fmt.Fprintln(r.out, "No procedures.")
					return nil
				}
				if page > total {
					return fmt.Errorf("page %d is past the last page (%d)", page, total)
				}
				r.entries(svc.Page(page-1), true)
				fmt.Fprintln(r.out, styles.DimStyle.Render(fmt.Sprintf("\nPage %d/%d · %d procedures", page, total, svc.Snapshot().Len)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to show (1-based)")
	cmd.Flags().StringVar(&filter, "filter", "", "Only titles fuzzily matching this query")
	cmd.Flags().BoolVar(&sections, "sections", false, "Group every procedure by section")
	return cmd
}

// loadListing fetches the catalog and the read set side by side. A failed
// read set only costs the read markers.
func loadListing(ctx context.Context, app *App, svc *catalog.Service, reads *engagement.ReadTracker, id domain.Identity) error {
	var g errgroup.Group
	g.Go(func() error {
		return svc.Refresh(ctx)
	})
	g.Go(func() error {
		if err := reads.Refresh(ctx, domain.DomainProcedures, id); err != nil {
			app.logger.Warn("read markers unavailable", "error", err)
		}
		return nil
	})
	return g.Wait()
}

type listingRenderer struct {
	out   io.Writer
	reads *engagement.ReadTracker
	marks bool // Show read markers
}

// entries prints one line per entry; with labels it inserts a section
// heading wherever the section changes.
func (r listingRenderer) entries(entries []catalog.Entry, labels bool) {
	last := ""
	for _, e := range entries {
		if labels {
			if s := e.Key.Section(); s != last {
				fmt.Fprintln(r.out, styles.SectionStyle.Render(sectionTitle(s)))
				last = s
			}
		}
		marker := " "
		if r.marks {
			marker = styles.RenderReadStatus(r.reads.IsRead(e.Value.ID))
		}
		fmt.Fprintf(r.out, "  %s %-6s %s %s\n", marker, e.Key.Canonical, e.Value.Title,
			styles.DimStyle.Render(fmt.Sprintf("#%d", e.Value.ID)))
	}
}

func sectionTitle(label string) string {
	if label == "uncategorized" {
		return "Uncategorized"
	}
	return "Section " + label
}
