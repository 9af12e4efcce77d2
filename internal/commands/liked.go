package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/engagement"
	"github.com/mmcdole/lumen/internal/tui/styles"
	"github.com/spf13/cobra"
)

func newLikedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "liked",
		Short: "List the articles you like",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.portal()
			if err != nil {
				return err
			}
			id, err := app.identity()
			if err != nil {
				return err
			}

			list := engagement.NewLikedArticles(client, app.logger)
			defer list.Close()
			if err := list.Refresh(cmd.Context(), id); err != nil {
				return describe("load your liked articles", err)
			}

			out := cmd.OutOrStdout()
			if !id.SignedIn() {
				fmt.Fprintln(out, styles.DimStyle.Render("Sign in to see the articles you like."))
				return nil
			}

			articles := list.Articles()
			if len(articles) == 0 {
				fmt.Fprintln(out, "No liked articles yet.")
				return nil
			}

			fmt.Fprintln(out, likedTable(articles))
			return nil
		},
	}
}

// likedTable lays the articles out in borderless id/title/author columns
func likedTable(articles []domain.LikedArticle) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers("ID", "TITLE", "AUTHOR").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.DimStyle.PaddingRight(2)
			}
			if col == 0 {
				return styles.AccentStyle.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	for _, a := range articles {
		author := a.AuthorName
		if author == "" {
			author = "-"
		}
		t.Row(strconv.FormatInt(a.ID, 10), a.Title, author)
	}
	return t.String()
}
