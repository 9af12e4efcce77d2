package commands

import (
	"fmt"
	"strconv"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/engagement"
	"github.com/mmcdole/lumen/internal/tui/styles"
	"github.com/spf13/cobra"
)

func newReviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Show or submit review scores",
	}

	cmd.AddCommand(newReviewShowCmd(app))
	cmd.AddCommand(newReviewSubmitCmd(app))

	return cmd
}

// reviewTarget parses <domain> <id> and loads a board for it
func reviewTarget(cmd *cobra.Command, app *App, args []string) (*engagement.ReviewBoard, domain.Identity, error) {
	target, err := domain.ParseTargetType(args[0])
	if err != nil {
		return nil, domain.Identity{}, err
	}
	refID, err := parseIDArg(args[1])
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

	board := engagement.NewReviewBoard(client, app.logger)
	if err := board.Load(cmd.Context(), target, refID, id); err != nil {
		board.Close()
		return nil, domain.Identity{}, describe("load review scores", err)
	}
	return board, id, nil
}

func printReview(cmd *cobra.Command, state engagement.ReviewState, signedIn bool) {
	out := cmd.OutOrStdout()
	star := styles.StarStyle.Render(styles.StarChar)

	if avg := state.Average(); avg != nil {
		fmt.Fprintf(out, "%s %.2f from %d %s\n", star, *avg, len(state.Scores), plural(len(state.Scores), "score", "scores"))
	} else {
		fmt.Fprintf(out, "%s No scores yet\n", star)
	}

	switch {
	case state.MyScore != nil:
		fmt.Fprintf(out, "Your score: %.1f\n", *state.MyScore)
	case signedIn:
		fmt.Fprintln(out, styles.DimStyle.Render("You have not scored this yet."))
	}
}

func newReviewShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <article|syntax|procedure> <id>",
		Short: "Show the average score and your own",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, id, err := reviewTarget(cmd, app, args)
			if err != nil {
				return err
			}
			defer board.Close()

			printReview(cmd, board.State(), id.SignedIn())
			return nil
		},
	}
}

func newReviewSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <article|syntax|procedure> <id> <score>",
		Short: "Create or update your score (0.5 to 5 in half steps)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[2], 64)
			if err != nil || !engagement.ValidScore(score) {
				return fmt.Errorf("invalid score %q: use %.1f to %.1f in steps of %.1f",
					args[2], engagement.MinScore, engagement.MaxScore, engagement.ScoreStep)
			}

			board, id, err := reviewTarget(cmd, app, args)
			if err != nil {
				return err
			}
			defer board.Close()

			if err := board.Submit(cmd.Context(), score, id); err != nil {
				return describe("save your score", err)
			}
			printReview(cmd, board.State(), id.SignedIn())
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
