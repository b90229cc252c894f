package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"aquagrade/app"
	"aquagrade/models"
	"aquagrade/query"
	"aquagrade/store"
)

func historyCmd(opts *globalOptions) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List analyzed fish, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			crit, err := filters.criteria()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				entries := query.Filter(a.History.All(), crit)
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No history entries found.")
					return nil
				}

				rows := make([][]cell, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []cell{
						plain(e.ID),
						plain(e.Timestamp.Local().Format("2006-01-02 15:04")),
						plain(e.Species),
						colored(gradeColor(e.QualityGrade), e.QualityGrade),
						plain(e.MarketValuePerUnit.StringFixed(2)),
						plain(confidenceLabel(e.Confidence)),
						colored(feedbackColor(e.FeedbackStatus), e.FeedbackStatus.Label()),
					})
				}
				writeTable(out, []string{"ID", "DATE", "SPECIES", "GRADE", "VALUE ($/LB)", "CONFIDENCE", "FEEDBACK"}, rows)
				fmt.Fprintf(out, "\n%d of %d entries\n", len(entries), len(a.History.All()))
				return nil
			})
		},
	}
	filters.register(cmd)
	return cmd
}

func statsCmd(opts *globalOptions) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			crit, err := filters.criteria()
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(a *app.App) error {
				entries := query.Filter(a.History.All(), crit)
				sum := query.Summarize(entries)
				fb := query.SummarizeFeedback(entries)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Analyses:     %d\n", sum.Count)
				fmt.Fprintf(out, "Total value:  $%s\n", sum.TotalValue.StringFixed(2))
				fmt.Fprintf(out, "Reviewed:     %d (%d correct, %d incorrect)\n", fb.Reviewed, fb.Correct, fb.Incorrect)
				if fb.Reviewed > 0 {
					fmt.Fprintf(out, "Accuracy:     %.1f%%\n", fb.Accuracy)
				}
				if len(sum.Recent) > 0 {
					fmt.Fprintln(out, "Recent:")
					for _, e := range sum.Recent {
						fmt.Fprintf(out, "  %s  %s  %s\n", e.ID, e.Species, gradeColor(e.QualityGrade).Sprint(e.QualityGrade))
					}
				}
				return nil
			})
		},
	}
	filters.register(cmd)
	return cmd
}

func feedbackCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "feedback <id> correct|incorrect",
		Short:     "Record whether a prediction was correct",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"correct", "incorrect"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			verdict, ok := models.ParseFeedbackStatus(args[1])
			if !ok || verdict == models.FeedbackUnreviewed {
				return fmt.Errorf("invalid verdict %q: want correct or incorrect", args[1])
			}

			return withApp(cmd.Context(), opts, func(a *app.App) error {
				if _, ok := a.History.Get(id); !ok {
					return fmt.Errorf("history entry %s not found", id)
				}
				err := a.History.UpdateFeedback(cmd.Context(), id, verdict == models.FeedbackCorrect)
				if errors.Is(err, store.ErrFeedbackLocked) {
					return fmt.Errorf("feedback already recorded for %s", id)
				}
				if err != nil {
					return fmt.Errorf("failed to record feedback: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Marked %s as %s\n", id, feedbackColor(verdict).Sprint(verdict.Label()))
				return nil
			})
		},
	}
}
