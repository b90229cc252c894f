package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"aquagrade/analyzer"
	"aquagrade/app"
	"aquagrade/models"
	"aquagrade/store"
)

func analyzeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze one fish photo and record it in the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			return withApp(cmd.Context(), opts, func(a *app.App) error {
				res, entry, err := a.Recorder.Record(cmd.Context(), data, path)
				persisted := true
				if errors.Is(err, store.ErrPersist) {
					persisted = false
				} else if err != nil {
					return fmt.Errorf("analysis failed: %w", err)
				}
				printAnalysis(cmd, res, entry, persisted)
				return nil
			})
		},
	}
}

func printAnalysis(cmd *cobra.Command, res *analyzer.Result, entry models.HistoryEntry, persisted bool) {
	out := cmd.OutOrStdout()
	grade := entry.QualityGrade

	fmt.Fprintf(out, "Species:     %s (%s)\n", entry.Species, confidenceLabel(entry.Confidence))
	fmt.Fprintf(out, "Grade:       %s", gradeColor(grade).Sprint(grade))
	if s := res.Quality.Score.String(); s != "" {
		fmt.Fprintf(out, " (score %s)", s)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Value:       $%s/lb\n", entry.MarketValuePerUnit.StringFixed(2))
	if res.Size.Weight != "" {
		fmt.Fprintf(out, "Size:        %s, %s (%s)\n", res.Size.Weight, res.Size.Length, res.Size.Category)
	}
	if res.Handling.StorageTemp != "" || res.Handling.ShelfLife != "" {
		fmt.Fprintf(out, "Storage:     %s, shelf life %s\n", res.Handling.StorageTemp, res.Handling.ShelfLife)
	}
	for _, r := range res.Handling.Recommendations {
		if s := strings.TrimSpace(r.String()); s != "" {
			fmt.Fprintf(out, "  - %s\n", s)
		}
	}

	if persisted {
		fmt.Fprintf(out, "✓ Recorded as %s\n", entry.ID)
	} else {
		fmt.Fprintf(out, "⚠ Recorded as %s, but the history could not be saved\n", entry.ID)
	}
}
