package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"aquagrade/app"
	"aquagrade/export"
	"aquagrade/query"
)

func exportCmd(opts *globalOptions) *cobra.Command {
	var (
		filters filterFlags
		format  string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the (filtered) history as CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "pdf" {
				return fmt.Errorf("invalid --format %q: want csv or pdf", format)
			}
			crit, err := filters.criteria()
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), opts, func(a *app.App) error {
				entries := query.Filter(a.History.All(), crit)
				if err := export.Validate(entries); err != nil {
					return err
				}

				now := time.Now()
				var (
					buf  bytes.Buffer
					name string
				)
				switch format {
				case "csv":
					name = export.CSVFilename(now)
					err = export.WriteCSV(&buf, entries)
				case "pdf":
					name = export.HistoryPDFFilename(now)
					err = export.WriteHistoryPDF(&buf, entries, now)
				}
				if err != nil {
					return fmt.Errorf("failed to export %s: %w", format, err)
				}

				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				path := filepath.Join(outDir, name)
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d entries to %s\n", len(entries), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or pdf")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	filters.register(cmd)
	return cmd
}
