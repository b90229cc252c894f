// Package export renders history entries as downloadable CSV and PDF files.
// Callers reject empty input with Validate before exporting.
package export

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"aquagrade/models"
)

var ErrNothingToExport = errors.New("no history entries to export")

var csvHeader = []string{
	"Date",
	"Species",
	"Quality Grade",
	"Market Value ($/lb)",
	"Confidence (%)",
	"Handling Instructions",
	"Was Correct",
}

// Validate rejects an empty export.
func Validate(entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}
	return nil
}

// WriteCSV writes one header row and one row per entry, in input order.
func WriteCSV(w io.Writer, entries []models.HistoryEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			formatDateTime(e),
			e.Species,
			e.QualityGrade,
			e.MarketValuePerUnit.StringFixed(2),
			formatConfidence(e.Confidence),
			e.HandlingInstructions,
			wasCorrect(e.FeedbackStatus),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDateTime(e models.HistoryEntry) string {
	if e.Timestamp.IsZero() {
		return ""
	}
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

func formatConfidence(c *float64) string {
	if c == nil {
		return ""
	}
	return strconv.FormatFloat(*c, 'f', 1, 64)
}

func wasCorrect(s models.FeedbackStatus) string {
	switch s {
	case models.FeedbackCorrect:
		return "Yes"
	case models.FeedbackIncorrect:
		return "No"
	default:
		return "Not reviewed"
	}
}
