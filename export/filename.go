package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const dateLayout = "2006-01-02"

func CSVFilename(now time.Time) string {
	return "fish-predictions-" + now.UTC().Format(dateLayout) + ".csv"
}

func HistoryPDFFilename(now time.Time) string {
	return "fish-predictions-" + now.UTC().Format(dateLayout) + ".pdf"
}

// ReportPDFFilename names a single-prediction report, e.g.
// fish-analysis-red-sea-bream-1718000000000.pdf.
func ReportPDFFilename(species string, now time.Time) string {
	return fmt.Sprintf("fish-analysis-%s-%d.pdf", slug(species), now.UnixMilli())
}

func slug(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	out := strings.Join(strings.Fields(cleaned), "-")
	if out == "" {
		return "unknown"
	}
	return out
}
