package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"aquagrade/models"
)

const (
	pageMargin   = 14.0
	bottomMargin = 15.0
	headerHeight = 8.0
	rowHeight    = 7.0

	reportFooterSpace = 28.0
)

type column struct {
	title string
	width float64
}

// A4 width minus both margins
var historyColumns = []column{
	{"Date", 26},
	{"Species", 44},
	{"Grade", 28},
	{"Confidence", 26},
	{"Market Value", 28},
	{"Feedback", 30},
}

var (
	headerFill   = [3]int{22, 101, 216}
	successColor = [3]int{34, 197, 94}
	warningColor = [3]int{245, 158, 11}
	dangerColor  = [3]int{239, 68, 68}
)

// WriteHistoryPDF renders entries as a paginated table. The header row is
// repeated on every page.
func WriteHistoryPDF(w io.Writer, entries []models.HistoryEntry, now time.Time) error {
	return historyPDF(entries, now).Output(w)
}

func historyPDF(entries []models.HistoryEntry, now time.Time) *fpdf.Fpdf {
	pdf := newDocument("Fish Analysis History", now)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(pageMargin, 22, "Fish Analysis History")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageMargin, 32, "Generated: "+now.Format("2006-01-02 15:04"))
	pdf.Text(pageMargin, 38, fmt.Sprintf("Total Records: %d", len(entries)))

	pdf.SetY(45)
	tableHeader(pdf)

	_, pageHeight := pdf.GetPageSize()
	for _, e := range entries {
		if pdf.GetY()+rowHeight > pageHeight-bottomMargin {
			pdf.AddPage()
			tableHeader(pdf)
		}

		cells := []string{
			formatDate(e.Timestamp),
			e.Species,
			e.QualityGrade,
			percentLabel(e.Confidence),
			"$" + e.MarketValuePerUnit.StringFixed(2),
			e.FeedbackStatus.Label(),
		}
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		for i, col := range historyColumns {
			pdf.CellFormat(col.width, rowHeight, tr(fit(pdf, cells[i], col.width-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(255, 255, 255)
	for _, col := range historyColumns {
		pdf.CellFormat(col.width, headerHeight, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

// WriteReportPDF renders the single-prediction report.
func WriteReportPDF(w io.Writer, e models.HistoryEntry, now time.Time) error {
	return reportPDF(e, now).Output(w)
}

func reportPDF(e models.HistoryEntry, now time.Time) *fpdf.Fpdf {
	pdf := newDocument("Fish Analysis Report - "+e.Species, now)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, pageHeight := pdf.GetPageSize()
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.Text(20, pageHeight-20, "Generated by AquaGrade AI - Advanced Fish Quality Assessment System")
	})
	pdf.AddPage()

	// Banner
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.Rect(0, 0, pageWidth, 30, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Text(20, 18, "AquaGrade AI")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(20, 25, "Fish Analysis Report")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(20, 40, "Analyzed: "+formatDateTimeLong(e.Timestamp)+"    Generated: "+now.Format("2006-01-02 15:04"))

	y := 55.0
	section := func(title string) {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Text(20, y, title)
		y += 10
	}
	field := func(label, value string, color *[3]int) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(20, y, label)
		pdf.SetFont("Helvetica", "", 12)
		if color != nil {
			pdf.SetTextColor(color[0], color[1], color[2])
		}
		pdf.Text(70, y, tr(value))
		y += 8
	}

	section("Species Identification")
	field("Species:", e.Species, nil)
	field("Confidence:", percentLabel(e.Confidence), nil)
	y += 6

	section("Quality Assessment")
	field("Grade:", e.QualityGrade, gradeColor(e.QualityGrade))
	field("Feedback:", e.FeedbackStatus.Label(), nil)
	y += 6

	section("Market Information")
	field("Estimated Value:", "$"+e.MarketValuePerUnit.StringFixed(2)+"/lb", &successColor)
	y += 6

	section("Handling Recommendations")
	handling := strings.TrimSpace(e.HandlingInstructions)
	if handling == "" {
		handling = "Standard handling"
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	// Long instructions continue on new pages above the footer
	pdf.SetLeftMargin(20)
	pdf.SetAutoPageBreak(true, reportFooterSpace)
	pdf.SetXY(20, y-4)
	pdf.MultiCell(pageWidth-40, 6, tr(handling), "", "L", false)
	return pdf
}

func newDocument(title string, now time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("AquaGrade AI", true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, bottomMargin)
	return pdf
}

func gradeColor(grade string) *[3]int {
	switch grade {
	case models.GradePremium, models.GradeSushi:
		return &successColor
	case models.GradeStandard:
		return &warningColor
	default:
		return &dangerColor
	}
}

func percentLabel(c *float64) string {
	if c == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *c)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDateTimeLong(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

// fit truncates s with "..." until it fits in width at the current font.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
