package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"aquagrade/models"
	"aquagrade/query"
)

type filterFlags struct {
	search   string
	species  string
	grade    string
	feedback string
	from     string
	to       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "q", "", "species name contains (case-insensitive)")
	cmd.Flags().StringVar(&f.species, "species", "", "exact species")
	cmd.Flags().StringVar(&f.grade, "grade", "", "exact quality grade")
	cmd.Flags().StringVar(&f.feedback, "feedback", "", "unreviewed, correct or incorrect")
	cmd.Flags().StringVar(&f.from, "from", "", "earliest day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "latest day (inclusive), YYYY-MM-DD")
}

func (f *filterFlags) criteria() (query.Criteria, error) {
	c := query.Criteria{SearchText: f.search}
	if v := strings.TrimSpace(f.species); v != "" {
		c.Species = &v
	}
	if v := strings.TrimSpace(f.grade); v != "" {
		c.Grade = &v
	}
	if f.feedback != "" {
		fs, ok := models.ParseFeedbackStatus(f.feedback)
		if !ok {
			return c, fmt.Errorf("invalid --feedback %q: want unreviewed, correct or incorrect", f.feedback)
		}
		c.Feedback = &fs
	}

	var err error
	if c.DateFrom, err = parseDay("from", f.from); err != nil {
		return c, err
	}
	if c.DateTo, err = parseDay("to", f.to); err != nil {
		return c, err
	}
	return c, nil
}

func parseDay(flag, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", flag, v)
	}
	return &t, nil
}

func gradeColor(grade string) *color.Color {
	switch grade {
	case models.GradeSushi, models.GradePremium:
		return color.New(color.FgGreen)
	case models.GradeStandard:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func feedbackColor(s models.FeedbackStatus) *color.Color {
	switch s {
	case models.FeedbackCorrect:
		return color.New(color.FgHiGreen)
	case models.FeedbackIncorrect:
		return color.New(color.FgHiRed)
	default:
		return color.New(color.FgHiBlack)
	}
}

func confidenceLabel(c *float64) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *c)
}
