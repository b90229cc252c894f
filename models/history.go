package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeedbackStatus is the user's verdict on a past prediction.
type FeedbackStatus string

const (
	FeedbackUnreviewed FeedbackStatus = "unreviewed"
	FeedbackCorrect    FeedbackStatus = "correct"
	FeedbackIncorrect  FeedbackStatus = "incorrect"
)

// Known quality grades. The set is open, unknown labels pass through as-is.
const (
	GradeSushi    = "Sushi-Grade"
	GradePremium  = "Premium"
	GradeStandard = "Standard"
)

// HistoryEntry is one analyzed fish as kept in the local history.
// Only FeedbackStatus changes after creation.
type HistoryEntry struct {
	ID                   string          `json:"id"`
	Timestamp            time.Time       `json:"timestamp"`
	Species              string          `json:"species"`
	QualityGrade         string          `json:"quality_grade"`
	MarketValuePerUnit   decimal.Decimal `json:"market_value"`
	Confidence           *float64        `json:"confidence,omitempty"`
	ImageReference       string          `json:"image_url"`
	HandlingInstructions string          `json:"handling_instructions"`
	FeedbackStatus       FeedbackStatus  `json:"feedback_status"`
}

// ParseFeedbackStatus accepts the three canonical names.
func ParseFeedbackStatus(s string) (FeedbackStatus, bool) {
	switch FeedbackStatus(s) {
	case FeedbackUnreviewed, FeedbackCorrect, FeedbackIncorrect:
		return FeedbackStatus(s), true
	}
	return "", false
}

// FeedbackFor maps a correctness verdict to its status.
func FeedbackFor(isCorrect bool) FeedbackStatus {
	if isCorrect {
		return FeedbackCorrect
	}
	return FeedbackIncorrect
}

// CanTransition reports whether a status may move from s to next.
// Only unreviewed entries can be judged; repeating the current verdict is allowed.
func (s FeedbackStatus) CanTransition(next FeedbackStatus) bool {
	if next == FeedbackUnreviewed {
		return s == FeedbackUnreviewed
	}
	return s == FeedbackUnreviewed || s == next
}

// Label is the human form used in reports.
func (s FeedbackStatus) Label() string {
	switch s {
	case FeedbackCorrect:
		return "Correct"
	case FeedbackIncorrect:
		return "Incorrect"
	default:
		return "Not Reviewed"
	}
}
