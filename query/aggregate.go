package query

import (
	"github.com/shopspring/decimal"

	"aquagrade/models"
)

// RecentCount is how many of the newest entries a Summary carries.
const RecentCount = 3

type Summary struct {
	Count      int                   `json:"count"`
	TotalValue decimal.Decimal       `json:"total_value"`
	Recent     []models.HistoryEntry `json:"recent"`
}

type FeedbackSummary struct {
	Reviewed   int     `json:"reviewed"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Unreviewed int     `json:"unreviewed"`
	Accuracy   float64 `json:"accuracy"`
}

// Summarize computes dashboard totals over a newest-first list.
func Summarize(entries []models.HistoryEntry) Summary {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.MarketValuePerUnit)
	}

	n := min(len(entries), RecentCount)
	recent := make([]models.HistoryEntry, n)
	copy(recent, entries[:n])

	return Summary{
		Count:      len(entries),
		TotalValue: total,
		Recent:     recent,
	}
}

// SummarizeFeedback counts verdicts. Accuracy is the share of reviewed
// entries marked correct, as a percentage.
func SummarizeFeedback(entries []models.HistoryEntry) FeedbackSummary {
	var s FeedbackSummary
	for _, e := range entries {
		switch e.FeedbackStatus {
		case models.FeedbackCorrect:
			s.Correct++
		case models.FeedbackIncorrect:
			s.Incorrect++
		default:
			s.Unreviewed++
		}
	}
	s.Reviewed = s.Correct + s.Incorrect
	if s.Reviewed > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Reviewed) * 100
	}
	return s
}
