package analyzer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aquagrade/models"
)

var (
	ErrInvalidResult  = errors.New("invalid analysis result")
	ErrMissingSpecies = fmt.Errorf("%w: species name is missing", ErrInvalidResult)
	ErrMissingGrade   = fmt.Errorf("%w: quality grade is missing", ErrInvalidResult)
)

// Normalizer turns analysis results into history entries.
type Normalizer struct {
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Normalize validates res and builds a fresh, unreviewed entry for it.
// Only a missing species name or quality grade is an error; every other
// field falls back to a zero value.
func (n *Normalizer) Normalize(res *Result, imageRef string) (models.HistoryEntry, error) {
	if res == nil {
		return models.HistoryEntry{}, ErrInvalidResult
	}
	species := strings.TrimSpace(res.Species.Name.String())
	if species == "" {
		return models.HistoryEntry{}, ErrMissingSpecies
	}
	grade := strings.TrimSpace(res.Quality.Grade.String())
	if grade == "" {
		return models.HistoryEntry{}, ErrMissingGrade
	}

	// Per-pound price first, total as fallback
	rawValue := res.Market.PricePerPound.String()
	if strings.TrimSpace(rawValue) == "" {
		rawValue = res.Market.TotalValue.String()
	}
	value, ok := models.ParseMoney(rawValue)
	if !ok && strings.TrimSpace(rawValue) != "" {
		n.logger.Warn("unparsable market value, using 0",
			zap.String("species", species),
			zap.String("value", rawValue))
	}

	var confidence *float64
	if raw := strings.TrimSpace(res.Species.Confidence.String()); raw != "" {
		c, ok := models.ParsePercent(raw)
		if !ok {
			n.logger.Warn("unparsable confidence, using 0",
				zap.String("species", species),
				zap.String("confidence", raw))
		}
		c = models.ClampPercent(c)
		confidence = &c
	}

	recs := make([]string, 0, len(res.Handling.Recommendations))
	for _, r := range res.Handling.Recommendations {
		recs = append(recs, r.String())
	}

	return models.HistoryEntry{
		ID:                   n.newID(),
		Timestamp:            n.now(),
		Species:              species,
		QualityGrade:         grade,
		MarketValuePerUnit:   value,
		Confidence:           confidence,
		ImageReference:       imageRef,
		HandlingInstructions: strings.Join(recs, " "),
		FeedbackStatus:       models.FeedbackUnreviewed,
	}, nil
}
