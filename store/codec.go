package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"aquagrade/models"
)

// formatVersion is written into every document. Unversioned bare arrays
// come from the browser dashboard and are still accepted on read.
const formatVersion = 1

type document struct {
	Version int      `json:"version"`
	Entries []record `json:"entries"`
}

type record struct {
	ID                   json.RawMessage `json:"id"`
	Timestamp            string          `json:"timestamp,omitempty"`
	CreatedAt            string          `json:"created_at,omitempty"`
	Species              string          `json:"species"`
	QualityGrade         string          `json:"quality_grade"`
	MarketValue          json.RawMessage `json:"market_value,omitempty"`
	Confidence           json.RawMessage `json:"confidence,omitempty"`
	ImageURL             string          `json:"image_url,omitempty"`
	HandlingInstructions string          `json:"handling_instructions,omitempty"`
	FeedbackStatus       string          `json:"feedback_status,omitempty"`
	WasCorrect           *bool           `json:"wasCorrect,omitempty"`
}

func encodeHistory(entries []models.HistoryEntry) ([]byte, error) {
	doc := document{Version: formatVersion, Entries: make([]record, 0, len(entries))}
	for _, e := range entries {
		id, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		// Exact decimal text, never rounded
		value, err := json.Marshal(e.MarketValuePerUnit.String())
		if err != nil {
			return nil, err
		}
		r := record{
			ID:                   id,
			Timestamp:            e.Timestamp.Format(time.RFC3339Nano),
			Species:              e.Species,
			QualityGrade:         e.QualityGrade,
			MarketValue:          value,
			ImageURL:             e.ImageReference,
			HandlingInstructions: e.HandlingInstructions,
			FeedbackStatus:       string(e.FeedbackStatus),
		}
		if e.Confidence != nil {
			if r.Confidence, err = json.Marshal(*e.Confidence); err != nil {
				return nil, err
			}
		}
		doc.Entries = append(doc.Entries, r)
	}
	return json.Marshal(doc)
}

// decodeHistory parses either document shape. Field-level problems are
// logged and defaulted; only a structurally broken blob is an error.
func decodeHistory(data []byte, logger *zap.Logger) ([]models.HistoryEntry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var records []record
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	case '{':
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if doc.Version > formatVersion {
			return nil, fmt.Errorf("unsupported history version %d", doc.Version)
		}
		records = doc.Entries
	default:
		return nil, fmt.Errorf("unexpected history document starting with %q", data[0])
	}

	out := make([]models.HistoryEntry, 0, len(records))
	for i, r := range records {
		out = append(out, r.toEntry(i, logger))
	}
	return out, nil
}

func (r record) toEntry(idx int, logger *zap.Logger) models.HistoryEntry {
	e := models.HistoryEntry{
		ID:                   rawID(r.ID),
		Species:              r.Species,
		QualityGrade:         r.QualityGrade,
		ImageReference:       r.ImageURL,
		HandlingInstructions: r.HandlingInstructions,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
		logger.Warn("history entry without id, assigned a new one",
			zap.Int("index", idx), zap.String("id", e.ID))
	}

	ts := r.Timestamp
	if ts == "" {
		ts = r.CreatedAt
	}
	if ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			logger.Warn("unparsable history timestamp", zap.String("id", e.ID), zap.String("timestamp", ts))
		}
		e.Timestamp = parsed
	}

	value, ok := rawMoney(r.MarketValue)
	if !ok {
		logger.Warn("unparsable market value in history, using 0",
			zap.String("id", e.ID), zap.ByteString("value", r.MarketValue))
	}
	e.MarketValuePerUnit = value

	e.Confidence = rawPercent(r.Confidence)

	switch status, ok := models.ParseFeedbackStatus(r.FeedbackStatus); {
	case ok:
		e.FeedbackStatus = status
	case r.WasCorrect != nil:
		e.FeedbackStatus = models.FeedbackFor(*r.WasCorrect)
	default:
		e.FeedbackStatus = models.FeedbackUnreviewed
	}
	return e
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// rawMoney reports ok=false only for a present value that could not be read.
func rawMoney(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return models.ParseMoney(s)
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func rawPercent(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var f float64
	if json.Unmarshal(raw, &f) != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return nil
		}
		f, _ = models.ParsePercent(s)
	}
	f = models.ClampPercent(f)
	return &f
}
