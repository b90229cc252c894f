package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"aquagrade/models"
)

// Shape written by the browser dashboard before the versioned document existed.
const legacyBlob = `[
  {
    "id": 1718000000000,
    "timestamp": "2024-06-10T06:13:20.000Z",
    "species": "Red Sea Bream",
    "quality_grade": "Premium",
    "market_value": "$38.40",
    "confidence": 94.5,
    "image_url": "blob:http://localhost:5173/7d1c",
    "handling_instructions": "Store at 0-4°C",
    "created_at": "2024-06-10T06:13:20.000Z",
    "wasCorrect": true
  },
  {
    "id": "sample-2",
    "created_at": "2024-06-09T06:13:20.000Z",
    "species": "Sea Bass",
    "quality_grade": "Standard",
    "market_value": "bad",
    "confidence": null
  }
]`

func TestDecodeHistory_Legacy(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	entries, err := decodeHistory([]byte(legacyBlob), zap.New(core))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "1718000000000", first.ID)
	assert.True(t, first.Timestamp.Equal(time.Date(2024, 6, 10, 6, 13, 20, 0, time.UTC)))
	assert.Equal(t, "38.4", first.MarketValuePerUnit.String())
	require.NotNil(t, first.Confidence)
	assert.Equal(t, 94.5, *first.Confidence)
	assert.Equal(t, models.FeedbackCorrect, first.FeedbackStatus)
	assert.Equal(t, "blob:http://localhost:5173/7d1c", first.ImageReference)

	second := entries[1]
	assert.Equal(t, "sample-2", second.ID)
	assert.True(t, second.Timestamp.Equal(time.Date(2024, 6, 9, 6, 13, 20, 0, time.UTC)))
	assert.True(t, second.MarketValuePerUnit.IsZero())
	assert.Nil(t, second.Confidence)
	assert.Equal(t, models.FeedbackUnreviewed, second.FeedbackStatus)

	assert.Equal(t, 1, logs.FilterMessage("unparsable market value in history, using 0").Len())
}

func TestDecodeHistory_RoundTrip(t *testing.T) {
	conf := 87.2
	in := []models.HistoryEntry{{
		ID:                   "a1",
		Timestamp:            time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
		Species:              "Trout",
		QualityGrade:         "Standard",
		MarketValuePerUnit:   decimal.RequireFromString("16.5"),
		Confidence:           &conf,
		ImageReference:       "/images/a1.jpg",
		HandlingInstructions: "Keep cold",
		FeedbackStatus:       models.FeedbackIncorrect,
	}}

	blob, err := encodeHistory(in)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(blob, &doc))
	assert.Equal(t, float64(formatVersion), doc["version"])

	out, err := decodeHistory(blob, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.True(t, in[0].Timestamp.Equal(out[0].Timestamp))
	assert.True(t, in[0].MarketValuePerUnit.Equal(out[0].MarketValuePerUnit))
	assert.Equal(t, conf, *out[0].Confidence)
	assert.Equal(t, in[0].FeedbackStatus, out[0].FeedbackStatus)
	assert.Equal(t, in[0].HandlingInstructions, out[0].HandlingInstructions)
}

func TestDecodeHistory_RoundTripKeepsPrecision(t *testing.T) {
	in := []models.HistoryEntry{
		{ID: "a", Species: "Tuna", QualityGrade: "Premium", MarketValuePerUnit: decimal.RequireFromString("12.345")},
		{ID: "b", Species: "Cod", QualityGrade: "Standard", MarketValuePerUnit: decimal.RequireFromString("7.005")},
	}

	blob, err := encodeHistory(in)
	require.NoError(t, err)
	out, err := decodeHistory(blob, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "12.345", out[0].MarketValuePerUnit.String())
	assert.Equal(t, "7.005", out[1].MarketValuePerUnit.String())
}

func TestDecodeHistory_Malformed(t *testing.T) {
	for _, blob := range []string{"{not json", `"just a string"`, `{"version": 99, "entries": []}`, `[{"species": 5}]`} {
		_, err := decodeHistory([]byte(blob), zap.NewNop())
		assert.Error(t, err, blob)
	}

	entries, err := decodeHistory([]byte("null"), zap.NewNop())
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecodeHistory_MissingID(t *testing.T) {
	entries, err := decodeHistory([]byte(`[{"species": "Trout", "quality_grade": "Standard"}]`), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
}
