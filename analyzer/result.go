package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Text is a display value the analysis API may send as a JSON string or number.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string { return string(t) }

// Result is the response body of POST /analyze.
type Result struct {
	Species  SpeciesResult  `json:"species"`
	Quality  QualityResult  `json:"quality"`
	Size     SizeResult     `json:"size"`
	Market   MarketResult   `json:"market"`
	Trends   TrendsResult   `json:"trends"`
	Handling HandlingResult `json:"handling"`
}

type SpeciesResult struct {
	Name       Text `json:"name"`
	Confidence Text `json:"confidence"`
}

type QualityResult struct {
	Grade         Text `json:"grade"`
	Score         Text `json:"score"`
	EyeClarity    Text `json:"eyeClarity"`
	GillColor     Text `json:"gillColor"`
	SkinCondition Text `json:"skinCondition"`
}

type SizeResult struct {
	Weight   Text `json:"weight"`
	Length   Text `json:"length"`
	Category Text `json:"category"`
}

type MarketResult struct {
	TotalValue    Text `json:"totalValue"`
	BasePrice     Text `json:"basePrice"`
	Premium       Text `json:"premium"`
	PricePerPound Text `json:"pricePerPound"`
}

type TrendsResult struct {
	CurrentTrend   Text `json:"currentTrend"`
	PriceChange    Text `json:"priceChange"`
	DemandLevel    Text `json:"demandLevel"`
	SeasonalFactor Text `json:"seasonalFactor"`
}

type HandlingResult struct {
	Recommendations []Text `json:"recommendations"`
	StorageTemp     Text   `json:"storageTemp"`
	ShelfLife       Text   `json:"shelfLife"`
}

// MarketPrice is one row of GET /market-data.
type MarketPrice struct {
	Species            string  `json:"species"`
	BasePrice          float64 `json:"base_price"`
	SeasonalMultiplier float64 `json:"seasonal_multiplier"`
	RegionalMultiplier float64 `json:"regional_multiplier"`
}
