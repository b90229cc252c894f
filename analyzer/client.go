package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options are the per-request switches of POST /analyze.
type Options struct {
	Debug           bool
	PersistRemotely bool
}

type analyzeRequest struct {
	Image    string `json:"image"`
	Debug    bool   `json:"debug"`
	SaveToDB bool   `json:"save_to_db"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// APIError is a non-2xx answer from the analysis service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("analysis API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis API error: status %d: %s", e.StatusCode, e.Message)
}

var ErrEmptyImage = errors.New("image is empty")

// Client talks to the fish analysis service. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Analyze uploads one image and returns the decoded analysis.
func (c *Client) Analyze(ctx context.Context, image []byte, opts Options) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	// The service expects a data URL and splits on the first comma
	dataURL := "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
	body, err := json.Marshal(analyzeRequest{
		Image:    dataURL,
		Debug:    opts.Debug,
		SaveToDB: opts.PersistRemotely,
	})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	var res Result
	if err := c.do(ctx, http.MethodPost, "/analyze", bytes.NewReader(body), &res); err != nil {
		return nil, err
	}
	c.logger.Debug("analysis completed",
		zap.String("species", res.Species.Name.String()),
		zap.String("grade", res.Quality.Grade.String()),
		zap.Duration("latency", time.Since(started)))
	return &res, nil
}

// Species lists the species the model recognizes.
func (c *Client) Species(ctx context.Context) ([]string, error) {
	var out struct {
		Species []string `json:"species"`
	}
	if err := c.do(ctx, http.MethodGet, "/species", nil, &out); err != nil {
		return nil, err
	}
	return out.Species, nil
}

// MarketData returns the service's reference prices.
func (c *Client) MarketData(ctx context.Context) ([]MarketPrice, error) {
	var out struct {
		MarketData []MarketPrice `json:"market_data"`
	}
	if err := c.do(ctx, http.MethodGet, "/market-data", nil, &out); err != nil {
		return nil, err
	}
	return out.MarketData, nil
}

// Health returns the service's health document as-is.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("analysis API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
			if eb.Details != "" {
				apiErr.Message += ": " + eb.Details
			}
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		c.logger.Warn("analysis API returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
