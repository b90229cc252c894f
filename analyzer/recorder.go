package analyzer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"aquagrade/models"
	"aquagrade/store"
)

// API is the subset of the analysis service the rest of aquagrade uses.
// *Client implements it.
type API interface {
	Analyze(ctx context.Context, image []byte, opts Options) (*Result, error)
	Species(ctx context.Context) ([]string, error)
	MarketData(ctx context.Context) ([]MarketPrice, error)
	Health(ctx context.Context) (map[string]any, error)
}

var _ API = (*Client)(nil)

// Recorder runs one image through the analysis API and appends the
// normalized entry to the history.
type Recorder struct {
	api        API
	normalizer *Normalizer
	history    store.Store
	opts       Options
	logger     *zap.Logger
}

func NewRecorder(api API, history store.Store, opts Options, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		api:        api,
		normalizer: NewNormalizer(logger),
		history:    history,
		opts:       opts,
		logger:     logger,
	}
}

// Record returns the raw result along with the stored entry. The history is
// untouched when the API call or normalization fails, or when ctx is done
// before the append. A store.ErrPersist error still returns the entry: it is
// recorded in memory but not yet in the slot.
func (r *Recorder) Record(ctx context.Context, image []byte, imageRef string) (*Result, models.HistoryEntry, error) {
	res, err := r.api.Analyze(ctx, image, r.opts)
	if err != nil {
		return nil, models.HistoryEntry{}, err
	}

	entry, err := r.normalizer.Normalize(res, imageRef)
	if err != nil {
		return res, models.HistoryEntry{}, err
	}

	// The caller gave up while the API was answering
	if err := ctx.Err(); err != nil {
		r.logger.Info("analysis discarded, request canceled", zap.String("species", entry.Species))
		return res, models.HistoryEntry{}, err
	}

	// Past this point the append runs to completion even if the caller leaves
	if err := r.history.Append(context.WithoutCancel(ctx), entry); err != nil {
		if errors.Is(err, store.ErrPersist) {
			r.logger.Warn("analysis recorded in memory only", zap.String("id", entry.ID), zap.Error(err))
			return res, entry, err
		}
		return res, models.HistoryEntry{}, fmt.Errorf("failed to record analysis: %w", err)
	}

	r.logger.Info("analysis recorded",
		zap.String("id", entry.ID),
		zap.String("species", entry.Species),
		zap.String("grade", entry.QualityGrade))
	return res, entry, nil
}
