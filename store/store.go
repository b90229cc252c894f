package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"aquagrade/models"
)

// DefaultCapacity is how many entries the history keeps.
const DefaultCapacity = 50

var (
	ErrInvalidEntry   = errors.New("invalid history entry")
	ErrDuplicateID    = errors.New("history entry id already exists")
	ErrFeedbackLocked = errors.New("feedback already recorded with a different verdict")
	ErrCorruptHistory = errors.New("persisted history is corrupt")
	ErrPersist        = errors.New("history not persisted")
)

// Store is the newest-first analysis history.
type Store interface {
	Load(ctx context.Context) ([]models.HistoryEntry, error)
	Append(ctx context.Context, entry models.HistoryEntry) error
	UpdateFeedback(ctx context.Context, id string, isCorrect bool) error
	All() []models.HistoryEntry
	Get(id string) (models.HistoryEntry, bool)
}

// History is a Store kept in memory and mirrored to a Slot after every
// change. Memory is authoritative: when a write fails the store stays dirty
// and Load serves memory instead of the stale slot. Concurrent writers in
// other processes are last-writer-wins.
type History struct {
	mu       sync.Mutex
	slot     Slot
	capacity int
	logger   *zap.Logger
	entries  []models.HistoryEntry
	dirty    bool
}

type Option func(*History)

func WithCapacity(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.capacity = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHistory(slot Slot, opts ...Option) *History {
	h := &History{
		slot:     slot,
		capacity: DefaultCapacity,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ Store = (*History)(nil)

// Load replaces memory with the persisted history. A corrupt blob yields an
// empty history and an ErrCorruptHistory the caller may treat as a warning.
func (h *History) Load(ctx context.Context) ([]models.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dirty {
		h.logger.Debug("history has unpersisted changes, serving memory")
		return clone(h.entries), nil
	}

	data, err := h.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		h.entries = nil
		return clone(h.entries), nil
	}
	if err != nil {
		h.logger.Warn("history storage unavailable, keeping memory", zap.Error(err))
		return clone(h.entries), fmt.Errorf("%w: %v", ErrPersist, err)
	}

	entries, err := decodeHistory(data, h.logger)
	if err != nil {
		h.logger.Warn("persisted history is corrupt, starting empty", zap.Error(err))
		h.entries = nil
		return clone(h.entries), fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}

	h.entries = h.sanitize(entries)
	return clone(h.entries), nil
}

// Append puts entry at the head and evicts the oldest past capacity.
func (h *History) Append(ctx context.Context, entry models.HistoryEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	if entry.FeedbackStatus == "" {
		entry.FeedbackStatus = models.FeedbackUnreviewed
	}
	if _, ok := models.ParseFeedbackStatus(string(entry.FeedbackStatus)); !ok {
		return fmt.Errorf("%w: unknown feedback status %q", ErrInvalidEntry, entry.FeedbackStatus)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.indexOf(entry.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, entry.ID)
	}

	next := make([]models.HistoryEntry, 0, min(len(h.entries)+1, h.capacity))
	next = append(next, entry)
	for _, e := range h.entries {
		if len(next) == h.capacity {
			h.logger.Debug("history full, evicting oldest entry", zap.String("id", e.ID))
			continue
		}
		next = append(next, e)
	}
	h.entries = next

	return h.persist(ctx)
}

// UpdateFeedback records a verdict. Unknown ids and repeated verdicts are
// no-ops; changing an existing verdict is refused.
func (h *History) UpdateFeedback(ctx context.Context, id string, isCorrect bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.indexOf(id)
	if i < 0 {
		h.logger.Debug("feedback for unknown entry ignored", zap.String("id", id))
		return nil
	}

	next := models.FeedbackFor(isCorrect)
	cur := h.entries[i].FeedbackStatus
	if cur == next {
		return nil
	}
	if !cur.CanTransition(next) {
		return fmt.Errorf("%w: %s is %s", ErrFeedbackLocked, id, cur)
	}

	h.entries[i].FeedbackStatus = next
	return h.persist(ctx)
}

func (h *History) All() []models.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return clone(h.entries)
}

func (h *History) Get(id string) (models.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i := h.indexOf(id); i >= 0 {
		return h.entries[i], true
	}
	return models.HistoryEntry{}, false
}

func (h *History) persist(ctx context.Context) error {
	data, err := encodeHistory(h.entries)
	if err == nil {
		err = h.slot.Write(ctx, data)
	}
	if err != nil {
		h.dirty = true
		h.logger.Warn("failed to persist history, keeping it in memory", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	h.dirty = false
	return nil
}

func (h *History) indexOf(id string) int {
	for i := range h.entries {
		if h.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// sanitize enforces unique ids and the capacity on loaded data.
func (h *History) sanitize(entries []models.HistoryEntry) []models.HistoryEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]models.HistoryEntry, 0, min(len(entries), h.capacity))
	for _, e := range entries {
		if seen[e.ID] {
			h.logger.Warn("duplicate id in persisted history, dropping later entry", zap.String("id", e.ID))
			continue
		}
		seen[e.ID] = true
		if len(out) == h.capacity {
			continue
		}
		out = append(out, e)
	}
	if dropped := len(seen) - len(out); dropped > 0 {
		h.logger.Info("persisted history over capacity, trimmed",
			zap.Int("dropped", dropped), zap.Int("capacity", h.capacity))
	}
	return out
}

func clone(entries []models.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
