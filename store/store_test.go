package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
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

var base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func entry(i int) models.HistoryEntry {
	return models.HistoryEntry{
		ID:                 fmt.Sprintf("e-%03d", i),
		Timestamp:          base.Add(time.Duration(i) * time.Minute),
		Species:            "Sea Bass",
		QualityGrade:       models.GradeStandard,
		MarketValuePerUnit: decimal.NewFromInt(int64(i)),
		FeedbackStatus:     models.FeedbackUnreviewed,
	}
}

func ids(entries []models.HistoryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

// failingSlot fails every write and counts reads.
type failingSlot struct {
	MemorySlot
	reads int
}

func (f *failingSlot) Write(context.Context, []byte) error { return errors.New("disk full") }

func (f *failingSlot) Read(ctx context.Context) ([]byte, error) {
	f.reads++
	return f.MemorySlot.Read(ctx)
}

func TestHistory_CapKeepsNewest(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(NewMemorySlot())

	for i := 1; i <= 73; i++ {
		require.NoError(t, h.Append(ctx, entry(i)))
		assert.Equal(t, entry(i).ID, h.All()[0].ID, "head must be the latest append")
	}

	all := h.All()
	require.Len(t, all, DefaultCapacity)
	for i, e := range all {
		assert.Equal(t, entry(73-i).ID, e.ID)
	}
}

func TestHistory_CustomCapacity(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(NewMemorySlot(), WithCapacity(3))
	for i := 1; i <= 5; i++ {
		require.NoError(t, h.Append(ctx, entry(i)))
	}
	assert.Equal(t, []string{"e-005", "e-004", "e-003"}, ids(h.All()))
}

func TestHistory_AppendValidation(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(NewMemorySlot())

	err := h.Append(ctx, models.HistoryEntry{Species: "Trout"})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	bad := entry(1)
	bad.FeedbackStatus = "maybe"
	assert.ErrorIs(t, h.Append(ctx, bad), ErrInvalidEntry)

	require.NoError(t, h.Append(ctx, entry(1)))
	assert.ErrorIs(t, h.Append(ctx, entry(1)), ErrDuplicateID)
	assert.Len(t, h.All(), 1)

	noStatus := entry(2)
	noStatus.FeedbackStatus = ""
	require.NoError(t, h.Append(ctx, noStatus))
	got, ok := h.Get("e-002")
	require.True(t, ok)
	assert.Equal(t, models.FeedbackUnreviewed, got.FeedbackStatus)
}

func TestHistory_LoadObservesAppend(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()

	h := NewHistory(slot)
	require.NoError(t, h.Append(ctx, entry(1)))
	require.NoError(t, h.Append(ctx, entry(2)))

	loaded, err := h.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e-002", "e-001"}, ids(loaded))

	// A second store over the same slot sees the same history
	other := NewHistory(slot)
	loaded, err = other.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.True(t, loaded[0].Timestamp.Equal(entry(2).Timestamp))
	assert.True(t, loaded[0].MarketValuePerUnit.Equal(decimal.NewFromInt(2)))
}

func TestHistory_LoadEmptySlot(t *testing.T) {
	loaded, err := NewHistory(NewMemorySlot()).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestHistory_LoadCorruptSlot(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewHistory(NewMemorySlotWith("{not json"), WithLogger(zap.New(core)))

	var loaded []models.HistoryEntry
	var err error
	assert.NotPanics(t, func() { loaded, err = h.Load(context.Background()) })

	assert.ErrorIs(t, err, ErrCorruptHistory)
	assert.Empty(t, loaded)
	assert.Empty(t, h.All())
	assert.Equal(t, 1, logs.FilterMessage("persisted history is corrupt, starting empty").Len())

	// The store stays usable afterwards
	require.NoError(t, h.Append(context.Background(), entry(1)))
	loaded, err = h.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestHistory_LoadSanitizes(t *testing.T) {
	legacy := `[
		{"id": 1, "species": "Trout", "quality_grade": "Standard"},
		{"id": 2, "species": "Turbot", "quality_grade": "Premium"},
		{"id": 1, "species": "Shrimp", "quality_grade": "Standard"},
		{"id": 3, "species": "Sea Bass", "quality_grade": "Standard"}
	]`
	h := NewHistory(NewMemorySlotWith(legacy), WithCapacity(2))

	loaded, err := h.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(loaded))
	assert.Equal(t, "Trout", loaded[0].Species)
}

func TestHistory_UpdateFeedback(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	h := NewHistory(slot)
	require.NoError(t, h.Append(ctx, entry(1)))
	require.NoError(t, h.Append(ctx, entry(2)))

	require.NoError(t, h.UpdateFeedback(ctx, "e-001", true))
	once := h.All()
	onceBlob, err := slot.Read(ctx)
	require.NoError(t, err)

	require.NoError(t, h.UpdateFeedback(ctx, "e-001", true))
	assert.Equal(t, once, h.All())
	twiceBlob, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, onceBlob, twiceBlob)

	got, _ := h.Get("e-001")
	assert.Equal(t, models.FeedbackCorrect, got.FeedbackStatus)
	got, _ = h.Get("e-002")
	assert.Equal(t, models.FeedbackUnreviewed, got.FeedbackStatus)

	assert.ErrorIs(t, h.UpdateFeedback(ctx, "e-001", false), ErrFeedbackLocked)
	got, _ = h.Get("e-001")
	assert.Equal(t, models.FeedbackCorrect, got.FeedbackStatus)

	require.NoError(t, h.UpdateFeedback(ctx, "e-002", false))
	require.NoError(t, h.UpdateFeedback(ctx, "missing", true))

	reloaded, err := NewHistory(slot).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackIncorrect, reloaded[0].FeedbackStatus)
	assert.Equal(t, models.FeedbackCorrect, reloaded[1].FeedbackStatus)
}

func TestHistory_PersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{}
	h := NewHistory(slot)

	err := h.Append(ctx, entry(1))
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, []string{"e-001"}, ids(h.All()))

	loaded, err := h.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e-001"}, ids(loaded))
	assert.Zero(t, slot.reads, "dirty store must not read the stale slot")
}

func TestHistory_AllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(NewMemorySlot())
	require.NoError(t, h.Append(ctx, entry(1)))

	all := h.All()
	all[0].Species = "Changed"

	got, _ := h.Get("e-001")
	assert.Equal(t, "Sea Bass", got.Species)
}

func TestFileSlot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	slot := NewFileSlot(path)

	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	h := NewHistory(slot)
	require.NoError(t, h.Append(ctx, entry(1)))
	require.NoError(t, h.Append(ctx, entry(2)))

	loaded, err := NewHistory(NewFileSlot(path)).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e-002", "e-001"}, ids(loaded))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".history.json.*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must not linger")
}

func TestHistory_ValuesSurviveRestart(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	h := NewHistory(slot)

	for i, v := range []string{"12.345", "7.005"} {
		e := entry(i)
		e.MarketValuePerUnit = decimal.RequireFromString(v)
		require.NoError(t, h.Append(ctx, e))
	}
	before := decimal.Zero
	for _, e := range h.All() {
		before = before.Add(e.MarketValuePerUnit)
	}

	reloaded, err := NewHistory(slot).Load(ctx)
	require.NoError(t, err)
	after := decimal.Zero
	for _, e := range reloaded {
		after = after.Add(e.MarketValuePerUnit)
	}

	assert.Equal(t, "19.35", before.String())
	assert.True(t, before.Equal(after), "before=%s after=%s", before, after)
}
