package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagrade/models"
	"aquagrade/store"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", "aquagrade.db")
}

func TestSlotStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(openTestDB(t), nil)
	require.NoError(t, err)
	defer Close(db)

	slot := NewSlotStore(db, "aquagrade-history")

	_, err = slot.Read(ctx)
	assert.ErrorIs(t, err, store.ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[1]`)))
	require.NoError(t, slot.Write(ctx, []byte(`[1,2]`)))

	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	var count int64
	require.NoError(t, db.Model(&Slot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Slots are independent by name
	_, err = NewSlotStore(db, "other").Read(ctx)
	assert.ErrorIs(t, err, store.ErrSlotEmpty)
}

func TestSlotStore_BacksHistory(t *testing.T) {
	ctx := context.Background()
	path := openTestDB(t)

	db, err := Open(path, nil)
	require.NoError(t, err)

	h := store.NewHistory(NewSlotStore(db, "aquagrade-history"))
	require.NoError(t, h.Append(ctx, models.HistoryEntry{
		ID:                 "a",
		Timestamp:          time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Species:            "Turbot",
		QualityGrade:       models.GradePremium,
		MarketValuePerUnit: decimal.RequireFromString("42.00"),
	}))
	require.NoError(t, h.UpdateFeedback(ctx, "a", true))
	require.NoError(t, Close(db))

	// Reopen to prove the history survives a restart
	db, err = Open(path, nil)
	require.NoError(t, err)
	defer Close(db)

	loaded, err := store.NewHistory(NewSlotStore(db, "aquagrade-history")).Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Turbot", loaded[0].Species)
	assert.Equal(t, models.FeedbackCorrect, loaded[0].FeedbackStatus)
	assert.Equal(t, "42", loaded[0].MarketValuePerUnit.String())
}

func TestSlotStore_CorruptRow(t *testing.T) {
	ctx := context.Background()
	db, err := Open(openTestDB(t), nil)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Create(&Slot{Name: "aquagrade-history", Value: "{not json"}).Error)

	loaded, err := store.NewHistory(NewSlotStore(db, "aquagrade-history")).Load(ctx)
	assert.ErrorIs(t, err, store.ErrCorruptHistory)
	assert.Empty(t, loaded)
}
