package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aquagrade/store"
)

// Slot is one named blob row, the sqlite stand-in for a browser storage key.
type Slot struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Slot) TableName() string { return "slots" }

// SlotStore reads and writes a single Slot row.
type SlotStore struct {
	db   *gorm.DB
	name string
}

func NewSlotStore(db *gorm.DB, name string) *SlotStore {
	return &SlotStore{db: db, name: name}
}

var _ store.Slot = (*SlotStore)(nil)

func (s *SlotStore) Read(ctx context.Context) ([]byte, error) {
	var row Slot
	err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", s.name, err)
	}
	return []byte(row.Value), nil
}

func (s *SlotStore) Write(ctx context.Context, data []byte) error {
	row := Slot{Name: s.name, Value: string(data)}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("write slot %q: %w", s.name, err)
	}
	return nil
}
