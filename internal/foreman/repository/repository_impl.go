package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) foremandomain.Repository {
	return &repository{db: db}
}

func (r *repository) InsertEntry(ctx context.Context, entry *foremandomain.DailyEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntriesForWorker(ctx context.Context, workerID snowflake.ID, start, end time.Time) ([]foremandomain.DailyEntry, error) {
	var entries []foremandomain.DailyEntry
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND entry_date >= ? AND entry_date < ?", workerID, start, end).
		Order("entry_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) ListEntriesInRange(ctx context.Context, start, end time.Time) ([]foremandomain.DailyEntry, error) {
	var entries []foremandomain.DailyEntry
	err := r.db.WithContext(ctx).
		Where("entry_date >= ? AND entry_date < ?", start, end).
		Order("worker_id ASC, entry_date ASC").
		Find(&entries).Error
	return entries, err
}
