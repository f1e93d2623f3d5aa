package repository

import (
	"context"
	"time"

	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auditdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *auditdomain.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.Entry, error) {
	q := r.db.WithContext(ctx).Model(&auditdomain.Entry{})
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []auditdomain.Entry
	err := q.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *repository) ListRange(ctx context.Context, start, end time.Time, actions []auditdomain.Action) ([]auditdomain.Entry, error) {
	q := r.db.WithContext(ctx).Model(&auditdomain.Entry{}).
		Where("created_at >= ? AND created_at < ?", start, end)
	if len(actions) > 0 {
		q = q.Where("action IN ?", actions)
	}

	var entries []auditdomain.Entry
	err := q.Order("created_at ASC").Find(&entries).Error
	return entries, err
}
