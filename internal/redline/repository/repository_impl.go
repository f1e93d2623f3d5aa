package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	redlinedomain "github.com/groundworklabs/groundwork/internal/redline/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() redlinedomain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, redline *redlinedomain.Redline) error {
	return db.WithContext(ctx).Create(redline).Error
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*redlinedomain.Redline, error) {
	var redline redlinedomain.Redline
	err := db.WithContext(ctx).First(&redline, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &redline, nil
}

func (r *repository) ListByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) ([]redlinedomain.Redline, error) {
	var redlines []redlinedomain.Redline
	err := db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("version DESC").
		Find(&redlines).Error
	return redlines, err
}

func (r *repository) MaxVersion(ctx context.Context, db *gorm.DB, profileID snowflake.ID) (int, error) {
	var version int
	err := db.WithContext(ctx).Model(&redlinedomain.Redline{}).
		Where("profile_id = ?", profileID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error
	return version, err
}

func (r *repository) CountOpenByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID, excludeID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&redlinedomain.Redline{}).
		Where("profile_id = ? AND id <> ? AND status IN ?", profileID, excludeID,
			[]redlinedomain.Status{redlinedomain.StatusPendingReview, redlinedomain.StatusApproved}).
		Count(&count).Error
	return count, err
}

func (r *repository) TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to redlinedomain.Status, fields map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := db.WithContext(ctx).Model(&redlinedomain.Redline{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) UpdateDraft(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) (int64, error) {
	result := db.WithContext(ctx).Model(&redlinedomain.Redline{}).
		Where("id = ? AND status = ?", id, redlinedomain.StatusDraft).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *repository) InsertReview(ctx context.Context, db *gorm.DB, review *redlinedomain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repository) ListReviews(ctx context.Context, db *gorm.DB, redlineID snowflake.ID) ([]redlinedomain.Review, error) {
	var reviews []redlinedomain.Review
	err := db.WithContext(ctx).
		Where("redline_id = ?", redlineID).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}
