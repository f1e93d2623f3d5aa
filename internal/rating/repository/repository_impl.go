package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ratingdomain.Repository {
	return &repository{db: db}
}

func (r *repository) InsertCalculatedTotal(ctx context.Context, total *ratingdomain.CalculatedTotal) error {
	return r.db.WithContext(ctx).Create(total).Error
}

func (r *repository) FindCalculatedTotal(ctx context.Context, id snowflake.ID) (*ratingdomain.CalculatedTotal, error) {
	var total ratingdomain.CalculatedTotal
	err := r.db.WithContext(ctx).First(&total, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &total, nil
}

func (r *repository) ListBySubmission(ctx context.Context, submissionRef string) ([]ratingdomain.CalculatedTotal, error) {
	var totals []ratingdomain.CalculatedTotal
	err := r.db.WithContext(ctx).
		Where("submission_ref = ?", submissionRef).
		Order("created_at ASC").
		Find(&totals).Error
	return totals, err
}

func (r *repository) ListByJobRefs(ctx context.Context, jobRefs []string) ([]ratingdomain.CalculatedTotal, error) {
	if len(jobRefs) == 0 {
		return nil, nil
	}
	var totals []ratingdomain.CalculatedTotal
	err := r.db.WithContext(ctx).
		Where("job_ref IN ?", jobRefs).
		Order("created_at ASC").
		Find(&totals).Error
	return totals, err
}

// ListCompletedInRange skips superseded snapshots so a corrected
// calculation is only counted once.
func (r *repository) ListCompletedInRange(ctx context.Context, start, end time.Time) ([]ratingdomain.CalculatedTotal, error) {
	var totals []ratingdomain.CalculatedTotal
	err := r.db.WithContext(ctx).
		Where("job_completed_at >= ? AND job_completed_at < ?", start, end).
		Where("id NOT IN (?)", r.db.Model(&ratingdomain.CalculatedTotal{}).
			Select("supersedes_id").
			Where("supersedes_id IS NOT NULL")).
		Order("job_completed_at ASC").
		Find(&totals).Error
	return totals, err
}
