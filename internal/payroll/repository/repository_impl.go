package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	payrolldomain "github.com/groundworklabs/groundwork/internal/payroll/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) payrolldomain.Repository {
	return &repository{db: db}
}

func (r *repository) FindPeriodByWeekStart(ctx context.Context, weekStart time.Time) (*payrolldomain.PayPeriod, error) {
	var p payrolldomain.PayPeriod
	err := r.db.WithContext(ctx).Where("week_start = ?", weekStart).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) InsertPeriod(ctx context.Context, p *payrolldomain.PayPeriod) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// UpsertPayrollRecord replaces the computed columns for the natural key
// while keeping any existing status attribution, so recomputation is
// idempotent and safe to retry.
func (r *repository) UpsertPayrollRecord(ctx context.Context, record *payrolldomain.PayrollRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "period_id"}, {Name: "worker_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"worker_name", "worker_role", "total_amount", "job_count", "footage_ft", "breakdown", "updated_at",
		}),
	}).Create(record).Error
}

func (r *repository) UpsertInvestorReturn(ctx context.Context, ret *payrolldomain.InvestorReturn) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "period_id"}, {Name: "investor_id"}, {Name: "equipment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"investor_name", "total_amount", "job_count", "breakdown", "updated_at",
		}),
	}).Create(ret).Error
}

func (r *repository) ListPayrollRecords(ctx context.Context, periodID snowflake.ID) ([]payrolldomain.PayrollRecord, error) {
	var records []payrolldomain.PayrollRecord
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("worker_name ASC").
		Find(&records).Error
	return records, err
}

func (r *repository) ListInvestorReturns(ctx context.Context, periodID snowflake.ID) ([]payrolldomain.InvestorReturn, error) {
	var returns []payrolldomain.InvestorReturn
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("investor_name ASC").
		Find(&returns).Error
	return returns, err
}

func (r *repository) FindPayrollRecord(ctx context.Context, id snowflake.ID) (*payrolldomain.PayrollRecord, error) {
	var record payrolldomain.PayrollRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindInvestorReturn(ctx context.Context, id snowflake.ID) (*payrolldomain.InvestorReturn, error) {
	var ret payrolldomain.InvestorReturn
	err := r.db.WithContext(ctx).First(&ret, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

func (r *repository) TransitionRecordStatus(ctx context.Context, id snowflake.ID, from, to payrolldomain.Status, fields map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).Model(&payrolldomain.PayrollRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) TransitionReturnStatus(ctx context.Context, id snowflake.ID, from, to payrolldomain.Status, fields map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := r.db.WithContext(ctx).Model(&payrolldomain.InvestorReturn{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}
