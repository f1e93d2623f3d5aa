// Package domain contains weekly pay period aggregates for workers and
// equipment investors.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PayPeriod is one Monday-keyed week. Pay date is offset from period
// end (one month by default).
type PayPeriod struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	WeekStart time.Time    `gorm:"type:date;not null;uniqueIndex"`
	WeekEnd   time.Time    `gorm:"type:date;not null"`
	PayDate   time.Time    `gorm:"type:date;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PayPeriod) TableName() string { return "pay_periods" }

// Status is the linear payment lifecycle. No reverse transitions;
// corrections happen out of band.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusPaid     Status = "paid"
)

// PayrollRecord is one worker's aggregate for one period, upserted by
// (period, worker). Recomputation replaces the computed fields for
// that key; it never stacks duplicates.
type PayrollRecord struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	PeriodID   snowflake.ID `gorm:"not null;uniqueIndex:idx_payroll_period_worker"`
	WorkerID   snowflake.ID `gorm:"not null;uniqueIndex:idx_payroll_period_worker"`
	WorkerName string       `gorm:"type:text"`
	WorkerRole string       `gorm:"type:text"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	JobCount    int             `gorm:"not null;default:0"`
	FootageFt   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Breakdown   datatypes.JSON  `gorm:"type:jsonb"`

	Status         Status        `gorm:"type:text;not null;default:'pending'"`
	ApprovedBy     *snowflake.ID `gorm:""`
	ApprovedByName *string       `gorm:"type:text"`
	ApprovedAt     *time.Time    `gorm:""`
	PaidBy         *snowflake.ID `gorm:""`
	PaidByName     *string       `gorm:"type:text"`
	PaidAt         *time.Time    `gorm:""`
	PaymentRef     *string       `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PayrollRecord) TableName() string { return "payroll_records" }

// InvestorReturn is the analogous aggregate for an equipment owner,
// keyed by (period, investor, equipment).
type InvestorReturn struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	PeriodID     snowflake.ID `gorm:"not null;uniqueIndex:idx_investor_period_key"`
	InvestorID   snowflake.ID `gorm:"not null;uniqueIndex:idx_investor_period_key"`
	InvestorName string       `gorm:"type:text"`
	EquipmentID  snowflake.ID `gorm:"not null;uniqueIndex:idx_investor_period_key"`

	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	JobCount    int             `gorm:"not null;default:0"`
	Breakdown   datatypes.JSON  `gorm:"type:jsonb"`

	Status         Status        `gorm:"type:text;not null;default:'pending'"`
	ApprovedBy     *snowflake.ID `gorm:""`
	ApprovedByName *string       `gorm:"type:text"`
	ApprovedAt     *time.Time    `gorm:""`
	PaidBy         *snowflake.ID `gorm:""`
	PaidByName     *string       `gorm:"type:text"`
	PaidAt         *time.Time    `gorm:""`
	PaymentRef     *string       `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InvestorReturn) TableName() string { return "investor_returns" }

// Breakdown is the JSON detail stored on a payroll record.
type Breakdown struct {
	ByJob      []JobBreakdown            `json:"by_job"`
	ByWorkType []WorkTypeBreakdown       `json:"by_work_type"`
	Foreman    *foremandomain.PayDetails `json:"foreman,omitempty"`
}

type JobBreakdown struct {
	JobRef string          `json:"job_ref"`
	Amount decimal.Decimal `json:"amount"`
}

type WorkTypeBreakdown struct {
	Code     string          `json:"code"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// WeeklyPayrollSummary is the aggregate view returned to callers.
type WeeklyPayrollSummary struct {
	Period          PayPeriod
	Records         []PayrollRecord
	InvestorReturns []InvestorReturn
	TotalPayroll    decimal.Decimal
	TotalInvestor   decimal.Decimal
}
