// Package domain contains rate resolution inputs and the immutable
// earnings snapshot produced by the calculator.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// JobContext identifies the billing context of a submission. Client id
// is preferred for group lookup; customer+region is the fallback.
type JobContext struct {
	ClientID     *snowflake.ID
	CustomerName string
	RegionCode   string
}

// LineInput is one reported work quantity.
type LineInput struct {
	Code     string
	Quantity decimal.Decimal
	Unit     ratecarddomain.Unit
}

// RateTriple is the normalized three-role view of one line-item code.
type RateTriple struct {
	Code         string
	Description  string
	Unit         ratecarddomain.Unit
	CompanyRate  decimal.Decimal
	WorkerRate   decimal.Decimal
	InvestorRate decimal.Decimal
}

// ResolvedRates is the output of the resolver for one job context.
type ResolvedRates struct {
	GroupID snowflake.ID
	Rates   map[string]RateTriple
}

// LineResult is the per-line calculation detail kept in the snapshot.
type LineResult struct {
	Code           string          `json:"code"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	CompanyRate    decimal.Decimal `json:"company_rate"`
	WorkerRate     decimal.Decimal `json:"worker_rate"`
	InvestorRate   decimal.Decimal `json:"investor_rate"`
	CompanyAmount  decimal.Decimal `json:"company_amount"`
	WorkerAmount   decimal.Decimal `json:"worker_amount"`
	InvestorAmount decimal.Decimal `json:"investor_amount"`
}

// CalculationResult is the in-memory calculator output. Persisting it
// is a separate explicit step that also captures a FrozenContext.
type CalculationResult struct {
	Lines         []LineResult
	CompanyTotal  decimal.Decimal
	WorkerTotal   decimal.Decimal
	InvestorTotal decimal.Decimal
	Margin        decimal.Decimal
	MarginPercent decimal.Decimal
}

// FrozenContext is a point-in-time copy of the identifiers and exact
// rate values used in a calculation. It is stored as a JSON value, not
// as live foreign keys, so later catalog changes cannot rewrite
// history.
type FrozenContext struct {
	JobID        string                `json:"job_id"`
	ClientID     string                `json:"client_id,omitempty"`
	CustomerName string                `json:"customer_name"`
	RegionCode   string                `json:"region_code"`
	WorkerID     string                `json:"worker_id,omitempty"`
	WorkerName   string                `json:"worker_name,omitempty"`
	WorkerRole   string                `json:"worker_role,omitempty"`
	EquipmentID  string                `json:"equipment_id,omitempty"`
	InvestorID   string                `json:"investor_id,omitempty"`
	InvestorName string                `json:"investor_name,omitempty"`
	GroupID      string                `json:"rate_card_group_id"`
	Rates        map[string]FrozenRate `json:"rates"`
	CapturedAt   time.Time             `json:"captured_at"`
}

// FrozenRate is the exact rate triple applied to one code.
type FrozenRate struct {
	CompanyRate  decimal.Decimal `json:"company_rate"`
	WorkerRate   decimal.Decimal `json:"worker_rate"`
	InvestorRate decimal.Decimal `json:"investor_rate"`
}

// CalculatedTotal is the immutable persisted earnings snapshot. Rows
// are never updated or deleted; a correction inserts a new row that
// references the one it supersedes.
type CalculatedTotal struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	SubmissionRef  string          `gorm:"type:text;not null;index"`
	JobRef         string          `gorm:"type:text;not null;index"`
	JobCompletedAt time.Time       `gorm:"not null;index"`
	Context        datatypes.JSON  `gorm:"type:jsonb;not null"`
	Lines          datatypes.JSON  `gorm:"type:jsonb;not null"`
	CompanyTotal   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	WorkerTotal    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	InvestorTotal  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Margin         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	MarginPercent  decimal.Decimal `gorm:"type:numeric(7,2);not null"`
	SupersedesID   *snowflake.ID   `gorm:"index"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CalculatedTotal) TableName() string { return "calculated_totals" }
