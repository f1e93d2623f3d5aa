// Package domain contains the append-only audit trail model.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Action names follow "<entity>.<verb>" (rates.imported, redline.approved).
type Action string

const (
	ActionRateItemUpdated  Action = "rate_item.updated"
	ActionRatesImported    Action = "rates.imported"
	ActionProfileDuplicate Action = "rate_profile.duplicated"
	ActionGroupDeactivated Action = "rate_group.deactivated"

	ActionRedlineCreated   Action = "redline.created"
	ActionRedlineSubmitted Action = "redline.submitted"
	ActionRedlineApproved  Action = "redline.approved"
	ActionRedlineRejected  Action = "redline.rejected"
	ActionRedlineReturned  Action = "redline.returned"
	ActionRedlineApplied   Action = "redline.applied"

	ActionCalculationSaved Action = "calculation.saved"

	ActionPayrollAggregated Action = "payroll.aggregated"
	ActionPayrollApproved   Action = "payroll.approved"
	ActionPayrollPaid       Action = "payroll.paid"
)

// Entry is one immutable audit record. Before/After hold the changed
// fields for mutations; Metadata carries free-form context.
type Entry struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	Action     Action            `gorm:"type:text;not null;index"`
	EntityType string            `gorm:"type:text;not null;index:idx_audit_entity"`
	EntityID   string            `gorm:"type:text;index:idx_audit_entity"`
	ActorID    *snowflake.ID     `gorm:"index"`
	ActorName  string            `gorm:"type:text"`
	ActorRole  string            `gorm:"type:text"`
	Before     datatypes.JSONMap `gorm:"type:jsonb"`
	After      datatypes.JSONMap `gorm:"type:jsonb"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (Entry) TableName() string { return "audit_logs" }

// ExportFormat selects the audit export encoding.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
)

type ExportRequest struct {
	StartDate time.Time
	EndDate   time.Time
	Format    ExportFormat
	Actions   []Action
}

type ExportResult struct {
	Data     []byte
	Checksum string
	Format   ExportFormat
	Count    int
}

type ListFilter struct {
	EntityType string
	EntityID   string
	Limit      int
}

type Service interface {
	// Log writes an entry. Failures are recorded but never propagated;
	// the audit trail must not break the business mutation it describes.
	Log(ctx context.Context, entry Entry)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	ListRange(ctx context.Context, start, end time.Time, actions []Action) ([]Entry, error)
}
