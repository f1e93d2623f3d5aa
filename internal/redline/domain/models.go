// Package domain contains the redline change-proposal workflow: a
// versioned, reviewable diff against one rate card profile.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the redline workflow state. applied and rejected are
// terminal; draft is the only editable state.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusApplied       Status = "applied"
)

// Terminal reports whether no further transitions are accepted.
func (s Status) Terminal() bool {
	return s == StatusApplied || s == StatusRejected
}

// ReviewAction is one reviewer verb. comment never moves status.
type ReviewAction string

const (
	ActionApprove        ReviewAction = "approve"
	ActionReject         ReviewAction = "reject"
	ActionRequestChanges ReviewAction = "request_changes"
	ActionComment        ReviewAction = "comment"
)

// Fields a change may target on a rate card item.
const (
	FieldCompanyRate  = "company_rate"
	FieldWorkerRate   = "worker_rate"
	FieldInvestorRate = "investor_rate"
	FieldDescription  = "description"
	FieldUnit         = "unit"
)

// Change is one proposed edit. Values are held as strings; rate fields
// parse as decimals at apply time.
type Change struct {
	Code  string `json:"code"`
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Redline is a proposal of changes against one profile. Version
// numbers are strictly increasing per profile.
type Redline struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	GroupID   snowflake.ID   `gorm:"not null;index"`
	ProfileID snowflake.ID   `gorm:"not null;index:idx_redline_profile_version"`
	Version   int            `gorm:"not null;index:idx_redline_profile_version"`
	Label     string         `gorm:"type:text;not null"`
	Summary   string         `gorm:"type:text"`
	Changes   datatypes.JSON `gorm:"type:jsonb;not null"`
	Status    Status         `gorm:"type:text;not null;default:'draft';index"`

	CreatedBy     snowflake.ID  `gorm:"not null"`
	CreatedByName string        `gorm:"type:text"`
	SubmittedBy   *snowflake.ID `gorm:""`
	SubmittedAt   *time.Time    `gorm:""`
	ReviewedBy    *snowflake.ID `gorm:""`
	ReviewedAt    *time.Time    `gorm:""`
	AppliedBy     *snowflake.ID `gorm:""`
	AppliedAt     *time.Time    `gorm:""`

	ExternalRef string    `gorm:"type:text"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Redline) TableName() string { return "rate_card_redlines" }

// Review is an append-only review event. Immutable once created.
type Review struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	RedlineID    snowflake.ID `gorm:"not null;index"`
	ReviewerID   snowflake.ID `gorm:"not null"`
	ReviewerName string       `gorm:"type:text"`
	Action       ReviewAction `gorm:"type:text;not null"`
	Notes        string       `gorm:"type:text"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Review) TableName() string { return "redline_reviews" }
