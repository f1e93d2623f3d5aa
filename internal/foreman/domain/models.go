// Package domain contains the underground foreman day-rate and tiered
// footage pay model. Foreman pay is intentionally independent of the
// rate catalog: its parameters are fixed business constants.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Fixed pay parameters for the underground foreman role.
var (
	FullDayRate = decimal.NewFromInt(300)
	HalfDayRate = decimal.NewFromInt(150)

	// Conduit footage is tiered: the first 500 ft of a week pay Tier1,
	// everything beyond pays Tier2.
	Tier1LimitFt = decimal.NewFromInt(500)
	Tier1Rate    = decimal.RequireFromString("0.25")
	Tier2Rate    = decimal.RequireFromString("0.30")

	// Weekly volume bonus: flat amount at or above the threshold,
	// nothing below. Not prorated.
	BonusThresholdFt = decimal.NewFromInt(4000)
	BonusAmount      = decimal.NewFromInt(300)
)

// GroundType classifies the dig conditions. Informational for worker
// pay; it feeds the company-rate resolution path, not this formula.
type GroundType string

const (
	GroundDirt    GroundType = "dirt"
	GroundRock    GroundType = "rock"
	GroundAsphalt GroundType = "asphalt"
	GroundMixed   GroundType = "mixed"
)

// DailyEntry is one foreman day report. A day with neither flag set but
// nonzero footage is valid: conduit-only, no day pay.
type DailyEntry struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	WorkerID   snowflake.ID    `gorm:"not null;index:idx_entry_worker_date"`
	WorkerName string          `gorm:"type:text"`
	JobRef     string          `gorm:"type:text;index"`
	EntryDate  time.Time       `gorm:"type:date;not null;index:idx_entry_worker_date"`
	FullDay    bool            `gorm:"not null;default:false"`
	HalfDay    bool            `gorm:"not null;default:false"`
	FootageFt  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	GroundType GroundType      `gorm:"type:text"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DailyEntry) TableName() string { return "underground_daily_entries" }

// PayDetails is the weekly foreman pay breakdown. It is embedded in the
// payroll record, not persisted on its own.
type PayDetails struct {
	FullDays  int             `json:"full_days"`
	HalfDays  int             `json:"half_days"`
	FootageFt decimal.Decimal `json:"footage_ft"`

	DayPay     decimal.Decimal `json:"day_pay"`
	Tier1Feet  decimal.Decimal `json:"tier1_feet"`
	Tier2Feet  decimal.Decimal `json:"tier2_feet"`
	ConduitPay decimal.Decimal `json:"conduit_pay"`

	BonusEligible  bool            `json:"bonus_eligible"`
	BonusThreshold decimal.Decimal `json:"bonus_threshold"`
	BonusPay       decimal.Decimal `json:"bonus_pay"`

	TotalPay decimal.Decimal `json:"total_pay"`
}

// BonusProgress is a read-only projection of the weekly bonus state.
// PercentComplete is capped at 100 for display; Eligible uses the
// uncapped comparison and stays consistent with the pay formula.
type BonusProgress struct {
	WorkerID        snowflake.ID    `json:"worker_id"`
	WeekStart       time.Time       `json:"week_start"`
	FootageFt       decimal.Decimal `json:"footage_ft"`
	TargetFt        decimal.Decimal `json:"target_ft"`
	PercentComplete decimal.Decimal `json:"percent_complete"`
	Eligible        bool            `json:"eligible"`
	BonusAmount     decimal.Decimal `json:"bonus_amount"`
}
