// Package domain contains the versioned rate catalog: groups, profiles
// and line-item rates.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PayeeRole identifies who a rate pays.
type PayeeRole string

const (
	RoleCompany  PayeeRole = "company"
	RoleWorker   PayeeRole = "worker"
	RoleInvestor PayeeRole = "investor"
)

// ProfileType describes how a profile's items carry rates. A blended
// profile carries all three role rates per item; a role-typed profile
// carries a single meaningful rate column for its role.
type ProfileType string

const (
	ProfileTypeBlended  ProfileType = "blended"
	ProfileTypeCompany  ProfileType = "company"
	ProfileTypeWorker   ProfileType = "worker"
	ProfileTypeInvestor ProfileType = "investor"
)

// Unit is the billing unit of a line item.
type Unit string

const (
	UnitLength Unit = "length"
	UnitEach   Unit = "each"
	UnitHour   Unit = "hour"
	UnitDay    Unit = "day"
)

// RateCardGroup is the billing context for one customer+region pair.
// Groups are deactivated, never deleted, so historical snapshots keep
// valid references.
type RateCardGroup struct {
	ID           snowflake.ID  `gorm:"primaryKey"`
	CustomerName string        `gorm:"type:text;not null;index:idx_group_customer_region"`
	RegionCode   string        `gorm:"type:text;not null;index:idx_group_customer_region"`
	ClientID     *snowflake.ID `gorm:"index"`
	Active       bool          `gorm:"not null;default:true"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RateCardGroup) TableName() string { return "rate_card_groups" }

// RateCardProfile is one named rate variant within a group. Exactly one
// profile per group may be the default.
type RateCardProfile struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	GroupID   snowflake.ID `gorm:"not null;index"`
	Name      string       `gorm:"type:text;not null"`
	Type      ProfileType  `gorm:"type:text;not null"`
	IsDefault bool         `gorm:"not null;default:false"`
	Active    bool         `gorm:"not null;default:true"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RateCardProfile) TableName() string { return "rate_card_profiles" }

// RateCardItem holds the rates for one line-item code within a profile.
// (profile, code) is unique among active items; rates are non-negative.
type RateCardItem struct {
	ID           snowflake.ID    `gorm:"primaryKey"`
	ProfileID    snowflake.ID    `gorm:"not null;index:idx_item_profile_code"`
	Code         string          `gorm:"type:text;not null;index:idx_item_profile_code"`
	Description  string          `gorm:"type:text"`
	Unit         Unit            `gorm:"type:text;not null"`
	CompanyRate  decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	WorkerRate   decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	InvestorRate decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RateCardItem) TableName() string { return "rate_card_items" }

// Rate returns the item's rate for one payee role.
func (i RateCardItem) Rate(role PayeeRole) decimal.Decimal {
	switch role {
	case RoleCompany:
		return i.CompanyRate
	case RoleWorker:
		return i.WorkerRate
	case RoleInvestor:
		return i.InvestorRate
	}
	return decimal.Zero
}

// ImportRow is one validated row from the rate-import collaborator.
// Parsing and validation happen upstream; the store only applies
// create-or-update-by-code semantics.
type ImportRow struct {
	Code         string
	Description  string
	Unit         Unit
	CompanyRate  decimal.Decimal
	WorkerRate   decimal.Decimal
	InvestorRate decimal.Decimal
}

// ImportSummary reports bulk-import effects, logged as one audit entry.
type ImportSummary struct {
	BatchID string
	Created int
	Updated int
}

// ItemUpdate is a direct, audited edit of a single item's fields.
type ItemUpdate struct {
	Description  *string
	Unit         *Unit
	CompanyRate  *decimal.Decimal
	WorkerRate   *decimal.Decimal
	InvestorRate *decimal.Decimal
}

// Actor identifies who performed an operation, for audit attribution.
type Actor struct {
	ID   snowflake.ID
	Name string
	Role string
}
