// Package domain holds reference-list views served to pickers and
// lookups. These are read paths only; rate resolution never goes
// through them.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// CustomerRef is one selectable customer/region pairing backed by an
// active rate card group.
type CustomerRef struct {
	GroupID      snowflake.ID `json:"group_id"`
	CustomerName string       `json:"customer_name"`
	RegionCode   string       `json:"region_code"`
}

// RateCodeRef is one selectable rate code within a profile.
type RateCodeRef struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
}

type Service interface {
	// ListCustomers returns active customer/region pairings. When the
	// store is unreachable it serves the last cached copy instead of
	// failing.
	ListCustomers(ctx context.Context) ([]CustomerRef, error)
	// ListRateCodes returns the active codes of one profile, with the
	// same last-known-good fallback.
	ListRateCodes(ctx context.Context, profileID snowflake.ID) ([]RateCodeRef, error)
}
