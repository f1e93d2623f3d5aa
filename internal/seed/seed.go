// Package seed installs a starter rate catalog for local development:
// one group per known customer, a default blended profile and a small
// set of common codes.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type customerSeed struct {
	Name   string
	Region string
}

var knownCustomers = []customerSeed{
	{Name: "Spectrum", Region: "SE"},
	{Name: "Bright Speed", Region: "SE"},
	{Name: "All Points", Region: "MW"},
	{Name: "Masterque", Region: "MW"},
}

type itemSeed struct {
	Code         string
	Description  string
	Unit         ratecarddomain.Unit
	CompanyRate  string
	WorkerRate   string
	InvestorRate string
}

var starterItems = []itemSeed{
	{"BSPD82C", "Bore span, 2in conduit", ratecarddomain.UnitLength, "0.70", "0.35", "0.05"},
	{"PULL144", "Pull 144ct fiber", ratecarddomain.UnitLength, "0.55", "0.28", "0.04"},
	{"HH30", "Set 30in handhole", ratecarddomain.UnitEach, "250.00", "120.00", "15.00"},
	{"SPLICE12", "Splice, 12 fibers", ratecarddomain.UnitEach, "95.00", "45.00", "0.00"},
	{"RESTORE", "Surface restoration", ratecarddomain.UnitHour, "85.00", "40.00", "0.00"},
}

// EnsureStarterCatalog is idempotent: customers that already have an
// active group are left untouched.
func EnsureStarterCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, customer := range knownCustomers {
			if err := ensureCustomerTx(ctx, tx, node, customer); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureCustomerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, customer customerSeed) error {
	var count int64
	err := tx.WithContext(ctx).Model(&ratecarddomain.RateCardGroup{}).
		Where("customer_name = ? AND region_code = ? AND active = ?", customer.Name, customer.Region, true).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	group := &ratecarddomain.RateCardGroup{
		ID:           node.Generate(),
		CustomerName: customer.Name,
		RegionCode:   customer.Region,
		Active:       true,
	}
	if err := tx.WithContext(ctx).Create(group).Error; err != nil {
		return err
	}

	profile := &ratecarddomain.RateCardProfile{
		ID:        node.Generate(),
		GroupID:   group.ID,
		Name:      "Standard",
		Type:      ratecarddomain.ProfileTypeBlended,
		IsDefault: true,
		Active:    true,
	}
	if err := tx.WithContext(ctx).Create(profile).Error; err != nil {
		return err
	}

	items := make([]ratecarddomain.RateCardItem, 0, len(starterItems))
	for _, seed := range starterItems {
		items = append(items, ratecarddomain.RateCardItem{
			ID:           node.Generate(),
			ProfileID:    profile.ID,
			Code:         seed.Code,
			Description:  seed.Description,
			Unit:         seed.Unit,
			CompanyRate:  decimal.RequireFromString(seed.CompanyRate),
			WorkerRate:   decimal.RequireFromString(seed.WorkerRate),
			InvestorRate: decimal.RequireFromString(seed.InvestorRate),
			Active:       true,
		})
	}
	return tx.WithContext(ctx).Create(&items).Error
}
