package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratecardrepo "github.com/groundworklabs/groundwork/internal/ratecard/repository"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"github.com/groundworklabs/groundwork/internal/rating/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newResolverFixture(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ratecarddomain.RateCardGroup{},
		&ratecarddomain.RateCardProfile{},
		&ratecarddomain.RateCardItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:       db,
		log:      zap.NewNop(),
		genID:    node,
		repo:     repository.NewRepository(db),
		cardRepo: ratecardrepo.NewRepository(),
	}
	return svc, db, node
}

func seedGroup(t *testing.T, db *gorm.DB, node *snowflake.Node, customer, region string, clientID *snowflake.ID) *ratecarddomain.RateCardGroup {
	t.Helper()
	group := &ratecarddomain.RateCardGroup{
		ID:           node.Generate(),
		CustomerName: customer,
		RegionCode:   region,
		ClientID:     clientID,
		Active:       true,
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

func seedProfile(t *testing.T, db *gorm.DB, node *snowflake.Node, groupID snowflake.ID, typ ratecarddomain.ProfileType, isDefault bool) *ratecarddomain.RateCardProfile {
	t.Helper()
	profile := &ratecarddomain.RateCardProfile{
		ID:        node.Generate(),
		GroupID:   groupID,
		Name:      string(typ),
		Type:      typ,
		IsDefault: isDefault,
		Active:    true,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func seedItem(t *testing.T, db *gorm.DB, node *snowflake.Node, profileID snowflake.ID, code, company, worker, investor string) {
	t.Helper()
	item := &ratecarddomain.RateCardItem{
		ID:           node.Generate(),
		ProfileID:    profileID,
		Code:         code,
		Unit:         ratecarddomain.UnitLength,
		CompanyRate:  decimal.RequireFromString(company),
		WorkerRate:   decimal.RequireFromString(worker),
		InvestorRate: decimal.RequireFromString(investor),
		Active:       true,
	}
	require.NoError(t, db.Create(item).Error)
}

func TestResolveGroupPrefersClientID(t *testing.T) {
	svc, db, node := newResolverFixture(t)
	ctx := context.Background()

	clientID := node.Generate()
	byClient := seedGroup(t, db, node, "Spectrum", "SE", &clientID)
	seedGroup(t, db, node, "Spectrum", "MW", nil)

	got, err := svc.ResolveGroup(ctx, ratingdomain.JobContext{
		ClientID:     &clientID,
		CustomerName: "Spectrum",
		RegionCode:   "MW",
	})
	require.NoError(t, err)
	require.Equal(t, byClient.ID, got)
}

func TestResolveGroupFallsBackToCustomerRegion(t *testing.T) {
	svc, db, node := newResolverFixture(t)
	ctx := context.Background()

	group := seedGroup(t, db, node, "Bright Speed", "SE", nil)
	unknownClient := node.Generate()

	got, err := svc.ResolveGroup(ctx, ratingdomain.JobContext{
		ClientID:     &unknownClient,
		CustomerName: "Bright Speed",
		RegionCode:   "SE",
	})
	require.NoError(t, err)
	require.Equal(t, group.ID, got)
}

func TestResolveGroupMissIsFatal(t *testing.T) {
	svc, _, _ := newResolverFixture(t)

	_, err := svc.ResolveGroup(context.Background(), ratingdomain.JobContext{
		CustomerName: "Nobody",
		RegionCode:   "XX",
	})
	require.ErrorIs(t, err, ratingdomain.ErrNoRateCardFound)
}

func TestResolveRatesOverlaysRoleProfiles(t *testing.T) {
	svc, db, node := newResolverFixture(t)
	ctx := context.Background()

	group := seedGroup(t, db, node, "All Points", "MW", nil)
	blended := seedProfile(t, db, node, group.ID, ratecarddomain.ProfileTypeBlended, true)
	seedItem(t, db, node, blended.ID, "BSPD82C", "0.70", "0.30", "0.05")

	// A worker-typed profile overrides only the worker column.
	workerProfile := seedProfile(t, db, node, group.ID, ratecarddomain.ProfileTypeWorker, false)
	seedItem(t, db, node, workerProfile.ID, "BSPD82C", "0", "0.35", "0")

	resolved, err := svc.ResolveRates(ctx, group.ID, []string{"BSPD82C"})
	require.NoError(t, err)

	got := resolved.Rates["BSPD82C"]
	require.Equal(t, "0.70", got.CompanyRate.StringFixed(2))
	require.Equal(t, "0.35", got.WorkerRate.StringFixed(2))
	require.Equal(t, "0.05", got.InvestorRate.StringFixed(2))
}

func TestResolveRatesMissingCode(t *testing.T) {
	svc, db, node := newResolverFixture(t)
	ctx := context.Background()

	group := seedGroup(t, db, node, "Masterque", "MW", nil)
	blended := seedProfile(t, db, node, group.ID, ratecarddomain.ProfileTypeBlended, true)
	seedItem(t, db, node, blended.ID, "HH30", "250.00", "120.00", "15.00")

	_, err := svc.ResolveRates(ctx, group.ID, []string{"HH30", "NOPE"})
	var unknown *ratingdomain.UnknownRateCodeError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, []string{"NOPE"}, unknown.Codes)
}
