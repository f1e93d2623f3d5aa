package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
	auditservice "github.com/groundworklabs/groundwork/internal/audit/service"
	"github.com/groundworklabs/groundwork/internal/clock"
	"github.com/groundworklabs/groundwork/internal/ratecard/domain"
	"github.com/groundworklabs/groundwork/internal/ratecard/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type catalogFixture struct {
	svc   *Service
	db    *gorm.DB
	node  *snowflake.Node
	actor domain.Actor
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.RateCardGroup{},
		&domain.RateCardProfile{},
		&domain.RateCardItem{},
		&auditdomain.Entry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fixed := clock.Fixed{T: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	svc := &Service{
		db:    db,
		log:   zap.NewNop(),
		clock: fixed,
		genID: node,
		repo:  repository.NewRepository(),
		auditSvc: auditservice.NewService(auditservice.Params{
			DB:    db,
			Log:   zap.NewNop(),
			Clock: fixed,
			GenID: node,
		}),
	}
	return &catalogFixture{
		svc:  svc,
		db:   db,
		node: node,
		actor: domain.Actor{
			ID:   node.Generate(),
			Name: "Dana Ops",
			Role: "admin",
		},
	}
}

func (f *catalogFixture) createGroup(t *testing.T, customer, region string) *domain.RateCardGroup {
	t.Helper()
	group, err := f.svc.CreateGroup(context.Background(), domain.CreateGroupRequest{
		CustomerName: customer,
		RegionCode:   region,
		Actor:        f.actor,
	})
	require.NoError(t, err)
	return group
}

func (f *catalogFixture) createProfile(t *testing.T, groupID snowflake.ID, name string, isDefault bool) *domain.RateCardProfile {
	t.Helper()
	profile, err := f.svc.CreateProfile(context.Background(), domain.CreateProfileRequest{
		GroupID:   groupID,
		Name:      name,
		Type:      domain.ProfileTypeBlended,
		IsDefault: isDefault,
		Actor:     f.actor,
	})
	require.NoError(t, err)
	return profile
}

func importRow(code string, company, worker, investor string) domain.ImportRow {
	return domain.ImportRow{
		Code:         code,
		Description:  code + " work",
		Unit:         domain.UnitLength,
		CompanyRate:  decimal.RequireFromString(company),
		WorkerRate:   decimal.RequireFromString(worker),
		InvestorRate: decimal.RequireFromString(investor),
	}
}

func TestCreateGroupRejectsActiveDuplicate(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	group := f.createGroup(t, "Spectrum", "SE")

	_, err := f.svc.CreateGroup(ctx, domain.CreateGroupRequest{
		CustomerName: "Spectrum", RegionCode: "SE", Actor: f.actor,
	})
	require.ErrorIs(t, err, domain.ErrGroupConflict)

	// A different region is a separate billing context.
	_, err = f.svc.CreateGroup(ctx, domain.CreateGroupRequest{
		CustomerName: "Spectrum", RegionCode: "MW", Actor: f.actor,
	})
	require.NoError(t, err)

	// Deactivating frees the customer+region pair for a new group.
	require.NoError(t, f.svc.DeactivateGroup(ctx, group.ID, f.actor))
	_, err = f.svc.CreateGroup(ctx, domain.CreateGroupRequest{
		CustomerName: "Spectrum", RegionCode: "SE", Actor: f.actor,
	})
	require.NoError(t, err)
}

func TestCreateProfileDisplacesDefault(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	group := f.createGroup(t, "Bright Speed", "SE")
	first := f.createProfile(t, group.ID, "Standard", true)
	second := f.createProfile(t, group.ID, "Premium", true)

	profiles, err := f.svc.ListProfiles(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	byID := map[snowflake.ID]domain.RateCardProfile{}
	for _, p := range profiles {
		byID[p.ID] = p
	}
	require.False(t, byID[first.ID].IsDefault)
	require.True(t, byID[second.ID].IsDefault)
}

func TestDuplicateProfileDeepCopiesItems(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	group := f.createGroup(t, "All Points", "MW")
	source := f.createProfile(t, group.ID, "Standard", true)

	_, err := f.svc.BulkImport(ctx, domain.BulkImportRequest{
		ProfileID: source.ID,
		Rows: []domain.ImportRow{
			importRow("BSPD82C", "0.70", "0.30", "0.05"),
			importRow("PULL144", "0.55", "0.25", "0.04"),
		},
		Actor: f.actor,
	})
	require.NoError(t, err)

	clone, err := f.svc.DuplicateProfile(ctx, domain.DuplicateProfileRequest{
		SourceProfileID: source.ID,
		Name:            "Standard Copy",
		Actor:           f.actor,
	})
	require.NoError(t, err)
	require.Equal(t, group.ID, clone.GroupID)
	require.False(t, clone.IsDefault)

	cloneItems, err := f.svc.ListItems(ctx, clone.ID)
	require.NoError(t, err)
	require.Len(t, cloneItems, 2)

	// Editing a copied item must not touch the source.
	newRate := decimal.RequireFromString("0.99")
	_, err = f.svc.UpdateItem(ctx, domain.UpdateItemRequest{
		ItemID: cloneItems[0].ID,
		Update: domain.ItemUpdate{CompanyRate: &newRate},
		Actor:  f.actor,
	})
	require.NoError(t, err)

	sourceItems, err := f.svc.ListItems(ctx, source.ID)
	require.NoError(t, err)
	for _, item := range sourceItems {
		require.False(t, item.CompanyRate.Equal(newRate))
	}
}

func TestDuplicateProfileMissingSource(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.DuplicateProfile(context.Background(), domain.DuplicateProfileRequest{
		SourceProfileID: f.node.Generate(),
		Name:            "Orphan",
		Actor:           f.actor,
	})
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestBulkImportCreatesAndUpdatesByCode(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	group := f.createGroup(t, "Masterque", "MW")
	profile := f.createProfile(t, group.ID, "Standard", true)

	first, err := f.svc.BulkImport(ctx, domain.BulkImportRequest{
		ProfileID: profile.ID,
		Rows: []domain.ImportRow{
			importRow("BSPD82C", "0.70", "0.30", "0.05"),
			importRow("HH30", "210.00", "95.00", "15.00"),
		},
		Actor: f.actor,
	})
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)
	require.Equal(t, 0, first.Updated)
	require.NotEmpty(t, first.BatchID)

	second, err := f.svc.BulkImport(ctx, domain.BulkImportRequest{
		ProfileID: profile.ID,
		Rows: []domain.ImportRow{
			importRow("BSPD82C", "0.75", "0.32", "0.05"),
			importRow("SPLICE12", "18.00", "8.00", "1.00"),
		},
		Actor: f.actor,
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.Created)
	require.Equal(t, 1, second.Updated)
	require.NotEqual(t, first.BatchID, second.BatchID)

	items, err := f.svc.ListItems(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	byCode := map[string]domain.RateCardItem{}
	for _, item := range items {
		byCode[item.Code] = item
	}
	require.True(t, byCode["BSPD82C"].CompanyRate.Equal(decimal.RequireFromString("0.75")))
}

func TestBulkImportRejectsNegativeAndEmpty(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	group := f.createGroup(t, "Spectrum", "SE")
	profile := f.createProfile(t, group.ID, "Standard", true)

	_, err := f.svc.BulkImport(ctx, domain.BulkImportRequest{
		ProfileID: profile.ID,
		Actor:     f.actor,
	})
	require.ErrorIs(t, err, domain.ErrEmptyImport)

	_, err = f.svc.BulkImport(ctx, domain.BulkImportRequest{
		ProfileID: profile.ID,
		Rows: []domain.ImportRow{
			importRow("BSPD82C", "0.70", "0.30", "0.05"),
			importRow("PULL144", "-0.55", "0.25", "0.04"),
		},
		Actor: f.actor,
	})
	require.ErrorIs(t, err, domain.ErrNegativeRate)

	// The whole batch rolls back; nothing is persisted.
	items, err := f.svc.ListItems(ctx, profile.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestUpdateItemAuditsBeforeAndAfter(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	group := f.createGroup(t, "Spectrum", "SE")
	profile := f.createProfile(t, group.ID, "Standard", true)
	_, err := f.svc.BulkImport(ctx, domain.BulkImportRequest{
		ProfileID: profile.ID,
		Rows:      []domain.ImportRow{importRow("BSPD82C", "0.70", "1.00", "0.05")},
		Actor:     f.actor,
	})
	require.NoError(t, err)

	items, err := f.svc.ListItems(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	newRate := decimal.RequireFromString("1.20")
	_, err = f.svc.UpdateItem(ctx, domain.UpdateItemRequest{
		ItemID: items[0].ID,
		Update: domain.ItemUpdate{WorkerRate: &newRate},
		Actor:  f.actor,
	})
	require.NoError(t, err)

	var entries []auditdomain.Entry
	require.NoError(t, f.db.
		Where("action = ?", auditdomain.ActionRateItemUpdated).
		Find(&entries).Error)
	require.Len(t, entries, 1)

	entry := entries[0]
	require.Equal(t, items[0].ID.String(), entry.EntityID)
	require.Equal(t, f.actor.Name, entry.ActorName)

	before, err := decimal.NewFromString(entry.Before["worker_rate"].(string))
	require.NoError(t, err)
	require.True(t, before.Equal(decimal.RequireFromString("1.00")))

	after, err := decimal.NewFromString(entry.After["worker_rate"].(string))
	require.NoError(t, err)
	require.True(t, after.Equal(newRate))

	require.Equal(t, "BSPD82C", entry.Metadata["code"])
}

func TestUpdateItemRejectsNegativeRate(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	group := f.createGroup(t, "Spectrum", "SE")
	profile := f.createProfile(t, group.ID, "Standard", true)
	_, err := f.svc.BulkImport(ctx, domain.BulkImportRequest{
		ProfileID: profile.ID,
		Rows:      []domain.ImportRow{importRow("BSPD82C", "0.70", "0.30", "0.05")},
		Actor:     f.actor,
	})
	require.NoError(t, err)

	items, err := f.svc.ListItems(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	bad := decimal.RequireFromString("-0.10")
	_, err = f.svc.UpdateItem(ctx, domain.UpdateItemRequest{
		ItemID: items[0].ID,
		Update: domain.ItemUpdate{WorkerRate: &bad},
		Actor:  f.actor,
	})
	require.ErrorIs(t, err, domain.ErrNegativeRate)
}
