package service

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/groundworklabs/groundwork/internal/audit/domain"
	"github.com/groundworklabs/groundwork/internal/audit/repository"
	"github.com/groundworklabs/groundwork/internal/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newAuditFixture(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Entry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		repo:  repository.NewRepository(db),
		log:   zap.NewNop(),
		clock: clock.Fixed{T: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)},
		genID: node,
	}
	return svc, db, node
}

func TestLogAssignsIDAndTimestamp(t *testing.T) {
	svc, db, _ := newAuditFixture(t)
	ctx := context.Background()

	svc.Log(ctx, domain.Entry{
		Action:     domain.ActionRateItemUpdated,
		EntityType: "rate_card_item",
		EntityID:   "42",
		ActorName:  "Dana Ops",
		Before:     datatypes.JSONMap{"worker_rate": "0.30"},
		After:      datatypes.JSONMap{"worker_rate": "0.35"},
	})

	var entries []domain.Entry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	require.NotZero(t, entries[0].ID)
	require.Equal(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC), entries[0].CreatedAt.UTC())
}

func TestLogSwallowsWriteFailures(t *testing.T) {
	svc, db, _ := newAuditFixture(t)
	require.NoError(t, db.Migrator().DropTable(&domain.Entry{}))

	// The caller's mutation must not be disturbed; this returns nothing.
	svc.Log(context.Background(), domain.Entry{
		Action:     domain.ActionRatesImported,
		EntityType: "rate_card_profile",
	})
}

func TestListFiltersByEntity(t *testing.T) {
	svc, _, _ := newAuditFixture(t)
	ctx := context.Background()

	svc.Log(ctx, domain.Entry{Action: domain.ActionRedlineCreated, EntityType: "redline", EntityID: "1"})
	svc.Log(ctx, domain.Entry{Action: domain.ActionRedlineApproved, EntityType: "redline", EntityID: "1"})
	svc.Log(ctx, domain.Entry{Action: domain.ActionRatesImported, EntityType: "rate_card_profile", EntityID: "9"})

	got, err := svc.List(ctx, domain.ListFilter{EntityType: "redline", EntityID: "1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		require.Equal(t, "redline", e.EntityType)
	}

	all, err := svc.List(ctx, domain.ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestExportCSVIncludesHeaderAndChecksum(t *testing.T) {
	svc, _, _ := newAuditFixture(t)
	ctx := context.Background()

	svc.Log(ctx, domain.Entry{
		Action:     domain.ActionPayrollApproved,
		EntityType: "payroll_record",
		EntityID:   "77",
		ActorName:  "Dana Ops",
	})

	result, err := svc.Export(ctx, domain.ExportRequest{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Format:    domain.ExportFormatCSV,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)

	rows, err := csv.NewReader(strings.NewReader(string(result.Data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "timestamp", rows[0][0])
	require.Equal(t, "payroll.approved", rows[1][1])

	sum := sha256.Sum256(result.Data)
	require.Equal(t, hex.EncodeToString(sum[:]), result.Checksum)
}

func TestExportJSONRoundTrips(t *testing.T) {
	svc, _, _ := newAuditFixture(t)
	ctx := context.Background()

	svc.Log(ctx, domain.Entry{
		Action:     domain.ActionRedlineApplied,
		EntityType: "redline",
		EntityID:   "5",
		Metadata:   datatypes.JSONMap{"version": float64(2)},
	})

	result, err := svc.Export(ctx, domain.ExportRequest{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Format:    domain.ExportFormatJSON,
	})
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(result.Data, &records))
	require.Len(t, records, 1)
	require.Equal(t, "redline.applied", records[0]["action"])
}

func TestExportFiltersByAction(t *testing.T) {
	svc, _, _ := newAuditFixture(t)
	ctx := context.Background()

	svc.Log(ctx, domain.Entry{Action: domain.ActionRedlineCreated, EntityType: "redline"})
	svc.Log(ctx, domain.Entry{Action: domain.ActionPayrollPaid, EntityType: "payroll_record"})

	result, err := svc.Export(ctx, domain.ExportRequest{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Format:    domain.ExportFormatJSON,
		Actions:   []domain.Action{domain.ActionPayrollPaid},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc, _, _ := newAuditFixture(t)

	_, err := svc.Export(context.Background(), domain.ExportRequest{
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now(),
		Format:    domain.ExportFormat("xml"),
	})
	require.Error(t, err)
}
