package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/groundworklabs/groundwork/internal/clock"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratecardrepo "github.com/groundworklabs/groundwork/internal/ratecard/repository"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"github.com/groundworklabs/groundwork/internal/rating/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSnapshotFixture(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ratecarddomain.RateCardGroup{},
		&ratecarddomain.RateCardProfile{},
		&ratecarddomain.RateCardItem{},
		&ratingdomain.CalculatedTotal{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:       db,
		log:      zap.NewNop(),
		clock:    clock.Fixed{T: time.Date(2025, 6, 12, 16, 0, 0, 0, time.UTC)},
		genID:    node,
		repo:     repository.NewRepository(db),
		cardRepo: ratecardrepo.NewRepository(),
	}
	return svc, db, node
}

func persistFixtureRequest(jobRef string) ratingdomain.PersistRequest {
	return ratingdomain.PersistRequest{
		SubmissionRef: "SUB-100",
		JobRef:        jobRef,
		Result: ratingdomain.CalculationResult{
			Lines: []ratingdomain.LineResult{{
				Code:           "BSPD82C",
				Quantity:       decimal.NewFromInt(1000),
				Unit:           "length",
				CompanyAmount:  decimal.RequireFromString("700.00"),
				WorkerAmount:   decimal.RequireFromString("300.00"),
				InvestorAmount: decimal.RequireFromString("50.00"),
			}},
			CompanyTotal:  decimal.RequireFromString("700.00"),
			WorkerTotal:   decimal.RequireFromString("300.00"),
			InvestorTotal: decimal.RequireFromString("50.00"),
			Margin:        decimal.RequireFromString("350.00"),
			MarginPercent: decimal.RequireFromString("50.00"),
		},
		Frozen: ratingdomain.FrozenContext{
			JobID:        jobRef,
			CustomerName: "Spectrum",
			RegionCode:   "SE",
			Rates: map[string]ratingdomain.FrozenRate{
				"BSPD82C": {
					CompanyRate:  decimal.RequireFromString("0.70"),
					WorkerRate:   decimal.RequireFromString("0.30"),
					InvestorRate: decimal.RequireFromString("0.05"),
				},
			},
		},
	}
}

func TestPersistStampsCaptureTime(t *testing.T) {
	svc, _, _ := newSnapshotFixture(t)
	ctx := context.Background()

	total, err := svc.Persist(ctx, persistFixtureRequest("JOB-1"))
	require.NoError(t, err)
	require.NotZero(t, total.ID)
	require.Equal(t, time.Date(2025, 6, 12, 16, 0, 0, 0, time.UTC), total.JobCompletedAt)

	var frozen ratingdomain.FrozenContext
	require.NoError(t, json.Unmarshal(total.Context, &frozen))
	require.Equal(t, time.Date(2025, 6, 12, 16, 0, 0, 0, time.UTC), frozen.CapturedAt.UTC())
}

func TestPersistedSnapshotSurvivesCatalogEdit(t *testing.T) {
	svc, db, node := newSnapshotFixture(t)
	ctx := context.Background()

	group := seedGroup(t, db, node, "Spectrum", "SE", nil)
	profile := seedProfile(t, db, node, group.ID, ratecarddomain.ProfileTypeBlended, true)
	seedItem(t, db, node, profile.ID, "BSPD82C", "0.70", "0.30", "0.05")

	total, err := svc.Persist(ctx, persistFixtureRequest("JOB-2"))
	require.NoError(t, err)

	// A later catalog edit must not reach back into the snapshot.
	require.NoError(t, db.Model(&ratecarddomain.RateCardItem{}).
		Where("profile_id = ? AND code = ?", profile.ID, "BSPD82C").
		Update("worker_rate", "0.90").Error)

	got, err := svc.GetCalculation(ctx, total.ID)
	require.NoError(t, err)

	var frozen ratingdomain.FrozenContext
	require.NoError(t, json.Unmarshal(got.Context, &frozen))
	require.True(t, frozen.Rates["BSPD82C"].WorkerRate.Equal(decimal.RequireFromString("0.30")))
	require.True(t, got.WorkerTotal.Equal(decimal.RequireFromString("300.00")))
}

func TestPersistSupersedeChain(t *testing.T) {
	svc, _, _ := newSnapshotFixture(t)
	ctx := context.Background()

	original, err := svc.Persist(ctx, persistFixtureRequest("JOB-3"))
	require.NoError(t, err)

	correctionReq := persistFixtureRequest("JOB-3")
	correctionReq.SupersedesID = &original.ID
	correction, err := svc.Persist(ctx, correctionReq)
	require.NoError(t, err)
	require.NotNil(t, correction.SupersedesID)
	require.Equal(t, original.ID, *correction.SupersedesID)

	// The prior row is untouched.
	kept, err := svc.GetCalculation(ctx, original.ID)
	require.NoError(t, err)
	require.Nil(t, kept.SupersedesID)
	require.True(t, kept.WorkerTotal.Equal(original.WorkerTotal))

	both, err := svc.ListBySubmission(ctx, "SUB-100")
	require.NoError(t, err)
	require.Len(t, both, 2)
}

func TestGetCalculationMissing(t *testing.T) {
	svc, _, node := newSnapshotFixture(t)

	_, err := svc.GetCalculation(context.Background(), node.Generate())
	require.ErrorIs(t, err, ratingdomain.ErrCalculationNotFound)
}
