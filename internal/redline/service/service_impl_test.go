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
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratecardrepo "github.com/groundworklabs/groundwork/internal/ratecard/repository"
	redlinedomain "github.com/groundworklabs/groundwork/internal/redline/domain"
	"github.com/groundworklabs/groundwork/internal/redline/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type redlineFixture struct {
	svc     *Service
	db      *gorm.DB
	node    *snowflake.Node
	group   *ratecarddomain.RateCardGroup
	profile *ratecarddomain.RateCardProfile
	item    *ratecarddomain.RateCardItem
	actor   redlinedomain.Actor
}

func newRedlineFixture(t *testing.T) *redlineFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ratecarddomain.RateCardGroup{},
		&ratecarddomain.RateCardProfile{},
		&ratecarddomain.RateCardItem{},
		&redlinedomain.Redline{},
		&redlinedomain.Review{},
		&auditdomain.Entry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fixed := clock.Fixed{T: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
	svc := &Service{
		db:           db,
		log:          zap.NewNop(),
		clock:        fixed,
		genID:        node,
		repo:         repository.NewRepository(),
		ratecardRepo: ratecardrepo.NewRepository(),
		auditSvc: auditservice.NewService(auditservice.Params{
			DB:    db,
			Log:   zap.NewNop(),
			Clock: fixed,
			GenID: node,
		}),
	}

	group := &ratecarddomain.RateCardGroup{
		ID: node.Generate(), CustomerName: "Spectrum", RegionCode: "SE", Active: true,
	}
	require.NoError(t, db.Create(group).Error)
	profile := &ratecarddomain.RateCardProfile{
		ID: node.Generate(), GroupID: group.ID, Name: "Standard",
		Type: ratecarddomain.ProfileTypeBlended, IsDefault: true, Active: true,
	}
	require.NoError(t, db.Create(profile).Error)
	item := &ratecarddomain.RateCardItem{
		ID: node.Generate(), ProfileID: profile.ID, Code: "BSPD82C",
		Unit:         ratecarddomain.UnitLength,
		CompanyRate:  decimal.RequireFromString("0.70"),
		WorkerRate:   decimal.RequireFromString("0.30"),
		InvestorRate: decimal.RequireFromString("0.05"),
		Active:       true,
	}
	require.NoError(t, db.Create(item).Error)

	return &redlineFixture{
		svc:     svc,
		db:      db,
		node:    node,
		group:   group,
		profile: profile,
		item:    item,
		actor:   redlinedomain.Actor{ID: node.Generate(), Name: "A. Estimator"},
	}
}

func (f *redlineFixture) create(t *testing.T, changes []redlinedomain.Change) *redlinedomain.Redline {
	t.Helper()
	redline, err := f.svc.Create(context.Background(), redlinedomain.CreateRequest{
		GroupID:   f.group.ID,
		ProfileID: f.profile.ID,
		Label:     "Q3 worker rate bump",
		Changes:   changes,
		Actor:     f.actor,
	})
	require.NoError(t, err)
	return redline
}

func workerRateChange() []redlinedomain.Change {
	return []redlinedomain.Change{
		{Code: "BSPD82C", Field: redlinedomain.FieldWorkerRate, Old: "0.30", New: "0.35"},
	}
}

func TestCreateAssignsIncreasingVersions(t *testing.T) {
	f := newRedlineFixture(t)

	first := f.create(t, workerRateChange())
	require.Equal(t, 1, first.Version)
	require.Equal(t, redlinedomain.StatusDraft, first.Status)

	second := f.create(t, workerRateChange())
	require.Equal(t, 2, second.Version)
}

func TestCreateRejectsNegativeRateChange(t *testing.T) {
	f := newRedlineFixture(t)

	_, err := f.svc.Create(context.Background(), redlinedomain.CreateRequest{
		GroupID:   f.group.ID,
		ProfileID: f.profile.ID,
		Label:     "bad",
		Changes: []redlinedomain.Change{
			{Code: "BSPD82C", Field: redlinedomain.FieldWorkerRate, New: "-1"},
		},
		Actor: f.actor,
	})
	require.ErrorIs(t, err, ratecarddomain.ErrNegativeRate)
}

func TestSubmitRequiresChanges(t *testing.T) {
	f := newRedlineFixture(t)
	redline := f.create(t, nil)

	_, err := f.svc.Submit(context.Background(), redline.ID, f.actor)
	require.ErrorIs(t, err, redlinedomain.ErrEmptyRedline)
}

func TestSubmitRejectsSecondOpenRedline(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	first := f.create(t, workerRateChange())
	second := f.create(t, workerRateChange())

	_, err := f.svc.Submit(ctx, first.ID, f.actor)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, second.ID, f.actor)
	require.ErrorIs(t, err, redlinedomain.ErrChainConflict)
}

func TestUpdateOnlyDrafts(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	redline := f.create(t, workerRateChange())
	_, err := f.svc.Submit(ctx, redline.ID, f.actor)
	require.NoError(t, err)

	label := "too late"
	_, err = f.svc.Update(ctx, redlinedomain.UpdateRequest{
		RedlineID: redline.ID,
		Label:     &label,
		Actor:     f.actor,
	})
	var invalid *redlinedomain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, redlinedomain.StatusPendingReview, invalid.Current)
}

func TestReviewTransitions(t *testing.T) {
	cases := []struct {
		action redlinedomain.ReviewAction
		want   redlinedomain.Status
	}{
		{redlinedomain.ActionApprove, redlinedomain.StatusApproved},
		{redlinedomain.ActionReject, redlinedomain.StatusRejected},
		{redlinedomain.ActionRequestChanges, redlinedomain.StatusDraft},
	}
	for _, tc := range cases {
		t.Run(string(tc.action), func(t *testing.T) {
			f := newRedlineFixture(t)
			ctx := context.Background()

			redline := f.create(t, workerRateChange())
			_, err := f.svc.Submit(ctx, redline.ID, f.actor)
			require.NoError(t, err)

			reviewed, err := f.svc.Review(ctx, redlinedomain.ReviewRequest{
				RedlineID: redline.ID,
				Action:    tc.action,
				Notes:     "looked at it",
				Reviewer:  f.actor,
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, reviewed.Status)

			reviews, err := f.svc.ListReviews(ctx, redline.ID)
			require.NoError(t, err)
			require.Len(t, reviews, 1)
			require.Equal(t, tc.action, reviews[0].Action)
		})
	}
}

func TestReviewRejectsWrongState(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	// Still a draft; approve must fail and leave no review row.
	redline := f.create(t, workerRateChange())
	_, err := f.svc.Review(ctx, redlinedomain.ReviewRequest{
		RedlineID: redline.ID,
		Action:    redlinedomain.ActionApprove,
		Reviewer:  f.actor,
	})
	var invalid *redlinedomain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, redlinedomain.StatusDraft, invalid.Current)

	reviews, err := f.svc.ListReviews(ctx, redline.ID)
	require.NoError(t, err)
	require.Empty(t, reviews)
}

func TestCommentDoesNotMoveStatus(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	redline := f.create(t, workerRateChange())
	_, err := f.svc.Submit(ctx, redline.ID, f.actor)
	require.NoError(t, err)

	after, err := f.svc.Review(ctx, redlinedomain.ReviewRequest{
		RedlineID: redline.ID,
		Action:    redlinedomain.ActionComment,
		Notes:     "double-check tier 2",
		Reviewer:  f.actor,
	})
	require.NoError(t, err)
	require.Equal(t, redlinedomain.StatusPendingReview, after.Status)
}

func TestApplyWritesChangesToCatalog(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	redline := f.create(t, workerRateChange())
	_, err := f.svc.Submit(ctx, redline.ID, f.actor)
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, redlinedomain.ReviewRequest{
		RedlineID: redline.ID, Action: redlinedomain.ActionApprove, Reviewer: f.actor,
	})
	require.NoError(t, err)

	applied, err := f.svc.Apply(ctx, redline.ID, f.actor)
	require.NoError(t, err)
	require.Equal(t, redlinedomain.StatusApplied, applied.Status)
	require.NotNil(t, applied.AppliedAt)

	var item ratecarddomain.RateCardItem
	require.NoError(t, f.db.First(&item, "id = ?", f.item.ID).Error)
	require.Equal(t, "0.35", item.WorkerRate.StringFixed(2))
}

func TestApplyAuditsOldAndNewRates(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	redline := f.create(t, workerRateChange())
	_, err := f.svc.Submit(ctx, redline.ID, f.actor)
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, redlinedomain.ReviewRequest{
		RedlineID: redline.ID, Action: redlinedomain.ActionApprove, Reviewer: f.actor,
	})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, redline.ID, f.actor)
	require.NoError(t, err)

	var entries []auditdomain.Entry
	require.NoError(t, f.db.
		Where("action = ?", auditdomain.ActionRedlineApplied).
		Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, redline.ID.String(), entries[0].EntityID)

	changes, ok := entries[0].After["changes"].([]any)
	require.True(t, ok)
	require.Len(t, changes, 1)

	change, ok := changes[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "BSPD82C", change["code"])
	require.Equal(t, redlinedomain.FieldWorkerRate, change["field"])

	old, err := decimal.NewFromString(change["old"].(string))
	require.NoError(t, err)
	require.True(t, old.Equal(decimal.RequireFromString("0.30")))

	updated, err := decimal.NewFromString(change["new"].(string))
	require.NoError(t, err)
	require.True(t, updated.Equal(decimal.RequireFromString("0.35")))
}

func TestApplyOnlyFromApproved(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	redline := f.create(t, workerRateChange())
	_, err := f.svc.Apply(ctx, redline.ID, f.actor)
	var invalid *redlinedomain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, redlinedomain.StatusDraft, invalid.Current)

	// The catalog is untouched.
	var item ratecarddomain.RateCardItem
	require.NoError(t, f.db.First(&item, "id = ?", f.item.ID).Error)
	require.Equal(t, "0.30", item.WorkerRate.StringFixed(2))
}

func TestApplyTwiceFails(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	redline := f.create(t, workerRateChange())
	_, err := f.svc.Submit(ctx, redline.ID, f.actor)
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, redlinedomain.ReviewRequest{
		RedlineID: redline.ID, Action: redlinedomain.ActionApprove, Reviewer: f.actor,
	})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, redline.ID, f.actor)
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, redline.ID, f.actor)
	var invalid *redlinedomain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, redlinedomain.StatusApplied, invalid.Current)
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	f := newRedlineFixture(t)
	ctx := context.Background()

	redline := f.create(t, workerRateChange())
	_, err := f.svc.Submit(ctx, redline.ID, f.actor)
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, redlinedomain.ReviewRequest{
		RedlineID: redline.ID, Action: redlinedomain.ActionReject, Reviewer: f.actor,
	})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, redline.ID, f.actor)
	var invalid *redlinedomain.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	_, err = f.svc.Review(ctx, redlinedomain.ReviewRequest{
		RedlineID: redline.ID, Action: redlinedomain.ActionComment, Reviewer: f.actor,
	})
	require.ErrorAs(t, err, &invalid)
}
