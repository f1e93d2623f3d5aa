package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
	"github.com/groundworklabs/groundwork/internal/clock"
	"github.com/groundworklabs/groundwork/internal/observability"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratecardrepo "github.com/groundworklabs/groundwork/internal/ratecard/repository"
	redlinedomain "github.com/groundworklabs/groundwork/internal/redline/domain"
	"github.com/groundworklabs/groundwork/internal/redline/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	AuditSvc auditdomain.Service    `optional:"true"`
	Metrics  *observability.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	repo         redlinedomain.Repository
	ratecardRepo ratecarddomain.Repository
	auditSvc     auditdomain.Service
	metrics      *observability.Metrics
}

func NewService(p Params) redlinedomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("redline.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		repo:         repository.NewRepository(),
		ratecardRepo: ratecardrepo.NewRepository(),
		auditSvc:     p.AuditSvc,
		metrics:      p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req redlinedomain.CreateRequest) (*redlinedomain.Redline, error) {
	if err := validateChanges(req.Changes); err != nil {
		return nil, err
	}

	profile, err := s.ratecardRepo.FindProfileByID(ctx, s.db, req.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.GroupID != req.GroupID {
		return nil, ratecarddomain.ErrProfileNotFound
	}

	changesJSON, err := json.Marshal(req.Changes)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	redline := &redlinedomain.Redline{
		ID:            s.genID.Generate(),
		GroupID:       req.GroupID,
		ProfileID:     req.ProfileID,
		Label:         req.Label,
		Summary:       req.Summary,
		Changes:       datatypes.JSON(changesJSON),
		Status:        redlinedomain.StatusDraft,
		CreatedBy:     req.Actor.ID,
		CreatedByName: req.Actor.Name,
		ExternalRef:   req.ExternalRef,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := s.repo.MaxVersion(ctx, tx, req.ProfileID)
		if err != nil {
			return err
		}
		redline.Version = version + 1
		return s.repo.Insert(ctx, tx, redline)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, auditdomain.ActionRedlineCreated, redline, req.Actor, nil, map[string]any{
		"version":      redline.Version,
		"change_count": len(req.Changes),
	})
	s.transitionMetric(redlinedomain.StatusDraft)
	return redline, nil
}

func (s *Service) Update(ctx context.Context, req redlinedomain.UpdateRequest) (*redlinedomain.Redline, error) {
	redline, err := s.repo.FindByID(ctx, s.db, req.RedlineID)
	if err != nil {
		return nil, err
	}
	if redline == nil {
		return nil, redlinedomain.ErrRedlineNotFound
	}

	fields := map[string]any{"updated_at": s.clock.Now(ctx)}
	if req.Label != nil {
		fields["label"] = *req.Label
	}
	if req.Summary != nil {
		fields["summary"] = *req.Summary
	}
	if req.Changes != nil {
		if err := validateChanges(req.Changes); err != nil {
			return nil, err
		}
		changesJSON, err := json.Marshal(req.Changes)
		if err != nil {
			return nil, err
		}
		fields["changes"] = datatypes.JSON(changesJSON)
	}

	affected, err := s.repo.UpdateDraft(ctx, s.db, req.RedlineID, fields)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.transitionError(ctx, s.db, req.RedlineID, "edit")
	}
	return s.repo.FindByID(ctx, s.db, req.RedlineID)
}

func (s *Service) Submit(ctx context.Context, redlineID snowflake.ID, actor redlinedomain.Actor) (*redlinedomain.Redline, error) {
	redline, err := s.repo.FindByID(ctx, s.db, redlineID)
	if err != nil {
		return nil, err
	}
	if redline == nil {
		return nil, redlinedomain.ErrRedlineNotFound
	}

	var changes []redlinedomain.Change
	if err := json.Unmarshal(redline.Changes, &changes); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, redlinedomain.ErrEmptyRedline
	}

	now := s.clock.Now(ctx)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One in-flight redline per profile keeps apply ordering
		// unambiguous. The count and the flip share a transaction,
		// and uq_redline_profile_open backstops concurrent submits.
		open, err := s.repo.CountOpenByProfile(ctx, tx, redline.ProfileID, redlineID)
		if err != nil {
			return err
		}
		if open > 0 {
			return redlinedomain.ErrChainConflict
		}

		affected, err := s.repo.TransitionStatus(ctx, tx, redlineID,
			redlinedomain.StatusDraft, redlinedomain.StatusPendingReview,
			map[string]any{
				"submitted_by": actor.ID,
				"submitted_at": now,
				"updated_at":   now,
			})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return redlinedomain.ErrChainConflict
			}
			return err
		}
		if affected == 0 {
			return s.transitionError(ctx, tx, redlineID, "submit")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, auditdomain.ActionRedlineSubmitted, redline, actor, nil, nil)
	s.transitionMetric(redlinedomain.StatusPendingReview)
	return s.repo.FindByID(ctx, s.db, redlineID)
}

func (s *Service) Review(ctx context.Context, req redlinedomain.ReviewRequest) (*redlinedomain.Redline, error) {
	redline, err := s.repo.FindByID(ctx, s.db, req.RedlineID)
	if err != nil {
		return nil, err
	}
	if redline == nil {
		return nil, redlinedomain.ErrRedlineNotFound
	}

	now := s.clock.Now(ctx)

	var to redlinedomain.Status
	var action auditdomain.Action
	switch req.Action {
	case redlinedomain.ActionApprove:
		to, action = redlinedomain.StatusApproved, auditdomain.ActionRedlineApproved
	case redlinedomain.ActionReject:
		to, action = redlinedomain.StatusRejected, auditdomain.ActionRedlineRejected
	case redlinedomain.ActionRequestChanges:
		to, action = redlinedomain.StatusDraft, auditdomain.ActionRedlineReturned
	case redlinedomain.ActionComment:
		if redline.Status.Terminal() {
			return nil, &redlinedomain.InvalidTransitionError{Attempted: "comment on", Current: redline.Status}
		}
		review := &redlinedomain.Review{
			ID:           s.genID.Generate(),
			RedlineID:    req.RedlineID,
			ReviewerID:   req.Reviewer.ID,
			ReviewerName: req.Reviewer.Name,
			Action:       req.Action,
			Notes:        req.Notes,
			CreatedAt:    now,
		}
		if err := s.repo.InsertReview(ctx, s.db, review); err != nil {
			return nil, err
		}
		return redline, nil
	default:
		return nil, redlinedomain.ErrUnknownAction
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.TransitionStatus(ctx, tx, req.RedlineID,
			redlinedomain.StatusPendingReview, to,
			map[string]any{
				"reviewed_by": req.Reviewer.ID,
				"reviewed_at": now,
				"updated_at":  now,
			})
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.transitionError(ctx, tx, req.RedlineID, string(req.Action))
		}

		review := &redlinedomain.Review{
			ID:           s.genID.Generate(),
			RedlineID:    req.RedlineID,
			ReviewerID:   req.Reviewer.ID,
			ReviewerName: req.Reviewer.Name,
			Action:       req.Action,
			Notes:        req.Notes,
			CreatedAt:    now,
		}
		return s.repo.InsertReview(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, action, redline, req.Reviewer, nil, map[string]any{"notes": req.Notes})
	s.transitionMetric(to)
	return s.repo.FindByID(ctx, s.db, req.RedlineID)
}

func (s *Service) Apply(ctx context.Context, redlineID snowflake.ID, actor redlinedomain.Actor) (*redlinedomain.Redline, error) {
	redline, err := s.repo.FindByID(ctx, s.db, redlineID)
	if err != nil {
		return nil, err
	}
	if redline == nil {
		return nil, redlinedomain.ErrRedlineNotFound
	}

	var changes []redlinedomain.Change
	if err := json.Unmarshal(redline.Changes, &changes); err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	applied := make([]map[string]any, 0, len(changes))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The status flip guards the whole apply: a second concurrent
		// apply loses the conditional update and rolls back.
		affected, err := s.repo.TransitionStatus(ctx, tx, redlineID,
			redlinedomain.StatusApproved, redlinedomain.StatusApplied,
			map[string]any{
				"applied_by": actor.ID,
				"applied_at": now,
				"updated_at": now,
			})
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.transitionError(ctx, tx, redlineID, "apply")
		}

		for _, change := range changes {
			item, err := s.ratecardRepo.FindActiveItemByCode(ctx, tx, redline.ProfileID, change.Code)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: code %s", ratecarddomain.ErrItemNotFound, change.Code)
			}

			old, err := applyChange(item, change)
			if err != nil {
				return err
			}
			item.UpdatedAt = now
			if err := s.ratecardRepo.UpdateItem(ctx, tx, item); err != nil {
				return err
			}
			applied = append(applied, map[string]any{
				"code":  change.Code,
				"field": change.Field,
				"old":   old,
				"new":   change.New,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, auditdomain.ActionRedlineApplied, redline, actor,
		map[string]any{"changes": applied},
		map[string]any{"change_count": len(changes)})
	s.transitionMetric(redlinedomain.StatusApplied)

	s.log.Info("redline applied",
		zap.Int64("redline_id", redlineID.Int64()),
		zap.Int64("profile_id", redline.ProfileID.Int64()),
		zap.Int("changes", len(changes)))

	return s.repo.FindByID(ctx, s.db, redlineID)
}

func (s *Service) Get(ctx context.Context, redlineID snowflake.ID) (*redlinedomain.Redline, error) {
	redline, err := s.repo.FindByID(ctx, s.db, redlineID)
	if err != nil {
		return nil, err
	}
	if redline == nil {
		return nil, redlinedomain.ErrRedlineNotFound
	}
	return redline, nil
}

func (s *Service) ListByProfile(ctx context.Context, profileID snowflake.ID) ([]redlinedomain.Redline, error) {
	return s.repo.ListByProfile(ctx, s.db, profileID)
}

func (s *Service) ListReviews(ctx context.Context, redlineID snowflake.ID) ([]redlinedomain.Review, error) {
	return s.repo.ListReviews(ctx, s.db, redlineID)
}

// applyChange writes one change into the live item and returns the
// previous value for the audit trail.
func applyChange(item *ratecarddomain.RateCardItem, change redlinedomain.Change) (string, error) {
	switch change.Field {
	case redlinedomain.FieldCompanyRate, redlinedomain.FieldWorkerRate, redlinedomain.FieldInvestorRate:
		rate, err := decimal.NewFromString(change.New)
		if err != nil {
			return "", fmt.Errorf("change for %s.%s: %w", change.Code, change.Field, err)
		}
		if rate.IsNegative() {
			return "", ratecarddomain.ErrNegativeRate
		}
		var old decimal.Decimal
		switch change.Field {
		case redlinedomain.FieldCompanyRate:
			old, item.CompanyRate = item.CompanyRate, rate
		case redlinedomain.FieldWorkerRate:
			old, item.WorkerRate = item.WorkerRate, rate
		case redlinedomain.FieldInvestorRate:
			old, item.InvestorRate = item.InvestorRate, rate
		}
		return old.String(), nil
	case redlinedomain.FieldDescription:
		old := item.Description
		item.Description = change.New
		return old, nil
	case redlinedomain.FieldUnit:
		old := item.Unit
		item.Unit = ratecarddomain.Unit(change.New)
		return string(old), nil
	default:
		return "", fmt.Errorf("%w: %s", redlinedomain.ErrUnknownField, change.Field)
	}
}

func validateChanges(changes []redlinedomain.Change) error {
	for _, change := range changes {
		switch change.Field {
		case redlinedomain.FieldCompanyRate, redlinedomain.FieldWorkerRate, redlinedomain.FieldInvestorRate:
			rate, err := decimal.NewFromString(change.New)
			if err != nil {
				return fmt.Errorf("change for %s.%s: %w", change.Code, change.Field, err)
			}
			if rate.IsNegative() {
				return ratecarddomain.ErrNegativeRate
			}
		case redlinedomain.FieldDescription, redlinedomain.FieldUnit:
		default:
			return fmt.Errorf("%w: %s", redlinedomain.ErrUnknownField, change.Field)
		}
	}
	return nil
}

// transitionError refetches the row so the caller learns the actual
// current status, not the stale one it read before. Callers inside a
// transaction must pass tx; the refetch has to ride the same
// connection.
func (s *Service) transitionError(ctx context.Context, db *gorm.DB, id snowflake.ID, attempted string) error {
	current, err := s.repo.FindByID(ctx, db, id)
	if err != nil || current == nil {
		return &redlinedomain.InvalidTransitionError{Attempted: attempted, Current: "unknown"}
	}
	return &redlinedomain.InvalidTransitionError{Attempted: attempted, Current: current.Status}
}

func (s *Service) audit(ctx context.Context, action auditdomain.Action, redline *redlinedomain.Redline, actor redlinedomain.Actor, after map[string]any, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	actorID := actor.ID
	s.auditSvc.Log(ctx, auditdomain.Entry{
		Action:     action,
		EntityType: "redline",
		EntityID:   redline.ID.String(),
		ActorID:    &actorID,
		ActorName:  actor.Name,
		After:      after,
		Metadata:   metadata,
	})
}

func (s *Service) transitionMetric(to redlinedomain.Status) {
	if s.metrics != nil {
		s.metrics.RedlineTransitions.WithLabelValues(string(to)).Inc()
	}
}
