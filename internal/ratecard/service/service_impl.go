package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
	"github.com/groundworklabs/groundwork/internal/clock"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	"github.com/groundworklabs/groundwork/internal/ratecard/repository"
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
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     ratecarddomain.Repository
	auditSvc auditdomain.Service
}

func NewService(p Params) ratecarddomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("ratecard.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     repository.NewRepository(),
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) CreateGroup(ctx context.Context, req ratecarddomain.CreateGroupRequest) (*ratecarddomain.RateCardGroup, error) {
	existing, err := s.repo.FindActiveGroupByCustomerRegion(ctx, s.db, req.CustomerName, req.RegionCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ratecarddomain.ErrGroupConflict
	}

	now := s.clock.Now(ctx)
	group := &ratecarddomain.RateCardGroup{
		ID:           s.genID.Generate(),
		CustomerName: req.CustomerName,
		RegionCode:   req.RegionCode,
		ClientID:     req.ClientID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertGroup(ctx, s.db, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) DeactivateGroup(ctx context.Context, groupID snowflake.ID, actor ratecarddomain.Actor) error {
	group, err := s.repo.FindGroupByID(ctx, s.db, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ratecarddomain.ErrGroupNotFound
	}

	if err := s.repo.UpdateGroupActive(ctx, s.db, groupID, false); err != nil {
		return err
	}

	s.audit(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionGroupDeactivated,
		EntityType: "rate_card_group",
		EntityID:   groupID.String(),
		ActorID:    &actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Before:     datatypes.JSONMap{"active": true},
		After:      datatypes.JSONMap{"active": false},
	})
	return nil
}

func (s *Service) GetGroup(ctx context.Context, groupID snowflake.ID) (*ratecarddomain.RateCardGroup, error) {
	group, err := s.repo.FindGroupByID(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ratecarddomain.ErrGroupNotFound
	}
	return group, nil
}

func (s *Service) CreateProfile(ctx context.Context, req ratecarddomain.CreateProfileRequest) (*ratecarddomain.RateCardProfile, error) {
	group, err := s.repo.FindGroupByID(ctx, s.db, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ratecarddomain.ErrGroupNotFound
	}

	now := s.clock.Now(ctx)
	profile := &ratecarddomain.RateCardProfile{
		ID:        s.genID.Generate(),
		GroupID:   req.GroupID,
		Name:      req.Name,
		Type:      req.Type,
		IsDefault: req.IsDefault,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := s.repo.ClearDefaultProfile(ctx, tx, req.GroupID); err != nil {
				return err
			}
		}
		return s.repo.InsertProfile(ctx, tx, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// DuplicateProfile deep-copies a profile and all of its active items.
// The source profile is left untouched and the copy is never default.
func (s *Service) DuplicateProfile(ctx context.Context, req ratecarddomain.DuplicateProfileRequest) (*ratecarddomain.RateCardProfile, error) {
	source, err := s.repo.FindProfileByID(ctx, s.db, req.SourceProfileID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ratecarddomain.ErrProfileNotFound
	}

	now := s.clock.Now(ctx)
	copyProfile := &ratecarddomain.RateCardProfile{
		ID:        s.genID.Generate(),
		GroupID:   source.GroupID,
		Name:      req.Name,
		Type:      source.Type,
		IsDefault: false,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var copied int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertProfile(ctx, tx, copyProfile); err != nil {
			return err
		}

		items, err := s.repo.ListActiveItems(ctx, tx, source.ID)
		if err != nil {
			return err
		}

		copies := make([]ratecarddomain.RateCardItem, 0, len(items))
		for _, item := range items {
			copies = append(copies, ratecarddomain.RateCardItem{
				ID:           s.genID.Generate(),
				ProfileID:    copyProfile.ID,
				Code:         item.Code,
				Description:  item.Description,
				Unit:         item.Unit,
				CompanyRate:  item.CompanyRate,
				WorkerRate:   item.WorkerRate,
				InvestorRate: item.InvestorRate,
				Active:       true,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
		copied = len(copies)
		return s.repo.InsertItems(ctx, tx, copies)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionProfileDuplicate,
		EntityType: "rate_card_profile",
		EntityID:   copyProfile.ID.String(),
		ActorID:    &req.Actor.ID,
		ActorName:  req.Actor.Name,
		ActorRole:  req.Actor.Role,
		Metadata: datatypes.JSONMap{
			"source_profile_id": source.ID.String(),
			"items_copied":      copied,
		},
	})
	return copyProfile, nil
}

func (s *Service) ListProfiles(ctx context.Context, groupID snowflake.ID) ([]ratecarddomain.RateCardProfile, error) {
	return s.repo.ListProfilesByGroup(ctx, s.db, groupID)
}

func (s *Service) ListItems(ctx context.Context, profileID snowflake.ID) ([]ratecarddomain.RateCardItem, error) {
	return s.repo.ListActiveItems(ctx, s.db, profileID)
}

// UpdateItem is the ungoverned direct-edit path. It bypasses the redline
// diff but still writes a before/after audit entry.
func (s *Service) UpdateItem(ctx context.Context, req ratecarddomain.UpdateItemRequest) (*ratecarddomain.RateCardItem, error) {
	item, err := s.repo.FindItemByID(ctx, s.db, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ratecarddomain.ErrItemNotFound
	}

	before := datatypes.JSONMap{}
	after := datatypes.JSONMap{}

	if req.Update.Description != nil && *req.Update.Description != item.Description {
		before["description"] = item.Description
		after["description"] = *req.Update.Description
		item.Description = *req.Update.Description
	}
	if req.Update.Unit != nil && *req.Update.Unit != item.Unit {
		before["unit"] = string(item.Unit)
		after["unit"] = string(*req.Update.Unit)
		item.Unit = *req.Update.Unit
	}
	if err := applyRate(&item.CompanyRate, req.Update.CompanyRate, "company_rate", before, after); err != nil {
		return nil, err
	}
	if err := applyRate(&item.WorkerRate, req.Update.WorkerRate, "worker_rate", before, after); err != nil {
		return nil, err
	}
	if err := applyRate(&item.InvestorRate, req.Update.InvestorRate, "investor_rate", before, after); err != nil {
		return nil, err
	}

	if len(after) == 0 {
		return item, nil
	}

	item.UpdatedAt = s.clock.Now(ctx)
	if err := s.repo.UpdateItem(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.audit(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionRateItemUpdated,
		EntityType: "rate_card_item",
		EntityID:   item.ID.String(),
		ActorID:    &req.Actor.ID,
		ActorName:  req.Actor.Name,
		ActorRole:  req.Actor.Role,
		Before:     before,
		After:      after,
		Metadata:   datatypes.JSONMap{"code": item.Code, "profile_id": item.ProfileID.String()},
	})
	return item, nil
}

// BulkImport applies validated rows from the rate-import collaborator
// with create-or-update-by-code semantics. One audit entry summarizes
// the whole batch.
func (s *Service) BulkImport(ctx context.Context, req ratecarddomain.BulkImportRequest) (*ratecarddomain.ImportSummary, error) {
	if len(req.Rows) == 0 {
		return nil, ratecarddomain.ErrEmptyImport
	}

	profile, err := s.repo.FindProfileByID(ctx, s.db, req.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ratecarddomain.ErrProfileNotFound
	}

	for _, row := range req.Rows {
		if row.CompanyRate.IsNegative() || row.WorkerRate.IsNegative() || row.InvestorRate.IsNegative() {
			return nil, ratecarddomain.ErrNegativeRate
		}
	}

	summary := &ratecarddomain.ImportSummary{BatchID: uuid.NewString()}
	now := s.clock.Now(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range req.Rows {
			existing, err := s.repo.FindActiveItemByCode(ctx, tx, req.ProfileID, row.Code)
			if err != nil {
				return err
			}
			if existing == nil {
				item := ratecarddomain.RateCardItem{
					ID:           s.genID.Generate(),
					ProfileID:    req.ProfileID,
					Code:         row.Code,
					Description:  row.Description,
					Unit:         row.Unit,
					CompanyRate:  row.CompanyRate,
					WorkerRate:   row.WorkerRate,
					InvestorRate: row.InvestorRate,
					Active:       true,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := s.repo.InsertItems(ctx, tx, []ratecarddomain.RateCardItem{item}); err != nil {
					return err
				}
				summary.Created++
				continue
			}

			existing.Description = row.Description
			existing.Unit = row.Unit
			existing.CompanyRate = row.CompanyRate
			existing.WorkerRate = row.WorkerRate
			existing.InvestorRate = row.InvestorRate
			existing.UpdatedAt = now
			if err := s.repo.UpdateItem(ctx, tx, existing); err != nil {
				return err
			}
			summary.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionRatesImported,
		EntityType: "rate_card_profile",
		EntityID:   req.ProfileID.String(),
		ActorID:    &req.Actor.ID,
		ActorName:  req.Actor.Name,
		ActorRole:  req.Actor.Role,
		Metadata: datatypes.JSONMap{
			"batch_id": summary.BatchID,
			"created":  summary.Created,
			"updated":  summary.Updated,
		},
	})

	s.log.Info("bulk rate import applied",
		zap.String("profile_id", req.ProfileID.String()),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
	)
	return summary, nil
}

func (s *Service) audit(ctx context.Context, entry auditdomain.Entry) {
	if s.auditSvc == nil {
		return
	}
	s.auditSvc.Log(ctx, entry)
}

func applyRate(current *decimal.Decimal, next *decimal.Decimal, field string, before, after datatypes.JSONMap) error {
	if next == nil || next.Equal(*current) {
		return nil
	}
	if next.IsNegative() {
		return ratecarddomain.ErrNegativeRate
	}
	before[field] = current.String()
	after[field] = next.String()
	*current = *next
	return nil
}
