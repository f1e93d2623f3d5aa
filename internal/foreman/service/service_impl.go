package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/groundworklabs/groundwork/internal/clock"
	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	"github.com/groundworklabs/groundwork/internal/foreman/repository"
	"github.com/groundworklabs/groundwork/pkg/period"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  foremandomain.Repository
}

func NewService(p Params) foremandomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("foreman.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  repository.NewRepository(p.DB),
	}
}

func (s *Service) RecordEntry(ctx context.Context, entry foremandomain.DailyEntry) (*foremandomain.DailyEntry, error) {
	if entry.FootageFt.IsNegative() {
		return nil, foremandomain.ErrNegativeFootage
	}
	if entry.FullDay && entry.HalfDay {
		return nil, foremandomain.ErrConflictingDayFlags
	}

	if entry.ID == 0 {
		entry.ID = s.genID.Generate()
	}
	entry.EntryDate = entry.EntryDate.Truncate(24 * time.Hour)
	entry.CreatedAt = s.clock.Now(ctx)

	if err := s.repo.InsertEntry(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) CalculateWeek(ctx context.Context, workerID snowflake.ID, anyDay time.Time) (*foremandomain.PayDetails, error) {
	start, end := period.WeekBounds(anyDay)
	entries, err := s.repo.ListEntriesForWorker(ctx, workerID, start, end)
	if err != nil {
		return nil, err
	}

	details := CalculateWeekPay(entries)
	return &details, nil
}

func (s *Service) BonusProgress(ctx context.Context, workerID snowflake.ID, anyDay time.Time) (*foremandomain.BonusProgress, error) {
	start, end := period.WeekBounds(anyDay)
	entries, err := s.repo.ListEntriesForWorker(ctx, workerID, start, end)
	if err != nil {
		return nil, err
	}

	details := CalculateWeekPay(entries)
	percent, eligible := ProgressFor(details.FootageFt)

	return &foremandomain.BonusProgress{
		WorkerID:        workerID,
		WeekStart:       start,
		FootageFt:       details.FootageFt,
		TargetFt:        foremandomain.BonusThresholdFt,
		PercentComplete: percent,
		Eligible:        eligible,
		BonusAmount:     foremandomain.BonusAmount,
	}, nil
}
