package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
	"github.com/groundworklabs/groundwork/internal/clock"
	"github.com/groundworklabs/groundwork/internal/config"
	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	foremanrepo "github.com/groundworklabs/groundwork/internal/foreman/repository"
	"github.com/groundworklabs/groundwork/internal/observability"
	payrolldomain "github.com/groundworklabs/groundwork/internal/payroll/domain"
	"github.com/groundworklabs/groundwork/internal/payroll/repository"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	ratingrepo "github.com/groundworklabs/groundwork/internal/rating/repository"
	"github.com/groundworklabs/groundwork/pkg/period"
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
	Cfg      config.Config
	AuditSvc auditdomain.Service    `optional:"true"`
	Metrics  *observability.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	repo        payrolldomain.Repository
	ratingRepo  ratingdomain.Repository
	foremanRepo foremandomain.Repository
	auditSvc    auditdomain.Service
	metrics     *observability.Metrics
	payOffset   int
}

func NewService(p Params) payrolldomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payroll.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        repository.NewRepository(p.DB),
		ratingRepo:  ratingrepo.NewRepository(p.DB),
		foremanRepo: foremanrepo.NewRepository(p.DB),
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
		payOffset:   p.Cfg.Payroll.PayDateOffsetMonths,
	}
}

func (s *Service) Aggregate(ctx context.Context, anyDay time.Time) (*payrolldomain.WeeklyPayrollSummary, error) {
	start, end := period.WeekBounds(anyDay)

	payPeriod, err := s.ensurePeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}

	calcs, err := s.ratingRepo.ListCompletedInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	entries, err := s.foremanRepo.ListEntriesInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	workerDrafts, investorDrafts, err := BuildAggregates(calcs, entries)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	for _, draft := range workerDrafts {
		breakdown, err := json.Marshal(draft.Breakdown)
		if err != nil {
			return nil, err
		}
		record := &payrolldomain.PayrollRecord{
			ID:          s.genID.Generate(),
			PeriodID:    payPeriod.ID,
			WorkerID:    draft.WorkerID,
			WorkerName:  draft.WorkerName,
			WorkerRole:  draft.WorkerRole,
			TotalAmount: draft.Total,
			JobCount:    draft.JobCount,
			FootageFt:   draft.FootageFt,
			Breakdown:   breakdown,
			Status:      payrolldomain.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.UpsertPayrollRecord(ctx, record); err != nil {
			return nil, err
		}
	}

	for _, draft := range investorDrafts {
		breakdown, err := json.Marshal(draft.Breakdown)
		if err != nil {
			return nil, err
		}
		ret := &payrolldomain.InvestorReturn{
			ID:           s.genID.Generate(),
			PeriodID:     payPeriod.ID,
			InvestorID:   draft.InvestorID,
			InvestorName: draft.InvestorName,
			EquipmentID:  draft.EquipmentID,
			TotalAmount:  draft.Total,
			JobCount:     draft.JobCount,
			Breakdown:    breakdown,
			Status:       payrolldomain.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.UpsertInvestorReturn(ctx, ret); err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.PayrollAggregations.Inc()
	}
	if s.auditSvc != nil {
		s.auditSvc.Log(ctx, auditdomain.Entry{
			Action:     auditdomain.ActionPayrollAggregated,
			EntityType: "pay_period",
			EntityID:   payPeriod.ID.String(),
			Metadata: datatypes.JSONMap{
				"week_start": start.Format("2006-01-02"),
				"workers":    len(workerDrafts),
				"investors":  len(investorDrafts),
			},
		})
	}

	return s.summarize(ctx, payPeriod)
}

func (s *Service) GetSummary(ctx context.Context, anyDay time.Time) (*payrolldomain.WeeklyPayrollSummary, error) {
	start, end := period.WeekBounds(anyDay)
	payPeriod, err := s.ensurePeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, payPeriod)
}

func (s *Service) summarize(ctx context.Context, payPeriod *payrolldomain.PayPeriod) (*payrolldomain.WeeklyPayrollSummary, error) {
	records, err := s.repo.ListPayrollRecords(ctx, payPeriod.ID)
	if err != nil {
		return nil, err
	}
	returns, err := s.repo.ListInvestorReturns(ctx, payPeriod.ID)
	if err != nil {
		return nil, err
	}

	summary := &payrolldomain.WeeklyPayrollSummary{
		Period:          *payPeriod,
		Records:         records,
		InvestorReturns: returns,
	}
	for _, record := range records {
		summary.TotalPayroll = summary.TotalPayroll.Add(record.TotalAmount)
	}
	for _, ret := range returns {
		summary.TotalInvestor = summary.TotalInvestor.Add(ret.TotalAmount)
	}
	return summary, nil
}

func (s *Service) ensurePeriod(ctx context.Context, start, end time.Time) (*payrolldomain.PayPeriod, error) {
	existing, err := s.repo.FindPeriodByWeekStart(ctx, start)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	payPeriod := &payrolldomain.PayPeriod{
		ID:        s.genID.Generate(),
		WeekStart: start,
		WeekEnd:   end,
		PayDate:   period.PayDate(end, s.payOffset),
		CreatedAt: s.clock.Now(ctx),
	}
	if err := s.repo.InsertPeriod(ctx, payPeriod); err != nil {
		return nil, err
	}
	return payPeriod, nil
}

func (s *Service) ApproveRecord(ctx context.Context, req payrolldomain.MarkRequest) error {
	record, err := s.repo.FindPayrollRecord(ctx, req.RecordID)
	if err != nil {
		return err
	}
	if record == nil {
		return payrolldomain.ErrRecordNotFound
	}

	now := s.clock.Now(ctx)
	fields := map[string]any{
		"approved_by":      req.ActorID,
		"approved_by_name": req.ActorName,
		"approved_at":      now,
		"updated_at":       now,
	}
	affected, err := s.repo.TransitionRecordStatus(ctx, req.RecordID, payrolldomain.StatusPending, payrolldomain.StatusApproved, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.recordStatusError(ctx, req.RecordID, payrolldomain.StatusApproved)
	}

	s.auditStatus(ctx, auditdomain.ActionPayrollApproved, "payroll_record", req, nil)
	return nil
}

func (s *Service) MarkRecordPaid(ctx context.Context, req payrolldomain.MarkRequest) error {
	record, err := s.repo.FindPayrollRecord(ctx, req.RecordID)
	if err != nil {
		return err
	}
	if record == nil {
		return payrolldomain.ErrRecordNotFound
	}

	now := s.clock.Now(ctx)
	fields := map[string]any{
		"paid_by":      req.ActorID,
		"paid_by_name": req.ActorName,
		"paid_at":      now,
		"payment_ref":  req.PaymentRef,
		"updated_at":   now,
	}
	affected, err := s.repo.TransitionRecordStatus(ctx, req.RecordID, payrolldomain.StatusApproved, payrolldomain.StatusPaid, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.recordStatusError(ctx, req.RecordID, payrolldomain.StatusPaid)
	}

	s.auditStatus(ctx, auditdomain.ActionPayrollPaid, "payroll_record", req, &record.TotalAmount)
	return nil
}

func (s *Service) ApproveReturn(ctx context.Context, req payrolldomain.MarkRequest) error {
	ret, err := s.repo.FindInvestorReturn(ctx, req.RecordID)
	if err != nil {
		return err
	}
	if ret == nil {
		return payrolldomain.ErrReturnNotFound
	}

	now := s.clock.Now(ctx)
	fields := map[string]any{
		"approved_by":      req.ActorID,
		"approved_by_name": req.ActorName,
		"approved_at":      now,
		"updated_at":       now,
	}
	affected, err := s.repo.TransitionReturnStatus(ctx, req.RecordID, payrolldomain.StatusPending, payrolldomain.StatusApproved, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.returnStatusError(ctx, req.RecordID, payrolldomain.StatusApproved)
	}

	s.auditStatus(ctx, auditdomain.ActionPayrollApproved, "investor_return", req, nil)
	return nil
}

func (s *Service) MarkReturnPaid(ctx context.Context, req payrolldomain.MarkRequest) error {
	ret, err := s.repo.FindInvestorReturn(ctx, req.RecordID)
	if err != nil {
		return err
	}
	if ret == nil {
		return payrolldomain.ErrReturnNotFound
	}

	now := s.clock.Now(ctx)
	fields := map[string]any{
		"paid_by":      req.ActorID,
		"paid_by_name": req.ActorName,
		"paid_at":      now,
		"payment_ref":  req.PaymentRef,
		"updated_at":   now,
	}
	affected, err := s.repo.TransitionReturnStatus(ctx, req.RecordID, payrolldomain.StatusApproved, payrolldomain.StatusPaid, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.returnStatusError(ctx, req.RecordID, payrolldomain.StatusPaid)
	}

	s.auditStatus(ctx, auditdomain.ActionPayrollPaid, "investor_return", req, &ret.TotalAmount)
	return nil
}

func (s *Service) recordStatusError(ctx context.Context, id snowflake.ID, attempted payrolldomain.Status) error {
	record, err := s.repo.FindPayrollRecord(ctx, id)
	if err != nil {
		return err
	}
	current := payrolldomain.Status("unknown")
	if record != nil {
		current = record.Status
	}
	return &payrolldomain.StatusError{Attempted: attempted, Current: current}
}

func (s *Service) returnStatusError(ctx context.Context, id snowflake.ID, attempted payrolldomain.Status) error {
	ret, err := s.repo.FindInvestorReturn(ctx, id)
	if err != nil {
		return err
	}
	current := payrolldomain.Status("unknown")
	if ret != nil {
		current = ret.Status
	}
	return &payrolldomain.StatusError{Attempted: attempted, Current: current}
}

func (s *Service) auditStatus(ctx context.Context, action auditdomain.Action, entityType string, req payrolldomain.MarkRequest, amount *decimal.Decimal) {
	if s.auditSvc == nil {
		return
	}
	meta := datatypes.JSONMap{}
	if req.PaymentRef != "" {
		meta["payment_ref"] = req.PaymentRef
	}
	if amount != nil {
		meta["amount"] = amount.String()
	}
	s.auditSvc.Log(ctx, auditdomain.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   req.RecordID.String(),
		ActorID:    &req.ActorID,
		ActorName:  req.ActorName,
		Metadata:   meta,
	})
}
