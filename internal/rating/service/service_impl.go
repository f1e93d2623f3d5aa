package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
	"github.com/groundworklabs/groundwork/internal/clock"
	"github.com/groundworklabs/groundwork/internal/observability"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratecardrepo "github.com/groundworklabs/groundwork/internal/ratecard/repository"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"github.com/groundworklabs/groundwork/internal/rating/repository"
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
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     ratingdomain.Repository
	cardRepo ratecarddomain.Repository
	auditSvc auditdomain.Service
	metrics  *observability.Metrics
}

func NewService(p Params) ratingdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("rating.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		repo:     repository.NewRepository(p.DB),
		cardRepo: ratecardrepo.NewRepository(),
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) ResolveAndCalculate(ctx context.Context, req ratingdomain.CalculateRequest) (*ratingdomain.CalculateResponse, error) {
	groupID, err := s.ResolveGroup(ctx, req.Job)
	if err != nil {
		s.countCalculation("resolve_failed")
		return nil, err
	}

	codes := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		codes = append(codes, line.Code)
	}

	resolved, err := s.ResolveRates(ctx, groupID, codes)
	if err != nil {
		s.countCalculation("resolve_failed")
		return nil, err
	}

	result, err := Calculate(req.Lines, resolved.Rates)
	if err != nil {
		s.countCalculation("failed")
		return nil, err
	}

	s.countCalculation("ok")
	return &ratingdomain.CalculateResponse{Result: result, Resolved: *resolved}, nil
}

// Persist writes the immutable snapshot. There is no update or delete
// path for calculated totals; a correction is a new row carrying
// SupersedesID.
func (s *Service) Persist(ctx context.Context, req ratingdomain.PersistRequest) (*ratingdomain.CalculatedTotal, error) {
	frozen := req.Frozen
	if frozen.CapturedAt.IsZero() {
		frozen.CapturedAt = s.clock.Now(ctx)
	}

	contextJSON, err := json.Marshal(frozen)
	if err != nil {
		return nil, fmt.Errorf("marshal frozen context: %w", err)
	}
	linesJSON, err := json.Marshal(req.Result.Lines)
	if err != nil {
		return nil, fmt.Errorf("marshal line detail: %w", err)
	}

	completedAt := req.JobCompletedAt
	if completedAt.IsZero() {
		completedAt = s.clock.Now(ctx)
	}

	total := &ratingdomain.CalculatedTotal{
		ID:             s.genID.Generate(),
		SubmissionRef:  req.SubmissionRef,
		JobRef:         req.JobRef,
		JobCompletedAt: completedAt,
		Context:        contextJSON,
		Lines:          linesJSON,
		CompanyTotal:   req.Result.CompanyTotal,
		WorkerTotal:    req.Result.WorkerTotal,
		InvestorTotal:  req.Result.InvestorTotal,
		Margin:         req.Result.Margin,
		MarginPercent:  req.Result.MarginPercent,
		SupersedesID:   req.SupersedesID,
		CreatedAt:      s.clock.Now(ctx),
	}

	if err := s.repo.InsertCalculatedTotal(ctx, total); err != nil {
		return nil, err
	}

	if s.auditSvc != nil {
		meta := datatypes.JSONMap{
			"submission_ref": req.SubmissionRef,
			"job_ref":        req.JobRef,
			"company_total":  req.Result.CompanyTotal.String(),
		}
		if req.SupersedesID != nil {
			meta["supersedes_id"] = req.SupersedesID.String()
		}
		s.auditSvc.Log(ctx, auditdomain.Entry{
			Action:     auditdomain.ActionCalculationSaved,
			EntityType: "calculated_total",
			EntityID:   total.ID.String(),
			Metadata:   meta,
		})
	}
	return total, nil
}

func (s *Service) GetCalculation(ctx context.Context, id snowflake.ID) (*ratingdomain.CalculatedTotal, error) {
	total, err := s.repo.FindCalculatedTotal(ctx, id)
	if err != nil {
		return nil, err
	}
	if total == nil {
		return nil, ratingdomain.ErrCalculationNotFound
	}
	return total, nil
}

func (s *Service) ListBySubmission(ctx context.Context, submissionRef string) ([]ratingdomain.CalculatedTotal, error) {
	return s.repo.ListBySubmission(ctx, submissionRef)
}

func (s *Service) countCalculation(outcome string) {
	if s.metrics != nil {
		s.metrics.CalculationsRun.WithLabelValues(outcome).Inc()
	}
}
