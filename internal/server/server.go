// Package server exposes the HTTP surface: rate catalog management,
// calculation, redline workflow, foreman pay, payroll and audit.
package server

import (
	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	"github.com/groundworklabs/groundwork/internal/observability"
	payrolldomain "github.com/groundworklabs/groundwork/internal/payroll/domain"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	redlinedomain "github.com/groundworklabs/groundwork/internal/redline/domain"
	referencedomain "github.com/groundworklabs/groundwork/internal/reference/domain"
	"github.com/groundworklabs/groundwork/internal/taskqueue"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	RateCardSvc  ratecarddomain.Service
	RatingSvc    ratingdomain.Service
	RedlineSvc   redlinedomain.Service
	ForemanSvc   foremandomain.Service
	PayrollSvc   payrolldomain.Service
	AuditSvc     auditdomain.Service
	ReferenceSvc referencedomain.Service `optional:"true"`
	Queue        *taskqueue.Queue        `optional:"true"`
	Metrics      *observability.Metrics  `optional:"true"`
}

type Server struct {
	log          *zap.Logger
	ratecardSvc  ratecarddomain.Service
	ratingSvc    ratingdomain.Service
	redlineSvc   redlinedomain.Service
	foremanSvc   foremandomain.Service
	payrollSvc   payrolldomain.Service
	auditSvc     auditdomain.Service
	referenceSvc referencedomain.Service
	queue        *taskqueue.Queue
	metrics      *observability.Metrics
}

func NewServer(p Params) *Server {
	return &Server{
		log:          p.Log.Named("server"),
		ratecardSvc:  p.RateCardSvc,
		ratingSvc:    p.RatingSvc,
		redlineSvc:   p.RedlineSvc,
		foremanSvc:   p.ForemanSvc,
		payrollSvc:   p.PayrollSvc,
		auditSvc:     p.AuditSvc,
		referenceSvc: p.ReferenceSvc,
		queue:        p.Queue,
		metrics:      p.Metrics,
	}
}
