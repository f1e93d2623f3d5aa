package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	payrolldomain "github.com/groundworklabs/groundwork/internal/payroll/domain"
)

func weekOfQuery(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("week_of"))
	if raw == "" {
		return time.Now().UTC(), true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return time.Time{}, false
	}
	return day, true
}

// AggregatePayroll recomputes the weekly aggregates synchronously.
func (s *Server) AggregatePayroll(c *gin.Context) {
	day, ok := weekOfQuery(c)
	if !ok {
		return
	}
	summary, err := s.payrollSvc.Aggregate(c.Request.Context(), day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, summary)
}

// EnqueuePayrollAggregation schedules the aggregation on the worker
// pool and returns immediately.
func (s *Server) EnqueuePayrollAggregation(c *gin.Context) {
	day, ok := weekOfQuery(c)
	if !ok {
		return
	}
	if s.queue == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.queue.EnqueueAggregation(day); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"enqueued": true, "week_of": day.Format("2006-01-02")})
}

func (s *Server) GetPayrollSummary(c *gin.Context) {
	day, ok := weekOfQuery(c)
	if !ok {
		return
	}
	summary, err := s.payrollSvc.GetSummary(c.Request.Context(), day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, summary)
}

type markRequest struct {
	PaymentRef string       `json:"payment_ref"`
	Actor      actorPayload `json:"actor"`
}

func (s *Server) markPayload(c *gin.Context) (payrolldomain.MarkRequest, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return payrolldomain.MarkRequest{}, false
	}
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return payrolldomain.MarkRequest{}, false
	}
	actorID, err := snowflake.ParseString(strings.TrimSpace(req.Actor.ID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return payrolldomain.MarkRequest{}, false
	}
	return payrolldomain.MarkRequest{
		RecordID:   id,
		ActorID:    actorID,
		ActorName:  req.Actor.Name,
		PaymentRef: strings.TrimSpace(req.PaymentRef),
	}, true
}

func (s *Server) ApprovePayrollRecord(c *gin.Context) {
	req, ok := s.markPayload(c)
	if !ok {
		return
	}
	if err := s.payrollSvc.ApproveRecord(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"status": payrolldomain.StatusApproved})
}

func (s *Server) MarkPayrollRecordPaid(c *gin.Context) {
	req, ok := s.markPayload(c)
	if !ok {
		return
	}
	if err := s.payrollSvc.MarkRecordPaid(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"status": payrolldomain.StatusPaid})
}

func (s *Server) ApproveInvestorReturn(c *gin.Context) {
	req, ok := s.markPayload(c)
	if !ok {
		return
	}
	if err := s.payrollSvc.ApproveReturn(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"status": payrolldomain.StatusApproved})
}

func (s *Server) MarkInvestorReturnPaid(c *gin.Context) {
	req, ok := s.markPayload(c)
	if !ok {
		return
	}
	if err := s.payrollSvc.MarkReturnPaid(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"status": payrolldomain.StatusPaid})
}
