package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"github.com/shopspring/decimal"
)

type lineInputPayload struct {
	Code     string `json:"code"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

type calculateRequest struct {
	JobRef       string             `json:"job_ref"`
	ClientID     *string            `json:"client_id"`
	CustomerName string             `json:"customer_name"`
	RegionCode   string             `json:"region_code"`
	Lines        []lineInputPayload `json:"lines"`
}

func (req calculateRequest) toDomain() (ratingdomain.CalculateRequest, error) {
	out := ratingdomain.CalculateRequest{
		JobRef: strings.TrimSpace(req.JobRef),
		Job: ratingdomain.JobContext{
			CustomerName: strings.TrimSpace(req.CustomerName),
			RegionCode:   strings.TrimSpace(req.RegionCode),
		},
	}
	if req.ClientID != nil {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.ClientID))
		if err != nil {
			return out, ErrInvalidRequest
		}
		out.Job.ClientID = &id
	}
	for _, raw := range req.Lines {
		qty, err := decimal.NewFromString(raw.Quantity)
		if err != nil {
			return out, ErrInvalidRequest
		}
		out.Lines = append(out.Lines, ratingdomain.LineInput{
			Code:     strings.TrimSpace(raw.Code),
			Quantity: qty,
			Unit:     ratecarddomain.Unit(raw.Unit),
		})
	}
	return out, nil
}

// Calculate resolves rates for the job context and prices the lines
// without persisting anything.
func (s *Server) Calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	domainReq, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.ratingSvc.ResolveAndCalculate(c.Request.Context(), domainReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{
		"group_id": resp.Resolved.GroupID.String(),
		"result":   resp.Result,
	})
}

type persistCalculationRequest struct {
	calculateRequest
	SubmissionRef  string     `json:"submission_ref"`
	JobCompletedAt *time.Time `json:"job_completed_at"`
	WorkerID       string     `json:"worker_id"`
	WorkerName     string     `json:"worker_name"`
	WorkerRole     string     `json:"worker_role"`
	EquipmentID    string     `json:"equipment_id"`
	InvestorID     string     `json:"investor_id"`
	InvestorName   string     `json:"investor_name"`
	SupersedesID   *string    `json:"supersedes_id"`
}

// SaveCalculation calculates and persists the immutable snapshot in
// one request.
func (s *Server) SaveCalculation(c *gin.Context) {
	var req persistCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	domainReq, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	resp, err := s.ratingSvc.ResolveAndCalculate(ctx, domainReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	frozen := ratingdomain.FrozenContext{
		JobID:        domainReq.JobRef,
		CustomerName: domainReq.Job.CustomerName,
		RegionCode:   domainReq.Job.RegionCode,
		WorkerID:     strings.TrimSpace(req.WorkerID),
		WorkerName:   req.WorkerName,
		WorkerRole:   req.WorkerRole,
		EquipmentID:  strings.TrimSpace(req.EquipmentID),
		InvestorID:   strings.TrimSpace(req.InvestorID),
		InvestorName: req.InvestorName,
		GroupID:      resp.Resolved.GroupID.String(),
		Rates:        make(map[string]ratingdomain.FrozenRate, len(resp.Resolved.Rates)),
	}
	if domainReq.Job.ClientID != nil {
		frozen.ClientID = domainReq.Job.ClientID.String()
	}
	for code, triple := range resp.Resolved.Rates {
		frozen.Rates[code] = ratingdomain.FrozenRate{
			CompanyRate:  triple.CompanyRate,
			WorkerRate:   triple.WorkerRate,
			InvestorRate: triple.InvestorRate,
		}
	}

	persist := ratingdomain.PersistRequest{
		SubmissionRef: strings.TrimSpace(req.SubmissionRef),
		JobRef:        domainReq.JobRef,
		Result:        resp.Result,
		Frozen:        frozen,
	}
	if req.JobCompletedAt != nil {
		persist.JobCompletedAt = *req.JobCompletedAt
	}
	if req.SupersedesID != nil {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.SupersedesID))
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		persist.SupersedesID = &id
	}

	total, err := s.ratingSvc.Persist(ctx, persist)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, total)
}

func (s *Server) GetCalculation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	total, err := s.ratingSvc.GetCalculation(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, total)
}

func (s *Server) ListCalculationsBySubmission(c *gin.Context) {
	ref := strings.TrimSpace(c.Query("submission_ref"))
	if ref == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	totals, err := s.ratingSvc.ListBySubmission(c.Request.Context(), ref)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, totals)
}
