package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	"github.com/shopspring/decimal"
)

type recordEntryRequest struct {
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
	JobRef     string `json:"job_ref"`
	EntryDate  string `json:"entry_date"`
	FullDay    bool   `json:"full_day"`
	HalfDay    bool   `json:"half_day"`
	FootageFt  string `json:"footage_ft"`
	GroundType string `json:"ground_type"`
}

func (s *Server) RecordForemanEntry(c *gin.Context) {
	var req recordEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	workerID, err := snowflake.ParseString(strings.TrimSpace(req.WorkerID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	footage := decimal.Zero
	if strings.TrimSpace(req.FootageFt) != "" {
		if footage, err = decimal.NewFromString(req.FootageFt); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	entry, err := s.foremanSvc.RecordEntry(c.Request.Context(), foremandomain.DailyEntry{
		WorkerID:   workerID,
		WorkerName: req.WorkerName,
		JobRef:     strings.TrimSpace(req.JobRef),
		EntryDate:  entryDate,
		FullDay:    req.FullDay,
		HalfDay:    req.HalfDay,
		FootageFt:  footage,
		GroundType: foremandomain.GroundType(req.GroundType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, entry)
}

func weekQuery(c *gin.Context) (snowflake.ID, time.Time, bool) {
	workerID, err := snowflake.ParseString(c.Param("worker_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return 0, time.Time{}, false
	}
	day := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("week_of")); raw != "" {
		day, err = time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return 0, time.Time{}, false
		}
	}
	return workerID, day, true
}

func (s *Server) GetForemanWeekPay(c *gin.Context) {
	workerID, day, ok := weekQuery(c)
	if !ok {
		return
	}
	details, err := s.foremanSvc.CalculateWeek(c.Request.Context(), workerID, day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, details)
}

func (s *Server) GetBonusProgress(c *gin.Context) {
	workerID, day, ok := weekQuery(c)
	if !ok {
		return
	}
	progress, err := s.foremanSvc.BonusProgress(c.Request.Context(), workerID, day)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, progress)
}
