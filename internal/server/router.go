package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")

	v1.POST("/rate-groups", s.CreateRateGroup)
	v1.GET("/rate-groups/:id", s.GetRateGroup)
	v1.POST("/rate-groups/:id/deactivate", s.DeactivateRateGroup)
	v1.POST("/rate-groups/:id/profiles", s.CreateProfile)
	v1.GET("/rate-groups/:id/profiles", s.ListProfiles)

	v1.POST("/profiles/:id/duplicate", s.DuplicateProfile)
	v1.GET("/profiles/:id/items", s.ListItems)
	v1.POST("/profiles/:id/import", s.BulkImportRates)
	v1.GET("/profiles/:id/rate-codes", s.ListRateCodes)
	v1.GET("/profiles/:id/redlines", s.ListRedlinesByProfile)

	v1.PATCH("/items/:id", s.UpdateItem)

	v1.POST("/calculations", s.Calculate)
	v1.POST("/calculations/save", s.SaveCalculation)
	v1.GET("/calculations/:id", s.GetCalculation)
	v1.GET("/calculations", s.ListCalculationsBySubmission)

	v1.POST("/redlines", s.CreateRedline)
	v1.GET("/redlines/:id", s.GetRedline)
	v1.PATCH("/redlines/:id", s.UpdateRedline)
	v1.POST("/redlines/:id/submit", s.SubmitRedline)
	v1.POST("/redlines/:id/review", s.ReviewRedline)
	v1.POST("/redlines/:id/apply", s.ApplyRedline)
	v1.GET("/redlines/:id/reviews", s.ListRedlineReviews)

	v1.POST("/foreman/entries", s.RecordForemanEntry)
	v1.GET("/foreman/:worker_id/week-pay", s.GetForemanWeekPay)
	v1.GET("/foreman/:worker_id/bonus-progress", s.GetBonusProgress)

	v1.POST("/payroll/aggregate", s.AggregatePayroll)
	v1.POST("/payroll/aggregate/async", s.EnqueuePayrollAggregation)
	v1.GET("/payroll/summary", s.GetPayrollSummary)
	v1.POST("/payroll/records/:id/approve", s.ApprovePayrollRecord)
	v1.POST("/payroll/records/:id/pay", s.MarkPayrollRecordPaid)
	v1.POST("/payroll/returns/:id/approve", s.ApproveInvestorReturn)
	v1.POST("/payroll/returns/:id/pay", s.MarkInvestorReturnPaid)

	v1.GET("/audit", s.ListAuditLogs)
	v1.GET("/audit/export", s.ExportAuditLogs)

	v1.GET("/customers", s.ListCustomers)
}
