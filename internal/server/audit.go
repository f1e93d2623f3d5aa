package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	filter := auditdomain.ListFilter{
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		EntityID:   strings.TrimSpace(c.Query("entity_id")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.Limit = limit
	}

	entries, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, entries)
}

// ExportAuditLogs streams an audit export for a bounded date range.
func (s *Server) ExportAuditLogs(c *gin.Context) {
	startStr := strings.TrimSpace(c.Query("start_date"))
	endStr := strings.TrimSpace(c.Query("end_date"))
	formatStr := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	actionsStr := strings.TrimSpace(c.Query("actions"))

	if startStr == "" || endStr == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	// End date is inclusive on the wire, exclusive internally.
	end = end.Add(24 * time.Hour)
	if end.Before(start) || end.Sub(start) > 90*24*time.Hour {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var format auditdomain.ExportFormat
	switch formatStr {
	case "csv":
		format = auditdomain.ExportFormatCSV
	case "json":
		format = auditdomain.ExportFormatJSON
	default:
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var actions []auditdomain.Action
	if actionsStr != "" {
		for _, raw := range strings.Split(actionsStr, ",") {
			if a := strings.TrimSpace(raw); a != "" {
				actions = append(actions, auditdomain.Action(a))
			}
		}
	}

	result, err := s.auditSvc.Export(c.Request.Context(), auditdomain.ExportRequest{
		StartDate: start,
		EndDate:   end,
		Format:    format,
		Actions:   actions,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := "audit_" + startStr + "_" + endStr + "." + string(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("X-Checksum-SHA256", result.Checksum)
	contentType := "text/csv"
	if format == auditdomain.ExportFormatJSON {
		contentType = "application/json"
	}
	c.Data(http.StatusOK, contentType, result.Data)
}
