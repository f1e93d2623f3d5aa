package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/groundworklabs/groundwork/internal/audit/domain"
	"github.com/groundworklabs/groundwork/internal/audit/repository"
	"github.com/groundworklabs/groundwork/internal/clock"
	"github.com/groundworklabs/groundwork/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Metrics *observability.Metrics `optional:"true"`
}

type Service struct {
	repo    auditdomain.Repository
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	metrics *observability.Metrics
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		repo:    repository.NewRepository(p.DB),
		log:     p.Log.Named("audit.service"),
		clock:   p.Clock,
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

func (s *Service) Log(ctx context.Context, entry auditdomain.Entry) {
	if entry.ID == 0 {
		entry.ID = s.genID.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now(ctx)
	}

	if err := s.repo.Insert(ctx, &entry); err != nil {
		if s.metrics != nil {
			s.metrics.AuditWriteFailures.Inc()
		}
		s.log.Error("audit write failed",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.Entry, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Export(ctx context.Context, req auditdomain.ExportRequest) (*auditdomain.ExportResult, error) {
	entries, err := s.repo.ListRange(ctx, req.StartDate, req.EndDate, req.Actions)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch req.Format {
	case auditdomain.ExportFormatCSV:
		data, err = formatCSV(entries)
	case auditdomain.ExportFormatJSON:
		data, err = formatJSON(entries)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", req.Format)
	}
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	return &auditdomain.ExportResult{
		Data:     data,
		Checksum: hex.EncodeToString(sum[:]),
		Format:   req.Format,
		Count:    len(entries),
	}, nil
}

func formatCSV(entries []auditdomain.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"timestamp", "action", "entity_type", "entity_id", "actor_id", "actor_name", "before", "after", "metadata"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		before, _ := json.Marshal(e.Before)
		after, _ := json.Marshal(e.After)
		meta, _ := json.Marshal(e.Metadata)

		actorID := ""
		if e.ActorID != nil {
			actorID = e.ActorID.String()
		}

		row := []string{
			e.CreatedAt.Format(time.RFC3339),
			string(e.Action),
			e.EntityType,
			e.EntityID,
			actorID,
			e.ActorName,
			string(before),
			string(after),
			string(meta),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatJSON(entries []auditdomain.Entry) ([]byte, error) {
	type record struct {
		Timestamp  string         `json:"timestamp"`
		Action     string         `json:"action"`
		EntityType string         `json:"entity_type"`
		EntityID   string         `json:"entity_id,omitempty"`
		ActorID    string         `json:"actor_id,omitempty"`
		ActorName  string         `json:"actor_name,omitempty"`
		Before     map[string]any `json:"before,omitempty"`
		After      map[string]any `json:"after,omitempty"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}

	records := make([]record, 0, len(entries))
	for _, e := range entries {
		actorID := ""
		if e.ActorID != nil {
			actorID = e.ActorID.String()
		}
		records = append(records, record{
			Timestamp:  e.CreatedAt.Format(time.RFC3339),
			Action:     string(e.Action),
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			ActorID:    actorID,
			ActorName:  e.ActorName,
			Before:     e.Before,
			After:      e.After,
			Metadata:   e.Metadata,
		})
	}

	return json.MarshalIndent(records, "", "  ")
}
