package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/groundworklabs/groundwork/internal/config"
	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratecardrepo "github.com/groundworklabs/groundwork/internal/ratecard/repository"
	referencedomain "github.com/groundworklabs/groundwork/internal/reference/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	customersKey  = "reference:customers"
	rateCodesKeyf = "reference:rate_codes:%d"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config config.Config
	Redis  *redis.Client `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	redis        *redis.Client
	ttl          time.Duration
	ratecardRepo ratecarddomain.Repository
}

func NewService(p Params) referencedomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("reference.service"),
		redis:        p.Redis,
		ttl:          time.Duration(p.Config.Redis.ReferenceTTLSeconds) * time.Second,
		ratecardRepo: ratecardrepo.NewRepository(),
	}
}

func (s *Service) ListCustomers(ctx context.Context) ([]referencedomain.CustomerRef, error) {
	var refs []referencedomain.CustomerRef
	err := s.db.WithContext(ctx).
		Model(&ratecarddomain.RateCardGroup{}).
		Where("active = ?", true).
		Select("id AS group_id, customer_name, region_code").
		Order("customer_name ASC, region_code ASC").
		Scan(&refs).Error
	if err != nil {
		cached, cacheErr := loadCached[referencedomain.CustomerRef](ctx, s.redis, customersKey)
		if cacheErr != nil {
			return nil, err
		}
		s.log.Warn("serving last-known-good customer list",
			zap.Error(err),
			zap.Int("count", len(cached)))
		return cached, nil
	}

	s.writeThrough(ctx, customersKey, refs)
	return refs, nil
}

func (s *Service) ListRateCodes(ctx context.Context, profileID snowflake.ID) ([]referencedomain.RateCodeRef, error) {
	key := fmt.Sprintf(rateCodesKeyf, profileID.Int64())

	items, err := s.ratecardRepo.ListActiveItems(ctx, s.db, profileID)
	if err != nil {
		cached, cacheErr := loadCached[referencedomain.RateCodeRef](ctx, s.redis, key)
		if cacheErr != nil {
			return nil, err
		}
		s.log.Warn("serving last-known-good rate code list",
			zap.Error(err),
			zap.Int64("profile_id", profileID.Int64()),
			zap.Int("count", len(cached)))
		return cached, nil
	}

	refs := make([]referencedomain.RateCodeRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, referencedomain.RateCodeRef{
			Code:        item.Code,
			Description: item.Description,
			Unit:        string(item.Unit),
		})
	}

	s.writeThrough(ctx, key, refs)
	return refs, nil
}

// writeThrough refreshes the cached copy. Cache failures are logged
// and ignored; the store already answered.
func (s *Service) writeThrough(ctx context.Context, key string, value any) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.log.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func loadCached[T any](ctx context.Context, client *redis.Client, key string) ([]T, error) {
	if client == nil {
		return nil, redis.Nil
	}
	payload, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
