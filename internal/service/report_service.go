package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/persistence"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

const reportKeyPrefix = "reports:summary:"

// ReportSummary aggregates leads along the reporting dimensions. Source,
// course, and institution are free text, so the keys are whatever staff typed.
type ReportSummary struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"by_status"`
	BySource      map[string]int `json:"by_source"`
	ByCourse      map[string]int `json:"by_course"`
	ByInstitution map[string]int `json:"by_institution"`
}

// ReportService computes lead aggregates, caching results in Redis. A missing
// or unreachable Redis degrades to direct queries.
type ReportService struct {
	leads  repository.LeadRepository
	cache  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(leads repository.LeadRepository, cache *persistence.Redis, ttl time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{leads: leads, cache: cache, ttl: ttl, logger: logger}
}

// Summary returns aggregates over the leads the caller may see: all leads for
// admins, own assignments for employees.
func (s *ReportService) Summary(ctx context.Context, caller *domain.StaffAccount) (*ReportSummary, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthenticated("staff required")
	}

	scope := repository.LeadFilter{}
	cacheKey := reportKeyPrefix + "all"
	if caller.Role != domain.StaffRoleAdmin {
		id := caller.ID
		scope.AssignedTo = &id
		cacheKey = reportKeyPrefix + caller.ID
	}

	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	summary := &ReportSummary{}
	fields := []struct {
		field  repository.GroupField
		target *map[string]int
	}{
		{repository.GroupByStatus, &summary.ByStatus},
		{repository.GroupBySource, &summary.BySource},
		{repository.GroupByCourse, &summary.ByCourse},
		{repository.GroupByInstitution, &summary.ByInstitution},
	}
	for _, entry := range fields {
		counts, err := s.leads.CountGrouped(ctx, entry.field, scope)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		*entry.target = counts
	}
	for _, count := range summary.ByStatus {
		summary.Total += count
	}

	s.toCache(ctx, cacheKey, summary)
	return summary, nil
}

// RegisterInvalidation drops cached summaries whenever a lead changes.
func (s *ReportService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	invalidate := func(ctx context.Context, _ events.Event) error {
		s.invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventLeadCreated, invalidate)
	dispatcher.Subscribe(events.EventLeadStatusChanged, invalidate)
	dispatcher.Subscribe(events.EventLeadsAssigned, invalidate)
	dispatcher.Subscribe(events.EventLeadDeleted, invalidate)
}

func (s *ReportService) fromCache(ctx context.Context, key string) *ReportSummary {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var summary ReportSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *ReportService) toCache(ctx context.Context, key string, summary *ReportSummary) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Debug("report cache write failed", zap.Error(err))
	}
}

func (s *ReportService) invalidate(ctx context.Context) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	keys, err := s.cache.Client.Keys(ctx, reportKeyPrefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Debug("report cache invalidation failed", zap.Error(err))
	}
}
