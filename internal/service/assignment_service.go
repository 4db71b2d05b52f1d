package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/policy"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

// AssignmentService performs bulk reassignment of leads to one staff member
// as a single logical unit: validate everything, then write per lead.
type AssignmentService struct {
	leads      repository.LeadRepository
	staff      repository.StaffRepository
	dispatcher events.Dispatcher

	// batchMu keeps the validate and write phases of concurrent bulk calls
	// from interleaving on overlapping lead sets.
	batchMu sync.Mutex
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	LeadRepo   repository.LeadRepository
	StaffRepo  repository.StaffRepository
	Dispatcher events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		leads:      deps.LeadRepo,
		staff:      deps.StaffRepo,
		dispatcher: deps.Dispatcher,
	}
}

// AssignmentResult enumerates the per-lead outcome of a bulk call.
type AssignmentResult struct {
	Assigned []string
	Failed   []string
}

// Assign points every named lead at targetStaffID, or clears assignment when
// targetStaffID is nil. The operation is idempotent: re-running it yields the
// same end state. No lead is written until the target and every lead id have
// been validated; storage faults after validation surface as PartialFailure
// with the per-item breakdown.
func (s *AssignmentService) Assign(ctx context.Context, caller *domain.StaffAccount, leadIDs []string, targetStaffID *string) (*AssignmentResult, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthenticated("staff required")
	}
	if !policy.CanBulkAssign(caller) {
		return nil, apperrors.NewForbidden("admin role required for bulk assignment")
	}

	ids := dedupe(leadIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("lead_ids must not be empty", nil)
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	if targetStaffID != nil {
		if _, err := s.staff.GetByID(ctx, *targetStaffID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewInvalidTarget(*targetStaffID)
			}
			return nil, apperrors.MapError(err)
		}
	}

	// all-or-nothing validation: no write happens if any id is missing
	missing := []string{}
	for _, id := range ids {
		if _, err := s.leads.GetByID(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				missing = append(missing, id)
				continue
			}
			return nil, apperrors.MapError(err)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewNotFound("lead", map[string]any{"lead_ids": missing})
	}

	result := &AssignmentResult{}
	for _, id := range ids {
		if err := s.leads.SetAssignee(ctx, id, targetStaffID); err != nil {
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Assigned = append(result.Assigned, id)
	}

	if len(result.Assigned) > 0 {
		s.publishAssigned(ctx, caller, result.Assigned, targetStaffID)
	}
	if len(result.Failed) > 0 {
		return result, apperrors.NewPartialFailure(result.Assigned, result.Failed)
	}
	return result, nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, caller *domain.StaffAccount, leadIDs []string, targetStaffID *string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventLeadsAssigned,
		Timestamp: time.Now(),
		Actor:     staffActor(caller),
		Payload: events.LeadsAssignedPayload{
			LeadIDs:       leadIDs,
			TargetStaffID: targetStaffID,
		},
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
