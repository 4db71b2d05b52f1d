package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/policy"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

// LeadService owns the lead lifecycle: creation, edits, status transitions,
// and deletion. Every mutation consults the access policy before it touches
// the store.
type LeadService struct {
	leads      repository.LeadRepository
	staff      repository.StaffRepository
	dispatcher events.Dispatcher
}

// LeadDependencies bundles repositories for the lead service.
type LeadDependencies struct {
	LeadRepo   repository.LeadRepository
	StaffRepo  repository.StaffRepository
	Dispatcher events.Dispatcher
}

// NewLeadService constructs the service.
func NewLeadService(deps LeadDependencies) *LeadService {
	return &LeadService{
		leads:      deps.LeadRepo,
		staff:      deps.StaffRepo,
		dispatcher: deps.Dispatcher,
	}
}

// LeadCreateInput describes a lead creation payload. ID and timestamps are
// always stamped server-side; client-supplied values are ignored.
type LeadCreateInput struct {
	Name        string
	Email       string
	Phone       string
	Source      string
	Course      string
	Institution string
	Notes       *string
}

// LeadUpdateInput describes a field edit. Status and assignment are never
// touched by an update; they have their own operations.
type LeadUpdateInput struct {
	Name        string
	Email       string
	Phone       string
	Source      string
	Course      string
	Institution string
	Notes       *string
}

// LeadListFilter describes staff listing filters before policy scoping.
type LeadListFilter struct {
	Statuses   []domain.LeadStatus
	Source     *string
	SearchTerm *string
	Unassigned bool
	Limit      int
	Offset     int
}

// CreatePublic records an unauthenticated form submission. The lead always
// starts New and unassigned regardless of what the form carried.
func (s *LeadService) CreatePublic(ctx context.Context, input LeadCreateInput) (*domain.Lead, error) {
	lead, err := buildLead(input)
	if err != nil {
		return nil, err
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishLeadCreated(ctx, nil, lead)
	return lead, nil
}

// Create records a lead on behalf of an authenticated staff member.
func (s *LeadService) Create(ctx context.Context, caller *domain.StaffAccount, input LeadCreateInput) (*domain.Lead, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthenticated("staff required")
	}
	lead, err := buildLead(input)
	if err != nil {
		return nil, err
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishLeadCreated(ctx, &caller.ID, lead)
	return lead, nil
}

// Get fetches a lead, enforcing visibility.
func (s *LeadService) Get(ctx context.Context, caller *domain.StaffAccount, leadID string) (*domain.Lead, error) {
	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireView(caller, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// List returns the leads visible to the caller. Employees only ever receive
// leads assigned to them, whatever filters they pass.
func (s *LeadService) List(ctx context.Context, caller *domain.StaffAccount, filter LeadListFilter) ([]domain.Lead, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthenticated("staff required")
	}
	repoFilter := repository.LeadFilter{
		Statuses:   filter.Statuses,
		Source:     filter.Source,
		SearchTerm: filter.SearchTerm,
		Unassigned: filter.Unassigned,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	policy.ScopeListFilter(caller, &repoFilter)
	leads, err := s.leads.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return leads, nil
}

// Update edits contact fields. Required-field validation applies regardless
// of status; status and assignment are left untouched.
func (s *LeadService) Update(ctx context.Context, caller *domain.StaffAccount, leadID string, input LeadUpdateInput) (*domain.Lead, error) {
	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireMutate(caller, lead); err != nil {
		return nil, err
	}
	if err := validateContact(input.Name, input.Email); err != nil {
		return nil, err
	}

	lead.Name = strings.TrimSpace(input.Name)
	lead.Email = strings.TrimSpace(input.Email)
	lead.Phone = strings.TrimSpace(input.Phone)
	if source := strings.TrimSpace(input.Source); source != "" {
		lead.Source = source
	}
	lead.Course = strings.TrimSpace(input.Course)
	lead.Institution = strings.TrimSpace(input.Institution)
	lead.Notes = input.Notes

	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}
	return lead, nil
}

// SetStatus moves a lead to a new workflow state. All five states are
// mutually reachable; only values outside the enumeration are rejected.
func (s *LeadService) SetStatus(ctx context.Context, caller *domain.StaffAccount, leadID string, newStatus domain.LeadStatus) (*domain.Lead, error) {
	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireMutate(caller, lead); err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewInvalidStatus(string(newStatus))
	}

	oldStatus := lead.Status
	lead.Status = newStatus
	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:  events.EventLeadStatusChanged,
		Actor: staffActor(caller),
		Payload: events.LeadStatusChangedPayload{
			LeadID:    lead.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return lead, nil
}

// Delete removes a lead. Admin only.
func (s *LeadService) Delete(ctx context.Context, caller *domain.StaffAccount, leadID string) error {
	lead, err := s.fetch(ctx, leadID)
	if err != nil {
		return err
	}
	if !policy.CanDelete(caller, lead) {
		return apperrors.NewForbidden("admin role required")
	}
	if err := s.leads.Delete(ctx, leadID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventLeadDeleted,
		Actor:   staffActor(caller),
		Payload: events.LeadDeletedPayload{LeadID: leadID},
	})
	return nil
}

func (s *LeadService) fetch(ctx context.Context, leadID string) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("lead", map[string]any{"lead_id": leadID})
		}
		return nil, apperrors.MapError(err)
	}
	return lead, nil
}

func buildLead(input LeadCreateInput) (*domain.Lead, error) {
	if err := validateContact(input.Name, input.Email); err != nil {
		return nil, err
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = domain.DefaultLeadSource
	}
	return &domain.Lead{
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Source:      source,
		Course:      strings.TrimSpace(input.Course),
		Institution: strings.TrimSpace(input.Institution),
		Status:      domain.LeadStatusNew,
		AssignedTo:  nil,
		Notes:       input.Notes,
	}, nil
}

func validateContact(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("name is required", nil)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationError("email is not valid", map[string]any{"email": email})
	}
	return nil
}

func (s *LeadService) publishLeadCreated(ctx context.Context, staffID *string, lead *domain.Lead) {
	s.publishEvent(ctx, events.Event{
		Type:  events.EventLeadCreated,
		Actor: events.Actor{StaffID: staffID},
		Payload: events.LeadCreatedPayload{
			LeadID: lead.ID,
			Name:   lead.Name,
			Source: lead.Source,
		},
	})
}

func (s *LeadService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func staffActor(caller *domain.StaffAccount) events.Actor {
	if caller == nil {
		return events.Actor{}
	}
	id := caller.ID
	return events.Actor{StaffID: &id}
}
