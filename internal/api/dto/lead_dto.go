package dto

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// PublicLeadRequest is the unauthenticated submission payload.
type PublicLeadRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Source      string `json:"source"`
	Course      string `json:"course"`
	Institution string `json:"institution"`
}

// CreateLeadRequest is the staff creation payload.
type CreateLeadRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Source      string  `json:"source"`
	Course      string  `json:"course"`
	Institution string  `json:"institution"`
	Notes       *string `json:"notes"`
}

// UpdateLeadRequest edits contact fields; status and assignment have their
// own endpoints.
type UpdateLeadRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Source      string  `json:"source"`
	Course      string  `json:"course"`
	Institution string  `json:"institution"`
	Notes       *string `json:"notes"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.LeadStatus `json:"status"`
}

// AssignLeadsRequest is the bulk reassignment payload. A nil StaffID clears
// assignment.
type AssignLeadsRequest struct {
	LeadIDs []string `json:"lead_ids"`
	StaffID *string  `json:"staff_id"`
}

// AssignLeadsResponse reports the per-lead outcome.
type AssignLeadsResponse struct {
	Assigned []string `json:"assigned"`
	Failed   []string `json:"failed,omitempty"`
}

// LeadResponse is the API shape of a lead.
type LeadResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone,omitempty"`
	Source      string            `json:"source"`
	Course      string            `json:"course,omitempty"`
	Institution string            `json:"institution,omitempty"`
	Status      domain.LeadStatus `json:"status"`
	AssignedTo  *string           `json:"assigned_to"`
	Notes       *string           `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewLeadResponse maps a domain lead onto the response shape.
func NewLeadResponse(lead *domain.Lead) LeadResponse {
	return LeadResponse{
		ID:          lead.ID,
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Source:      lead.Source,
		Course:      lead.Course,
		Institution: lead.Institution,
		Status:      lead.Status,
		AssignedTo:  lead.AssignedTo,
		Notes:       lead.Notes,
		CreatedAt:   lead.CreatedAt,
		UpdatedAt:   lead.UpdatedAt,
	}
}
