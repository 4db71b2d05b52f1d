package events

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeadCreated       EventType = "lead_created"
	EventLeadStatusChanged EventType = "lead_status_changed"
	EventLeadsAssigned     EventType = "leads_assigned"
	EventLeadDeleted       EventType = "lead_deleted"
)

// Actor encapsulates actor metadata for an event. A nil StaffID marks a
// public (unauthenticated) submission.
type Actor struct {
	StaffID *string `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LeadCreatedPayload payload.
type LeadCreatedPayload struct {
	LeadID string `json:"lead_id"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// LeadStatusChangedPayload payload.
type LeadStatusChangedPayload struct {
	LeadID    string            `json:"lead_id"`
	OldStatus domain.LeadStatus `json:"old_status"`
	NewStatus domain.LeadStatus `json:"new_status"`
}

// LeadsAssignedPayload payload.
type LeadsAssignedPayload struct {
	LeadIDs       []string `json:"lead_ids"`
	TargetStaffID *string  `json:"target_staff_id,omitempty"`
}

// LeadDeletedPayload payload.
type LeadDeletedPayload struct {
	LeadID string `json:"lead_id"`
}
