package domain

import "time"

// LeadStatus enumerates workflow states for leads.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusQualified LeadStatus = "Qualified"
	LeadStatusLost      LeadStatus = "Lost"
	LeadStatusWon       LeadStatus = "Won"
)

// AllLeadStatuses lists every accepted status value.
var AllLeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusLost,
	LeadStatusWon,
}

// Valid reports whether the status is part of the fixed enumeration.
func (s LeadStatus) Valid() bool {
	for _, candidate := range AllLeadStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// DefaultLeadSource is stamped when a submission carries no source tag.
const DefaultLeadSource = "Manual"

// Lead is the aggregate for prospective contacts. Status carries no enforced
// ordering: staff may move a lead between any two states, including re-opening
// Lost or Won leads.
type Lead struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Source      string
	Course      string
	Institution string
	Status      LeadStatus
	AssignedTo  *string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
