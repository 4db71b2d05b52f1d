package domain

import "time"

// StaffRole enumerates internal account roles. Role is the single axis of
// authorization in the system.
type StaffRole string

const (
	StaffRoleAdmin    StaffRole = "admin"
	StaffRoleEmployee StaffRole = "employee"
)

// Valid reports whether the role is one of the two accepted values.
func (r StaffRole) Valid() bool {
	return r == StaffRoleAdmin || r == StaffRoleEmployee
}

// StaffAccount models an internal user who triages leads.
type StaffAccount struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Avatar       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (a *StaffAccount) IsAdmin() bool {
	return a != nil && a.Role == StaffRoleAdmin
}
