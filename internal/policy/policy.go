// Package policy is the single source of truth for lead visibility and
// mutation rights. Services consult it before touching the store; no other
// package re-derives role checks.
package policy

import (
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

// CanView reports whether the caller may read the lead. Admins see every
// lead; employees only leads assigned to them.
func CanView(caller *domain.StaffAccount, lead *domain.Lead) bool {
	if caller == nil || lead == nil {
		return false
	}
	if caller.Role == domain.StaffRoleAdmin {
		return true
	}
	return lead.AssignedTo != nil && *lead.AssignedTo == caller.ID
}

// CanMutate reports whether the caller may edit the lead or change its
// status. The rule is identical to visibility: ownership or admin.
func CanMutate(caller *domain.StaffAccount, lead *domain.Lead) bool {
	return CanView(caller, lead)
}

// CanDelete reports whether the caller may delete the lead. Deletion is
// admin-only regardless of assignment.
func CanDelete(caller *domain.StaffAccount, _ *domain.Lead) bool {
	return caller.IsAdmin()
}

// CanBulkAssign reports whether the caller may reassign leads in bulk.
func CanBulkAssign(caller *domain.StaffAccount) bool {
	return caller.IsAdmin()
}

// CanManageAccounts reports whether the caller may create, delete, or change
// other staff accounts (role, password).
func CanManageAccounts(caller *domain.StaffAccount) bool {
	return caller.IsAdmin()
}

// ScopeListFilter narrows a lead list query to the subset the caller may see.
// Employees are pinned to their own assignments; admin filters pass through.
func ScopeListFilter(caller *domain.StaffAccount, filter *repository.LeadFilter) {
	if caller == nil || caller.Role == domain.StaffRoleAdmin {
		return
	}
	id := caller.ID
	filter.AssignedTo = &id
	filter.Unassigned = false
}

// RequireView converts a visibility decision into the error taxonomy.
func RequireView(caller *domain.StaffAccount, lead *domain.Lead) error {
	if !CanView(caller, lead) {
		return apperrors.NewForbidden("lead not accessible")
	}
	return nil
}

// RequireMutate converts a mutation decision into the error taxonomy.
func RequireMutate(caller *domain.StaffAccount, lead *domain.Lead) error {
	if !CanMutate(caller, lead) {
		return apperrors.NewForbidden("lead not accessible")
	}
	return nil
}
