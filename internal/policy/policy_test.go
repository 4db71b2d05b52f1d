package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

func adminAccount() *domain.StaffAccount {
	return &domain.StaffAccount{ID: "admin-1", Role: domain.StaffRoleAdmin}
}

func employeeAccount(id string) *domain.StaffAccount {
	return &domain.StaffAccount{ID: id, Role: domain.StaffRoleEmployee}
}

func leadAssignedTo(staffID string) *domain.Lead {
	return &domain.Lead{ID: "lead-1", AssignedTo: &staffID}
}

func TestCanView(t *testing.T) {
	t.Run("admin sees every lead", func(t *testing.T) {
		assert.True(t, CanView(adminAccount(), &domain.Lead{ID: "lead-1"}))
		assert.True(t, CanView(adminAccount(), leadAssignedTo("someone-else")))
	})

	t.Run("employee sees own assignments", func(t *testing.T) {
		assert.True(t, CanView(employeeAccount("emp-1"), leadAssignedTo("emp-1")))
	})

	t.Run("employee cannot see other assignments", func(t *testing.T) {
		assert.False(t, CanView(employeeAccount("emp-1"), leadAssignedTo("emp-2")))
	})

	t.Run("employee cannot see unassigned leads", func(t *testing.T) {
		assert.False(t, CanView(employeeAccount("emp-1"), &domain.Lead{ID: "lead-1"}))
	})

	t.Run("nil caller sees nothing", func(t *testing.T) {
		assert.False(t, CanView(nil, leadAssignedTo("emp-1")))
	})
}

func TestCanMutateMatchesVisibility(t *testing.T) {
	callers := []*domain.StaffAccount{adminAccount(), employeeAccount("emp-1"), employeeAccount("emp-2")}
	leads := []*domain.Lead{leadAssignedTo("emp-1"), leadAssignedTo("emp-2"), {ID: "lead-3"}}
	for _, caller := range callers {
		for _, lead := range leads {
			assert.Equal(t, CanView(caller, lead), CanMutate(caller, lead))
		}
	}
}

func TestCanDelete(t *testing.T) {
	ownLead := leadAssignedTo("emp-1")
	assert.True(t, CanDelete(adminAccount(), ownLead))
	assert.False(t, CanDelete(employeeAccount("emp-1"), ownLead), "ownership does not grant deletion")
}

func TestCanBulkAssign(t *testing.T) {
	assert.True(t, CanBulkAssign(adminAccount()))
	assert.False(t, CanBulkAssign(employeeAccount("emp-1")))
}

func TestScopeListFilter(t *testing.T) {
	t.Run("admin filters pass through", func(t *testing.T) {
		other := "emp-2"
		filter := repository.LeadFilter{AssignedTo: &other, Unassigned: false}
		ScopeListFilter(adminAccount(), &filter)
		require.NotNil(t, filter.AssignedTo)
		assert.Equal(t, "emp-2", *filter.AssignedTo)
	})

	t.Run("employee filter is pinned to own id", func(t *testing.T) {
		other := "emp-2"
		filter := repository.LeadFilter{AssignedTo: &other, Unassigned: true}
		ScopeListFilter(employeeAccount("emp-1"), &filter)
		require.NotNil(t, filter.AssignedTo)
		assert.Equal(t, "emp-1", *filter.AssignedTo)
		assert.False(t, filter.Unassigned, "employees cannot browse the unassigned pool")
	})
}

func TestRequireViewErrorCode(t *testing.T) {
	err := RequireView(employeeAccount("emp-1"), leadAssignedTo("emp-2"))
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}
