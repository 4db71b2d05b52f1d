package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

type leadFixture struct {
	leads    *repository.LeadMemory
	staff    *repository.StaffMemory
	service  *LeadService
	admin    *domain.StaffAccount
	employee *domain.StaffAccount
}

func newLeadFixture(t *testing.T) *leadFixture {
	t.Helper()

	leads := repository.NewLeadMemory()
	staff := repository.NewStaffMemory()

	admin := &domain.StaffAccount{Name: "Admin", Email: "admin@crm.local", Role: domain.StaffRoleAdmin}
	require.NoError(t, staff.Create(context.Background(), admin))
	employee := &domain.StaffAccount{Name: "Sam", Email: "sam@crm.local", Role: domain.StaffRoleEmployee}
	require.NoError(t, staff.Create(context.Background(), employee))

	svc := NewLeadService(LeadDependencies{
		LeadRepo:   leads,
		StaffRepo:  staff,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	return &leadFixture{leads: leads, staff: staff, service: svc, admin: admin, employee: employee}
}

func (f *leadFixture) seedLead(t *testing.T, name string, assignedTo *string) *domain.Lead {
	t.Helper()

	lead := &domain.Lead{
		Name:       name,
		Email:      name + "@example.com",
		Source:     domain.DefaultLeadSource,
		Status:     domain.LeadStatusNew,
		AssignedTo: assignedTo,
	}
	require.NoError(t, f.leads.Create(context.Background(), lead))
	return lead
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestLeadCreateDefaults(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	t.Run("staff creation starts new and unassigned", func(t *testing.T) {
		lead, err := f.service.Create(ctx, f.admin, LeadCreateInput{Name: "Rita", Email: "rita@example.com"})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusNew, lead.Status)
		assert.Nil(t, lead.AssignedTo)
		assert.Equal(t, domain.DefaultLeadSource, lead.Source)
		assert.NotEmpty(t, lead.ID)
	})

	t.Run("public submission ignores client status", func(t *testing.T) {
		lead, err := f.service.CreatePublic(ctx, LeadCreateInput{Name: "Web Form", Email: "form@example.com", Source: "Website"})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusNew, lead.Status)
		assert.Equal(t, "Website", lead.Source)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		_, err := f.service.Create(ctx, f.admin, LeadCreateInput{Email: "x@example.com"})
		requireCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		_, err := f.service.Create(ctx, f.admin, LeadCreateInput{Name: "Bad", Email: "not-an-email"})
		requireCode(t, err, "VALIDATION_FAILED")
	})
}

func TestLeadVisibility(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	mine := f.seedLead(t, "mine", &f.employee.ID)
	other := f.seedLead(t, "other", &f.admin.ID)
	unassigned := f.seedLead(t, "nobody", nil)

	t.Run("admin reads everything", func(t *testing.T) {
		for _, id := range []string{mine.ID, other.ID, unassigned.ID} {
			_, err := f.service.Get(ctx, f.admin, id)
			require.NoError(t, err)
		}
	})

	t.Run("employee reads own lead", func(t *testing.T) {
		got, err := f.service.Get(ctx, f.employee, mine.ID)
		require.NoError(t, err)
		assert.Equal(t, mine.ID, got.ID)
	})

	t.Run("employee is forbidden from foreign lead", func(t *testing.T) {
		_, err := f.service.Get(ctx, f.employee, other.ID)
		requireCode(t, err, "FORBIDDEN")
	})

	t.Run("missing lead reports not found before access", func(t *testing.T) {
		_, err := f.service.Get(ctx, f.employee, "no-such-id")
		requireCode(t, err, "NOT_FOUND")
	})
}

func TestLeadListScoping(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	f.seedLead(t, "mine-1", &f.employee.ID)
	f.seedLead(t, "mine-2", &f.employee.ID)
	f.seedLead(t, "admin-lead", &f.admin.ID)
	f.seedLead(t, "pool-lead", nil)

	t.Run("admin sees all", func(t *testing.T) {
		leads, err := f.service.List(ctx, f.admin, LeadListFilter{})
		require.NoError(t, err)
		assert.Len(t, leads, 4)
	})

	t.Run("employee only sees own assignments", func(t *testing.T) {
		leads, err := f.service.List(ctx, f.employee, LeadListFilter{})
		require.NoError(t, err)
		require.Len(t, leads, 2)
		for _, lead := range leads {
			require.NotNil(t, lead.AssignedTo)
			assert.Equal(t, f.employee.ID, *lead.AssignedTo)
		}
	})

	t.Run("employee unassigned filter yields nothing foreign", func(t *testing.T) {
		leads, err := f.service.List(ctx, f.employee, LeadListFilter{Unassigned: true})
		require.NoError(t, err)
		for _, lead := range leads {
			require.NotNil(t, lead.AssignedTo)
			assert.Equal(t, f.employee.ID, *lead.AssignedTo)
		}
	})

	t.Run("status filter applies inside the scope", func(t *testing.T) {
		leads, err := f.service.List(ctx, f.employee, LeadListFilter{Statuses: []domain.LeadStatus{domain.LeadStatusWon}})
		require.NoError(t, err)
		assert.Empty(t, leads)
	})
}

func TestLeadStatusTransitions(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()
	lead := f.seedLead(t, "walker", &f.employee.ID)

	t.Run("all five states are mutually reachable", func(t *testing.T) {
		path := []domain.LeadStatus{
			domain.LeadStatusContacted,
			domain.LeadStatusQualified,
			domain.LeadStatusLost,
			domain.LeadStatusWon,
			domain.LeadStatusNew,
			domain.LeadStatusWon,
		}
		for _, status := range path {
			updated, err := f.service.SetStatus(ctx, f.employee, lead.ID, status)
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)
		}
	})

	t.Run("unknown status is rejected and nothing changes", func(t *testing.T) {
		before, err := f.leads.GetByID(ctx, lead.ID)
		require.NoError(t, err)

		_, err = f.service.SetStatus(ctx, f.employee, lead.ID, domain.LeadStatus("Archived"))
		requireCode(t, err, "INVALID_STATUS")

		after, err := f.leads.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Status, after.Status)
	})

	t.Run("employee cannot move a foreign lead", func(t *testing.T) {
		foreign := f.seedLead(t, "foreign", &f.admin.ID)
		_, err := f.service.SetStatus(ctx, f.employee, foreign.ID, domain.LeadStatusContacted)
		requireCode(t, err, "FORBIDDEN")

		stored, err := f.leads.GetByID(ctx, foreign.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusNew, stored.Status, "denied call must leave the store untouched")
	})
}

func TestLeadUpdate(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()
	lead := f.seedLead(t, "editable", &f.employee.ID)

	t.Run("update never touches status or assignment", func(t *testing.T) {
		_, err := f.service.SetStatus(ctx, f.employee, lead.ID, domain.LeadStatusQualified)
		require.NoError(t, err)

		updated, err := f.service.Update(ctx, f.employee, lead.ID, LeadUpdateInput{
			Name:  "Edited Name",
			Email: "edited@example.com",
			Phone: "555-0100",
		})
		require.NoError(t, err)
		assert.Equal(t, "Edited Name", updated.Name)
		assert.Equal(t, domain.LeadStatusQualified, updated.Status)
		require.NotNil(t, updated.AssignedTo)
		assert.Equal(t, f.employee.ID, *updated.AssignedTo)
	})

	t.Run("required fields still apply on edit", func(t *testing.T) {
		_, err := f.service.Update(ctx, f.employee, lead.ID, LeadUpdateInput{Name: "", Email: "edited@example.com"})
		requireCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("blank source on edit keeps the stored value", func(t *testing.T) {
		updated, err := f.service.Update(ctx, f.employee, lead.ID, LeadUpdateInput{
			Name:  "Edited Name",
			Email: "edited@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultLeadSource, updated.Source)
	})
}

func TestLeadDelete(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	t.Run("employee cannot delete even own lead", func(t *testing.T) {
		lead := f.seedLead(t, "own", &f.employee.ID)
		err := f.service.Delete(ctx, f.employee, lead.ID)
		requireCode(t, err, "FORBIDDEN")

		_, err = f.leads.GetByID(ctx, lead.ID)
		require.NoError(t, err)
	})

	t.Run("admin deletes any lead", func(t *testing.T) {
		lead := f.seedLead(t, "gone", &f.employee.ID)
		require.NoError(t, f.service.Delete(ctx, f.admin, lead.ID))

		_, err := f.service.Get(ctx, f.admin, lead.ID)
		requireCode(t, err, "NOT_FOUND")
	})
}

// End-to-end walk through the funnel: submit, assign, work, win.
func TestLeadFunnelScenario(t *testing.T) {
	f := newLeadFixture(t)
	ctx := context.Background()

	lead, err := f.service.CreatePublic(ctx, LeadCreateInput{
		Name:   "Prospect",
		Email:  "prospect@example.com",
		Course: "Data Engineering",
	})
	require.NoError(t, err)

	assignSvc := NewAssignmentService(AssignmentDependencies{
		LeadRepo:  f.leads,
		StaffRepo: f.staff,
	})
	_, err = assignSvc.Assign(ctx, f.admin, []string{lead.ID}, &f.employee.ID)
	require.NoError(t, err)

	for _, status := range []domain.LeadStatus{domain.LeadStatusContacted, domain.LeadStatusQualified, domain.LeadStatusWon} {
		_, err = f.service.SetStatus(ctx, f.employee, lead.ID, status)
		require.NoError(t, err)
	}

	final, err := f.service.Get(ctx, f.employee, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusWon, final.Status)
}
