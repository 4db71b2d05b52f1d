package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/lead-service/internal/config"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/repository"
)

type staffFixture struct {
	leads   *repository.LeadMemory
	staff   *repository.StaffMemory
	service *StaffService
	admin   *domain.StaffAccount
}

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}}
}

func newStaffFixture(t *testing.T) *staffFixture {
	t.Helper()

	leads := repository.NewLeadMemory()
	staff := repository.NewStaffMemory()
	admin := &domain.StaffAccount{Name: "Root Admin", Email: "admin@crm.local", Role: domain.StaffRoleAdmin}
	require.NoError(t, staff.Create(context.Background(), admin))

	svc := NewStaffService(testConfig(), StaffDependencies{StaffRepo: staff, LeadRepo: leads})
	return &staffFixture{leads: leads, staff: staff, service: svc, admin: admin}
}

func TestCreateAccount(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()

	t.Run("admin creates employee", func(t *testing.T) {
		account, err := f.service.CreateAccount(ctx, f.admin, "Sam", "sam@crm.local", "secret1", domain.StaffRoleEmployee)
		require.NoError(t, err)
		assert.NotEmpty(t, account.ID)
		assert.Equal(t, domain.StaffRoleEmployee, account.Role)
		assert.NotEqual(t, "secret1", account.PasswordHash)
	})

	t.Run("employee cannot create accounts", func(t *testing.T) {
		employee, err := f.staff.GetByEmail(ctx, "sam@crm.local")
		require.NoError(t, err)

		_, err = f.service.CreateAccount(ctx, employee, "Eve", "eve@crm.local", "secret1", domain.StaffRoleEmployee)
		requireCode(t, err, "FORBIDDEN")
	})

	t.Run("duplicate email conflicts regardless of case", func(t *testing.T) {
		_, err := f.service.CreateAccount(ctx, f.admin, "Sam Again", "SAM@crm.local", "secret1", domain.StaffRoleEmployee)
		requireCode(t, err, "CONFLICT")
	})

	t.Run("short password is rejected", func(t *testing.T) {
		_, err := f.service.CreateAccount(ctx, f.admin, "Shorty", "shorty@crm.local", "abc", domain.StaffRoleEmployee)
		requireCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := f.service.CreateAccount(ctx, f.admin, "Odd", "odd@crm.local", "secret1", domain.StaffRole("owner"))
		requireCode(t, err, "VALIDATION_FAILED")
	})
}

func TestSetRole(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()

	employee, err := f.service.CreateAccount(ctx, f.admin, "Sam", "sam@crm.local", "secret1", domain.StaffRoleEmployee)
	require.NoError(t, err)

	t.Run("promote and demote", func(t *testing.T) {
		promoted, err := f.service.SetRole(ctx, f.admin, employee.ID, domain.StaffRoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, domain.StaffRoleAdmin, promoted.Role)

		demoted, err := f.service.SetRole(ctx, f.admin, employee.ID, domain.StaffRoleEmployee)
		require.NoError(t, err)
		assert.Equal(t, domain.StaffRoleEmployee, demoted.Role)
	})

	t.Run("demoting the only admin is refused", func(t *testing.T) {
		_, err := f.service.SetRole(ctx, f.admin, f.admin.ID, domain.StaffRoleEmployee)
		requireCode(t, err, "CONFLICT")

		stored, getErr := f.staff.GetByID(ctx, f.admin.ID)
		require.NoError(t, getErr)
		assert.Equal(t, domain.StaffRoleAdmin, stored.Role)
	})
}

func TestDeleteAccount(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()

	employee, err := f.service.CreateAccount(ctx, f.admin, "Sam", "sam@crm.local", "secret1", domain.StaffRoleEmployee)
	require.NoError(t, err)

	t.Run("self deletion is refused", func(t *testing.T) {
		err := f.service.DeleteAccount(ctx, f.admin, f.admin.ID)
		requireCode(t, err, "FORBIDDEN")
	})

	t.Run("deleting the only admin is refused", func(t *testing.T) {
		second := &domain.StaffAccount{Name: "Other Admin", Email: "other@crm.local", Role: domain.StaffRoleAdmin}
		require.NoError(t, f.staff.Create(ctx, second))
		// drop back to a single admin, acting as the second one
		require.NoError(t, f.service.DeleteAccount(ctx, second, f.admin.ID))

		err := f.service.DeleteAccount(ctx, f.admin, second.ID)
		requireCode(t, err, "CONFLICT")
	})

	t.Run("deletion releases the staff member's leads", func(t *testing.T) {
		lead := &domain.Lead{Name: "Held", Email: "held@example.com", Status: domain.LeadStatusNew, AssignedTo: &employee.ID}
		require.NoError(t, f.leads.Create(ctx, lead))

		admin, err := f.staff.GetByEmail(ctx, "other@crm.local")
		require.NoError(t, err)
		require.NoError(t, f.service.DeleteAccount(ctx, admin, employee.ID))

		stored, err := f.leads.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.AssignedTo, "no lead may point at a deleted account")
	})
}

func TestResetPassword(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()

	employee, err := f.service.CreateAccount(ctx, f.admin, "Sam", "sam@crm.local", "secret1", domain.StaffRoleEmployee)
	require.NoError(t, err)

	require.NoError(t, f.service.ResetPassword(ctx, f.admin, employee.ID, "newsecret"))

	authSvc := NewAuthService(testConfig(), f.staff)
	_, _, _, err = authSvc.Login(ctx, "sam@crm.local", "newsecret")
	require.NoError(t, err)
	_, _, _, err = authSvc.Login(ctx, "sam@crm.local", "secret1")
	requireCode(t, err, "UNAUTHENTICATED")
}

func TestUpdateProfile(t *testing.T) {
	f := newStaffFixture(t)
	ctx := context.Background()

	employee, err := f.service.CreateAccount(ctx, f.admin, "Sam", "sam@crm.local", "secret1", domain.StaffRoleEmployee)
	require.NoError(t, err)

	t.Run("nil fields stay untouched", func(t *testing.T) {
		name := "Samuel"
		updated, err := f.service.UpdateProfile(ctx, employee, ProfileInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Samuel", updated.Name)
		assert.Equal(t, "sam@crm.local", updated.Email)
		assert.Equal(t, domain.StaffRoleEmployee, updated.Role)
	})

	t.Run("email change checks uniqueness", func(t *testing.T) {
		taken := "admin@crm.local"
		_, err := f.service.UpdateProfile(ctx, employee, ProfileInput{Email: &taken})
		requireCode(t, err, "CONFLICT")
	})

	t.Run("avatar reference is stored as-is", func(t *testing.T) {
		avatar := "uploads/avatars/sam.png"
		updated, err := f.service.UpdateProfile(ctx, employee, ProfileInput{Avatar: &avatar})
		require.NoError(t, err)
		require.NotNil(t, updated.Avatar)
		assert.Equal(t, avatar, *updated.Avatar)
	})
}

func TestEnsureAdminAccount(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("creates bootstrap admin on empty store", func(t *testing.T) {
		staff := repository.NewStaffMemory()
		svc := NewStaffService(testConfig(), StaffDependencies{StaffRepo: staff, LeadRepo: repository.NewLeadMemory()})

		err := svc.EnsureAdminAccount(ctx, config.AdminConfig{Name: "Boot", Email: "boot@crm.local", Password: "bootpass"}, logger)
		require.NoError(t, err)

		count, err := staff.CountByRole(ctx, domain.StaffRoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("refuses to run without a configured password", func(t *testing.T) {
		staff := repository.NewStaffMemory()
		svc := NewStaffService(testConfig(), StaffDependencies{StaffRepo: staff, LeadRepo: repository.NewLeadMemory()})

		err := svc.EnsureAdminAccount(ctx, config.AdminConfig{Email: "boot@crm.local"}, logger)
		require.Error(t, err)
	})

	t.Run("is a no-op when an admin exists", func(t *testing.T) {
		f := newStaffFixture(t)
		require.NoError(t, f.service.EnsureAdminAccount(ctx, config.AdminConfig{}, logger))

		count, err := f.staff.CountByRole(ctx, domain.StaffRoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
