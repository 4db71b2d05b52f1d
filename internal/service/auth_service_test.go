package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/repository"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	staff := repository.NewStaffMemory()

	hash, err := auth.HashPassword("correct-horse", testConfig().Auth.BcryptCost)
	require.NoError(t, err)
	account := &domain.StaffAccount{Name: "Sam", Email: "sam@crm.local", PasswordHash: hash, Role: domain.StaffRoleEmployee}
	require.NoError(t, staff.Create(ctx, account))

	svc := NewAuthService(testConfig(), staff)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		logged, token, expiresAt, err := svc.Login(ctx, "sam@crm.local", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, account.ID, logged.ID)
		assert.NotEmpty(t, token)
		assert.False(t, expiresAt.IsZero())

		claims, err := svc.TokenManager().ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, claims.StaffID)
		assert.Equal(t, domain.StaffRoleEmployee, claims.Role)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		_, _, _, err := svc.Login(ctx, "SAM@CRM.LOCAL", "correct-horse")
		require.NoError(t, err)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, _, _, wrongPass := svc.Login(ctx, "sam@crm.local", "wrong")
		_, _, _, unknown := svc.Login(ctx, "ghost@crm.local", "whatever")

		requireCode(t, wrongPass, "UNAUTHENTICATED")
		requireCode(t, unknown, "UNAUTHENTICATED")
		assert.Equal(t, wrongPass.Error(), unknown.Error())
	})
}
