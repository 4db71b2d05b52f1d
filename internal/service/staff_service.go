package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/config"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/policy"
	"github.com/spec-kit/lead-service/internal/repository"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

const minPasswordLength = 6

// StaffService manages staff accounts: creation, roles, passwords, deletion,
// and self-service profile updates.
type StaffService struct {
	staff      repository.StaffRepository
	leads      repository.LeadRepository
	bcryptCost int
}

// StaffDependencies encapsulates repositories required for account management.
type StaffDependencies struct {
	StaffRepo repository.StaffRepository
	LeadRepo  repository.LeadRepository
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, deps StaffDependencies) *StaffService {
	return &StaffService{
		staff:      deps.StaffRepo,
		leads:      deps.LeadRepo,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// ProfileInput describes a self-service profile update. Nil fields are left
// unchanged.
type ProfileInput struct {
	Name     *string
	Email    *string
	Password *string
	Avatar   *string
}

func requireAccountAdmin(caller *domain.StaffAccount) error {
	if caller == nil {
		return apperrors.NewUnauthenticated("staff required")
	}
	if !policy.CanManageAccounts(caller) {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateAccount adds a new staff account. Admin only.
func (s *StaffService) CreateAccount(ctx context.Context, caller *domain.StaffAccount, name, email, password string, role domain.StaffRole) (*domain.StaffAccount, error) {
	if err := requireAccountAdmin(caller); err != nil {
		return nil, err
	}
	if err := validateContact(name, email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	if existing, err := s.staff.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.StaffAccount{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.staff.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// ListAccounts returns every staff account. Admin only.
func (s *StaffService) ListAccounts(ctx context.Context, caller *domain.StaffAccount) ([]domain.StaffAccount, error) {
	if err := requireAccountAdmin(caller); err != nil {
		return nil, err
	}
	accounts, err := s.staff.List(ctx, repository.StaffFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return accounts, nil
}

// GetByID fetches a single account.
func (s *StaffService) GetByID(ctx context.Context, id string) (*domain.StaffAccount, error) {
	account, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff account", map[string]any{"staff_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// SetRole changes an account's role. Admin only. Demoting the last admin is
// refused so the store always keeps at least one.
func (s *StaffService) SetRole(ctx context.Context, caller *domain.StaffAccount, targetID string, role domain.StaffRole) (*domain.StaffAccount, error) {
	if err := requireAccountAdmin(caller); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}
	if target.Role == domain.StaffRoleAdmin {
		if err := s.requireAnotherAdmin(ctx, "cannot demote the only admin"); err != nil {
			return nil, err
		}
	}

	target.Role = role
	if err := s.staff.Update(ctx, target); err != nil {
		return nil, apperrors.MapError(err)
	}
	return target, nil
}

// DeleteAccount removes a staff account. Admin only; self-deletion is
// refused, as is deleting the last admin. Leads assigned to the account are
// unassigned first so no lead is left pointing at a missing id.
func (s *StaffService) DeleteAccount(ctx context.Context, caller *domain.StaffAccount, targetID string) error {
	if err := requireAccountAdmin(caller); err != nil {
		return err
	}
	if caller.ID == targetID {
		return apperrors.NewForbidden("cannot delete own account")
	}
	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == domain.StaffRoleAdmin {
		if err := s.requireAnotherAdmin(ctx, "cannot delete the only admin"); err != nil {
			return err
		}
	}

	if err := s.leads.ClearAssigneeForStaff(ctx, targetID); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.staff.Delete(ctx, targetID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ResetPassword sets a new password on another account. Admin only.
func (s *StaffService) ResetPassword(ctx context.Context, caller *domain.StaffAccount, targetID, newPassword string) error {
	if err := requireAccountAdmin(caller); err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	target.PasswordHash = hash
	if err := s.staff.Update(ctx, target); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// UpdateProfile applies a self-service update to the caller's own account.
func (s *StaffService) UpdateProfile(ctx context.Context, caller *domain.StaffAccount, input ProfileInput) (*domain.StaffAccount, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthenticated("staff required")
	}
	account, err := s.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewValidationError("name is required", nil)
		}
		account.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil && !strings.EqualFold(strings.TrimSpace(*input.Email), account.Email) {
		email := strings.TrimSpace(*input.Email)
		if err := validateContact(account.Name, email); err != nil {
			return nil, err
		}
		if existing, err := s.staff.GetByEmail(ctx, email); err == nil && existing != nil && existing.ID != account.ID {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		account.Email = email
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		account.PasswordHash = hash
	}
	if input.Avatar != nil {
		// opaque reference only; content is owned by the upload layer
		account.Avatar = input.Avatar
	}

	if err := s.staff.Update(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// EnsureAdminAccount creates the bootstrap admin when the store has none.
// It refuses to run with an empty configured password.
func (s *StaffService) EnsureAdminAccount(ctx context.Context, cfg config.AdminConfig, logger *zap.Logger) error {
	count, err := s.staff.CountByRole(ctx, domain.StaffRoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.Password == "" {
		return errors.New("no admin account exists and ADMIN_PASSWORD is not set")
	}

	hash, err := auth.HashPassword(cfg.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	account := &domain.StaffAccount{
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         domain.StaffRoleAdmin,
	}
	if err := s.staff.Create(ctx, account); err != nil {
		return err
	}
	logger.Info("bootstrap admin account created", zap.String("email", account.Email))
	return nil
}

func (s *StaffService) requireAnotherAdmin(ctx context.Context, message string) error {
	count, err := s.staff.CountByRole(ctx, domain.StaffRoleAdmin)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count <= 1 {
		return apperrors.NewConflict(message, nil)
	}
	return nil
}
