package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/api/dto"
	"github.com/spec-kit/lead-service/internal/service"
	apperrors "github.com/spec-kit/lead-service/pkg/util/errorutil"
)

// UsersHandler serves login, profile, and admin account management.
type UsersHandler struct {
	auth  *service.AuthService
	staff *service.StaffService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, staffService *service.StaffService) *UsersHandler {
	return &UsersHandler{auth: authService, staff: staffService}
}

// Login POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	account, token, expiresAt, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(account),
	}})
}

// UpdateProfile PUT /auth/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.staff.UpdateProfile(c.Context(), caller, service.ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(account)})
}

// ListUsers GET /staff/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	accounts, err := h.staff.ListAccounts(c.Context(), caller)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.NewUserResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateUser POST /staff/users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.staff.CreateAccount(c.Context(), caller, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(account)})
}

// UpdateUserRole PATCH /staff/users/:id/role.
func (h *UsersHandler) UpdateUserRole(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.staff.SetRole(c.Context(), caller, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(account)})
}

// ResetUserPassword PATCH /staff/users/:id/password.
func (h *UsersHandler) ResetUserPassword(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.staff.ResetPassword(c.Context(), caller, c.Params("id"), req.Password); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteUser DELETE /staff/users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	caller, err := staffCaller(c)
	if err != nil {
		return err
	}
	if err := h.staff.DeleteAccount(c.Context(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
