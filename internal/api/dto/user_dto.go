package dto

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest payload (admin).
type CreateUserRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     domain.StaffRole `json:"role"`
}

// UpdateRoleRequest payload (admin).
type UpdateRoleRequest struct {
	Role domain.StaffRole `json:"role"`
}

// ResetPasswordRequest payload (admin).
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// UpdateProfileRequest is the self-service profile payload. Nil fields are
// left unchanged; Avatar is an opaque reference string.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Avatar   *string `json:"avatar"`
}

// UserResponse is the API shape of a staff account. The password hash never
// leaves the service.
type UserResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.StaffRole `json:"role"`
	Avatar    *string          `json:"avatar,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewUserResponse maps a staff account onto the response shape.
func NewUserResponse(account *domain.StaffAccount) UserResponse {
	return UserResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Role:      account.Role,
		Avatar:    account.Avatar,
		CreatedAt: account.CreatedAt,
	}
}
