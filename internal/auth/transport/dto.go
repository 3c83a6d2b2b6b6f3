package transport

import (
	"time"

	"github.com/google/uuid"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

type CreateUserRequest struct {
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required,min=8"`
	Name           string     `json:"name" validate:"required,min=1,max=200"`
	Role           string     `json:"role" validate:"required,oneof=agent1 agent2 admin superadmin"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty" validate:"omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type ListUsersQuery struct {
	Role       string `form:"role" validate:"omitempty,oneof=agent1 agent2 admin superadmin"`
	ActiveOnly bool   `form:"activeOnly"`
}

type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"createdAt"`
}
