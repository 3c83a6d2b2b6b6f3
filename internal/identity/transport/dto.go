package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

type UpdateOrganizationRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Active *bool   `json:"active,omitempty"`
}

type ListOrganizationsQuery struct {
	ActiveOnly bool `form:"activeOnly"`
}

type OrganizationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	IsHub     bool      `json:"isHub"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
