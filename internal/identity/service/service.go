// Package service implements organization management and hub resolution.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/identity/repository"
	"leadportal_backend/internal/identity/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/config"
)

type Service struct {
	repo *repository.Repository
	cfg  config.HubConfig
	bus  events.Bus
}

func New(repo *repository.Repository, cfg config.HubConfig, bus events.Bus) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus}
}

func (s *Service) Create(ctx context.Context, req transport.CreateOrganizationRequest) (transport.OrganizationResponse, error) {
	org, err := s.repo.Create(ctx, strings.TrimSpace(req.Name))
	if errors.Is(err, repository.ErrNameTaken) {
		return transport.OrganizationResponse{}, apperr.Conflict("organization name already taken")
	}
	if err != nil {
		return transport.OrganizationResponse{}, err
	}

	s.bus.Publish(ctx, events.OrganizationCreated{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: org.ID,
		Name:           org.Name,
		IsHub:          s.isHubName(org.Name),
	})

	return s.toResponse(org), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.OrganizationResponse, error) {
	org, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.OrganizationResponse{}, apperr.NotFound("organization not found")
	}
	if err != nil {
		return transport.OrganizationResponse{}, err
	}
	return s.toResponse(org), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateOrganizationRequest) (transport.OrganizationResponse, error) {
	params := repository.UpdateParams{Active: req.Active}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		params.Name = &trimmed
	}

	org, err := s.repo.Update(ctx, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.OrganizationResponse{}, apperr.NotFound("organization not found")
	}
	if errors.Is(err, repository.ErrNameTaken) {
		return transport.OrganizationResponse{}, apperr.Conflict("organization name already taken")
	}
	if err != nil {
		return transport.OrganizationResponse{}, err
	}
	return s.toResponse(org), nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]transport.OrganizationResponse, error) {
	orgs, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		responses = append(responses, s.toResponse(org))
	}
	return responses, nil
}

// IsHub reports whether the organization carries the configured hub
// name. Hub membership elevates agent visibility and routes
// assignments, so it is derived from the name on every lookup rather
// than persisted.
func (s *Service) IsHub(ctx context.Context, organizationID uuid.UUID) (bool, error) {
	org, err := s.repo.GetByID(ctx, organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.isHubName(org.Name), nil
}

func (s *Service) isHubName(name string) bool {
	return strings.EqualFold(name, s.cfg.GetHubOrganizationName())
}

func (s *Service) toResponse(org repository.Organization) transport.OrganizationResponse {
	return transport.OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		Active:    org.Active,
		IsHub:     s.isHubName(org.Name),
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}
