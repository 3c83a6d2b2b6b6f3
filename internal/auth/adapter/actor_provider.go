// Package adapter bridges the auth domain to the interfaces other
// bounded contexts consume, so they never import auth internals.
package adapter

import (
	"context"

	"leadportal_backend/internal/auth/repository"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// HubChecker reports whether an organization is the distinguished hub.
// The identity service provides the implementation.
type HubChecker interface {
	IsHub(ctx context.Context, organizationID uuid.UUID) (bool, error)
}

// ActorProvider implements ports.ActorProvider and ports.ContactProvider
// on top of the auth repository.
type ActorProvider struct {
	repo *repository.Repository
	hub  HubChecker
}

func NewActorProvider(repo *repository.Repository, hub HubChecker) *ActorProvider {
	return &ActorProvider{repo: repo, hub: hub}
}

func (p *ActorProvider) GetActor(ctx context.Context, userID uuid.UUID) (domain.Actor, error) {
	user, err := p.repo.GetUserByID(ctx, userID)
	if err != nil {
		return domain.Actor{}, err
	}
	return p.toActor(ctx, user)
}

func (p *ActorProvider) GetActorsByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]domain.Actor, error) {
	users, err := p.repo.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	actors := make(map[uuid.UUID]domain.Actor, len(users))
	for _, user := range users {
		actor, err := p.toActor(ctx, user)
		if err != nil {
			return nil, err
		}
		actors[user.ID] = actor
	}
	return actors, nil
}

func (p *ActorProvider) GetContact(ctx context.Context, userID uuid.UUID) (ports.ActorContact, error) {
	user, err := p.repo.GetUserByID(ctx, userID)
	if err != nil {
		return ports.ActorContact{}, err
	}
	return ports.ActorContact{Name: user.Name, Email: user.Email}, nil
}

func (p *ActorProvider) toActor(ctx context.Context, user repository.User) (domain.Actor, error) {
	isHub := false
	if user.OrganizationID != nil {
		member, err := p.hub.IsHub(ctx, *user.OrganizationID)
		if err != nil {
			return domain.Actor{}, err
		}
		isHub = member
	}

	return domain.Actor{
		ID:             user.ID,
		Name:           user.Name,
		Role:           domain.Role(user.Role),
		OrganizationID: user.OrganizationID,
		IsHubMember:    isHub,
		Active:         user.Active,
	}, nil
}

var (
	_ ports.ActorProvider   = (*ActorProvider)(nil)
	_ ports.ContactProvider = (*ActorProvider)(nil)
)
