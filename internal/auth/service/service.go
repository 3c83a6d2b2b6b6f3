package service

import (
	"context"
	"errors"
	"time"

	"leadportal_backend/internal/auth/password"
	"leadportal_backend/internal/auth/repository"
	"leadportal_backend/internal/auth/transport"
	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	bus  events.Bus
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, bus events.Bus) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus}
}

func (s *Service) SignIn(ctx context.Context, req transport.SignInRequest) (transport.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return transport.AuthResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		return transport.AuthResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if !user.Active {
		return transport.AuthResponse{}, apperr.Unauthorized("account deactivated")
	}

	accessToken, err := s.signJWT(user)
	if err != nil {
		return transport.AuthResponse{}, err
	}

	return transport.AuthResponse{
		AccessToken: accessToken,
		User:        toUserResponse(user),
	}, nil
}

func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	role := domain.Role(req.Role)
	if !role.Valid() {
		return transport.UserResponse{}, apperr.Validation("unknown role")
	}
	if role == domain.RoleSuperAdmin && req.OrganizationID != nil {
		return transport.UserResponse{}, apperr.Validation("superadmin accounts are not organization members")
	}
	if role != domain.RoleSuperAdmin && req.OrganizationID == nil {
		return transport.UserResponse{}, apperr.Validation("organizationId is required for this role")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, err
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:          req.Email,
		PasswordHash:   hash,
		Name:           req.Name,
		Role:           req.Role,
		OrganizationID: req.OrganizationID,
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return transport.UserResponse{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		return transport.UserResponse{}, err
	}

	s.bus.Publish(ctx, events.UserCreated{
		BaseEvent:      events.NewBaseEvent(),
		UserID:         user.ID,
		Email:          user.Email,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	})

	return toUserResponse(user), nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *Service) ListUsers(ctx context.Context, params repository.ListUsersParams) ([]transport.UserResponse, error) {
	users, err := s.repo.ListUsers(ctx, params)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}
	return responses, nil
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (transport.UserResponse, error) {
	user, err := s.repo.SetActive(ctx, id, active)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req transport.ChangePasswordRequest) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return apperr.NotFound("user not found")
	}
	if err := password.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperr.Unauthorized("invalid credentials")
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

func (s *Service) signJWT(user repository.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"type": accessTokenType,
		"role": user.Role,
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":  now.Unix(),
	}
	if user.OrganizationID != nil {
		claims["tenant_id"] = user.OrganizationID.String()
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		Active:         user.Active,
		CreatedAt:      user.CreatedAt,
	}
}
