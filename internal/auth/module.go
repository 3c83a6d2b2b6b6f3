// Package auth wires the authentication module: JWT sign-in, account
// provisioning and the actor lookups other modules depend on.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"leadportal_backend/internal/auth/adapter"
	"leadportal_backend/internal/auth/handler"
	"leadportal_backend/internal/auth/repository"
	"leadportal_backend/internal/auth/service"
	"leadportal_backend/internal/events"
	"leadportal_backend/internal/http"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/validator"
)

// Module bundles the auth handlers, service and repository.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// Deps holds the dependencies for constructing the auth module.
type Deps struct {
	Pool      *pgxpool.Pool
	Config    config.AuthServiceConfig
	Bus       events.Bus
	Validator *validator.Validator
}

// NewModule assembles the auth module from its dependencies.
func NewModule(deps Deps) *Module {
	repo := repository.New(deps.Pool)
	svc := service.New(repo, deps.Config, deps.Bus)

	return &Module{
		handler: handler.New(svc, deps.Validator),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "auth" }

// Service exposes the auth service to the composition root.
func (m *Module) Service() *service.Service { return m.service }

// ActorProvider builds the cross-module actor lookup used by the leads
// module. The hub checker comes from the identity module.
func (m *Module) ActorProvider(hub adapter.HubChecker) *adapter.ActorProvider {
	return adapter.NewActorProvider(m.repo, hub)
}

// RegisterRoutes mounts the auth and user management routes.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	{
		authGroup.POST("/login", ctx.AuthRateLimiter.RateLimit(), m.handler.SignIn)
	}

	protected := ctx.Protected.Group("/auth")
	{
		protected.GET("/me", m.handler.Me)
		protected.POST("/change-password", m.handler.ChangePassword)
	}

	users := ctx.Admin.Group("/users")
	{
		users.POST("", m.handler.CreateUser)
		users.GET("", m.handler.ListUsers)
		users.PATCH("/:id/active", m.handler.SetActive)
	}
}

var _ http.Module = (*Module)(nil)
