// Package identity wires the organization (tenant) module.
package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/http"
	"leadportal_backend/internal/identity/handler"
	"leadportal_backend/internal/identity/repository"
	"leadportal_backend/internal/identity/service"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/validator"
)

// Module bundles the identity handlers, service and repository.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// Deps holds the dependencies for constructing the identity module.
type Deps struct {
	Pool      *pgxpool.Pool
	Config    config.HubConfig
	Bus       events.Bus
	Validator *validator.Validator
}

// NewModule assembles the identity module from its dependencies.
func NewModule(deps Deps) *Module {
	repo := repository.New(deps.Pool)
	svc := service.New(repo, deps.Config, deps.Bus)

	return &Module{
		handler: handler.New(svc, deps.Validator),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "identity" }

// Service exposes the organization service. It doubles as the hub
// checker the auth actor provider depends on.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts the organization management routes. Tenant
// management is reserved for superadmins.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	orgs := ctx.Admin.Group("/organizations", httpkit.RequireRole(string(domain.RoleSuperAdmin)))
	{
		orgs.POST("", m.handler.Create)
		orgs.GET("", m.handler.List)
		orgs.GET("/:id", m.handler.Get)
		orgs.PUT("/:id", m.handler.Update)
	}
}

var _ http.Module = (*Module)(nil)
