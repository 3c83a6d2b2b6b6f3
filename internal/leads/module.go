// Package leads provides the lead lifecycle bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadportal_backend/internal/events"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/leads/authz"
	"leadportal_backend/internal/leads/handler"
	"leadportal_backend/internal/leads/ports"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/platform/clock"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// Deps bundles the cross-module collaborators the leads module needs.
// Contacts and Scheduler may be nil; notifications and reminders are
// then skipped.
type Deps struct {
	Pool      *pgxpool.Pool
	Actors    ports.ActorProvider
	Contacts  ports.ContactProvider
	Scheduler ports.FollowUpScheduler
	Bus       events.Bus
	Clock     clock.Clock
	Validator *validator.Validator
	Logger    *logger.Logger
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(deps Deps) (*Module, error) {
	matrix, err := authz.New()
	if err != nil {
		return nil, err
	}

	repo := repository.New(deps.Pool)
	svc := service.New(service.Deps{
		Repo:      repo,
		Matrix:    matrix,
		Actors:    deps.Actors,
		Contacts:  deps.Contacts,
		Scheduler: deps.Scheduler,
		Bus:       deps.Bus,
		Clock:     deps.Clock,
		Log:       deps.Logger,
	})
	h := handler.New(svc, deps.Validator)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/statistics", m.handler.Statistics)
	group.GET("/:id", m.handler.GetByID)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
	group.PUT("/:id/assign", m.handler.Assign)
	group.PUT("/:id/unassign", m.handler.Unassign)
}
