// Package service implements the lead lifecycle: creation with id
// generation, scoring and duplicate detection, role-filtered updates,
// hub-routed assignment, deletion and statistics. All writes are
// lock-free; the storage uniqueness constraint on the lead id is the
// only concurrency guard.
package service

import (
	"context"
	"errors"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/authz"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/duplicate"
	"leadportal_backend/internal/leads/leadid"
	"leadportal_backend/internal/leads/ports"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/scoring"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/clock"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/phone"

	"github.com/google/uuid"
)

type Service struct {
	repo      repository.LeadsRepository
	matrix    *authz.Matrix
	idgen     *leadid.Generator
	detector  *duplicate.Detector
	actors    ports.ActorProvider
	contacts  ports.ContactProvider
	scheduler ports.FollowUpScheduler
	bus       events.Bus
	clock     clock.Clock
	log       *logger.Logger
}

// Deps bundles the service's collaborators. Contacts and Scheduler are
// optional; the service degrades to skipping notifications and reminders
// when they are nil.
type Deps struct {
	Repo      repository.LeadsRepository
	Matrix    *authz.Matrix
	Actors    ports.ActorProvider
	Contacts  ports.ContactProvider
	Scheduler ports.FollowUpScheduler
	Bus       events.Bus
	Clock     clock.Clock
	Log       *logger.Logger
}

func New(deps Deps) *Service {
	return &Service{
		repo:      deps.Repo,
		matrix:    deps.Matrix,
		idgen:     leadid.New(deps.Repo),
		detector:  duplicate.New(deps.Repo),
		actors:    deps.Actors,
		contacts:  deps.Contacts,
		scheduler: deps.Scheduler,
		bus:       deps.Bus,
		clock:     deps.Clock,
		log:       deps.Log,
	}
}

func (s *Service) resolveActor(ctx context.Context, actorID uuid.UUID) (domain.Actor, error) {
	actor, err := s.actors.GetActor(ctx, actorID)
	if err != nil || !actor.Active {
		return domain.Actor{}, apperr.Unauthorized("account not found or deactivated")
	}
	return actor, nil
}

// visibleLead fetches a lead and applies the actor's visibility filter.
// Invisible leads read as not found so their existence is never leaked.
func (s *Service) visibleLead(ctx context.Context, actor domain.Actor, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return repository.Lead{}, err
	}

	if !s.matrix.VisibilityFor(actor).Allows(leadView(lead)) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !s.matrix.CanCreate(actor) {
		return transport.LeadResponse{}, apperr.Forbidden("role cannot create leads")
	}
	if actor.OrganizationID == nil {
		return transport.LeadResponse{}, apperr.Forbidden("actor has no organization")
	}

	now := s.clock.Now()

	leadID, err := s.idgen.Next(ctx, now)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	score := scoring.Score(scoring.Input{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		TotalDebtAmount:    req.TotalDebtAmount,
		DebtCategory:       req.DebtCategory,
		NumberOfCreditors:  req.NumberOfCreditors,
		MonthlyDebtPayment: req.MonthlyDebtPayment,
		CreditScoreRange:   req.CreditScoreRange,
	})

	params := repository.CreateLeadParams{
		LeadID:               leadID,
		Name:                 req.Name,
		Phone:                req.Phone,
		Email:                optString(req.Email),
		AlternatePhone:       optString(req.AlternatePhone),
		DebtCategory:         optString(req.DebtCategory),
		TotalDebtAmount:      req.TotalDebtAmount,
		NumberOfCreditors:    req.NumberOfCreditors,
		MonthlyDebtPayment:   req.MonthlyDebtPayment,
		CreditScoreRange:     optString(req.CreditScoreRange),
		Remarks:              optString(req.Remarks),
		CompletionPercentage: score.CompletionPercentage,
		Category:             string(score.Tier),
		Priority:             string(score.Priority),
		CreatedBy:            actor.ID,
		CreatedByName:        actor.Name,
		OrganizationID:       *actor.OrganizationID,
	}
	if canonical := phone.Canonical(req.Phone); canonical != "" {
		params.CanonicalPhone = &canonical
	}

	match, err := s.detector.Detect(ctx, req.Phone, uuid.Nil)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if match != nil {
		params.IsDuplicate = true
		params.DuplicateOf = &match.DuplicateOf
		params.DuplicateReason = &match.Reason
		params.DuplicateDetectedAt = &now
	}

	lead, err := s.repo.Create(ctx, params)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return transport.LeadResponse{}, apperr.Conflict("lead id already taken, retry the request")
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if match != nil {
		// Second write. The duplicate flag is already persisted; failing
		// to stamp who triggered detection must not fail the create.
		if err := s.repo.StampDuplicateDetectedBy(ctx, lead.ID, actor.ID); err != nil {
			s.log.Warn("failed to stamp duplicate detector", "lead", lead.LeadID, "error", err)
		} else {
			lead.DuplicateDetectedBy = &actor.ID
		}
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:            events.NewBaseEvent(),
		LeadKey:              lead.ID,
		LeadID:               lead.LeadID,
		OrganizationID:       lead.OrganizationID,
		CreatedBy:            actor.ID,
		CreatorName:          actor.Name,
		Name:                 lead.Name,
		Phone:                lead.Phone,
		CompletionPercentage: lead.CompletionPercentage,
		Category:             lead.Category,
		Priority:             lead.Priority,
		IsDuplicate:          lead.IsDuplicate,
		DuplicateOf:          lead.DuplicateOf,
	})
	if match != nil {
		s.bus.Publish(ctx, events.DuplicateLeadDetected{
			BaseEvent:      events.NewBaseEvent(),
			LeadKey:        lead.ID,
			LeadID:         lead.LeadID,
			DuplicateOf:    match.DuplicateOf,
			Reason:         match.Reason,
			OrganizationID: lead.OrganizationID,
			DetectedAt:     now,
		})
	}

	return toLeadResponse(lead), nil
}

func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.visibleLead(ctx, actor, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	allowed := s.matrix.AllowedFields(actor)
	if len(allowed) == 0 {
		return transport.LeadResponse{}, apperr.Forbidden("role cannot update leads")
	}

	now := s.clock.Now()
	params, updatedFields := buildUpdateParams(req, allowed)
	params.LastUpdatedBy = actor.ID
	params.LastUpdatedByName = actor.Name

	if touchesScoring(updatedFields) {
		score := scoring.Score(mergedScoringInput(lead, req, allowed))
		params.CompletionPercentage = &score.CompletionPercentage
		category := string(score.Tier)
		priority := string(score.Priority)
		params.Category = &category
		params.Priority = &priority
	}

	converted := false
	if params.Status != nil && *params.Status == string(domain.StatusSuccessful) && lead.ConvertedAt == nil {
		params.ConvertedAt = &now
		converted = true
	}

	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleSuperAdmin {
		processed := true
		params.AdminProcessed = &processed
		params.AdminProcessedAt = &now
	}

	updated, err := s.repo.Update(ctx, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if params.FollowUpDateSet && params.FollowUpDate != nil && s.scheduler != nil {
		if err := s.scheduler.ScheduleFollowUp(ctx, updated.ID, *params.FollowUpDate); err != nil {
			s.log.Warn("failed to schedule follow-up reminder", "lead", updated.LeadID, "error", err)
		}
	}

	s.bus.Publish(ctx, events.LeadUpdated{
		BaseEvent:      events.NewBaseEvent(),
		LeadKey:        updated.ID,
		LeadID:         updated.LeadID,
		OrganizationID: updated.OrganizationID,
		UpdatedBy:      actor.ID,
		UpdaterName:    actor.Name,
		UpdatedFields:  updatedFields,
		Status:         updated.Status,
		AdminProcessed: updated.AdminProcessed,
	})
	if converted && updated.ConvertedAt != nil {
		s.bus.Publish(ctx, events.LeadConverted{
			BaseEvent:      events.NewBaseEvent(),
			LeadKey:        updated.ID,
			LeadID:         updated.LeadID,
			OrganizationID: updated.OrganizationID,
			ConvertedBy:    actor.ID,
			ConvertedAt:    *updated.ConvertedAt,
		})
	}

	return toLeadResponse(updated), nil
}

func (s *Service) Assign(ctx context.Context, actorID, id uuid.UUID, req transport.AssignLeadRequest) (transport.LeadResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !s.matrix.CanAssign(actor) {
		return transport.LeadResponse{}, apperr.Forbidden("role cannot assign leads")
	}

	if _, err := s.visibleLead(ctx, actor, id); err != nil {
		return transport.LeadResponse{}, err
	}

	target, err := s.actors.GetActor(ctx, req.AssigneeID)
	if err != nil {
		return transport.LeadResponse{}, apperr.InvalidReference("assignee not found")
	}
	if !s.matrix.CanAssignTo(actor, target) {
		return transport.LeadResponse{}, apperr.InvalidReference("assignee is not an eligible closing agent")
	}

	lead, err := s.repo.Assign(ctx, id, target.ID, actor.ID)
	if errors.Is(err, repository.ErrAlreadyAssigned) {
		return transport.LeadResponse{}, apperr.Conflict("lead is already assigned")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}

	assigneeEmail := ""
	if s.contacts != nil {
		if contact, err := s.contacts.GetContact(ctx, target.ID); err == nil {
			assigneeEmail = contact.Email
		}
	}

	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:      events.NewBaseEvent(),
		LeadKey:        lead.ID,
		LeadID:         lead.LeadID,
		LeadName:       lead.Name,
		OrganizationID: lead.OrganizationID,
		AssignedTo:     target.ID,
		AssigneeName:   target.Name,
		AssigneeEmail:  assigneeEmail,
		AssignedBy:     actor.ID,
		AssignerName:   actor.Name,
		AssignedAt:     deref(lead.AssignedAt, s.clock.Now()),
	})

	return toLeadResponse(lead), nil
}

func (s *Service) Unassign(ctx context.Context, actorID, id uuid.UUID) (transport.LeadResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !s.matrix.CanAssign(actor) {
		return transport.LeadResponse{}, apperr.Forbidden("role cannot assign leads")
	}

	lead, err := s.visibleLead(ctx, actor, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if lead.AssignedTo == nil {
		return transport.LeadResponse{}, apperr.Conflict("lead is not assigned")
	}
	previous := *lead.AssignedTo

	updated, err := s.repo.Unassign(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadUnassigned{
		BaseEvent:      events.NewBaseEvent(),
		LeadKey:        updated.ID,
		LeadID:         updated.LeadID,
		OrganizationID: updated.OrganizationID,
		PreviousAgent:  previous,
		UnassignedBy:   actor.ID,
	})

	return toLeadResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return err
	}

	// Deletion authorizes against the lead's owning organization, not the
	// visibility filter: an org admin deleting another tenant's lead must
	// see Forbidden, not a masked NotFound.
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	if err != nil {
		return err
	}
	if !s.matrix.CanDelete(actor, lead.OrganizationID) {
		return apperr.Forbidden("role cannot delete this lead")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}

	s.bus.Publish(ctx, events.LeadDeleted{
		BaseEvent:      events.NewBaseEvent(),
		LeadKey:        lead.ID,
		LeadID:         lead.LeadID,
		OrganizationID: lead.OrganizationID,
		DeletedBy:      actor.ID,
	})

	return nil
}

func (s *Service) GetByID(ctx context.Context, actorID, id uuid.UUID) (transport.LeadResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.visibleLead(ctx, actor, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

func (s *Service) List(ctx context.Context, actorID uuid.UUID, query transport.ListLeadsQuery) (transport.ListLeadsResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return transport.ListLeadsResponse{}, err
	}

	params, page, limit, err := buildListParams(s.matrix.VisibilityFor(actor), query)
	if err != nil {
		return transport.ListLeadsResponse{}, err
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ListLeadsResponse{}, err
	}

	responses := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, toLeadResponse(lead))
	}

	return transport.ListLeadsResponse{
		Leads: responses,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}
