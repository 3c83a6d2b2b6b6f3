// Package notification fans domain events out to connected SSE clients
// and to email.
package notification

import (
	"context"
	"fmt"

	"leadportal_backend/internal/email"
	"leadportal_backend/internal/events"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/ports"
	"leadportal_backend/internal/notification/sse"
	"leadportal_backend/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	sse      *sse.Service
	sender   email.Sender
	contacts ports.ContactProvider
	log      *logger.Logger
}

// New creates the notification module. Sender may be a NoopSender when
// email is not configured.
func New(sender email.Sender, contacts ports.ContactProvider, log *logger.Logger) *Module {
	return &Module{
		sse:      sse.New(log),
		sender:   sender,
		contacts: contacts,
		log:      log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// SSE exposes the underlying stream service.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterRoutes mounts the SSE stream endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications/stream", m.sse.Handler())
}

// RegisterHandlers subscribes the module to the lead lifecycle events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.DuplicateLeadDetected{}.EventName(), m)
	bus.Subscribe(events.LeadUpdated{}.EventName(), m)
	bus.Subscribe(events.LeadConverted{}.EventName(), m)
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	bus.Subscribe(events.LeadUnassigned{}.EventName(), m)
	bus.Subscribe(events.FollowUpDue{}.EventName(), m)
}

// Handle dispatches a single event to the matching notifier.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.handleLeadCreated(e)
	case events.DuplicateLeadDetected:
		return m.handleDuplicateDetected(e)
	case events.LeadUpdated:
		return m.handleLeadUpdated(e)
	case events.LeadConverted:
		return m.handleLeadConverted(e)
	case events.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	case events.LeadUnassigned:
		return m.handleLeadUnassigned(e)
	case events.FollowUpDue:
		return m.handleFollowUpDue(ctx, e)
	default:
		return nil
	}
}

// Lead creation and duplicate flags go to every connected client: the
// admin, superadmin and agent2 rooms all watch the incoming pipeline.
func (m *Module) handleLeadCreated(e events.LeadCreated) error {
	m.sse.Broadcast(sse.Event{
		Type:    sse.EventLeadCreated,
		LeadKey: e.LeadKey,
		LeadID:  e.LeadID,
		Message: fmt.Sprintf("New lead %s created by %s", e.LeadID, e.CreatorName),
		Data:    e,
	})
	return nil
}

func (m *Module) handleDuplicateDetected(e events.DuplicateLeadDetected) error {
	m.sse.Broadcast(sse.Event{
		Type:    sse.EventDuplicateDetected,
		LeadKey: e.LeadKey,
		LeadID:  e.LeadID,
		Message: fmt.Sprintf("Lead %s flagged as duplicate", e.LeadID),
		Data:    e,
	})
	return nil
}

func (m *Module) handleLeadUpdated(e events.LeadUpdated) error {
	m.sse.PublishToRoles(sse.Event{
		Type:    sse.EventLeadUpdated,
		LeadKey: e.LeadKey,
		LeadID:  e.LeadID,
		Message: fmt.Sprintf("Lead %s updated by %s", e.LeadID, e.UpdaterName),
		Data:    e,
	}, string(domain.RoleAdmin), string(domain.RoleSuperAdmin))
	return nil
}

func (m *Module) handleLeadConverted(e events.LeadConverted) error {
	m.sse.PublishToRoles(sse.Event{
		Type:    sse.EventLeadConverted,
		LeadKey: e.LeadKey,
		LeadID:  e.LeadID,
		Message: fmt.Sprintf("Lead %s converted", e.LeadID),
		Data:    e,
	}, string(domain.RoleAdmin), string(domain.RoleSuperAdmin))
	return nil
}

func (m *Module) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	m.sse.Publish(e.AssignedTo, sse.Event{
		Type:    sse.EventLeadAssigned,
		LeadKey: e.LeadKey,
		LeadID:  e.LeadID,
		Message: fmt.Sprintf("Lead %s was assigned to you by %s", e.LeadID, e.AssignerName),
		Data:    e,
	})

	if e.AssigneeEmail == "" {
		return nil
	}
	if err := m.sender.SendLeadAssignedEmail(ctx, e.AssigneeEmail, e.AssigneeName, e.LeadID, e.LeadName, e.AssignerName); err != nil {
		m.log.Error("failed to send assignment email",
			"lead_id", e.LeadID,
			"assignee", e.AssignedTo.String(),
			"error", err)
	}
	return nil
}

func (m *Module) handleLeadUnassigned(e events.LeadUnassigned) error {
	m.sse.Publish(e.PreviousAgent, sse.Event{
		Type:    sse.EventLeadUnassigned,
		LeadKey: e.LeadKey,
		LeadID:  e.LeadID,
		Message: fmt.Sprintf("Lead %s is no longer assigned to you", e.LeadID),
		Data:    e,
	})
	return nil
}

func (m *Module) handleFollowUpDue(ctx context.Context, e events.FollowUpDue) error {
	event := sse.Event{
		Type:    sse.EventFollowUpDue,
		LeadKey: e.LeadKey,
		LeadID:  e.LeadID,
		Message: fmt.Sprintf("Follow-up due for lead %s", e.LeadID),
		Data:    e,
	}

	if e.AssignedTo == nil {
		m.sse.PublishToRoles(event, string(domain.RoleAdmin), string(domain.RoleSuperAdmin))
		return nil
	}

	m.sse.Publish(*e.AssignedTo, event)

	if m.contacts == nil {
		return nil
	}
	contact, err := m.contacts.GetContact(ctx, *e.AssignedTo)
	if err != nil || contact.Email == "" {
		return nil
	}
	if err := m.sender.SendFollowUpReminderEmail(ctx, contact.Email, contact.Name, e.LeadID, e.LeadName, e.FollowUpDate); err != nil {
		m.log.Error("failed to send follow-up reminder email",
			"lead_id", e.LeadID,
			"error", err)
	}
	return nil
}

var _ apphttp.Module = (*Module)(nil)
var _ events.Handler = (*Module)(nil)
