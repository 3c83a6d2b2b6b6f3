package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/ports"
	"leadportal_backend/internal/notification/sse"
	"leadportal_backend/platform/logger"
)

type sentEmail struct {
	kind     string
	to       string
	leadID   string
	leadName string
}

type fakeSender struct {
	sent []sentEmail
	err  error
}

func (f *fakeSender) SendLeadAssignedEmail(_ context.Context, toEmail, agentName, leadID, leadName, assignerName string) error {
	f.sent = append(f.sent, sentEmail{kind: "assigned", to: toEmail, leadID: leadID, leadName: leadName})
	return f.err
}

func (f *fakeSender) SendFollowUpReminderEmail(_ context.Context, toEmail, agentName, leadID, leadName string, followUpAt time.Time) error {
	f.sent = append(f.sent, sentEmail{kind: "followup", to: toEmail, leadID: leadID, leadName: leadName})
	return f.err
}

type fakeContacts struct {
	contacts map[uuid.UUID]ports.ActorContact
}

func (f *fakeContacts) GetContact(_ context.Context, userID uuid.UUID) (ports.ActorContact, error) {
	return f.contacts[userID], nil
}

func newTestModule(sender *fakeSender, contacts ports.ContactProvider) *Module {
	return New(sender, contacts, logger.New("development"))
}

func TestHandleLeadAssignedSendsEmail(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender, &fakeContacts{})

	err := m.Handle(context.Background(), events.LeadAssigned{
		BaseEvent:     events.NewBaseEvent(),
		LeadKey:       uuid.New(),
		LeadID:        "LEAD26030001",
		LeadName:      "Jane Doe",
		AssignedTo:    uuid.New(),
		AssigneeName:  "Agent Two",
		AssigneeEmail: "agent2@example.com",
		AssignerName:  "Admin",
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	got := sender.sent[0]
	if got.kind != "assigned" || got.to != "agent2@example.com" || got.leadID != "LEAD26030001" {
		t.Errorf("unexpected email: %+v", got)
	}
}

func TestHandleLeadAssignedSkipsEmailWithoutAddress(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender, &fakeContacts{})

	err := m.Handle(context.Background(), events.LeadAssigned{
		BaseEvent:  events.NewBaseEvent(),
		LeadKey:    uuid.New(),
		LeadID:     "LEAD26030002",
		AssignedTo: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no emails, got %d", len(sender.sent))
	}
}

func TestHandleFollowUpDueEmailsAssignee(t *testing.T) {
	assignee := uuid.New()
	sender := &fakeSender{}
	contacts := &fakeContacts{contacts: map[uuid.UUID]ports.ActorContact{
		assignee: {Name: "Agent Two", Email: "agent2@example.com"},
	}}
	m := newTestModule(sender, contacts)

	err := m.Handle(context.Background(), events.FollowUpDue{
		BaseEvent:    events.NewBaseEvent(),
		LeadKey:      uuid.New(),
		LeadID:       "LEAD26030003",
		LeadName:     "John Roe",
		AssignedTo:   &assignee,
		FollowUpDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	got := sender.sent[0]
	if got.kind != "followup" || got.to != "agent2@example.com" || got.leadName != "John Roe" {
		t.Errorf("unexpected email: %+v", got)
	}
}

func TestHandleFollowUpDueUnassignedSendsNoEmail(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender, &fakeContacts{})

	err := m.Handle(context.Background(), events.FollowUpDue{
		BaseEvent:    events.NewBaseEvent(),
		LeadKey:      uuid.New(),
		LeadID:       "LEAD26030004",
		FollowUpDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no emails, got %d", len(sender.sent))
	}
}

func TestLeadCreatedReachesClosingAgents(t *testing.T) {
	m := newTestModule(&fakeSender{}, &fakeContacts{})

	stream, cancel := m.SSE().Subscribe(uuid.New(), string(domain.RoleAgent2))
	defer cancel()

	if err := m.Handle(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadKey:   uuid.New(),
		LeadID:    "LEAD26030005",
	}); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if err := m.Handle(context.Background(), events.DuplicateLeadDetected{
		BaseEvent: events.NewBaseEvent(),
		LeadKey:   uuid.New(),
		LeadID:    "LEAD26030006",
	}); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	for _, want := range []sse.EventType{sse.EventLeadCreated, sse.EventDuplicateDetected} {
		select {
		case got := <-stream:
			if got.Type != want {
				t.Fatalf("agent2 stream received %s, want %s", got.Type, want)
			}
		default:
			t.Fatalf("agent2 stream did not receive %s", want)
		}
	}
}

func TestHandleIgnoresUnknownEvents(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender, &fakeContacts{})

	err := m.Handle(context.Background(), events.UserCreated{
		BaseEvent: events.NewBaseEvent(),
		UserID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no emails, got %d", len(sender.sent))
	}
}
