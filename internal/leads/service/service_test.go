package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/authz"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/clock"
	"leadportal_backend/platform/logger"
	platformevents "leadportal_backend/platform/events"

	"github.com/google/uuid"
)

// ---- fakes ----

type fakeRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]repository.Lead

	lastListParams repository.ListParams
	createErr      error
	stampErr       error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return repository.Lead{}, f.createErr
	}
	for _, existing := range f.leads {
		if existing.LeadID == params.LeadID {
			return repository.Lead{}, repository.ErrDuplicateKey
		}
	}
	now := time.Now()
	lead := repository.Lead{
		ID:                   uuid.New(),
		LeadID:               params.LeadID,
		Name:                 params.Name,
		Email:                params.Email,
		Phone:                params.Phone,
		CanonicalPhone:       params.CanonicalPhone,
		AlternatePhone:       params.AlternatePhone,
		DebtCategory:         params.DebtCategory,
		TotalDebtAmount:      params.TotalDebtAmount,
		NumberOfCreditors:    params.NumberOfCreditors,
		MonthlyDebtPayment:   params.MonthlyDebtPayment,
		CreditScoreRange:     params.CreditScoreRange,
		CompletionPercentage: params.CompletionPercentage,
		Category:             params.Category,
		Priority:             params.Priority,
		Status:               string(domain.StatusNew),
		Remarks:              params.Remarks,
		IsDuplicate:          params.IsDuplicate,
		DuplicateOf:          params.DuplicateOf,
		DuplicateReason:      params.DuplicateReason,
		DuplicateDetectedAt:  params.DuplicateDetectedAt,
		CreatedBy:            params.CreatedBy,
		CreatedByName:        params.CreatedByName,
		OrganizationID:       params.OrganizationID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}

	if params.Name != nil {
		lead.Name = *params.Name
	}
	if params.Email != nil {
		lead.Email = params.Email
	}
	if params.Phone != nil {
		lead.Phone = *params.Phone
	}
	if params.CanonicalPhone != nil {
		lead.CanonicalPhone = params.CanonicalPhone
	}
	if params.DebtCategory != nil {
		lead.DebtCategory = params.DebtCategory
	}
	if params.TotalDebtAmount != nil {
		lead.TotalDebtAmount = params.TotalDebtAmount
	}
	if params.NumberOfCreditors != nil {
		lead.NumberOfCreditors = params.NumberOfCreditors
	}
	if params.MonthlyDebtPayment != nil {
		lead.MonthlyDebtPayment = params.MonthlyDebtPayment
	}
	if params.CreditScoreRange != nil {
		lead.CreditScoreRange = params.CreditScoreRange
	}
	if params.Remarks != nil {
		lead.Remarks = params.Remarks
	}
	if params.Status != nil {
		lead.Status = *params.Status
	}
	if params.CallStatus != nil {
		lead.CallStatus = params.CallStatus
	}
	if params.DocumentStatus != nil {
		lead.DocumentStatus = params.DocumentStatus
	}
	if params.FollowUpDateSet {
		lead.FollowUpDate = params.FollowUpDate
	}
	if params.CompletionPercentage != nil {
		lead.CompletionPercentage = *params.CompletionPercentage
	}
	if params.Category != nil {
		lead.Category = *params.Category
	}
	if params.Priority != nil {
		lead.Priority = *params.Priority
	}
	if params.AdminProcessed != nil {
		lead.AdminProcessed = *params.AdminProcessed
	}
	if params.AdminProcessedAt != nil {
		lead.AdminProcessedAt = params.AdminProcessedAt
	}
	if params.ConvertedAt != nil && lead.ConvertedAt == nil {
		lead.ConvertedAt = params.ConvertedAt
	}
	lead.UpdatedBy = &params.LastUpdatedBy
	lead.LastUpdatedBy = &params.LastUpdatedBy
	lead.LastUpdatedByName = &params.LastUpdatedByName
	now := time.Now()
	lead.LastUpdatedAt = &now
	lead.UpdatedAt = now

	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) Assign(_ context.Context, id, assignedTo, assignedBy uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	if lead.AssignedTo != nil {
		return repository.Lead{}, repository.ErrAlreadyAssigned
	}
	now := time.Now()
	lead.AssignedTo = &assignedTo
	lead.AssignedBy = &assignedBy
	lead.AssignedAt = &now
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) Unassign(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.AssignedTo = nil
	lead.AssignedBy = nil
	lead.AssignedAt = nil
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) StampDuplicateDetectedBy(_ context.Context, id, detectedBy uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stampErr != nil {
		return f.stampErr
	}
	lead, ok := f.leads[id]
	if !ok || !lead.IsDuplicate {
		return repository.ErrNotFound
	}
	lead.DuplicateDetectedBy = &detectedBy
	f.leads[id] = lead
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListParams = params
	leads := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		leads = append(leads, lead)
	}
	return leads, len(leads), nil
}

func (f *fakeRepo) CountCreatedBetween(_ context.Context, start, end time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, lead := range f.leads {
		if !lead.CreatedAt.Before(start) && lead.CreatedAt.Before(end) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) ExistsByLeadID(_ context.Context, leadID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lead := range f.leads {
		if lead.LeadID == leadID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) FindByCanonicalPhone(_ context.Context, canonicalPhone string, exclude uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var earliest repository.Lead
	found := false
	for _, lead := range f.leads {
		if lead.ID == exclude || lead.CanonicalPhone == nil || *lead.CanonicalPhone != canonicalPhone {
			continue
		}
		if !found || lead.CreatedAt.Before(earliest.CreatedAt) {
			earliest = lead
			found = true
		}
	}
	if !found {
		return uuid.Nil, nil
	}
	return earliest.ID, nil
}

func (f *fakeRepo) CountVisible(_ context.Context, _ repository.Scope) (int, error)    { return 7, nil }
func (f *fakeRepo) CountDuplicates(_ context.Context, _ repository.Scope) (int, error) { return 2, nil }
func (f *fakeRepo) CountAssigned(_ context.Context, _ repository.Scope) (int, error)   { return 3, nil }
func (f *fakeRepo) CountCreatedSince(_ context.Context, _ repository.Scope, _ time.Time) (int, error) {
	return 1, nil
}
func (f *fakeRepo) CountConvertedSince(_ context.Context, _ repository.Scope, _ time.Time) (int, error) {
	return 1, nil
}
func (f *fakeRepo) StatusCounts(_ context.Context, _ repository.Scope) (map[string]int, error) {
	return map[string]int{"new": 5, "successful": 2}, nil
}
func (f *fakeRepo) CategoryCounts(_ context.Context, _ repository.Scope) (map[string]int, error) {
	return map[string]int{"hot": 1, "cold": 6}, nil
}

type fakeActors struct {
	actors map[uuid.UUID]domain.Actor
}

func (f *fakeActors) GetActor(_ context.Context, userID uuid.UUID) (domain.Actor, error) {
	actor, ok := f.actors[userID]
	if !ok {
		return domain.Actor{}, repository.ErrNotFound
	}
	return actor, nil
}

func (f *fakeActors) GetActorsByIDs(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]domain.Actor, error) {
	out := make(map[uuid.UUID]domain.Actor)
	for _, id := range userIDs {
		if actor, ok := f.actors[id]; ok {
			out[id] = actor
		}
	}
	return out, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.Publish(context.Background(), event)
	return nil
}

func (b *recordingBus) Subscribe(string, platformevents.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.events))
	for _, e := range b.events {
		names = append(names, e.EventName())
	}
	return names
}

func (b *recordingBus) has(name string) bool {
	for _, n := range b.names() {
		if n == name {
			return true
		}
	}
	return false
}

type fakeScheduler struct {
	scheduled []time.Time
}

func (f *fakeScheduler) ScheduleFollowUp(_ context.Context, _ uuid.UUID, at time.Time) error {
	f.scheduled = append(f.scheduled, at)
	return nil
}

// ---- harness ----

type harness struct {
	svc   *Service
	repo  *fakeRepo
	bus   *recordingBus
	sched *fakeScheduler

	orgA uuid.UUID
	orgB uuid.UUID
	hub  uuid.UUID

	agent1     domain.Actor
	agent2Hub  domain.Actor
	agent2Out  domain.Actor
	adminA     domain.Actor
	hubAdmin   domain.Actor
	superadmin domain.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	matrix, err := authz.New()
	if err != nil {
		t.Fatalf("load authz policy: %v", err)
	}

	h := &harness{
		repo:  newFakeRepo(),
		bus:   &recordingBus{},
		sched: &fakeScheduler{},
		orgA:  uuid.New(),
		orgB:  uuid.New(),
		hub:   uuid.New(),
	}

	mkActor := func(role domain.Role, org uuid.UUID, hubMember bool, name string) domain.Actor {
		return domain.Actor{
			ID:             uuid.New(),
			Name:           name,
			Role:           role,
			OrganizationID: &org,
			IsHubMember:    hubMember,
			Active:         true,
		}
	}

	h.agent1 = mkActor(domain.RoleAgent1, h.orgA, false, "Opening Agent")
	h.agent2Hub = mkActor(domain.RoleAgent2, h.hub, true, "Hub Closer")
	h.agent2Out = mkActor(domain.RoleAgent2, h.orgB, false, "Outside Closer")
	h.adminA = mkActor(domain.RoleAdmin, h.orgA, false, "Org Admin")
	h.hubAdmin = mkActor(domain.RoleAdmin, h.hub, true, "Hub Admin")
	h.superadmin = mkActor(domain.RoleSuperAdmin, h.orgA, false, "Root")

	actors := &fakeActors{actors: map[uuid.UUID]domain.Actor{
		h.agent1.ID:     h.agent1,
		h.agent2Hub.ID:  h.agent2Hub,
		h.agent2Out.ID:  h.agent2Out,
		h.adminA.ID:     h.adminA,
		h.hubAdmin.ID:   h.hubAdmin,
		h.superadmin.ID: h.superadmin,
	}}

	h.svc = New(Deps{
		Repo:      h.repo,
		Matrix:    matrix,
		Actors:    actors,
		Scheduler: h.sched,
		Bus:       h.bus,
		Clock:     clock.Fixed{Instant: time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)},
		Log:       logger.New("development"),
	})

	return h
}

func (h *harness) createLead(t *testing.T, req transport.CreateLeadRequest) transport.LeadResponse {
	t.Helper()
	lead, err := h.svc.Create(context.Background(), h.agent1.ID, req)
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return lead
}

// ---- tests ----

func TestCreate_GeneratesIDAndScores(t *testing.T) {
	h := newHarness(t)

	lead := h.createLead(t, transport.CreateLeadRequest{
		Name:  "Jordan Fay",
		Phone: "2345678901",
		Email: "jordan@example.com",
	})

	if !strings.HasPrefix(lead.LeadID, "LEAD2603") {
		t.Fatalf("expected id for civil March 2026, got %s", lead.LeadID)
	}
	if lead.CompletionPercentage != 38 {
		t.Fatalf("3 of 8 fields should score 38, got %d", lead.CompletionPercentage)
	}
	if lead.Category != "cold" || lead.Priority != "low" {
		t.Fatalf("expected cold/low, got %s/%s", lead.Category, lead.Priority)
	}
	if lead.Status != "new" {
		t.Fatalf("new leads start in status new, got %s", lead.Status)
	}
	if lead.OrganizationID != h.orgA {
		t.Fatalf("lead should inherit the creator's organization")
	}
	if !h.bus.has("leads.created") {
		t.Fatalf("expected leads.created event, got %v", h.bus.names())
	}
}

func TestCreate_ForbiddenForClosingAgents(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Create(context.Background(), h.agent2Hub.ID, transport.CreateLeadRequest{
		Name:  "X",
		Phone: "2345678901",
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreate_FlagsPhoneDuplicates(t *testing.T) {
	h := newHarness(t)

	original := h.createLead(t, transport.CreateLeadRequest{Name: "First", Phone: "+1 (234) 567-8901"})

	dup := h.createLead(t, transport.CreateLeadRequest{Name: "Second", Phone: "2345678901"})

	if !dup.IsDuplicate {
		t.Fatalf("same canonical phone should flag a duplicate")
	}
	if dup.DuplicateOf == nil || *dup.DuplicateOf != original.ID {
		t.Fatalf("duplicate should point at the earliest lead")
	}
	if dup.DuplicateReason == nil || *dup.DuplicateReason != "phone" {
		t.Fatalf("duplicate reason is always phone")
	}
	if dup.DuplicateDetectedBy == nil || *dup.DuplicateDetectedBy != h.agent1.ID {
		t.Fatalf("the creating actor should be stamped as detector")
	}
	if !h.bus.has("leads.duplicate_detected") {
		t.Fatalf("expected leads.duplicate_detected event, got %v", h.bus.names())
	}
}

func TestCreate_ToleratesDetectorStampFailure(t *testing.T) {
	h := newHarness(t)
	h.createLead(t, transport.CreateLeadRequest{Name: "First", Phone: "2345678901"})

	h.repo.stampErr = context.DeadlineExceeded
	dup := h.createLead(t, transport.CreateLeadRequest{Name: "Second", Phone: "2345678901"})

	if !dup.IsDuplicate {
		t.Fatalf("duplicate flag must survive a failed detector stamp")
	}
	if dup.DuplicateDetectedBy != nil {
		t.Fatalf("detector stamp failed, field should stay empty")
	}
}

func TestCreate_SurfacesIDConflict(t *testing.T) {
	h := newHarness(t)
	h.repo.createErr = repository.ErrDuplicateKey

	_, err := h.svc.Create(context.Background(), h.agent1.ID, transport.CreateLeadRequest{
		Name:  "X",
		Phone: "2345678901",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdate_SilentlyDropsDisallowedFields(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	status := transport.LeadStatusSuccessful
	newName := "Jordan Updated"
	updated, err := h.svc.Update(context.Background(), h.agent1.ID, lead.ID, transport.UpdateLeadRequest{
		Name:   &newName,
		Status: &status,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != "Jordan Updated" {
		t.Fatalf("allowed field should apply")
	}
	if updated.Status != "new" {
		t.Fatalf("agent1 status write must be silently excluded, got %s", updated.Status)
	}
	if updated.ConvertedAt != nil {
		t.Fatalf("excluded status write must not convert the lead")
	}
}

func TestUpdate_RescoresOnBasicFieldChange(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	amount := 25000.0
	creditors := 4
	payment := 900.0
	category := "credit-cards"
	scoreRange := "580-650"
	email := "jordan@example.com"
	updated, err := h.svc.Update(context.Background(), h.agent1.ID, lead.ID, transport.UpdateLeadRequest{
		Email:              &email,
		TotalDebtAmount:    &amount,
		NumberOfCreditors:  &creditors,
		MonthlyDebtPayment: &payment,
		DebtCategory:       &category,
		CreditScoreRange:   &scoreRange,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.CompletionPercentage != 100 {
		t.Fatalf("all 8 fields filled should score 100, got %d", updated.CompletionPercentage)
	}
	if updated.Category != "hot" || updated.Priority != "high" {
		t.Fatalf("expected hot/high, got %s/%s", updated.Category, updated.Priority)
	}
}

func TestUpdate_AdminStampsProcessedAndConverts(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	status := transport.LeadStatusSuccessful
	updated, err := h.svc.Update(context.Background(), h.adminA.ID, lead.ID, transport.UpdateLeadRequest{
		Status: &status,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.AdminProcessed {
		t.Fatalf("admin updates must stamp adminProcessed")
	}
	if updated.ConvertedAt == nil {
		t.Fatalf("entering successful must stamp convertedAt")
	}
	firstConversion := *updated.ConvertedAt
	if !h.bus.has("leads.converted") {
		t.Fatalf("expected leads.converted event")
	}

	// A later save must not move the conversion timestamp.
	again, err := h.svc.Update(context.Background(), h.adminA.ID, lead.ID, transport.UpdateLeadRequest{
		Status: &status,
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if again.ConvertedAt == nil || !again.ConvertedAt.Equal(firstConversion) {
		t.Fatalf("convertedAt must be stamped exactly once")
	}
}

func TestUpdate_FollowUpDateSchedulesReminder(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	due := time.Date(2026, 3, 20, 14, 0, 0, 0, time.UTC)
	_, err := h.svc.Update(context.Background(), h.agent2Hub.ID, lead.ID, transport.UpdateLeadRequest{
		FollowUpDate: transport.OptionalTime{Value: &due, Set: true},
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("unassigned lead is invisible to agent2, got %v", err)
	}

	_, err = h.svc.Update(context.Background(), h.hubAdmin.ID, lead.ID, transport.UpdateLeadRequest{
		FollowUpDate: transport.OptionalTime{Value: &due, Set: true},
	})
	if err != nil {
		t.Fatalf("hub admin update: %v", err)
	}
	if len(h.sched.scheduled) != 1 || !h.sched.scheduled[0].Equal(due) {
		t.Fatalf("expected one reminder at %v, got %v", due, h.sched.scheduled)
	}
}

func TestAssign_HubRouting(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	// agent1 outside the hub must route into the hub.
	_, err := h.svc.Assign(context.Background(), h.agent1.ID, lead.ID, transport.AssignLeadRequest{
		AssigneeID: h.agent2Out.ID,
	})
	if !apperr.Is(err, apperr.KindInvalidReference) {
		t.Fatalf("non-hub target should be rejected, got %v", err)
	}

	assigned, err := h.svc.Assign(context.Background(), h.agent1.ID, lead.ID, transport.AssignLeadRequest{
		AssigneeID: h.agent2Hub.ID,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != h.agent2Hub.ID {
		t.Fatalf("assignment triple not stamped")
	}
	if assigned.AssignedBy == nil || *assigned.AssignedBy != h.agent1.ID {
		t.Fatalf("assigner not stamped")
	}
	if !h.bus.has("leads.assigned") {
		t.Fatalf("expected leads.assigned event")
	}
}

func TestAssign_ConflictWhenAlreadyAssigned(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	if _, err := h.svc.Assign(context.Background(), h.agent1.ID, lead.ID, transport.AssignLeadRequest{AssigneeID: h.agent2Hub.ID}); err != nil {
		t.Fatalf("first assign: %v", err)
	}

	_, err := h.svc.Assign(context.Background(), h.agent1.ID, lead.ID, transport.AssignLeadRequest{AssigneeID: h.agent2Hub.ID})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAssign_UnknownAssignee(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	_, err := h.svc.Assign(context.Background(), h.agent1.ID, lead.ID, transport.AssignLeadRequest{AssigneeID: uuid.New()})
	if !apperr.Is(err, apperr.KindInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestUnassign(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	_, err := h.svc.Unassign(context.Background(), h.agent1.ID, lead.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("unassigning an unassigned lead should conflict, got %v", err)
	}

	if _, err := h.svc.Assign(context.Background(), h.agent1.ID, lead.ID, transport.AssignLeadRequest{AssigneeID: h.agent2Hub.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	cleared, err := h.svc.Unassign(context.Background(), h.agent1.ID, lead.ID)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if cleared.AssignedTo != nil {
		t.Fatalf("assignment triple should be cleared")
	}
	if !h.bus.has("leads.unassigned") {
		t.Fatalf("expected leads.unassigned event")
	}
}

func TestUpdate_StampsAuditFields(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	remarks := "called back, send paperwork"
	updated, err := h.svc.Update(context.Background(), h.agent1.ID, lead.ID, transport.UpdateLeadRequest{
		Remarks: &remarks,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.UpdatedBy == nil || *updated.UpdatedBy != h.agent1.ID {
		t.Fatalf("updatedBy must record the acting user, got %v", updated.UpdatedBy)
	}
	if updated.LastUpdatedBy == nil || *updated.LastUpdatedBy != h.agent1.ID {
		t.Fatalf("lastUpdatedBy must record the acting user, got %v", updated.LastUpdatedBy)
	}
	if updated.LastUpdatedByName == nil || *updated.LastUpdatedByName != h.agent1.Name {
		t.Fatalf("lastUpdatedByName must record the acting user's name")
	}
	if updated.LastUpdatedAt == nil {
		t.Fatalf("lastUpdatedAt must be stamped")
	}
}

func TestDelete_Permissions(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	if err := h.svc.Delete(context.Background(), h.agent1.ID, lead.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("agent1 delete should be forbidden, got %v", err)
	}

	if err := h.svc.Delete(context.Background(), h.adminA.ID, lead.ID); err != nil {
		t.Fatalf("same-org admin delete: %v", err)
	}
	if !h.bus.has("leads.deleted") {
		t.Fatalf("expected leads.deleted event")
	}
	if _, err := h.repo.GetByID(context.Background(), lead.ID); err == nil {
		t.Fatalf("delete must be hard")
	}
}

func TestDelete_CrossOrgAdminForbidden(t *testing.T) {
	h := newHarness(t)

	// A lead owned by organization B, outside adminA's tenant.
	agent1B := domain.Actor{
		ID:             uuid.New(),
		Name:           "Org B Agent",
		Role:           domain.RoleAgent1,
		OrganizationID: &h.orgB,
		Active:         true,
	}
	h.svc.actors.(*fakeActors).actors[agent1B.ID] = agent1B

	lead, err := h.svc.Create(context.Background(), agent1B.ID, transport.CreateLeadRequest{
		Name:  "Jordan",
		Phone: "2345678901",
	})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	if err := h.svc.Delete(context.Background(), h.adminA.ID, lead.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("cross-org admin delete must be forbidden, got %v", err)
	}

	if err := h.svc.Delete(context.Background(), h.superadmin.ID, lead.ID); err != nil {
		t.Fatalf("superadmin delete: %v", err)
	}
}

func TestGet_InvisibleReadsAsNotFound(t *testing.T) {
	h := newHarness(t)
	lead := h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	// Another opening agent in the same organization never sees it.
	stranger := domain.Actor{
		ID:             uuid.New(),
		Name:           "Other Agent",
		Role:           domain.RoleAgent1,
		OrganizationID: &h.orgA,
		Active:         true,
	}
	h.svc.actors.(*fakeActors).actors[stranger.ID] = stranger

	if _, err := h.svc.GetByID(context.Background(), stranger.ID, lead.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := h.svc.GetByID(context.Background(), h.superadmin.ID, lead.ID); err != nil {
		t.Fatalf("superadmin should see everything: %v", err)
	}
}

func TestList_ScopesByRole(t *testing.T) {
	h := newHarness(t)
	h.createLead(t, transport.CreateLeadRequest{Name: "Jordan", Phone: "2345678901"})

	if _, err := h.svc.List(context.Background(), h.agent1.ID, transport.ListLeadsQuery{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	scope := h.repo.lastListParams.Scope
	if scope.CreatedBy == nil || *scope.CreatedBy != h.agent1.ID {
		t.Fatalf("agent1 listing must scope to own-created")
	}
	if !scope.ExcludeAdminProcessed {
		t.Fatalf("agent1 listing must exclude admin-processed leads")
	}

	if _, err := h.svc.List(context.Background(), h.superadmin.ID, transport.ListLeadsQuery{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	scope = h.repo.lastListParams.Scope
	if scope.OrganizationID != nil || scope.CreatedBy != nil || scope.AssignedTo != nil || scope.ExcludeAdminProcessed {
		t.Fatalf("superadmin scope must be unrestricted, got %+v", scope)
	}
}

func TestStatistics(t *testing.T) {
	h := newHarness(t)

	stats, err := h.svc.Statistics(context.Background(), h.adminA.ID)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 7 || stats.Duplicates != 2 || stats.Assigned != 3 {
		t.Fatalf("unexpected aggregate counts: %+v", stats)
	}
	if stats.ByStatus["new"] != 5 || stats.ByCategory["cold"] != 6 {
		t.Fatalf("unexpected group counts: %+v", stats)
	}
}
