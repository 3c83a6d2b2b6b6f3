package authz

import (
	"testing"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
)

func mustMatrix(t *testing.T) *Matrix {
	t.Helper()
	m, err := New()
	if err != nil {
		t.Fatalf("failed to load policy: %v", err)
	}
	return m
}

func actorWith(role domain.Role, orgID *uuid.UUID, hub bool) domain.Actor {
	return domain.Actor{
		ID:             uuid.New(),
		Role:           role,
		OrganizationID: orgID,
		IsHubMember:    hub,
		Active:         true,
	}
}

func TestAllowedFields_Agent1ExcludesStatusFields(t *testing.T) {
	m := mustMatrix(t)
	orgID := uuid.New()

	fields := m.AllowedFields(actorWith(domain.RoleAgent1, &orgID, false))

	if _, ok := fields[domain.FieldName]; !ok {
		t.Fatalf("agent1 should be allowed to write name")
	}
	if _, ok := fields[domain.FieldPhone]; !ok {
		t.Fatalf("agent1 should be allowed to write phone")
	}
	if _, ok := fields[domain.FieldStatus]; ok {
		t.Fatalf("agent1 must never write status")
	}
	if _, ok := fields[domain.FieldCallStatus]; ok {
		t.Fatalf("agent1 must never write callStatus")
	}
}

func TestAllowedFields_NonHubAdminIsStatusOnly(t *testing.T) {
	m := mustMatrix(t)
	orgID := uuid.New()

	fields := m.AllowedFields(actorWith(domain.RoleAdmin, &orgID, false))

	if _, ok := fields[domain.FieldStatus]; !ok {
		t.Fatalf("non-hub admin should write status")
	}
	if _, ok := fields[domain.FieldName]; ok {
		t.Fatalf("non-hub admin must not write contact fields")
	}
}

func TestAllowedFields_HubAdminGetsAllFields(t *testing.T) {
	m := mustMatrix(t)
	orgID := uuid.New()

	fields := m.AllowedFields(actorWith(domain.RoleAdmin, &orgID, true))

	if _, ok := fields[domain.FieldName]; !ok {
		t.Fatalf("hub admin should write contact fields")
	}
	if _, ok := fields[domain.FieldStatus]; !ok {
		t.Fatalf("hub admin should write status fields")
	}
}

func TestAllowedFields_Agent2GetsAllFields(t *testing.T) {
	m := mustMatrix(t)
	orgID := uuid.New()

	fields := m.AllowedFields(actorWith(domain.RoleAgent2, &orgID, false))

	for _, name := range []string{domain.FieldName, domain.FieldStatus, domain.FieldDocumentStatus, domain.FieldFollowUpDate} {
		if _, ok := fields[name]; !ok {
			t.Fatalf("agent2 should be allowed to write %s", name)
		}
	}
}

func TestCanCreate(t *testing.T) {
	m := mustMatrix(t)
	orgID := uuid.New()

	if !m.CanCreate(actorWith(domain.RoleAgent1, &orgID, false)) {
		t.Fatalf("agent1 should create leads")
	}
	if !m.CanCreate(actorWith(domain.RoleAdmin, &orgID, false)) {
		t.Fatalf("admin should create leads")
	}
	if m.CanCreate(actorWith(domain.RoleAgent2, &orgID, false)) {
		t.Fatalf("agent2 should not create leads")
	}
	if m.CanCreate(actorWith(domain.RoleSuperAdmin, nil, false)) {
		t.Fatalf("superadmin should not create leads")
	}
}

func TestCanDelete_ScopesByOrganization(t *testing.T) {
	m := mustMatrix(t)
	orgA := uuid.New()
	orgB := uuid.New()

	admin := actorWith(domain.RoleAdmin, &orgA, false)
	if !m.CanDelete(admin, orgA) {
		t.Fatalf("admin should delete own-organization leads")
	}
	if m.CanDelete(admin, orgB) {
		t.Fatalf("admin must not delete other-organization leads")
	}

	superadmin := actorWith(domain.RoleSuperAdmin, nil, false)
	if !m.CanDelete(superadmin, orgB) {
		t.Fatalf("superadmin should delete any lead")
	}

	agent1 := actorWith(domain.RoleAgent1, &orgA, false)
	if m.CanDelete(agent1, orgA) {
		t.Fatalf("agent1 must never delete")
	}
}

func TestCanAssignTo_HubRouting(t *testing.T) {
	m := mustMatrix(t)
	hubOrg := uuid.New()
	otherOrg := uuid.New()

	hubAgent1 := actorWith(domain.RoleAgent1, &hubOrg, true)
	hubAgent2 := actorWith(domain.RoleAgent2, &hubOrg, true)
	otherAgent2 := actorWith(domain.RoleAgent2, &otherOrg, false)

	if !m.CanAssignTo(hubAgent1, hubAgent2) {
		t.Fatalf("hub agent1 should assign within the hub")
	}
	if m.CanAssignTo(hubAgent1, otherAgent2) {
		t.Fatalf("hub agent1 must not assign outside the hub")
	}

	outsideAgent1 := actorWith(domain.RoleAgent1, &otherOrg, false)
	if !m.CanAssignTo(outsideAgent1, hubAgent2) {
		t.Fatalf("non-hub agent1 should assign into the hub")
	}
	if m.CanAssignTo(outsideAgent1, otherAgent2) {
		t.Fatalf("non-hub agent1 must not assign to a non-hub agent2")
	}

	inactive := hubAgent2
	inactive.Active = false
	if m.CanAssignTo(hubAgent1, inactive) {
		t.Fatalf("inactive agent2 is not an eligible target")
	}

	wrongRole := actorWith(domain.RoleAdmin, &hubOrg, true)
	if m.CanAssignTo(hubAgent1, wrongRole) {
		t.Fatalf("only agent2 users are eligible targets")
	}
}

func TestVisibility_Agent1SeesOwnNonProcessedLeads(t *testing.T) {
	m := mustMatrix(t)
	orgID := uuid.New()
	agent := actorWith(domain.RoleAgent1, &orgID, false)

	vis := m.VisibilityFor(agent)

	mine := LeadView{OrganizationID: orgID, CreatedBy: agent.ID}
	if !vis.Allows(mine) {
		t.Fatalf("agent1 should see own leads")
	}

	processed := mine
	processed.AdminProcessed = true
	if vis.Allows(processed) {
		t.Fatalf("agent1 must not see admin-processed leads")
	}

	someoneElses := LeadView{OrganizationID: orgID, CreatedBy: uuid.New()}
	if vis.Allows(someoneElses) {
		t.Fatalf("agent1 must not see other agents' leads")
	}
}

func TestVisibility_Agent2SeesAssignedAndDuplicates(t *testing.T) {
	m := mustMatrix(t)
	orgID := uuid.New()
	agent := actorWith(domain.RoleAgent2, &orgID, false)

	vis := m.VisibilityFor(agent)

	assigned := LeadView{OrganizationID: orgID, CreatedBy: uuid.New(), AssignedTo: &agent.ID}
	if !vis.Allows(assigned) {
		t.Fatalf("agent2 should see assigned leads")
	}

	duplicate := LeadView{OrganizationID: orgID, CreatedBy: uuid.New(), IsDuplicate: true}
	if !vis.Allows(duplicate) {
		t.Fatalf("agent2 should see duplicate-flagged leads")
	}

	unrelated := LeadView{OrganizationID: orgID, CreatedBy: uuid.New()}
	if vis.Allows(unrelated) {
		t.Fatalf("agent2 must not see unrelated leads")
	}

	processed := assigned
	processed.AdminProcessed = true
	if vis.Allows(processed) {
		t.Fatalf("agent2 must not see admin-processed leads")
	}
}

func TestVisibility_AdminScopes(t *testing.T) {
	m := mustMatrix(t)
	orgA := uuid.New()
	orgB := uuid.New()

	nonHub := m.VisibilityFor(actorWith(domain.RoleAdmin, &orgA, false))
	if !nonHub.Allows(LeadView{OrganizationID: orgA, CreatedBy: uuid.New(), AdminProcessed: true}) {
		t.Fatalf("non-hub admin should see own-organization leads including processed ones")
	}
	if nonHub.Allows(LeadView{OrganizationID: orgB, CreatedBy: uuid.New()}) {
		t.Fatalf("non-hub admin must not see other organizations")
	}

	hub := m.VisibilityFor(actorWith(domain.RoleAdmin, &orgA, true))
	if !hub.Allows(LeadView{OrganizationID: orgB, CreatedBy: uuid.New()}) {
		t.Fatalf("hub admin should see all organizations")
	}

	superadmin := m.VisibilityFor(actorWith(domain.RoleSuperAdmin, nil, false))
	if !superadmin.Allows(LeadView{OrganizationID: orgB, CreatedBy: uuid.New(), AdminProcessed: true}) {
		t.Fatalf("superadmin sees everything with no exclusions")
	}
}
