// Package authz implements the role- and organization-aware authorization
// matrix for leads. The matrix is a decision table shipped as data
// (policy.yaml) rather than cascading conditionals, so each role row is
// independently testable and the hub-organization elevation is a single
// override block instead of scattered checks.
package authz

import (
	_ "embed"
	"fmt"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var policyYAML []byte

// ViewScope names a visibility rule from the decision table.
type ViewScope string

const (
	// ViewOwnCreated limits listing to leads the actor created.
	ViewOwnCreated ViewScope = "own-created"
	// ViewAssignedOrDuplicate limits listing to leads assigned to the
	// actor plus any lead flagged duplicate.
	ViewAssignedOrDuplicate ViewScope = "assigned-or-duplicate"
	// ViewOrganization limits listing to the actor's tenant.
	ViewOrganization ViewScope = "organization"
	// ViewAll grants cross-tenant visibility.
	ViewAll ViewScope = "all"
)

// DeleteScope names a deletion rule from the decision table.
type DeleteScope string

const (
	// DeleteNone forbids deletion.
	DeleteNone DeleteScope = ""
	// DeleteOrganization permits deleting leads of the actor's tenant.
	DeleteOrganization DeleteScope = "organization"
	// DeleteAny permits deleting any lead.
	DeleteAny DeleteScope = "any"
)

type rolePolicy struct {
	Create                bool        `yaml:"create"`
	Update                []string    `yaml:"update"`
	View                  ViewScope   `yaml:"view"`
	ExcludeAdminProcessed bool        `yaml:"excludeAdminProcessed"`
	Delete                DeleteScope `yaml:"delete"`
	Assign                bool        `yaml:"assign"`
	Hub                   *rolePolicy `yaml:"hub"`
}

type policyFile struct {
	FieldSets map[string][]string   `yaml:"fieldSets"`
	Roles     map[string]rolePolicy `yaml:"roles"`
}

// resolvedPolicy is a role row with field set names expanded.
type resolvedPolicy struct {
	create                bool
	updateFields          map[string]struct{}
	view                  ViewScope
	excludeAdminProcessed bool
	deleteScope           DeleteScope
	assign                bool
}

// Matrix evaluates the decision table for a concrete actor.
type Matrix struct {
	policies    map[domain.Role]resolvedPolicy
	hubPolicies map[domain.Role]resolvedPolicy
}

// New parses the embedded decision table.
func New() (*Matrix, error) {
	var file policyFile
	if err := yaml.Unmarshal(policyYAML, &file); err != nil {
		return nil, fmt.Errorf("authz: parse policy: %w", err)
	}

	m := &Matrix{
		policies:    make(map[domain.Role]resolvedPolicy),
		hubPolicies: make(map[domain.Role]resolvedPolicy),
	}

	for name, rp := range file.Roles {
		role := domain.Role(name)
		if !role.Valid() {
			return nil, fmt.Errorf("authz: unknown role %q in policy", name)
		}

		resolved, err := resolve(rp, file.FieldSets)
		if err != nil {
			return nil, fmt.Errorf("authz: role %q: %w", name, err)
		}
		m.policies[role] = resolved

		if rp.Hub != nil {
			hubResolved, err := resolve(*rp.Hub, file.FieldSets)
			if err != nil {
				return nil, fmt.Errorf("authz: role %q hub override: %w", name, err)
			}
			m.hubPolicies[role] = hubResolved
		}
	}

	return m, nil
}

func resolve(rp rolePolicy, sets map[string][]string) (resolvedPolicy, error) {
	fields := make(map[string]struct{})
	for _, setName := range rp.Update {
		names, ok := sets[setName]
		if !ok {
			return resolvedPolicy{}, fmt.Errorf("unknown field set %q", setName)
		}
		for _, f := range names {
			fields[f] = struct{}{}
		}
	}

	switch rp.View {
	case ViewOwnCreated, ViewAssignedOrDuplicate, ViewOrganization, ViewAll:
	default:
		return resolvedPolicy{}, fmt.Errorf("unknown view scope %q", rp.View)
	}

	return resolvedPolicy{
		create:                rp.Create,
		updateFields:          fields,
		view:                  rp.View,
		excludeAdminProcessed: rp.ExcludeAdminProcessed,
		deleteScope:           rp.Delete,
		assign:                rp.Assign,
	}, nil
}

// policyFor selects the role row, applying the hub override when the
// actor belongs to the hub organization.
func (m *Matrix) policyFor(actor domain.Actor) (resolvedPolicy, bool) {
	if actor.IsHubMember {
		if p, ok := m.hubPolicies[actor.Role]; ok {
			return p, true
		}
	}
	p, ok := m.policies[actor.Role]
	return p, ok
}

// CanCreate reports whether the actor may create leads.
func (m *Matrix) CanCreate(actor domain.Actor) bool {
	p, ok := m.policyFor(actor)
	return ok && p.create
}

// AllowedFields returns the set of field names the actor may write in an
// update. Callers apply it by set-intersection: payload fields outside
// the set are silently excluded, not errors.
func (m *Matrix) AllowedFields(actor domain.Actor) map[string]struct{} {
	p, ok := m.policyFor(actor)
	if !ok {
		return map[string]struct{}{}
	}
	return p.updateFields
}

// CanAssign reports whether the actor's role may assign leads at all.
func (m *Matrix) CanAssign(actor domain.Actor) bool {
	p, ok := m.policyFor(actor)
	return ok && p.assign
}

// CanAssignTo applies the hub routing sub-rule: a hub agent1 assigns
// within the hub; any other agent1 must assign into the hub. The target
// must be an active agent2.
func (m *Matrix) CanAssignTo(actor, target domain.Actor) bool {
	if target.Role != domain.RoleAgent2 || !target.Active {
		return false
	}
	if actor.IsHubMember {
		return actor.OrganizationID != nil && target.SameOrganization(*actor.OrganizationID)
	}
	return target.IsHubMember
}

// CanDelete reports whether the actor may delete a lead owned by the
// given organization.
func (m *Matrix) CanDelete(actor domain.Actor, leadOrgID uuid.UUID) bool {
	p, ok := m.policyFor(actor)
	if !ok {
		return false
	}
	switch p.deleteScope {
	case DeleteAny:
		return true
	case DeleteOrganization:
		return actor.SameOrganization(leadOrgID)
	default:
		return false
	}
}

// Visibility is the predicate restricting which leads an actor may list
// or fetch. Repositories translate it into a query filter; Allows applies
// it to a single record.
type Visibility struct {
	All                   bool
	OrganizationID        *uuid.UUID
	CreatedBy             *uuid.UUID
	AssignedTo            *uuid.UUID // matched OR isDuplicate when IncludeDuplicates
	IncludeDuplicates     bool
	ExcludeAdminProcessed bool
}

// VisibilityFor computes the actor's visibility filter from the table.
func (m *Matrix) VisibilityFor(actor domain.Actor) Visibility {
	p, ok := m.policyFor(actor)
	if !ok {
		// Unknown role: visible set is empty (CreatedBy nil-UUID matches nothing).
		nobody := uuid.Nil
		return Visibility{CreatedBy: &nobody}
	}

	vis := Visibility{ExcludeAdminProcessed: p.excludeAdminProcessed}
	switch p.view {
	case ViewAll:
		vis.All = true
	case ViewOrganization:
		vis.OrganizationID = actor.OrganizationID
	case ViewOwnCreated:
		id := actor.ID
		vis.CreatedBy = &id
	case ViewAssignedOrDuplicate:
		id := actor.ID
		vis.AssignedTo = &id
		vis.IncludeDuplicates = true
	}
	return vis
}

// LeadView carries the lead attributes visibility decisions depend on.
type LeadView struct {
	OrganizationID uuid.UUID
	CreatedBy      uuid.UUID
	AssignedTo     *uuid.UUID
	IsDuplicate    bool
	AdminProcessed bool
}

// Allows applies the visibility predicate to a single lead.
func (v Visibility) Allows(lead LeadView) bool {
	if v.ExcludeAdminProcessed && lead.AdminProcessed {
		return false
	}
	if v.All {
		return true
	}
	if v.OrganizationID != nil {
		return lead.OrganizationID == *v.OrganizationID
	}
	if v.AssignedTo != nil {
		assigned := lead.AssignedTo != nil && *lead.AssignedTo == *v.AssignedTo
		return assigned || (v.IncludeDuplicates && lead.IsDuplicate)
	}
	if v.CreatedBy != nil {
		return lead.CreatedBy == *v.CreatedBy
	}
	return false
}
