// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadportal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadKey              uuid.UUID  `json:"leadKey"`
	LeadID               string     `json:"leadId"`
	OrganizationID       uuid.UUID  `json:"organizationId"`
	CreatedBy            uuid.UUID  `json:"createdBy"`
	CreatorName          string     `json:"creatorName"`
	Name                 string     `json:"name"`
	Phone                string     `json:"phone"`
	CompletionPercentage int        `json:"completionPercentage"`
	Category             string     `json:"category"`
	Priority             string     `json:"priority"`
	IsDuplicate          bool       `json:"isDuplicate"`
	DuplicateOf          *uuid.UUID `json:"duplicateOf,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// DuplicateLeadDetected is published alongside LeadCreated when the new
// lead matched an existing record by phone.
type DuplicateLeadDetected struct {
	BaseEvent
	LeadKey        uuid.UUID `json:"leadKey"`
	LeadID         string    `json:"leadId"`
	DuplicateOf    uuid.UUID `json:"duplicateOf"`
	Reason         string    `json:"reason"`
	OrganizationID uuid.UUID `json:"organizationId"`
	DetectedAt     time.Time `json:"detectedAt"`
}

func (e DuplicateLeadDetected) EventName() string { return "leads.duplicate_detected" }

// LeadUpdated is published after any successful field update.
type LeadUpdated struct {
	BaseEvent
	LeadKey        uuid.UUID `json:"leadKey"`
	LeadID         string    `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	UpdatedBy      uuid.UUID `json:"updatedBy"`
	UpdaterName    string    `json:"updaterName"`
	UpdatedFields  []string  `json:"updatedFields"`
	Status         string    `json:"status"`
	AdminProcessed bool      `json:"adminProcessed"`
}

func (e LeadUpdated) EventName() string { return "leads.updated" }

// LeadConverted is published the first time a lead reaches the successful
// status.
type LeadConverted struct {
	BaseEvent
	LeadKey        uuid.UUID `json:"leadKey"`
	LeadID         string    `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	ConvertedBy    uuid.UUID `json:"convertedBy"`
	ConvertedAt    time.Time `json:"convertedAt"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// LeadAssigned is published when a lead is handed to a closing agent.
type LeadAssigned struct {
	BaseEvent
	LeadKey        uuid.UUID `json:"leadKey"`
	LeadID         string    `json:"leadId"`
	LeadName       string    `json:"leadName"`
	OrganizationID uuid.UUID `json:"organizationId"`
	AssignedTo     uuid.UUID `json:"assignedTo"`
	AssigneeName   string    `json:"assigneeName"`
	AssigneeEmail  string    `json:"assigneeEmail"`
	AssignedBy     uuid.UUID `json:"assignedBy"`
	AssignerName   string    `json:"assignerName"`
	AssignedAt     time.Time `json:"assignedAt"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// LeadUnassigned is published when an assignment is cleared.
type LeadUnassigned struct {
	BaseEvent
	LeadKey        uuid.UUID `json:"leadKey"`
	LeadID         string    `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	PreviousAgent  uuid.UUID `json:"previousAgent"`
	UnassignedBy   uuid.UUID `json:"unassignedBy"`
}

func (e LeadUnassigned) EventName() string { return "leads.unassigned" }

// LeadDeleted is published after a hard delete.
type LeadDeleted struct {
	BaseEvent
	LeadKey        uuid.UUID `json:"leadKey"`
	LeadID         string    `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	DeletedBy      uuid.UUID `json:"deletedBy"`
}

func (e LeadDeleted) EventName() string { return "leads.deleted" }

// FollowUpDue is published by the scheduler worker when a lead's follow-up
// time arrives.
type FollowUpDue struct {
	BaseEvent
	LeadKey        uuid.UUID  `json:"leadKey"`
	LeadID         string     `json:"leadId"`
	LeadName       string     `json:"leadName"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	AssignedTo     *uuid.UUID `json:"assignedTo,omitempty"`
	FollowUpDate   time.Time  `json:"followUpDate"`
}

func (e FollowUpDue) EventName() string { return "leads.followup_due" }

// =============================================================================
// Identity Domain Events
// =============================================================================

// OrganizationCreated is published when a new organization is registered.
type OrganizationCreated struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
	IsHub          bool      `json:"isHub"`
}

func (e OrganizationCreated) EventName() string { return "identity.organization.created" }

// UserCreated is published when an account is provisioned.
type UserCreated struct {
	BaseEvent
	UserID         uuid.UUID  `json:"userId"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty"`
}

func (e UserCreated) EventName() string { return "identity.user.created" }
