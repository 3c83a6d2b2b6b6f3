package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error)
	Assign(ctx context.Context, id, assignedTo, assignedBy uuid.UUID) (Lead, error)
	Unassign(ctx context.Context, id uuid.UUID) (Lead, error)
	StampDuplicateDetectedBy(ctx context.Context, id, detectedBy uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SequenceReader serves the daily lead id sequence.
type SequenceReader interface {
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error)
	ExistsByLeadID(ctx context.Context, leadID string) (bool, error)
}

// PhoneMatcher serves duplicate detection.
type PhoneMatcher interface {
	FindByCanonicalPhone(ctx context.Context, canonicalPhone string, exclude uuid.UUID) (uuid.UUID, error)
}

// StatsReader provides aggregate counts for the statistics endpoint.
type StatsReader interface {
	CountVisible(ctx context.Context, scope Scope) (int, error)
	CountDuplicates(ctx context.Context, scope Scope) (int, error)
	CountAssigned(ctx context.Context, scope Scope) (int, error)
	CountCreatedSince(ctx context.Context, scope Scope, since time.Time) (int, error)
	CountConvertedSince(ctx context.Context, scope Scope, since time.Time) (int, error)
	StatusCounts(ctx context.Context, scope Scope) (map[string]int, error)
	CategoryCounts(ctx context.Context, scope Scope) (map[string]int, error)
}

// LeadsRepository is the complete interface for lead data operations,
// composed of the focused interfaces above.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	SequenceReader
	PhoneMatcher
	StatsReader
}

// Ensure Repository implements LeadsRepository
var _ LeadsRepository = (*Repository)(nil)
