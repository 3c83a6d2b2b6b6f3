// Package duplicate implements best-effort phone duplicate detection for
// newly created leads. The check runs once, at creation; it is never
// re-evaluated on update. Two concurrent creates with the same phone can
// both miss each other; the design is lock-free and tolerates this.
package duplicate

import (
	"context"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/phone"

	"github.com/google/uuid"
)

// Store is the lookup view of the lead repository the detector needs.
type Store interface {
	// FindByCanonicalPhone returns the key of the earliest lead whose
	// canonical phone matches, excluding the given record. Returns
	// (uuid.Nil, nil) when there is no match.
	FindByCanonicalPhone(ctx context.Context, canonicalPhone string, exclude uuid.UUID) (uuid.UUID, error)
}

// Match describes a detected duplicate.
type Match struct {
	DuplicateOf uuid.UUID
	Reason      string
}

// Detector checks a candidate lead's phone against existing records.
type Detector struct {
	store Store
}

// New creates a Detector over the given store.
func New(store Store) *Detector {
	return &Detector{store: store}
}

// Detect normalizes the candidate phone and looks for an existing lead
// with the same canonical number. A blank phone never matches.
func (d *Detector) Detect(ctx context.Context, candidatePhone string, exclude uuid.UUID) (*Match, error) {
	canonical := phone.Canonical(candidatePhone)
	if canonical == "" {
		return nil, nil
	}

	matched, err := d.store.FindByCanonicalPhone(ctx, canonical, exclude)
	if err != nil {
		return nil, err
	}
	if matched == uuid.Nil {
		return nil, nil
	}

	return &Match{DuplicateOf: matched, Reason: domain.DuplicateReasonPhone}, nil
}
