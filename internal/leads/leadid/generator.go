// Package leadid generates the human-readable lead identifier, unique
// among leads created the same civil day.
package leadid

import (
	"context"
	"fmt"
	"time"

	"leadportal_backend/platform/clock"
)

// Prefix is the constant identifier prefix.
const Prefix = "LEAD"

// maxAttempts bounds the candidate probing before falling back to a
// timestamp-derived sequence.
const maxAttempts = 10

// Store is the counting/existence view of the lead repository the
// generator needs.
type Store interface {
	// CountCreatedBetween counts leads created within [start, end).
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error)
	// ExistsByLeadID reports whether a lead already carries the exact id.
	ExistsByLeadID(ctx context.Context, leadID string) (bool, error)
}

// Generator produces ids of the form LEAD<YY><MM><NNNN> where NNNN is a
// zero-padded per-day sequence. Generation is lock-free: concurrent
// creates can race to the same candidate, which the storage uniqueness
// constraint on the id turns into a retryable conflict rather than a
// silent duplicate.
type Generator struct {
	store Store
}

// New creates a Generator over the given store.
func New(store Store) *Generator {
	return &Generator{store: store}
}

// Next returns the next lead id for the given instant. It never hard-fails
// on contention: after ten colliding candidates it derives the sequence
// from the low-order digits of the current timestamp, accepting a
// negligible-probability collision that the storage layer would surface
// on insert.
func (g *Generator) Next(ctx context.Context, now time.Time) (string, error) {
	bounds := clock.DayBounds(now)

	count, err := g.store.CountCreatedBetween(ctx, bounds.Start, bounds.End)
	if err != nil {
		return "", fmt.Errorf("leadid: count today's leads: %w", err)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := Format(now, count+1+attempt)
		exists, err := g.store.ExistsByLeadID(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("leadid: probe %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}

	// High-contention fallback: low-order digits of the timestamp.
	return Format(now, int(now.UnixMilli()%10000)), nil
}

// Format renders an id for the instant's civil year/month and a sequence,
// zero-padded to four digits.
func Format(now time.Time, seq int) string {
	local := clock.DayBounds(now).Start
	return fmt.Sprintf("%s%02d%02d%04d", Prefix, local.Year()%100, int(local.Month()), seq)
}
