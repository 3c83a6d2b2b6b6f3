// Package ports defines the interfaces that the leads domain requires from
// external systems. The implementations are provided by the composition
// root, so leads never imports the auth or identity domains directly.
package ports

import (
	"context"
	"time"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ActorProvider resolves user accounts into lead-domain actors, with the
// hub flag already derived from the user's organization.
type ActorProvider interface {
	// GetActor returns the actor for the given user id.
	// Returns an error when the user does not exist or is deactivated.
	GetActor(ctx context.Context, userID uuid.UUID) (domain.Actor, error)

	// GetActorsByIDs resolves multiple user ids at once. Missing users
	// are silently omitted from the result map.
	GetActorsByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]domain.Actor, error)
}

// ActorContact is the delivery address for actor-facing notifications.
type ActorContact struct {
	Name  string
	Email string
}

// ContactProvider resolves a user id into a notification address.
type ContactProvider interface {
	GetContact(ctx context.Context, userID uuid.UUID) (ActorContact, error)
}

// FollowUpScheduler enqueues a reminder for a lead's follow-up time.
// Reminders whose time no longer matches the stored follow-up date are
// dropped at delivery, so rescheduling supersedes earlier reminders.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, leadKey uuid.UUID, at time.Time) error
}
