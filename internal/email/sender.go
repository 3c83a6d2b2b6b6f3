// Package email renders and delivers transactional emails over SMTP.
package email

import (
	"context"
	"time"
)

// Sender delivers the lead lifecycle emails.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail, agentName, leadID, leadName, assignerName string) error
	SendFollowUpReminderEmail(ctx context.Context, toEmail, agentName, leadID, leadName string, followUpAt time.Time) error
}

// NoopSender is used when no SMTP host is configured.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(ctx context.Context, toEmail, agentName, leadID, leadName, assignerName string) error {
	return nil
}

func (NoopSender) SendFollowUpReminderEmail(ctx context.Context, toEmail, agentName, leadID, leadName string, followUpAt time.Time) error {
	return nil
}
