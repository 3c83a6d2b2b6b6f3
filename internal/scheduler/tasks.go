package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskFollowUpReminder = "leads.followup.reminder"

// FollowUpReminderPayload identifies the lead and the follow-up time the
// reminder was scheduled for. The worker compares the stored follow-up
// date against the payload so rescheduled reminders go stale instead of
// firing twice.
type FollowUpReminderPayload struct {
	LeadKey      string    `json:"leadKey"`
	FollowUpDate time.Time `json:"followUpDate"`
}

func NewFollowUpReminderTask(payload FollowUpReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpReminder, data), nil
}

func ParseFollowUpReminderPayload(task *asynq.Task) (FollowUpReminderPayload, error) {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpReminderPayload{}, err
	}
	return payload, nil
}
