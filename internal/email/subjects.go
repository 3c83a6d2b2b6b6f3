package email

const (
	subjectLeadAssignedFmt     = "Lead %s has been assigned to you"
	subjectFollowUpReminderFmt = "Follow-up due for lead %s"
)
