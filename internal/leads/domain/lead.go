package domain

// Status is the primary pipeline status of a lead. The engine does not
// enforce a transition graph; any actor allowed to write the status field
// may set any value. Entering StatusSuccessful stamps convertedAt once.
type Status string

const (
	StatusNew           Status = "new"
	StatusInterested    Status = "interested"
	StatusNotInterested Status = "not-interested"
	StatusFollowUp      Status = "follow-up"
	StatusSuccessful    Status = "successful"
)

// Tier is the completeness category derived from the completion percentage.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Priority is derived from the completion percentage alongside the tier.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DuplicateReasonPhone is the only duplicate reason this engine produces.
// The column is schema-compatible with email matching, which is
// intentionally not exercised.
const DuplicateReasonPhone = "phone"

// Updatable field names as they appear in update payloads. The
// authorization matrix grants or withholds these per role.
const (
	FieldName               = "name"
	FieldEmail              = "email"
	FieldPhone              = "phone"
	FieldAlternatePhone     = "alternatePhone"
	FieldDebtCategory       = "debtCategory"
	FieldTotalDebtAmount    = "totalDebtAmount"
	FieldNumberOfCreditors  = "numberOfCreditors"
	FieldMonthlyDebtPayment = "monthlyDebtPayment"
	FieldCreditScoreRange   = "creditScoreRange"
	FieldRemarks            = "remarks"
	FieldStatus             = "status"
	FieldCallStatus         = "callStatus"
	FieldDocumentStatus     = "documentStatus"
	FieldFollowUpDate       = "followUpDate"
)
