package service

import (
	"time"

	"leadportal_backend/internal/leads/authz"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/scoring"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

func optString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *time.Time, fallback time.Time) time.Time {
	if value == nil {
		return fallback
	}
	return *value
}

func leadView(lead repository.Lead) authz.LeadView {
	return authz.LeadView{
		OrganizationID: lead.OrganizationID,
		CreatedBy:      lead.CreatedBy,
		AssignedTo:     lead.AssignedTo,
		IsDuplicate:    lead.IsDuplicate,
		AdminProcessed: lead.AdminProcessed,
	}
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                   lead.ID,
		LeadID:               lead.LeadID,
		Name:                 lead.Name,
		Email:                lead.Email,
		Phone:                lead.Phone,
		AlternatePhone:       lead.AlternatePhone,
		DebtCategory:         lead.DebtCategory,
		TotalDebtAmount:      lead.TotalDebtAmount,
		NumberOfCreditors:    lead.NumberOfCreditors,
		MonthlyDebtPayment:   lead.MonthlyDebtPayment,
		CreditScoreRange:     lead.CreditScoreRange,
		CompletionPercentage: lead.CompletionPercentage,
		Category:             lead.Category,
		Priority:             lead.Priority,
		Status:               lead.Status,
		CallStatus:           lead.CallStatus,
		DocumentStatus:       lead.DocumentStatus,
		FollowUpDate:         lead.FollowUpDate,
		Remarks:              lead.Remarks,
		IsDuplicate:          lead.IsDuplicate,
		DuplicateOf:          lead.DuplicateOf,
		DuplicateReason:      lead.DuplicateReason,
		DuplicateDetectedAt:  lead.DuplicateDetectedAt,
		DuplicateDetectedBy:  lead.DuplicateDetectedBy,
		CreatedBy:            lead.CreatedBy,
		CreatedByName:        lead.CreatedByName,
		OrganizationID:       lead.OrganizationID,
		AssignedTo:           lead.AssignedTo,
		AssignedBy:           lead.AssignedBy,
		AssignedAt:           lead.AssignedAt,
		UpdatedBy:            lead.UpdatedBy,
		LastUpdatedBy:        lead.LastUpdatedBy,
		LastUpdatedByName:    lead.LastUpdatedByName,
		LastUpdatedAt:        lead.LastUpdatedAt,
		AdminProcessed:       lead.AdminProcessed,
		AdminProcessedAt:     lead.AdminProcessedAt,
		ConvertedAt:          lead.ConvertedAt,
		CreatedAt:            lead.CreatedAt,
		UpdatedAt:            lead.UpdatedAt,
	}
}

// buildUpdateParams intersects the payload with the actor's allowed field
// set. Fields outside the set are silently excluded; the returned slice
// names the fields that survived.
func buildUpdateParams(req transport.UpdateLeadRequest, allowed map[string]struct{}) (repository.UpdateLeadParams, []string) {
	params := repository.UpdateLeadParams{}
	updated := []string{}

	has := func(field string) bool {
		_, ok := allowed[field]
		return ok
	}

	if req.Name != nil && has(domain.FieldName) {
		params.Name = req.Name
		updated = append(updated, domain.FieldName)
	}
	if req.Email != nil && has(domain.FieldEmail) {
		params.Email = req.Email
		updated = append(updated, domain.FieldEmail)
	}
	if req.Phone != nil && has(domain.FieldPhone) {
		params.Phone = req.Phone
		canonical := phone.Canonical(*req.Phone)
		params.CanonicalPhone = &canonical
		updated = append(updated, domain.FieldPhone)
	}
	if req.AlternatePhone != nil && has(domain.FieldAlternatePhone) {
		params.AlternatePhone = req.AlternatePhone
		updated = append(updated, domain.FieldAlternatePhone)
	}
	if req.DebtCategory != nil && has(domain.FieldDebtCategory) {
		params.DebtCategory = req.DebtCategory
		updated = append(updated, domain.FieldDebtCategory)
	}
	if req.TotalDebtAmount != nil && has(domain.FieldTotalDebtAmount) {
		params.TotalDebtAmount = req.TotalDebtAmount
		updated = append(updated, domain.FieldTotalDebtAmount)
	}
	if req.NumberOfCreditors != nil && has(domain.FieldNumberOfCreditors) {
		params.NumberOfCreditors = req.NumberOfCreditors
		updated = append(updated, domain.FieldNumberOfCreditors)
	}
	if req.MonthlyDebtPayment != nil && has(domain.FieldMonthlyDebtPayment) {
		params.MonthlyDebtPayment = req.MonthlyDebtPayment
		updated = append(updated, domain.FieldMonthlyDebtPayment)
	}
	if req.CreditScoreRange != nil && has(domain.FieldCreditScoreRange) {
		params.CreditScoreRange = req.CreditScoreRange
		updated = append(updated, domain.FieldCreditScoreRange)
	}
	if req.Remarks != nil && has(domain.FieldRemarks) {
		params.Remarks = req.Remarks
		updated = append(updated, domain.FieldRemarks)
	}
	if req.Status != nil && has(domain.FieldStatus) {
		status := string(*req.Status)
		params.Status = &status
		updated = append(updated, domain.FieldStatus)
	}
	if req.CallStatus != nil && has(domain.FieldCallStatus) {
		params.CallStatus = req.CallStatus
		updated = append(updated, domain.FieldCallStatus)
	}
	if req.DocumentStatus != nil && has(domain.FieldDocumentStatus) {
		params.DocumentStatus = req.DocumentStatus
		updated = append(updated, domain.FieldDocumentStatus)
	}
	if req.FollowUpDate.Set && has(domain.FieldFollowUpDate) {
		params.FollowUpDate = req.FollowUpDate.Value
		params.FollowUpDateSet = true
		updated = append(updated, domain.FieldFollowUpDate)
	}

	return params, updated
}

var scoringFields = map[string]struct{}{
	domain.FieldName:               {},
	domain.FieldEmail:              {},
	domain.FieldPhone:              {},
	domain.FieldTotalDebtAmount:    {},
	domain.FieldDebtCategory:       {},
	domain.FieldNumberOfCreditors:  {},
	domain.FieldMonthlyDebtPayment: {},
	domain.FieldCreditScoreRange:   {},
}

func touchesScoring(updatedFields []string) bool {
	for _, f := range updatedFields {
		if _, ok := scoringFields[f]; ok {
			return true
		}
	}
	return false
}

// mergedScoringInput overlays the accepted update on the stored lead so
// the rescore sees the post-update field values.
func mergedScoringInput(lead repository.Lead, req transport.UpdateLeadRequest, allowed map[string]struct{}) scoring.Input {
	in := scoring.Input{
		Name:               lead.Name,
		Phone:              lead.Phone,
		TotalDebtAmount:    lead.TotalDebtAmount,
		NumberOfCreditors:  lead.NumberOfCreditors,
		MonthlyDebtPayment: lead.MonthlyDebtPayment,
	}
	if lead.Email != nil {
		in.Email = *lead.Email
	}
	if lead.DebtCategory != nil {
		in.DebtCategory = *lead.DebtCategory
	}
	if lead.CreditScoreRange != nil {
		in.CreditScoreRange = *lead.CreditScoreRange
	}

	has := func(field string) bool {
		_, ok := allowed[field]
		return ok
	}

	if req.Name != nil && has(domain.FieldName) {
		in.Name = *req.Name
	}
	if req.Email != nil && has(domain.FieldEmail) {
		in.Email = *req.Email
	}
	if req.Phone != nil && has(domain.FieldPhone) {
		in.Phone = *req.Phone
	}
	if req.TotalDebtAmount != nil && has(domain.FieldTotalDebtAmount) {
		in.TotalDebtAmount = req.TotalDebtAmount
	}
	if req.DebtCategory != nil && has(domain.FieldDebtCategory) {
		in.DebtCategory = *req.DebtCategory
	}
	if req.NumberOfCreditors != nil && has(domain.FieldNumberOfCreditors) {
		in.NumberOfCreditors = req.NumberOfCreditors
	}
	if req.MonthlyDebtPayment != nil && has(domain.FieldMonthlyDebtPayment) {
		in.MonthlyDebtPayment = req.MonthlyDebtPayment
	}
	if req.CreditScoreRange != nil && has(domain.FieldCreditScoreRange) {
		in.CreditScoreRange = *req.CreditScoreRange
	}

	return in
}

func scopeFrom(vis authz.Visibility) repository.Scope {
	return repository.Scope{
		OrganizationID:        vis.OrganizationID,
		CreatedBy:             vis.CreatedBy,
		AssignedTo:            vis.AssignedTo,
		IncludeDuplicates:     vis.IncludeDuplicates,
		ExcludeAdminProcessed: vis.ExcludeAdminProcessed,
	}
}

func buildListParams(vis authz.Visibility, query transport.ListLeadsQuery) (repository.ListParams, int, int, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	params := repository.ListParams{
		Scope:     scopeFrom(vis),
		Search:    query.Search,
		Offset:    (page - 1) * limit,
		Limit:     limit,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}

	if query.Status != "" {
		params.Status = &query.Status
	}
	if query.Category != "" {
		params.Category = &query.Category
	}
	if query.Priority != "" {
		params.Priority = &query.Priority
	}
	if query.AssignedTo != "" {
		id, err := uuid.Parse(query.AssignedTo)
		if err != nil {
			return repository.ListParams{}, 0, 0, apperr.Validation("assignedTo must be a valid uuid")
		}
		params.AssignedAgent = &id
	}
	if query.From != "" {
		from, err := parseDate(query.From)
		if err != nil {
			return repository.ListParams{}, 0, 0, apperr.Validation("from must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
		params.CreatedAtFrom = &from
	}
	if query.To != "" {
		to, err := parseDate(query.To)
		if err != nil {
			return repository.ListParams{}, 0, 0, apperr.Validation("to must be an RFC3339 timestamp or YYYY-MM-DD date")
		}
		params.CreatedAtTo = &to
	}

	return params, page, limit, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
