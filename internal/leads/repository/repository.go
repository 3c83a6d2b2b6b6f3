package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("lead not found")
	// ErrDuplicateKey surfaces the unique constraint on lead_id. Two
	// concurrent creates can race to the same candidate id; the loser
	// gets this error instead of a silent duplicate.
	ErrDuplicateKey = errors.New("lead id already taken")
	// ErrAlreadyAssigned is returned when assigning a lead that already
	// has an assignee.
	ErrAlreadyAssigned = errors.New("lead already assigned")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                   uuid.UUID
	LeadID               string
	Name                 string
	Email                *string
	Phone                string
	CanonicalPhone       *string
	AlternatePhone       *string
	DebtCategory         *string
	TotalDebtAmount      *float64
	NumberOfCreditors    *int
	MonthlyDebtPayment   *float64
	CreditScoreRange     *string
	CompletionPercentage int
	Category             string
	Priority             string
	Status               string
	CallStatus           *string
	DocumentStatus       *string
	FollowUpDate         *time.Time
	Remarks              *string
	IsDuplicate          bool
	DuplicateOf          *uuid.UUID
	DuplicateReason      *string
	DuplicateDetectedAt  *time.Time
	DuplicateDetectedBy  *uuid.UUID
	CreatedBy            uuid.UUID
	CreatedByName        string
	OrganizationID       uuid.UUID
	AssignedTo           *uuid.UUID
	AssignedBy           *uuid.UUID
	AssignedAt           *time.Time
	UpdatedBy            *uuid.UUID
	LastUpdatedBy        *uuid.UUID
	LastUpdatedByName    *string
	LastUpdatedAt        *time.Time
	AdminProcessed       bool
	AdminProcessedAt     *time.Time
	ConvertedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

const leadColumns = `id, lead_id, name, email, phone, canonical_phone, alternate_phone,
	debt_category, total_debt_amount, number_of_creditors, monthly_debt_payment, credit_score_range,
	completion_percentage, category, priority,
	status, call_status, document_status, follow_up_date, remarks,
	is_duplicate, duplicate_of, duplicate_reason, duplicate_detected_at, duplicate_detected_by,
	created_by, created_by_name, organization_id,
	assigned_to, assigned_by, assigned_at,
	updated_by, last_updated_by, last_updated_by_name, last_updated_at,
	admin_processed, admin_processed_at, converted_at,
	created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.LeadID, &lead.Name, &lead.Email, &lead.Phone, &lead.CanonicalPhone, &lead.AlternatePhone,
		&lead.DebtCategory, &lead.TotalDebtAmount, &lead.NumberOfCreditors, &lead.MonthlyDebtPayment, &lead.CreditScoreRange,
		&lead.CompletionPercentage, &lead.Category, &lead.Priority,
		&lead.Status, &lead.CallStatus, &lead.DocumentStatus, &lead.FollowUpDate, &lead.Remarks,
		&lead.IsDuplicate, &lead.DuplicateOf, &lead.DuplicateReason, &lead.DuplicateDetectedAt, &lead.DuplicateDetectedBy,
		&lead.CreatedBy, &lead.CreatedByName, &lead.OrganizationID,
		&lead.AssignedTo, &lead.AssignedBy, &lead.AssignedAt,
		&lead.UpdatedBy, &lead.LastUpdatedBy, &lead.LastUpdatedByName, &lead.LastUpdatedAt,
		&lead.AdminProcessed, &lead.AdminProcessedAt, &lead.ConvertedAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type CreateLeadParams struct {
	LeadID               string
	Name                 string
	Email                *string
	Phone                string
	CanonicalPhone       *string
	AlternatePhone       *string
	DebtCategory         *string
	TotalDebtAmount      *float64
	NumberOfCreditors    *int
	MonthlyDebtPayment   *float64
	CreditScoreRange     *string
	CompletionPercentage int
	Category             string
	Priority             string
	Remarks              *string
	IsDuplicate          bool
	DuplicateOf          *uuid.UUID
	DuplicateReason      *string
	DuplicateDetectedAt  *time.Time
	CreatedBy            uuid.UUID
	CreatedByName        string
	OrganizationID       uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			lead_id, name, email, phone, canonical_phone, alternate_phone,
			debt_category, total_debt_amount, number_of_creditors, monthly_debt_payment, credit_score_range,
			completion_percentage, category, priority, remarks,
			is_duplicate, duplicate_of, duplicate_reason, duplicate_detected_at,
			created_by, created_by_name, organization_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING `+leadColumns,
		params.LeadID, params.Name, params.Email, params.Phone, params.CanonicalPhone, params.AlternatePhone,
		params.DebtCategory, params.TotalDebtAmount, params.NumberOfCreditors, params.MonthlyDebtPayment, params.CreditScoreRange,
		params.CompletionPercentage, params.Category, params.Priority, params.Remarks,
		params.IsDuplicate, params.DuplicateOf, params.DuplicateReason, params.DuplicateDetectedAt,
		params.CreatedBy, params.CreatedByName, params.OrganizationID,
	)

	lead, err := scanLead(row)
	if isUniqueViolation(err) {
		return Lead{}, ErrDuplicateKey
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type UpdateLeadParams struct {
	Name               *string
	Email              *string
	Phone              *string
	CanonicalPhone     *string
	AlternatePhone     *string
	DebtCategory       *string
	TotalDebtAmount    *float64
	NumberOfCreditors  *int
	MonthlyDebtPayment *float64
	CreditScoreRange   *string
	Remarks            *string

	Status         *string
	CallStatus     *string
	DocumentStatus *string
	FollowUpDate   *time.Time
	// FollowUpDateSet distinguishes "clear the date" from "leave it alone".
	FollowUpDateSet bool

	CompletionPercentage *int
	Category             *string
	Priority             *string

	AdminProcessed   *bool
	AdminProcessedAt *time.Time
	// ConvertedAt is applied with COALESCE so the first conversion
	// timestamp is never overwritten.
	ConvertedAt *time.Time

	LastUpdatedBy     uuid.UUID
	LastUpdatedByName string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.Name != nil, "name", params.Name},
		{params.Email != nil, "email", params.Email},
		{params.Phone != nil, "phone", params.Phone},
		{params.CanonicalPhone != nil, "canonical_phone", params.CanonicalPhone},
		{params.AlternatePhone != nil, "alternate_phone", params.AlternatePhone},
		{params.DebtCategory != nil, "debt_category", params.DebtCategory},
		{params.TotalDebtAmount != nil, "total_debt_amount", params.TotalDebtAmount},
		{params.NumberOfCreditors != nil, "number_of_creditors", params.NumberOfCreditors},
		{params.MonthlyDebtPayment != nil, "monthly_debt_payment", params.MonthlyDebtPayment},
		{params.CreditScoreRange != nil, "credit_score_range", params.CreditScoreRange},
		{params.Remarks != nil, "remarks", params.Remarks},
		{params.Status != nil, "status", params.Status},
		{params.CallStatus != nil, "call_status", params.CallStatus},
		{params.DocumentStatus != nil, "document_status", params.DocumentStatus},
		{params.FollowUpDateSet, "follow_up_date", params.FollowUpDate},
		{params.CompletionPercentage != nil, "completion_percentage", params.CompletionPercentage},
		{params.Category != nil, "category", params.Category},
		{params.Priority != nil, "priority", params.Priority},
		{params.AdminProcessed != nil, "admin_processed", params.AdminProcessed},
		{params.AdminProcessedAt != nil, "admin_processed_at", params.AdminProcessedAt},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	if params.ConvertedAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("converted_at = COALESCE(converted_at, $%d)", argIdx))
		args = append(args, params.ConvertedAt)
		argIdx++
	}

	setClauses = append(setClauses,
		fmt.Sprintf("updated_by = $%d", argIdx),
		fmt.Sprintf("last_updated_by = $%d", argIdx),
		fmt.Sprintf("last_updated_by_name = $%d", argIdx+1),
		"last_updated_at = now()",
		"updated_at = now()",
	)
	args = append(args, params.LastUpdatedBy, params.LastUpdatedByName)
	argIdx += 2

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// Assign stamps the assignment triple in one conditional update. The
// assigned_to IS NULL guard makes concurrent assigns race safely; the
// loser sees ErrAlreadyAssigned.
func (r *Repository) Assign(ctx context.Context, id, assignedTo, assignedBy uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET assigned_to = $2, assigned_by = $3, assigned_at = now(), updated_at = now()
		WHERE id = $1 AND assigned_to IS NULL
		RETURNING `+leadColumns, id, assignedTo, assignedBy)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return Lead{}, getErr
		}
		return Lead{}, ErrAlreadyAssigned
	}
	return lead, err
}

func (r *Repository) Unassign(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET assigned_to = NULL, assigned_by = NULL, assigned_at = NULL, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, id)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// StampDuplicateDetectedBy records who triggered duplicate detection.
// It runs as a second write after the insert; callers tolerate failure
// because the duplicate flag itself is already persisted.
func (r *Repository) StampDuplicateDetectedBy(ctx context.Context, id, detectedBy uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET duplicate_detected_by = $2 WHERE id = $1 AND is_duplicate = true
	`, id, detectedBy)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountCreatedBetween counts all leads created within [start, end),
// regardless of organization. The daily id sequence is global.
func (r *Repository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads WHERE created_at >= $1 AND created_at < $2
	`, start, end).Scan(&count)
	return count, err
}

func (r *Repository) ExistsByLeadID(ctx context.Context, leadID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leads WHERE lead_id = $1)
	`, leadID).Scan(&exists)
	return exists, err
}

// FindByCanonicalPhone returns the earliest lead with the given canonical
// phone, excluding the given record. Returns uuid.Nil when none matches.
func (r *Repository) FindByCanonicalPhone(ctx context.Context, canonicalPhone string, exclude uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM leads
		WHERE canonical_phone = $1 AND id != $2
		ORDER BY created_at ASC
		LIMIT 1
	`, canonicalPhone, exclude).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	return id, err
}
