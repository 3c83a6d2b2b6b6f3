package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scope is the row-visibility restriction derived from the caller's role.
// A zero Scope means unrestricted (superadmin).
type Scope struct {
	OrganizationID *uuid.UUID
	CreatedBy      *uuid.UUID
	AssignedTo     *uuid.UUID
	// IncludeDuplicates widens an AssignedTo scope to also match
	// duplicate-flagged leads.
	IncludeDuplicates     bool
	ExcludeAdminProcessed bool
}

type ListParams struct {
	Scope Scope

	Status        *string
	Category      *string
	Priority      *string
	AssignedAgent *uuid.UUID
	Search        string
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time

	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn := mapLeadSortColumn(params.SortBy)
	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, prefixedLeadColumns(), whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}

	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func prefixedLeadColumns() string {
	cols := strings.Split(leadColumns, ",")
	for i, col := range cols {
		cols[i] = "l." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}

func buildScopeWhere(scope Scope, argIdx int) ([]string, []interface{}, int) {
	whereClauses := []string{}
	args := []interface{}{}

	if scope.OrganizationID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.organization_id = $%d", argIdx))
		args = append(args, *scope.OrganizationID)
		argIdx++
	}
	if scope.CreatedBy != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.created_by = $%d", argIdx))
		args = append(args, *scope.CreatedBy)
		argIdx++
	}
	if scope.AssignedTo != nil {
		if scope.IncludeDuplicates {
			whereClauses = append(whereClauses, fmt.Sprintf("(l.assigned_to = $%d OR l.is_duplicate = true)", argIdx))
		} else {
			whereClauses = append(whereClauses, fmt.Sprintf("l.assigned_to = $%d", argIdx))
		}
		args = append(args, *scope.AssignedTo)
		argIdx++
	}
	if scope.ExcludeAdminProcessed {
		whereClauses = append(whereClauses, "l.admin_processed = false")
	}

	return whereClauses, args, argIdx
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses, args, argIdx := buildScopeWhere(params.Scope, 1)

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		addEquals("l.status", *params.Status)
	}
	if params.Category != nil {
		addEquals("l.category", *params.Category)
	}
	if params.Priority != nil {
		addEquals("l.priority", *params.Priority)
	}
	if params.AssignedAgent != nil {
		addEquals("l.assigned_to", *params.AssignedAgent)
	}
	if params.Search != "" {
		searchPattern := "%" + params.Search + "%"
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.name ILIKE $%d OR l.phone ILIKE $%d OR l.email ILIKE $%d OR l.lead_id ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, searchPattern)
		argIdx++
	}
	if params.CreatedAtFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.created_at >= $%d", argIdx))
		args = append(args, *params.CreatedAtFrom)
		argIdx++
	}
	if params.CreatedAtTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.created_at < $%d", argIdx))
		args = append(args, *params.CreatedAtTo)
		argIdx++
	}

	if len(whereClauses) == 0 {
		whereClauses = append(whereClauses, "true")
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "l.name"
	case "leadId":
		return "l.lead_id"
	case "status":
		return "l.status"
	case "completionPercentage":
		return "l.completion_percentage"
	case "followUpDate":
		return "l.follow_up_date"
	case "assignedAt":
		return "l.assigned_at"
	default:
		return "l.created_at"
	}
}
