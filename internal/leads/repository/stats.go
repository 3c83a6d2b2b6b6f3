package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func (r *Repository) scopedCount(ctx context.Context, scope Scope, extra string, extraArgs ...interface{}) (int, error) {
	whereClauses, args, argIdx := buildScopeWhere(scope, 1)
	if extra != "" {
		for range extraArgs {
			extra = strings.Replace(extra, "?", fmt.Sprintf("$%d", argIdx), 1)
			argIdx++
		}
		whereClauses = append(whereClauses, extra)
		args = append(args, extraArgs...)
	}
	if len(whereClauses) == 0 {
		whereClauses = append(whereClauses, "true")
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", strings.Join(whereClauses, " AND "))

	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// CountVisible counts every lead the scope allows.
func (r *Repository) CountVisible(ctx context.Context, scope Scope) (int, error) {
	return r.scopedCount(ctx, scope, "")
}

// CountDuplicates counts duplicate-flagged leads within the scope.
func (r *Repository) CountDuplicates(ctx context.Context, scope Scope) (int, error) {
	return r.scopedCount(ctx, scope, "l.is_duplicate = true")
}

// CountAssigned counts leads with an assignee within the scope.
func (r *Repository) CountAssigned(ctx context.Context, scope Scope) (int, error) {
	return r.scopedCount(ctx, scope, "l.assigned_to IS NOT NULL")
}

// CountCreatedSince counts scope-visible leads created at or after the
// given instant.
func (r *Repository) CountCreatedSince(ctx context.Context, scope Scope, since time.Time) (int, error) {
	return r.scopedCount(ctx, scope, "l.created_at >= ?", since)
}

// CountConvertedSince counts scope-visible leads converted at or after
// the given instant.
func (r *Repository) CountConvertedSince(ctx context.Context, scope Scope, since time.Time) (int, error) {
	return r.scopedCount(ctx, scope, "l.converted_at IS NOT NULL AND l.converted_at >= ?", since)
}

func (r *Repository) scopedGroupCount(ctx context.Context, scope Scope, column string) (map[string]int, error) {
	whereClauses, args, _ := buildScopeWhere(scope, 1)
	if len(whereClauses) == 0 {
		whereClauses = append(whereClauses, "true")
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM leads l
		WHERE %s
		GROUP BY %s
	`, column, strings.Join(whereClauses, " AND "), column)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

// StatusCounts returns lead counts per status within the scope.
func (r *Repository) StatusCounts(ctx context.Context, scope Scope) (map[string]int, error) {
	return r.scopedGroupCount(ctx, scope, "l.status")
}

// CategoryCounts returns lead counts per temperature category within the
// scope.
func (r *Repository) CategoryCounts(ctx context.Context, scope Scope) (map[string]int, error) {
	return r.scopedGroupCount(ctx, scope, "l.category")
}
