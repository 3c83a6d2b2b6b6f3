// Package repository provides data access for organizations.
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
	ErrNotFound  = errors.New("organization not found")
	ErrNameTaken = errors.New("organization name already taken")
)

// Organization is a tenant. Names are unique case-insensitively.
type Organization struct {
	ID        uuid.UUID
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orgColumns = `id, name, active, created_at, updated_at`

func scanOrganization(row pgx.Row) (Organization, error) {
	var org Organization
	err := row.Scan(&org.ID, &org.Name, &org.Active, &org.CreatedAt, &org.UpdatedAt)
	return org, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts an organization. A case-insensitive name collision
// returns ErrNameTaken.
func (r *Repository) Create(ctx context.Context, name string) (Organization, error) {
	query := fmt.Sprintf(`
		INSERT INTO organizations (id, name)
		VALUES ($1, $2)
		RETURNING %s`, orgColumns)

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, uuid.New(), name))
	if isUniqueViolation(err) {
		return Organization{}, ErrNameTaken
	}
	if err != nil {
		return Organization{}, fmt.Errorf("create organization: %w", err)
	}
	return org, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM organizations WHERE id = $1`, orgColumns)

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	if err != nil {
		return Organization{}, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

// GetByName looks an organization up by case-insensitive name.
func (r *Repository) GetByName(ctx context.Context, name string) (Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM organizations WHERE lower(name) = lower($1)`, orgColumns)

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	if err != nil {
		return Organization{}, fmt.Errorf("get organization by name: %w", err)
	}
	return org, nil
}

// UpdateParams carries optional organization changes.
type UpdateParams struct {
	Name   *string
	Active *bool
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Organization, error) {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{id}
	argPos := 2

	if params.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *params.Name)
		argPos++
	}
	if params.Active != nil {
		setClauses = append(setClauses, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *params.Active)
		argPos++
	}

	query := fmt.Sprintf(`
		UPDATE organizations
		SET %s
		WHERE id = $1
		RETURNING %s`, strings.Join(setClauses, ", "), orgColumns)

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	if isUniqueViolation(err) {
		return Organization{}, ErrNameTaken
	}
	if err != nil {
		return Organization{}, fmt.Errorf("update organization: %w", err)
	}
	return org, nil
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM organizations`, orgColumns)
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}
