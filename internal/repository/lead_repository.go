package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lead-service/internal/domain"
)

// LeadFilter captures lead search parameters. The access policy narrows it
// before it reaches the store.
type LeadFilter struct {
	AssignedTo *string
	Unassigned bool
	Statuses   []domain.LeadStatus
	Source     *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// GroupField names a column leads may be aggregated by for reporting.
type GroupField string

const (
	GroupByStatus      GroupField = "status"
	GroupBySource      GroupField = "source"
	GroupByCourse      GroupField = "course"
	GroupByInstitution GroupField = "institution"
)

// LeadRepository encapsulates lead persistence. Every method is a
// single-record atomic operation from the store's point of view.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	Update(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error)
	SetAssignee(ctx context.Context, leadID string, staffID *string) error
	ClearAssigneeForStaff(ctx context.Context, staffID string) error
	CountGrouped(ctx context.Context, field GroupField, scope LeadFilter) (map[string]int, error)
}

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository instantiates a Postgres-backed repository.
func NewLeadRepository(pool *pgxpool.Pool) LeadRepository {
	return &leadRepository{pool: pool}
}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	const query = `
        INSERT INTO leads (name, email, phone, source, course, institution, status, assigned_to, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Source,
		lead.Course,
		lead.Institution,
		lead.Status,
		lead.AssignedTo,
		lead.Notes,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	const query = `
        UPDATE leads SET name=$1, email=$2, phone=$3, source=$4, course=$5, institution=$6,
            status=$7, assigned_to=$8, notes=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Source,
		lead.Course,
		lead.Institution,
		lead.Status,
		lead.AssignedTo,
		lead.Notes,
		lead.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	const query = `
        SELECT id, name, email, phone, source, course, institution, status, assigned_to, notes, created_at, updated_at
        FROM leads WHERE id=$1`
	var lead domain.Lead
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Source,
		&lead.Course,
		&lead.Institution,
		&lead.Status,
		&lead.AssignedTo,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leadRepository) List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error) {
	base := `SELECT id, name, email, phone, source, course, institution, status, assigned_to, notes, created_at, updated_at
             FROM leads`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	} else if filter.Unassigned {
		clauses = append(clauses, "assigned_to IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Source != nil {
		args = append(args, *filter.Source)
		clauses = append(clauses, fmt.Sprintf("source=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(email) LIKE %s OR phone LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (r *leadRepository) SetAssignee(ctx context.Context, leadID string, staffID *string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE leads SET assigned_to=$1, updated_at=NOW() WHERE id=$2`, staffID, leadID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leadRepository) ClearAssigneeForStaff(ctx context.Context, staffID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE leads SET assigned_to=NULL, updated_at=NOW() WHERE assigned_to=$1`, staffID)
	return err
}

func (r *leadRepository) CountGrouped(ctx context.Context, field GroupField, scope LeadFilter) (map[string]int, error) {
	column, ok := groupColumns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	clauses := []string{"1=1"}
	args := []any{}
	if scope.AssignedTo != nil {
		args = append(args, *scope.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT COALESCE(NULLIF(%s, ''), 'Not Specified'), COUNT(*)
        FROM leads WHERE %s GROUP BY 1 ORDER BY 2 DESC`, column, strings.Join(clauses, " AND "))

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

// groupColumns restricts aggregation to known columns so a field name can
// never reach the SQL text unchecked.
var groupColumns = map[GroupField]string{
	GroupByStatus:      "status",
	GroupBySource:      "source",
	GroupByCourse:      "course",
	GroupByInstitution: "institution",
}

func scanLeads(rows pgx.Rows) ([]domain.Lead, error) {
	var result []domain.Lead
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.Name,
			&lead.Email,
			&lead.Phone,
			&lead.Source,
			&lead.Course,
			&lead.Institution,
			&lead.Status,
			&lead.AssignedTo,
			&lead.Notes,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, lead)
	}
	return result, rows.Err()
}
