package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

// ShiftRepository manages persistence for shifts and their assignments.
type ShiftRepository interface {
	Create(ctx context.Context, shift *domain.Shift) error
	Update(ctx context.Context, shift *domain.Shift) error
	GetByID(ctx context.Context, id string) (*domain.Shift, error)
	List(ctx context.Context, filter ShiftFilter) ([]domain.Shift, error)
	ReplaceAssignments(ctx context.Context, shiftID string, employeeIDs []string) error
}

// ShiftFilter defines query params for shift listing.
type ShiftFilter struct {
	From   *time.Time
	To     *time.Time
	Type   *domain.ShiftType
	Status *domain.ShiftStatus
	Limit  int
	Offset int
}

type shiftRepository struct {
	pool *pgxpool.Pool
}

// NewShiftRepository constructs repository.
func NewShiftRepository(pool *pgxpool.Pool) ShiftRepository {
	return &shiftRepository{pool: pool}
}

func (r *shiftRepository) Create(ctx context.Context, shift *domain.Shift) error {
	const query = `
        INSERT INTO shifts (shift_date, shift_type, status, notes)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		shift.Date,
		string(shift.Type),
		string(shift.Status),
		shift.Notes,
	).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)
}

func (r *shiftRepository) Update(ctx context.Context, shift *domain.Shift) error {
	const query = `
        UPDATE shifts SET shift_date=$1, shift_type=$2, status=$3, notes=$4, published_at=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		shift.Date,
		string(shift.Type),
		string(shift.Status),
		shift.Notes,
		shift.PublishedAt,
		shift.ID,
	).Scan(&shift.UpdatedAt)
}

func (r *shiftRepository) GetByID(ctx context.Context, id string) (*domain.Shift, error) {
	const query = `
        SELECT s.id, s.shift_date, s.shift_type, s.status, s.notes, s.published_at, s.created_at, s.updated_at,
               COALESCE(array_agg(a.employee_id::text ORDER BY a.position) FILTER (WHERE a.employee_id IS NOT NULL), '{}')
        FROM shifts s
        LEFT JOIN shift_assignments a ON a.shift_id = s.id
        WHERE s.id=$1
        GROUP BY s.id`
	return scanShift(r.pool.QueryRow(ctx, query, id))
}

func (r *shiftRepository) List(ctx context.Context, filter ShiftFilter) ([]domain.Shift, error) {
	query := `
        SELECT s.id, s.shift_date, s.shift_type, s.status, s.notes, s.published_at, s.created_at, s.updated_at,
               COALESCE(array_agg(a.employee_id::text ORDER BY a.position) FILTER (WHERE a.employee_id IS NOT NULL), '{}')
        FROM shifts s
        LEFT JOIN shift_assignments a ON a.shift_id = s.id`
	args := []any{}
	clauses := []string{}

	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("s.shift_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("s.shift_date <= $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		clauses = append(clauses, fmt.Sprintf("s.shift_type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("s.status=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " GROUP BY s.id ORDER BY s.shift_date ASC, s.shift_type ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Shift{}
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *shift)
	}
	return result, rows.Err()
}

// ReplaceAssignments swaps the shift's assignment list in one transaction.
func (r *shiftRepository) ReplaceAssignments(ctx context.Context, shiftID string, employeeIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE shifts SET updated_at=NOW() WHERE id=$1`, shiftID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if _, err := tx.Exec(ctx, `DELETE FROM shift_assignments WHERE shift_id=$1`, shiftID); err != nil {
		return err
	}
	for i, employeeID := range employeeIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO shift_assignments (shift_id, employee_id, position) VALUES ($1,$2,$3)`,
			shiftID, employeeID, i,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func scanShift(row pgx.Row) (*domain.Shift, error) {
	var (
		shift     domain.Shift
		shiftType string
		status    string
	)
	if err := row.Scan(
		&shift.ID,
		&shift.Date,
		&shiftType,
		&status,
		&shift.Notes,
		&shift.PublishedAt,
		&shift.CreatedAt,
		&shift.UpdatedAt,
		&shift.EmployeeIDs,
	); err != nil {
		return nil, err
	}
	shift.Type = domain.ShiftType(shiftType)
	shift.Status = domain.ShiftStatus(status)
	return &shift, nil
}
