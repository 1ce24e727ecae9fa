package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

// TaskRepository persists staff tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
}

// TaskFilter defines query params for task listing.
type TaskFilter struct {
	AssigneeID *string
	Department *domain.Department
	Status     *domain.TaskStatus
	Limit      int
	Offset     int
}

const taskColumns = `id, title, description, department, due_day, assignee_id::text, created_by_id::text, status, created_at, updated_at, completed_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository builds the repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (title, description, department, due_day, assignee_id, created_by_id, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Department),
		string(task.DueDay),
		task.AssigneeID,
		task.CreatedByID,
		string(task.Status),
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks
        SET title=$1, description=$2, department=$3, due_day=$4, assignee_id=$5, status=$6, completed_at=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Department),
		string(task.DueDay),
		task.AssigneeID,
		string(task.Status),
		task.CompletedAt,
		task.ID,
	).Scan(&task.UpdatedAt)
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := []any{}
	clauses := []string{}

	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, string(*filter.Department))
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

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

	result := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *task)
	}
	return result, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task       domain.Task
		department string
		dueDay     string
		status     string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&department,
		&dueDay,
		&task.AssigneeID,
		&task.CreatedByID,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.CompletedAt,
	); err != nil {
		return nil, err
	}
	task.Department = domain.Department(department)
	task.DueDay = domain.Weekday(dueDay)
	task.Status = domain.TaskStatus(status)
	return &task, nil
}
