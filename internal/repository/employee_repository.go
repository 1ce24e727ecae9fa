package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-service/internal/domain"
)

// EmployeeRepository handles persistence for roster members.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	Update(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Employee, error)
	Roster(ctx context.Context) ([]domain.Employee, error)
}

// EmployeeFilter defines query params for employee listing.
type EmployeeFilter struct {
	Role       *domain.Role
	Department *domain.Department
	// DepartmentRoles are matched for rows whose department column is NULL,
	// so records that predate the column are still found.
	DepartmentRoles []domain.Role
	Active          *bool
	Limit           int
	Offset          int
}

const employeeColumns = `id, name, email, password_hash, role, department, active_flag, status, work_days, created_at, updated_at`

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (name, email, password_hash, role, department, active_flag, status, work_days)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		employee.Name,
		employee.Email,
		employee.PasswordHash,
		string(employee.Role),
		nullableString(string(employee.Department)),
		employee.Active,
		nullableString(string(employee.Status)),
		weekdayStrings(employee.WorkDays),
	).Scan(&employee.ID, &employee.CreatedAt, &employee.UpdatedAt)
}

func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	const query = `
        UPDATE employees
        SET name=$1, email=$2, password_hash=$3, role=$4, department=$5, active_flag=$6, status=$7, work_days=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		employee.Name,
		employee.Email,
		employee.PasswordHash,
		string(employee.Role),
		nullableString(string(employee.Department)),
		employee.Active,
		nullableString(string(employee.Status)),
		weekdayStrings(employee.WorkDays),
		employee.ID,
	).Scan(&employee.UpdatedAt)
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id=$1`
	return scanEmployee(r.pool.QueryRow(ctx, query, id))
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE lower(email)=lower($1)`
	return scanEmployee(r.pool.QueryRow(ctx, query, email))
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	clauses, args := employeeFilterClauses(filter)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at ASC, id ASC"
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
	return collectEmployees(rows)
}

// activeExpr resolves liveness the way domain.Employee.IsActive does: a
// non-empty status wins over the boolean flag.
const activeExpr = `(CASE WHEN status IS NOT NULL AND status <> '' THEN lower(status)='active' ELSE active_flag END)`

func employeeFilterClauses(filter EmployeeFilter) ([]string, []any) {
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, string(*filter.Department))
		clause := fmt.Sprintf("department=$%d", len(args))
		if len(filter.DepartmentRoles) > 0 {
			args = append(args, roleStrings(filter.DepartmentRoles))
			clause = fmt.Sprintf("(%s OR (department IS NULL AND role = ANY($%d)))", clause, len(args))
		}
		clauses = append(clauses, clause)
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", activeExpr, len(args)))
	}
	return clauses, args
}

func (r *employeeRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Employee, error) {
	if len(ids) == 0 {
		return []domain.Employee{}, nil
	}
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ANY($1::uuid[])`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	found, err := collectEmployees(rows)
	if err != nil {
		return nil, err
	}
	// keep the caller's ordering
	byID := make(map[string]domain.Employee, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}
	result := make([]domain.Employee, 0, len(found))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			result = append(result, e)
		}
	}
	return result, nil
}

// Roster returns every employee, oldest first.
func (r *employeeRepository) Roster(ctx context.Context) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectEmployees(rows)
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		employee   domain.Employee
		role       string
		department *string
		status     *string
		workDays   []string
	)
	if err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&employee.PasswordHash,
		&role,
		&department,
		&employee.Active,
		&status,
		&workDays,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	); err != nil {
		return nil, err
	}
	employee.Role = domain.Role(role)
	if department != nil {
		employee.Department = domain.Department(*department)
	}
	if status != nil {
		employee.Status = domain.EmployeeStatus(*status)
	}
	employee.WorkDays = make([]domain.Weekday, 0, len(workDays))
	for _, d := range workDays {
		employee.WorkDays = append(employee.WorkDays, domain.Weekday(d))
	}
	return &employee, nil
}

func collectEmployees(rows pgx.Rows) ([]domain.Employee, error) {
	defer rows.Close()

	result := []domain.Employee{}
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *employee)
	}
	return result, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func weekdayStrings(days []domain.Weekday) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, string(d))
	}
	return out
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
