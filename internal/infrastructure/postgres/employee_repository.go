package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mutugading/goapps-backend/services/hr/internal/domain/employee"
)

// Unique indexes on mst_employee.
const (
	constraintEmployeeCode       = "uq_employee_code"
	constraintEmployeeNationalID = "uq_employee_national_id"
)

const employeeColumns = `employee_id, employee_code, national_id, first_name, last_name,
	email, phone, position, department, hire_date, salary_cents, status, photo_url,
	created_at, created_by, updated_at, updated_by, deleted_at, deleted_by`

// EmployeeRepository implements employee.Repository using PostgreSQL.
type EmployeeRepository struct {
	db *DB
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(db *DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Verify interface implementation at compile time.
var _ employee.Repository = (*EmployeeRepository)(nil)

// Create persists a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	query := `
		INSERT INTO mst_employee (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID(),
		e.Code().String(),
		e.NationalID().String(),
		e.FirstName(),
		e.LastName(),
		nullString(e.Email()),
		nullString(e.Phone()),
		nullString(e.Position()),
		e.Department().String(),
		e.HireDate(),
		e.SalaryCents(),
		e.Status().String(),
		nullString(e.PhotoURL()),
		e.CreatedAt(),
		e.CreatedBy(),
		e.UpdatedAt(),
		e.UpdatedBy(),
		e.DeletedAt(),
		e.DeletedBy(),
	)
	if err != nil {
		return mapWriteError(err, "create employee")
	}
	return nil
}

// GetByID retrieves a non-deleted employee by id.
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	return r.getOne(ctx, `employee_id = $1`, id)
}

// GetByCode retrieves a non-deleted employee by code.
func (r *EmployeeRepository) GetByCode(ctx context.Context, code employee.Code) (*employee.Employee, error) {
	return r.getOne(ctx, `employee_code = $1`, code.String())
}

// GetByNationalID retrieves a non-deleted employee by national id.
func (r *EmployeeRepository) GetByNationalID(ctx context.Context, nationalID employee.NationalID) (*employee.Employee, error) {
	return r.getOne(ctx, `national_id = $1`, nationalID.String())
}

func (r *EmployeeRepository) getOne(ctx context.Context, predicate string, arg any) (*employee.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM mst_employee WHERE ` + predicate + ` AND deleted_at IS NULL`

	var dto employeeDTO
	if err := dto.scan(r.db.QueryRowContext(ctx, query, arg)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, employee.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return dto.ToEntity()
}

// List retrieves employees with filtering, searching and pagination.
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, int64, error) {
	filter.Validate()

	conditions := []string{"deleted_at IS NULL"}
	var args []any
	argIndex := 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(employee_code ILIKE $%d OR national_id ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d "+
				"OR (first_name || ' ' || last_name) ILIKE $%d OR email ILIKE $%d OR position ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex, argIndex, argIndex, argIndex))
		args = append(args, "%"+escapeLike(search)+"%")
		argIndex++
	}

	if filter.Department != nil {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argIndex))
		args = append(args, filter.Department.String())
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status.String())
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM mst_employee " + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM mst_employee
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, orderBy(filter.SortBy, filter.SortOrder), argIndex, argIndex+1)
	args = append(args, filter.PageSize, filter.Offset())

	employees, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListAll retrieves every matching employee ordered by code.
func (r *EmployeeRepository) ListAll(ctx context.Context, filter employee.ExportFilter) ([]*employee.Employee, error) {
	conditions := []string{"deleted_at IS NULL"}
	var args []any
	argIndex := 1

	if len(filter.Departments) > 0 {
		values := make([]string, len(filter.Departments))
		for i, d := range filter.Departments {
			values[i] = d.String()
		}
		conditions = append(conditions, fmt.Sprintf("department = ANY($%d::text[])", argIndex))
		args = append(args, pq.Array(values))
		argIndex++
	}

	if len(filter.Statuses) > 0 {
		values := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			values[i] = s.String()
		}
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d::text[])", argIndex))
		args = append(args, pq.Array(values))
	}

	query := `SELECT ` + employeeColumns + ` FROM mst_employee WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY employee_code ASC`

	return r.query(ctx, query, args...)
}

func (r *EmployeeRepository) query(ctx context.Context, query string, args ...any) ([]*employee.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var employees []*employee.Employee
	for rows.Next() {
		var dto employeeDTO
		if err := dto.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		e, err := dto.ToEntity()
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

// Update persists changes to an existing employee.
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) error {
	query := `
		UPDATE mst_employee
		SET national_id = $2,
		    first_name = $3,
		    last_name = $4,
		    email = $5,
		    phone = $6,
		    position = $7,
		    department = $8,
		    hire_date = $9,
		    salary_cents = $10,
		    status = $11,
		    photo_url = $12,
		    updated_at = $13,
		    updated_by = $14
		WHERE employee_id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		e.ID(),
		e.NationalID().String(),
		e.FirstName(),
		e.LastName(),
		nullString(e.Email()),
		nullString(e.Phone()),
		nullString(e.Position()),
		e.Department().String(),
		e.HireDate(),
		e.SalaryCents(),
		e.Status().String(),
		nullString(e.PhotoURL()),
		e.UpdatedAt(),
		e.UpdatedBy(),
	)
	if err != nil {
		return mapWriteError(err, "update employee")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return employee.ErrNotFound
	}
	return nil
}

// SoftDelete marks an employee as deleted.
func (r *EmployeeRepository) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	var affected int
	if err := r.db.QueryRowContext(ctx,
		`SELECT fn_soft_delete_employee($1, $2)`, id, deletedBy,
	).Scan(&affected); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if affected == 0 {
		return employee.ErrNotFound
	}
	return nil
}

// ExistsByCode checks if a non-deleted employee uses the code.
func (r *EmployeeRepository) ExistsByCode(ctx context.Context, code employee.Code) (bool, error) {
	return r.exists(ctx, `employee_code = $1`, code.String())
}

// ExistsByNationalID checks if a non-deleted employee holds the national id.
func (r *EmployeeRepository) ExistsByNationalID(ctx context.Context, nationalID employee.NationalID) (bool, error) {
	return r.exists(ctx, `national_id = $1`, nationalID.String())
}

// ExistsByID checks if a non-deleted employee has the id.
func (r *EmployeeRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `employee_id = $1`, id)
}

func (r *EmployeeRepository) exists(ctx context.Context, predicate string, arg any) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM mst_employee WHERE ` + predicate + ` AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee existence: %w", err)
	}
	return exists, nil
}

// HeadcountByDepartment returns per-department counts by status.
func (r *EmployeeRepository) HeadcountByDepartment(ctx context.Context) ([]employee.DepartmentHeadcount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT department, active, on_leave, terminated FROM fn_employee_headcount()`)
	if err != nil {
		return nil, fmt.Errorf("failed to query headcount: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []employee.DepartmentHeadcount
	for rows.Next() {
		var (
			department string
			row        employee.DepartmentHeadcount
		)
		if err := rows.Scan(&department, &row.Active, &row.OnLeave, &row.Terminated); err != nil {
			return nil, fmt.Errorf("failed to scan headcount: %w", err)
		}
		row.Department = employee.Department(department)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate headcount: %w", err)
	}
	return out, nil
}

// =============================================================================
// Helpers
// =============================================================================

// orderBy builds a whitelisted ORDER BY clause with employee_code as tie-breaker.
func orderBy(sortBy, sortOrder string) string {
	direction := "ASC"
	if sortOrder == "desc" {
		direction = "DESC"
	}

	switch sortBy {
	case employee.SortByName:
		return "last_name " + direction + ", first_name " + direction + ", employee_code ASC"
	case employee.SortByHireDate:
		return "hire_date " + direction + ", employee_code ASC"
	case employee.SortByCreatedAt:
		return "created_at " + direction + ", employee_code ASC"
	default:
		return "employee_code " + direction
	}
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// mapWriteError translates unique violations into domain errors.
func mapWriteError(err error, op string) error {
	if constraint, ok := uniqueConstraint(err); ok {
		if constraint == constraintEmployeeNationalID {
			return employee.ErrNationalIDTaken
		}
		return employee.ErrAlreadyExists
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// =============================================================================
// DTO
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

// employeeDTO is the database representation of an employee.
type employeeDTO struct {
	ID          uuid.UUID
	Code        string
	NationalID  string
	FirstName   string
	LastName    string
	Email       sql.NullString
	Phone       sql.NullString
	Position    sql.NullString
	Department  string
	HireDate    time.Time
	SalaryCents int64
	Status      string
	PhotoURL    sql.NullString
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   sql.NullTime
	UpdatedBy   sql.NullString
	DeletedAt   sql.NullTime
	DeletedBy   sql.NullString
}

func (d *employeeDTO) scan(row rowScanner) error {
	return row.Scan(
		&d.ID, &d.Code, &d.NationalID, &d.FirstName, &d.LastName,
		&d.Email, &d.Phone, &d.Position, &d.Department, &d.HireDate, &d.SalaryCents,
		&d.Status, &d.PhotoURL,
		&d.CreatedAt, &d.CreatedBy, &d.UpdatedAt, &d.UpdatedBy, &d.DeletedAt, &d.DeletedBy,
	)
}

// ToEntity converts the DTO to a domain entity.
func (d *employeeDTO) ToEntity() (*employee.Employee, error) {
	code, err := employee.NewCode(d.Code)
	if err != nil {
		return nil, fmt.Errorf("stored employee %s has invalid code: %w", d.ID, err)
	}
	nationalID, err := employee.NewNationalID(d.NationalID)
	if err != nil {
		return nil, fmt.Errorf("stored employee %s has invalid national id: %w", d.ID, err)
	}

	details := employee.Details{
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email.String,
		Phone:       d.Phone.String,
		Position:    d.Position.String,
		Department:  employee.Department(d.Department),
		HireDate:    d.HireDate.UTC(),
		SalaryCents: d.SalaryCents,
	}

	var updatedAt, deletedAt *time.Time
	var updatedBy, deletedBy *string
	if d.UpdatedAt.Valid {
		updatedAt = &d.UpdatedAt.Time
	}
	if d.UpdatedBy.Valid {
		updatedBy = &d.UpdatedBy.String
	}
	if d.DeletedAt.Valid {
		deletedAt = &d.DeletedAt.Time
	}
	if d.DeletedBy.Valid {
		deletedBy = &d.DeletedBy.String
	}

	return employee.ReconstructEmployee(
		d.ID,
		code,
		nationalID,
		details,
		employee.Status(d.Status),
		d.PhotoURL.String,
		d.CreatedAt,
		d.CreatedBy,
		updatedAt,
		updatedBy,
		deletedAt,
		deletedBy,
	), nil
}
