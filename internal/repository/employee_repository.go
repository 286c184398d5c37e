package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/travel-desk/itinerary-service/internal/domain"
)

// EmployeeRepository encapsulates the employee directory.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByUserID(ctx context.Context, userID int64) (*domain.Employee, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	LinkUser(ctx context.Context, id, userID int64) error
}

type employeeRepository struct {
	db DBTX
}

// NewEmployeeRepository instantiates repository.
func NewEmployeeRepository(db DBTX) EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, user_id, employee_id, first_name, last_name, email,
               contact_number, designation, band, department, location`

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (user_id, employee_id, first_name, last_name, email,
            contact_number, designation, band, department, location)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		employee.UserID,
		employee.EmployeeID,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.ContactNumber,
		employee.Designation,
		employee.Band,
		employee.Department,
		employee.Location,
	).Scan(&employee.ID)
	return mapWriteError(err)
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Employee, error) {
	return r.fetchSingle(ctx, `SELECT `+employeeColumns+` FROM employees WHERE user_id=$1`, userID)
}

func (r *employeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	return r.fetchSingle(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id=$1`, employeeID)
}

func (r *employeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.db.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *employee)
	}
	return result, rows.Err()
}

func (r *employeeRepository) LinkUser(ctx context.Context, id, userID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE employees SET user_id=$1 WHERE id=$2`, userID, id)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Employee, error) {
	return scanEmployee(r.db.QueryRow(ctx, query, arg))
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var employee domain.Employee
	if err := row.Scan(
		&employee.ID,
		&employee.UserID,
		&employee.EmployeeID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.ContactNumber,
		&employee.Designation,
		&employee.Band,
		&employee.Department,
		&employee.Location,
	); err != nil {
		return nil, err
	}
	return &employee, nil
}
