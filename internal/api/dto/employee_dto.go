package dto

import "github.com/travel-desk/itinerary-service/internal/domain"

// EmployeeSummary is the public view of an employee record.
type EmployeeSummary struct {
	ID            int64   `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Email         string  `json:"email"`
	ContactNumber *string `json:"contact_number"`
	Designation   *string `json:"designation"`
	Band          *string `json:"band"`
	Department    *string `json:"department"`
	Location      *string `json:"location"`
}

// NewEmployeeSummary maps an employee; nil stays nil.
func NewEmployeeSummary(employee *domain.Employee) *EmployeeSummary {
	if employee == nil {
		return nil
	}
	return &EmployeeSummary{
		ID:            employee.ID,
		EmployeeID:    employee.EmployeeID,
		FirstName:     employee.FirstName,
		LastName:      employee.LastName,
		Email:         employee.Email,
		ContactNumber: employee.ContactNumber,
		Designation:   employee.Designation,
		Band:          employee.Band,
		Department:    employee.Department,
		Location:      employee.Location,
	}
}
