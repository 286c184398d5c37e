package domain

// Employee is the administrative profile, optionally linked to one Identity.
type Employee struct {
	ID            int64
	UserID        *int64
	EmployeeID    string
	FirstName     string
	LastName      string
	Email         string
	ContactNumber *string
	Designation   *string
	Band          *string
	Department    *string
	Location      *string
}
