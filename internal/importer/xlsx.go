// Package importer reads employee master data from spreadsheets.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/travel-desk/itinerary-service/internal/domain"
)

const maxImportRows = 5000

var (
	ErrNoData      = errors.New("sheet has no data rows (first row is the header)")
	ErrTooManyRows = fmt.Errorf("sheet exceeds %d data rows", maxImportRows)
	ErrBadHeader   = errors.New("header must contain employee_id, first_name and last_name columns")
)

// RowError describes a data row that could not be turned into an employee.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

var columnAliases = map[string]string{
	"employee_id":    "employee_id",
	"employee id":    "employee_id",
	"emp_id":         "employee_id",
	"first_name":     "first_name",
	"first name":     "first_name",
	"last_name":      "last_name",
	"last name":      "last_name",
	"email":          "email",
	"contact_number": "contact_number",
	"contact number": "contact_number",
	"phone":          "contact_number",
	"designation":    "designation",
	"band":           "band",
	"department":     "department",
	"location":       "location",
}

// ParseEmployeeSheet reads the first sheet of an xlsx workbook. Column order
// is taken from the header row; blank rows are skipped.
func ParseEmployeeSheet(reader io.Reader) ([]domain.Employee, []RowError, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoData
	}
	if len(rows)-1 > maxImportRows {
		return nil, nil, ErrTooManyRows
	}

	columns := parseHeaderIndex(rows[0])
	for _, required := range []string{"employee_id", "first_name", "last_name"} {
		if _, ok := columns[required]; !ok {
			return nil, nil, ErrBadHeader
		}
	}

	var (
		employees []domain.Employee
		problems  []RowError
	)
	for i := 1; i < len(rows); i++ {
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(rows[i]) {
				return ""
			}
			return strings.TrimSpace(rows[i][idx])
		}

		employee := domain.Employee{
			EmployeeID:    cell("employee_id"),
			FirstName:     cell("first_name"),
			LastName:      cell("last_name"),
			Email:         cell("email"),
			ContactNumber: optional(cell("contact_number")),
			Designation:   optional(cell("designation")),
			Band:          optional(cell("band")),
			Department:    optional(cell("department")),
			Location:      optional(cell("location")),
		}
		if isBlank(employee) {
			continue
		}

		var missing []string
		if employee.EmployeeID == "" {
			missing = append(missing, "employee_id")
		}
		if employee.FirstName == "" {
			missing = append(missing, "first_name")
		}
		if employee.LastName == "" {
			missing = append(missing, "last_name")
		}
		if len(missing) > 0 {
			problems = append(problems, RowError{Row: i + 1, Reason: "missing " + strings.Join(missing, ", ")})
			continue
		}
		employees = append(employees, employee)
	}

	if len(employees) == 0 && len(problems) == 0 {
		return nil, nil, ErrNoData
	}
	return employees, problems, nil
}

func parseHeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func isBlank(e domain.Employee) bool {
	return e.EmployeeID == "" && e.FirstName == "" && e.LastName == "" && e.Email == "" &&
		e.ContactNumber == nil && e.Designation == nil && e.Band == nil &&
		e.Department == nil && e.Location == nil
}
