package staff

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/foyer/core"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Staff struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Position   string    `json:"position"`
	Department string    `json:"department"`
	HireDate   time.Time `json:"hireDate"` // UTC day
	Salary     float64   `json:"salary"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"` // UTC
	UpdatedAt  time.Time `json:"updatedAt"` // UTC
}

// NewStaff contains information needed to create a new Staff member.
// EmployeeID is generated when left empty.
type NewStaff struct {
	EmployeeID string    `json:"employeeId" validate:"omitempty,max=20"`
	FirstName  string    `json:"firstName" validate:"required,max=100"`
	LastName   string    `json:"lastName" validate:"required,max=100"`
	Email      string    `json:"email" validate:"required,email"`
	Phone      string    `json:"phone" validate:"required,phone"`
	Position   string    `json:"position" validate:"required,max=100"`
	Department string    `json:"department" validate:"max=100"`
	HireDate   core.Date `json:"hireDate"`
	Salary     float64   `json:"salary" validate:"min=0"`
	Status     Status    `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (ns *NewStaff) clean() {
	ns.EmployeeID = strings.ToUpper(core.CleanString(ns.EmployeeID))
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Position = core.CleanString(ns.Position)
	ns.Department = core.CleanString(ns.Department)
	ns.Status = Status(core.CleanString(string(ns.Status), true /* lower */))
	if ns.Status == "" {
		ns.Status = StatusActive
	}
}

func (ns *NewStaff) Validate(validate *validator.Validate) error {
	ns.clean()
	if err := validate.Struct(ns); err != nil {
		return err
	}
	if ns.HireDate.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "hireDate", Error: "this field is required"})
	}
	return nil
}

func (ns NewStaff) apply(s *Staff) {
	s.FirstName = ns.FirstName
	s.LastName = ns.LastName
	s.Email = ns.Email
	s.Phone = ns.Phone
	s.Position = ns.Position
	s.Department = ns.Department
	s.HireDate = ns.HireDate.Time
	s.Salary = ns.Salary
	s.Status = ns.Status
}

// UpdateStaff defines what information may be provided to modify an existing Staff member.
type UpdateStaff struct {
	FirstName  *string    `json:"firstName"`
	LastName   *string    `json:"lastName"`
	Email      *string    `json:"email"`
	Phone      *string    `json:"phone"`
	Position   *string    `json:"position"`
	Department *string    `json:"department"`
	HireDate   *core.Date `json:"hireDate"`
	Salary     *float64   `json:"salary"`
	Status     *Status    `json:"status"`
}

func (us UpdateStaff) merge(orig Staff) NewStaff {
	ns := NewStaff{
		EmployeeID: orig.EmployeeID,
		FirstName:  orig.FirstName,
		LastName:   orig.LastName,
		Email:      orig.Email,
		Phone:      orig.Phone,
		Position:   orig.Position,
		Department: orig.Department,
		HireDate:   core.NewDate(orig.HireDate),
		Salary:     orig.Salary,
		Status:     orig.Status,
	}
	for dst, src := range map[*string]*string{
		&ns.FirstName:  us.FirstName,
		&ns.LastName:   us.LastName,
		&ns.Email:      us.Email,
		&ns.Phone:      us.Phone,
		&ns.Position:   us.Position,
		&ns.Department: us.Department,
	} {
		if src != nil {
			*dst = *src
		}
	}
	if us.HireDate != nil {
		ns.HireDate = *us.HireDate
	}
	if us.Salary != nil {
		ns.Salary = *us.Salary
	}
	if us.Status != nil {
		ns.Status = *us.Status
	}
	return ns
}

type QueryFilter struct {
	Search   string `query:"search"`
	Position string `query:"position"`
	Status   string `query:"status"`
}

func (qf *QueryFilter) Clean() error {
	qf.Search = core.CleanString(qf.Search)
	qf.Position = core.CleanString(qf.Position)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	switch Status(qf.Status) {
	case "", StatusActive, StatusInactive:
	case "all":
		qf.Status = ""
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "status must be one of active, inactive"})
	}
	return nil
}

// Match: Search does a case-insensitive match on names, email, phone or employee id.
func (qf QueryFilter) Match(s Staff) bool {
	if qf.Search != "" {
		q := strings.ToLower(qf.Search)
		hit := false
		for _, v := range []string{s.FirstName, s.LastName, s.Email, s.Phone, s.EmployeeID} {
			if strings.Contains(strings.ToLower(v), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if qf.Position != "" && !strings.EqualFold(s.Position, qf.Position) {
		return false
	}
	if qf.Status != "" && string(s.Status) != qf.Status {
		return false
	}
	return true
}
