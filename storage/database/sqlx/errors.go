package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core/resident"
	"github.com/trezcool/foyer/core/room"
	"github.com/trezcool/foyer/core/schedule"
	"github.com/trezcool/foyer/core/staff"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// uniqueViolations maps the unique constraints and indexes of the schema to their domain error.
var uniqueViolations = map[string]error{
	"rooms_number_key":           room.ErrNumberExists,
	"residents_email_key":        resident.ErrEmailExists,
	"residents_phone_key":        resident.ErrPhoneExists,
	"residents_alt_phone_key":    resident.ErrAltPhoneExists,
	"residents_national_id_key":  resident.ErrNationalIDExists,
	"staff_email_key":            staff.ErrEmailExists,
	"staff_phone_key":            staff.ErrPhoneExists,
	"staff_employee_id_key":      staff.ErrEmployeeIDExists,
	"staff_name_hire_date_key":   staff.ErrNameHireDateExists,
	"schedules_staff_id_day_key": schedule.ErrDayTaken,
}

// translate turns a unique violation raised by a concurrent writer into the same
// domain error the pre-checks return. Other errors are wrapped with msg.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation {
		if domainErr, ok := uniqueViolations[pqErr.Constraint]; ok {
			return domainErr
		}
	}
	return errors.Wrap(err, msg)
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeForeignKeyViolation
}
