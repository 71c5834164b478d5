package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/staff"
)

var staffColumns = []string{
	"id", "employee_id", "first_name", "last_name", "email", "phone", "position", "department",
	"hire_date", "salary", "status", "created_at", "updated_at",
}

type staffRow struct {
	ID         string    `db:"id"`
	EmployeeID string    `db:"employee_id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Email      string    `db:"email"`
	Phone      string    `db:"phone"`
	Position   string    `db:"position"`
	Department string    `db:"department"`
	HireDate   time.Time `db:"hire_date"`
	Salary     float64   `db:"salary"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row staffRow) toStaff() staff.Staff {
	return staff.Staff{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		Email:      row.Email,
		Phone:      row.Phone,
		Position:   row.Position,
		Department: row.Department,
		HireDate:   core.NewDate(row.HireDate).Time,
		Salary:     row.Salary,
		Status:     staff.Status(row.Status),
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func staffValues(s staff.Staff) map[string]interface{} {
	return map[string]interface{}{
		"first_name": s.FirstName,
		"last_name":  s.LastName,
		"email":      s.Email,
		"phone":      s.Phone,
		"position":   s.Position,
		"department": s.Department,
		"hire_date":  s.HireDate,
		"salary":     s.Salary,
		"status":     string(s.Status),
		"updated_at": s.UpdatedAt,
	}
}

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *sqlx.DB) staff.Repository {
	return &staffRepository{db: db}
}

func (repo *staffRepository) CheckStaffUniqueness(ctx context.Context, s staff.Staff) error {
	or := sq.Or{
		sq.Expr("LOWER(email) = LOWER(?)", s.Email),
		sq.Eq{"phone": s.Phone},
		sq.Expr("(LOWER(first_name), LOWER(last_name), hire_date) = (LOWER(?), LOWER(?), ?)", s.FirstName, s.LastName, s.HireDate),
	}
	if s.EmployeeID != "" {
		or = append(or, sq.Eq{"employee_id": s.EmployeeID})
	}

	var rows []staffRow
	stmt := psql.Select(staffColumns...).From("staff").Where(sq.And{sq.NotEq{"id": s.ID}, or})
	if err := selectx(ctx, repo.db, &rows, stmt); err != nil {
		return errors.Wrap(err, "checking staff uniqueness")
	}
	for _, row := range rows {
		other := row.toStaff()
		switch {
		case strings.EqualFold(other.Email, s.Email):
			return staff.ErrEmailExists
		case other.Phone == s.Phone:
			return staff.ErrPhoneExists
		case s.EmployeeID != "" && other.EmployeeID == s.EmployeeID:
			return staff.ErrEmployeeIDExists
		default:
			return staff.ErrNameHireDateExists
		}
	}
	return nil
}

func (repo *staffRepository) EmployeeIDExists(ctx context.Context, employeeID string) (bool, error) {
	var found []int
	stmt := psql.Select("1").From("staff").Where(sq.Eq{"employee_id": employeeID}).Limit(1)
	if err := selectx(ctx, repo.db, &found, stmt); err != nil {
		return false, errors.Wrap(err, "checking employee id")
	}
	return len(found) > 0, nil
}

func getStaff(ctx context.Context, q queryer, id string) (staff.Staff, error) {
	var row staffRow
	err := getx(ctx, q, &row, psql.Select(staffColumns...).From("staff").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return staff.Staff{}, core.NewNotFoundError("staff", id)
	}
	if err != nil {
		return staff.Staff{}, errors.Wrap(err, "selecting staff")
	}
	return row.toStaff(), nil
}

func (repo *staffRepository) CreateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	vals := staffValues(s)
	vals["id"] = s.ID
	vals["employee_id"] = s.EmployeeID
	vals["created_at"] = s.CreatedAt
	if _, err := execx(ctx, repo.db, psql.Insert("staff").SetMap(vals)); err != nil {
		return staff.Staff{}, translate(err, "inserting staff")
	}
	return getStaff(ctx, repo.db, s.ID)
}

func (repo *staffRepository) GetStaffByID(ctx context.Context, id string) (staff.Staff, error) {
	return getStaff(ctx, repo.db, id)
}

func (repo *staffRepository) QueryStaff(ctx context.Context, filter staff.QueryFilter) ([]staff.Staff, error) {
	var rows []staffRow
	stmt := psql.Select(staffColumns...).From("staff").Where(staffPredicate(filter)).OrderBy("created_at DESC", "id")
	if err := selectx(ctx, repo.db, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "selecting staff")
	}
	members := make([]staff.Staff, len(rows))
	for i, row := range rows {
		members[i] = row.toStaff()
	}
	return members, nil
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	res, err := execx(ctx, repo.db, psql.Update("staff").SetMap(staffValues(s)).Where(sq.Eq{"id": s.ID}))
	if err != nil {
		return staff.Staff{}, translate(err, "updating staff")
	}
	ok, err := affectedOne(res)
	if err != nil {
		return staff.Staff{}, err
	}
	if !ok {
		return staff.Staff{}, core.NewNotFoundError("staff", s.ID)
	}
	return getStaff(ctx, repo.db, s.ID)
}

// DeleteStaff relies on ON DELETE CASCADE to drop the schedule entries.
func (repo *staffRepository) DeleteStaff(ctx context.Context, id string) error {
	res, err := execx(ctx, repo.db, psql.Delete("staff").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewNotFoundError("staff", id)
	}
	return nil
}
