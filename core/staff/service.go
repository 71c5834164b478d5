package staff

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/foyer/core"
)

var (
	// errors
	ErrEmailExists        = errors.New("a staff member with this email already exists")
	ErrPhoneExists        = errors.New("a staff member with this phone number already exists")
	ErrEmployeeIDExists   = errors.New("a staff member with this employee id already exists")
	ErrNameHireDateExists = errors.New("a staff member with this name was already hired on this date")

	NowFunc = time.Now // mockable

	uniqueFields = []struct {
		err   error
		field string
	}{
		{ErrEmailExists, "email"},
		{ErrPhoneExists, "phone"},
		{ErrEmployeeIDExists, "employeeId"},
		{ErrNameHireDateExists, "firstName"},
	}
)

type (
	Repository interface {
		// CheckStaffUniqueness checks email, phone, employee id and (first name, last name, hire date).
		CheckStaffUniqueness(ctx context.Context, s Staff) error
		EmployeeIDExists(ctx context.Context, employeeID string) (bool, error)
		CreateStaff(ctx context.Context, s Staff) (Staff, error)
		GetStaffByID(ctx context.Context, id string) (Staff, error)
		QueryStaff(ctx context.Context, filter QueryFilter) ([]Staff, error)
		UpdateStaff(ctx context.Context, s Staff) (Staff, error)
		// DeleteStaff also deletes the staff member's schedule.
		DeleteStaff(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func uniquenessError(err error) error {
	for _, uf := range uniqueFields {
		if errors.Is(err, uf.err) {
			return core.NewValidationError(err, core.FieldError{Field: uf.field, Error: uf.err.Error()})
		}
	}
	return err
}

func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Staff{}, err
	}

	now := NowFunc().UTC()
	s := Staff{
		ID:         uuid.New().String(),
		EmployeeID: ns.EmployeeID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ns.apply(&s)

	if err := svc.repo.CheckStaffUniqueness(ctx, s); err != nil {
		return Staff{}, uniquenessError(err)
	}
	if s.EmployeeID == "" {
		id, err := generateEmployeeID(ctx, now.Year(), svc.repo.EmployeeIDExists)
		if err != nil {
			return Staff{}, err
		}
		s.EmployeeID = id
	}

	created, err := svc.repo.CreateStaff(ctx, s)
	if err != nil {
		return Staff{}, uniquenessError(err)
	}
	return created, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Staff, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Staff{}, core.NewNotFoundError("staff", id)
	}
	return svc.repo.GetStaffByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Staff, error) {
	if err := filter.Clean(); err != nil {
		return nil, err
	}
	return svc.repo.QueryStaff(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Staff, us UpdateStaff) (Staff, error) {
	ns := us.merge(orig)
	if err := ns.Validate(svc.validate); err != nil {
		return Staff{}, err
	}

	s := orig
	ns.apply(&s)
	s.UpdatedAt = NowFunc().UTC()

	if err := svc.repo.CheckStaffUniqueness(ctx, s); err != nil {
		return Staff{}, uniquenessError(err)
	}
	updated, err := svc.repo.UpdateStaff(ctx, s)
	if err != nil {
		return Staff{}, uniquenessError(err)
	}
	return updated, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStaff(ctx, id)
}
