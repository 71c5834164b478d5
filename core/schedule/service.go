package schedule

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/staff"
)

var (
	// errors
	ErrDayTaken = errors.New("this staff member already has a schedule for this day")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CheckEntryUniqueness(ctx context.Context, staffID string, day Day, excludedID string) error
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		GetEntryByID(ctx context.Context, id string) (Entry, error)
		// QueryEntries lists the entries of one staff member, or all of them when staffID is empty.
		QueryEntries(ctx context.Context, staffID string) ([]Entry, error)
		UpdateEntry(ctx context.Context, e Entry) (Entry, error)
		DeleteEntry(ctx context.Context, id string) error
	}

	StaffGetter interface {
		GetByID(ctx context.Context, id string) (staff.Staff, error)
	}

	Service struct {
		repo     Repository
		staff    StaffGetter
		validate *validator.Validate
	}
)

func NewService(repo Repository, staffSvc StaffGetter, validate *validator.Validate) *Service {
	return &Service{repo: repo, staff: staffSvc, validate: validate}
}

func dayTakenError(err error) error {
	if errors.Is(err, ErrDayTaken) {
		return core.NewValidationError(err, core.FieldError{Field: "day", Error: ErrDayTaken.Error()})
	}
	return err
}

func (svc *Service) Create(ctx context.Context, ne NewEntry) (Entry, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Entry{}, err
	}
	if _, err := svc.staff.GetByID(ctx, ne.StaffID); err != nil {
		if core.IsNotFound(err) {
			return Entry{}, core.NewValidationError(err, core.FieldError{Field: "staffId", Error: "staff member not found"})
		}
		return Entry{}, err
	}
	if err := svc.repo.CheckEntryUniqueness(ctx, ne.StaffID, ne.Day, ""); err != nil {
		return Entry{}, dayTakenError(err)
	}

	now := NowFunc().UTC()
	e := Entry{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ne.apply(&e)

	created, err := svc.repo.CreateEntry(ctx, e)
	if err != nil {
		return Entry{}, dayTakenError(err)
	}
	return created, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, core.NewNotFoundError("schedule", id)
	}
	return svc.repo.GetEntryByID(ctx, id)
}

// ListByStaff returns the week of a staff member, ordered from monday to sunday.
func (svc *Service) ListByStaff(ctx context.Context, staffID string) ([]Entry, error) {
	if staffID != "" {
		if _, err := svc.staff.GetByID(ctx, staffID); err != nil {
			return nil, err
		}
	}
	entries, err := svc.repo.QueryEntries(ctx, staffID)
	if err != nil {
		return nil, err
	}
	SortEntries(entries)
	return entries, nil
}

func (svc *Service) Update(ctx context.Context, orig Entry, ue UpdateEntry) (Entry, error) {
	ne := ue.merge(orig)
	if err := ne.Validate(svc.validate); err != nil {
		return Entry{}, err
	}
	if ne.Day != orig.Day {
		if err := svc.repo.CheckEntryUniqueness(ctx, ne.StaffID, ne.Day, orig.ID); err != nil {
			return Entry{}, dayTakenError(err)
		}
	}

	e := orig
	ne.apply(&e)
	e.UpdatedAt = NowFunc().UTC()

	updated, err := svc.repo.UpdateEntry(ctx, e)
	if err != nil {
		return Entry{}, dayTakenError(err)
	}
	return updated, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEntry(ctx, id)
}

// SortEntries orders by staff member then weekday.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].StaffID != entries[j].StaffID {
			return entries[i].StaffID < entries[j].StaffID
		}
		return DayIndex(entries[i].Day) < DayIndex(entries[j].Day)
	})
}
