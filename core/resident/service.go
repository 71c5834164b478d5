package resident

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/room"
)

var (
	// errors
	ErrEmailExists      = errors.New("a resident with this email already exists")
	ErrPhoneExists      = errors.New("a resident with this phone number already exists")
	ErrAltPhoneExists   = errors.New("a resident with this alternate phone number already exists")
	ErrNationalIDExists = errors.New("a resident with this national ID already exists")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CheckResidentUniqueness checks email, phones and national ID against every other resident.
		CheckResidentUniqueness(ctx context.Context, r Resident) error
		// CreateResident links the room, if any, under the room lock.
		// Fails with room.ErrCapacityExceeded if the room is full.
		CreateResident(ctx context.Context, r Resident) (Resident, error)
		GetResidentByID(ctx context.Context, id string) (Resident, error)
		// QueryResidents returns the matching page and the total number of matches.
		QueryResidents(ctx context.Context, filter Filter) ([]Resident, int, error)
		// UpdateResident behaves like CreateResident regarding the room link.
		UpdateResident(ctx context.Context, r Resident) (Resident, error)
		DeleteResident(ctx context.Context, id string) error
	}

	// RoomPlacer checks room links and resolves rooms by number.
	RoomPlacer interface {
		CheckPlacement(ctx context.Context, roomID, residentID, residentGender string) (room.Room, error)
		FindIDsByNumber(ctx context.Context, number string) ([]string, error)
	}

	Service struct {
		repo     Repository
		rooms    RoomPlacer
		ids      *IdentifierGenerator
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	rooms RoomPlacer,
	seq core.Sequencer,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		rooms:    rooms,
		ids:      NewIdentifierGenerator(seq),
		validate: validate,
		logger:   logger,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, r Resident) error {
	if err := svc.repo.CheckResidentUniqueness(ctx, r); err != nil {
		return uniquenessError(err)
	}
	return nil
}

var uniqueFields = []struct {
	err   error
	field string
}{
	{ErrEmailExists, "email"},
	{ErrPhoneExists, "phone"},
	{ErrAltPhoneExists, "altPhone"},
	{ErrNationalIDExists, "nationalId"},
}

// uniquenessError maps the uniqueness sentinels to a field-specific *core.ValidationError.
func uniquenessError(err error) error {
	for _, uf := range uniqueFields {
		if errors.Is(err, uf.err) {
			return core.NewValidationError(err, core.FieldError{Field: uf.field, Error: uf.err.Error()})
		}
	}
	return err
}

func (svc *Service) checkRoom(ctx context.Context, r Resident) (room.Room, error) {
	if !r.RoomID.Valid {
		return room.Room{}, nil
	}
	rm, err := svc.rooms.CheckPlacement(ctx, r.RoomID.String, r.ID, string(r.Gender))
	if core.IsNotFound(err) {
		return room.Room{}, core.NewValidationError(err, core.FieldError{Field: "roomId", Error: "room not found"})
	}
	return rm, err
}

func (svc *Service) save(ctx context.Context, r Resident, create bool) (Resident, error) {
	var (
		saved Resident
		err   error
	)
	if create {
		saved, err = svc.repo.CreateResident(ctx, r)
	} else {
		saved, err = svc.repo.UpdateResident(ctx, r)
	}
	if errors.Is(err, room.ErrCapacityExceeded) {
		return Resident{}, core.NewValidationError(
			err, core.FieldError{Field: "roomId", Error: "this room is full"},
		)
	}
	if err != nil {
		return Resident{}, uniquenessError(err)
	}
	return saved, nil
}

func (svc *Service) Create(ctx context.Context, nr NewResident) (Resident, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Resident{}, err
	}

	now := NowFunc().UTC()
	r := Resident{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	nr.apply(&r)

	if err := svc.checkUniqueness(ctx, r); err != nil {
		return Resident{}, err
	}
	rm, err := svc.checkRoom(ctx, r)
	if err != nil {
		return Resident{}, err
	}
	r.RoomNumber = rm.Number

	if r.Identifier, err = svc.ids.Next(ctx, r.Type, r.Cycle, r.SessionYear, r.ArrivalDate); err != nil {
		return Resident{}, err
	}
	return svc.save(ctx, r, true)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Resident, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Resident{}, core.NewNotFoundError("resident", id)
	}
	return svc.repo.GetResidentByID(ctx, id)
}

// Query resolves the room numbers of Filter.SpecificRoom then runs the filter.
// Malformed room ids are logged and skipped; no matching room yields an empty result.
func (svc *Service) Query(ctx context.Context, filter Filter) ([]Resident, int, error) {
	if filter.Now.IsZero() {
		filter.Now = NowFunc().UTC()
	}
	if filter.SpecificRoom != "" {
		ids, err := svc.rooms.FindIDsByNumber(ctx, filter.SpecificRoom)
		if err != nil {
			return nil, 0, err
		}
		filter.RoomIDs = filter.RoomIDs[:0]
		for _, id := range ids {
			if _, err := uuid.Parse(id); err != nil {
				svc.logger.Warn("skipping malformed room id", err, map[string]interface{}{"roomId": id})
				continue
			}
			filter.RoomIDs = append(filter.RoomIDs, id)
		}
		if len(filter.RoomIDs) == 0 {
			filter.Impossible = true
		}
	}
	if filter.Impossible {
		return []Resident{}, 0, nil
	}
	return svc.repo.QueryResidents(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Resident, ur UpdateResident) (Resident, error) {
	nr := ur.merge(orig)
	if err := nr.Validate(svc.validate); err != nil {
		return Resident{}, err
	}

	r := orig
	nr.apply(&r)
	r.UpdatedAt = NowFunc().UTC()

	if err := svc.checkUniqueness(ctx, r); err != nil {
		return Resident{}, err
	}
	r.RoomNumber = ""
	if r.RoomID.Valid {
		rm, err := svc.checkRoom(ctx, r)
		if err != nil {
			return Resident{}, err
		}
		r.RoomNumber = rm.Number
	}
	return svc.save(ctx, r, false)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteResident(ctx, id)
}
