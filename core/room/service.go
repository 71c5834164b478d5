package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/foyer/core"
)

var (
	// errors
	ErrNumberExists           = errors.New("a room with this number already exists")
	ErrCapacityExceeded       = errors.New("room capacity exceeded")
	ErrCapacityBelowOccupancy = errors.New("capacity cannot be lower than the current number of occupants")
	ErrGenderMismatch         = errors.New("resident gender is not compatible with the room")
	ErrResidentIDsRequired    = errors.New("residentIds must be a list")
	ErrDuplicateResident      = errors.New("residentIds must not contain duplicates")
)

type Repository interface {
	CheckRoomUniqueness(ctx context.Context, number string, excludedID string) error
	CreateRoom(ctx context.Context, r Room) (Room, error)
	// GetRoomByID returns the Room with its occupants resolved.
	GetRoomByID(ctx context.Context, id string) (Room, error)
	QueryRooms(ctx context.Context, filter QueryFilter) ([]Room, error)
	// FindRoomIDsByNumber returns the ids of the rooms whose number contains `number` (case-insensitive).
	FindRoomIDsByNumber(ctx context.Context, number string) ([]string, error)
	// UpdateRoom fails with ErrCapacityBelowOccupancy if the new capacity cannot hold the current occupants.
	UpdateRoom(ctx context.Context, r Room) (Room, error)
	// DeleteRoom also clears the room link of its former occupants.
	DeleteRoom(ctx context.Context, id string) error
	// FindOccupants returns the summaries of the residents with the given ids; unknown ids are left out.
	FindOccupants(ctx context.Context, residentIDs []string) ([]Occupant, error)
	// AssignOccupants replaces the occupants of the room with exactly residentIDs, atomically.
	// Fails with ErrCapacityExceeded, leaving the room untouched, if they do not fit.
	AssignOccupants(ctx context.Context, roomID string, residentIDs []string) (Room, error)
}

type Service struct {
	repo              Repository
	validate          *validator.Validate
	enforceRoomGender bool
}

func NewService(repo Repository, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{
		repo:              repo,
		validate:          validate,
		enforceRoomGender: conf.Rules.EnforceRoomGender,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, number string, excludedID string) error {
	if err := svc.repo.CheckRoomUniqueness(ctx, number, excludedID); err != nil {
		if errors.Is(err, ErrNumberExists) {
			return core.NewValidationError(err, core.FieldError{Field: "number", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nr NewRoom) (Room, error) {
	if err := validateNewRoom(svc.validate, &nr); err != nil {
		return Room{}, err
	}
	if err := svc.checkUniqueness(ctx, nr.Number, ""); err != nil {
		return Room{}, err
	}

	now := time.Now().UTC()
	r := Room{
		ID:          uuid.New().String(),
		Number:      nr.Number,
		Capacity:    nr.Capacity,
		Gender:      nr.Gender,
		Description: nr.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.Derive()
	return svc.repo.CreateRoom(ctx, r)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Room, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Room{}, core.NewNotFoundError("room", id)
	}
	return svc.repo.GetRoomByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Room, error) {
	if err := filter.Clean(); err != nil {
		return nil, err
	}
	return svc.repo.QueryRooms(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Room, ur UpdateRoom) (Room, error) {
	nr := ur.merge(orig)
	if err := validateNewRoom(svc.validate, &nr); err != nil {
		return Room{}, err
	}
	if nr.Number != orig.Number {
		if err := svc.checkUniqueness(ctx, nr.Number, orig.ID); err != nil {
			return Room{}, err
		}
	}
	if nr.Capacity < len(orig.Occupants) {
		return Room{}, capacityBelowOccupancyError()
	}

	r := orig
	r.Number = nr.Number
	r.Capacity = nr.Capacity
	r.Gender = nr.Gender
	r.Description = nr.Description
	r.UpdatedAt = time.Now().UTC()
	r.Derive()

	updated, err := svc.repo.UpdateRoom(ctx, r)
	if errors.Is(err, ErrCapacityBelowOccupancy) {
		return Room{}, capacityBelowOccupancyError()
	}
	return updated, err
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteRoom(ctx, id)
}

// Assign binds exactly residentIDs to the room, replacing any previous occupants.
// A nil list is rejected while an empty one empties the room.
func (svc *Service) Assign(ctx context.Context, roomID string, residentIDs *[]string) (Room, error) {
	if residentIDs == nil {
		return Room{}, core.NewValidationError(
			ErrResidentIDsRequired,
			core.FieldError{Field: "residentIds", Error: ErrResidentIDsRequired.Error()},
		)
	}
	ids := *residentIDs

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return Room{}, core.NewValidationError(
				err, core.FieldError{Field: "residentIds", Error: fmt.Sprintf("invalid resident id %q", id)},
			)
		}
		if _, ok := seen[id]; ok {
			return Room{}, core.NewValidationError(
				ErrDuplicateResident,
				core.FieldError{Field: "residentIds", Error: ErrDuplicateResident.Error()},
			)
		}
		seen[id] = struct{}{}
	}

	r, err := svc.GetByID(ctx, roomID)
	if err != nil {
		return Room{}, err
	}
	if len(ids) > r.Capacity {
		return Room{}, capacityError("residentIds", r.Capacity)
	}

	occupants, err := svc.repo.FindOccupants(ctx, ids)
	if err != nil {
		return Room{}, err
	}
	if len(occupants) != len(ids) {
		found := make(map[string]struct{}, len(occupants))
		for _, occ := range occupants {
			found[occ.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return Room{}, core.NewNotFoundError("resident", id)
			}
		}
	}

	if svc.enforceRoomGender {
		for _, occ := range occupants {
			if !IsGenderCompatible(r.Gender, occ.Gender) {
				return Room{}, core.NewValidationError(
					ErrGenderMismatch,
					core.FieldError{
						Field: "residentIds",
						Error: fmt.Sprintf("%s %s cannot live in a %s room", occ.FirstName, occ.LastName, r.Gender),
					},
				)
			}
		}
	}

	updated, err := svc.repo.AssignOccupants(ctx, r.ID, ids)
	if errors.Is(err, ErrCapacityExceeded) {
		return Room{}, capacityError("residentIds", r.Capacity)
	}
	return updated, err
}

// CheckPlacement verifies that one more resident of the given gender fits in the room.
// Used when a resident is created or moved with a room link.
func (svc *Service) CheckPlacement(ctx context.Context, roomID, residentID, residentGender string) (Room, error) {
	r, err := svc.GetByID(ctx, roomID)
	if err != nil {
		return Room{}, err
	}
	occupied := len(r.Occupants)
	for _, occ := range r.Occupants {
		if occ.ID == residentID { // already there
			occupied--
			break
		}
	}
	if occupied >= r.Capacity {
		return Room{}, capacityError("roomId", r.Capacity)
	}
	if svc.enforceRoomGender && !IsGenderCompatible(r.Gender, residentGender) {
		return Room{}, core.NewValidationError(
			ErrGenderMismatch, core.FieldError{Field: "roomId", Error: ErrGenderMismatch.Error()},
		)
	}
	return r, nil
}

// FindIDsByNumber is the reverse room lookup used by resident queries.
func (svc *Service) FindIDsByNumber(ctx context.Context, number string) ([]string, error) {
	return svc.repo.FindRoomIDsByNumber(ctx, core.CleanString(number))
}

func capacityError(field string, capacity int) error {
	return core.NewValidationError(
		ErrCapacityExceeded,
		core.FieldError{Field: field, Error: fmt.Sprintf("this room can hold at most %d residents", capacity)},
	)
}

func capacityBelowOccupancyError() error {
	return core.NewValidationError(
		ErrCapacityBelowOccupancy,
		core.FieldError{Field: "capacity", Error: ErrCapacityBelowOccupancy.Error()},
	)
}
