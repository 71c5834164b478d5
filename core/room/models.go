package room

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/foyer/core"
)

type Gender string

const (
	GenderBoys  Gender = "boys"
	GenderGirls Gender = "girls"
	GenderMixed Gender = "mixed"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
)

const (
	MinCapacity = 1
	MaxCapacity = 6
	MinFloor    = 1
	MaxFloor    = 10
)

var numberDigitsRegex = regexp.MustCompile(`\d+`)

// DeriveFloor buckets a room number by hundreds: 1xx -> 1, 2xx -> 2 ... 10xx -> 10.
// Numbers without digits or outside the buckets default to the first floor.
func DeriveFloor(number string) int {
	digits := numberDigitsRegex.FindString(number)
	if digits == "" {
		return MinFloor
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return MinFloor
	}
	if floor := n / 100; floor >= MinFloor && floor <= MaxFloor {
		return floor
	}
	return MinFloor
}

// DeriveStatus: an empty room is available, anything else is occupied.
func DeriveStatus(occupants int) Status {
	if occupants == 0 {
		return StatusAvailable
	}
	return StatusOccupied
}

// IsGenderCompatible reports whether a resident of the given gender ("male" | "female") may live in a room.
func IsGenderCompatible(g Gender, residentGender string) bool {
	switch g {
	case GenderMixed:
		return true
	case GenderBoys:
		return residentGender == "male"
	case GenderGirls:
		return residentGender == "female"
	}
	return false
}

// Occupant is the summary of a resident living in a room.
type Occupant struct {
	ID               string `json:"id" db:"id"`
	Identifier       string `json:"identifier" db:"identifier"`
	FirstName        string `json:"firstName" db:"first_name"`
	LastName         string `json:"lastName" db:"last_name"`
	Gender           string `json:"gender" db:"gender"`
	Type             string `json:"type" db:"type"`
	GenderCompatible bool   `json:"genderCompatible" db:"-"`
}

type Room struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	Floor       int        `json:"floor"`
	Capacity    int        `json:"capacity"`
	Beds        int        `json:"beds"`
	Gender      Gender     `json:"gender"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Occupants   []Occupant `json:"occupants"`
	CreatedAt   time.Time  `json:"createdAt"` // UTC
	UpdatedAt   time.Time  `json:"updatedAt"` // UTC
}

// Derive recomputes every derived field. Must be called after any change to Number, Capacity or Occupants.
func (r *Room) Derive() {
	r.Floor = DeriveFloor(r.Number)
	r.Beds = r.Capacity
	if r.Occupants == nil {
		r.Occupants = []Occupant{}
	}
	for i := range r.Occupants {
		r.Occupants[i].GenderCompatible = IsGenderCompatible(r.Gender, r.Occupants[i].Gender)
	}
	r.Status = DeriveStatus(len(r.Occupants))
}

func (r Room) AvailableBeds() int {
	if free := r.Capacity - len(r.Occupants); free > 0 {
		return free
	}
	return 0
}

// NewRoom contains information needed to create a new Room.
type NewRoom struct {
	Number      string `json:"number" validate:"required,max=20"`
	Capacity    int    `json:"capacity" validate:"required,min=1,max=6"`
	Gender      Gender `json:"gender" validate:"required,oneof=boys girls mixed"`
	Description string `json:"description" validate:"max=500"`
}

func (nr *NewRoom) clean() {
	nr.Number = core.CleanString(nr.Number)
	nr.Description = core.CleanString(nr.Description)
	nr.Gender = Gender(core.CleanString(string(nr.Gender), true /* lower */))
}

// UpdateRoom defines what information may be provided to modify an existing Room.
type UpdateRoom struct {
	Number      *string `json:"number"`
	Capacity    *int    `json:"capacity"`
	Gender      *Gender `json:"gender"`
	Description *string `json:"description"`
}

// merge applies the provided changes on top of the original Room.
func (ur UpdateRoom) merge(orig Room) NewRoom {
	nr := NewRoom{
		Number:      orig.Number,
		Capacity:    orig.Capacity,
		Gender:      orig.Gender,
		Description: orig.Description,
	}
	if ur.Number != nil {
		nr.Number = *ur.Number
	}
	if ur.Capacity != nil {
		nr.Capacity = *ur.Capacity
	}
	if ur.Gender != nil {
		nr.Gender = *ur.Gender
	}
	if ur.Description != nil {
		nr.Description = *ur.Description
	}
	return nr
}

func validateNewRoom(validate *validator.Validate, nr *NewRoom) error {
	nr.clean()
	return validate.Struct(nr)
}

type QueryFilter struct {
	Search string `query:"search"`
	Gender string `query:"gender"`
	Floor  int    `query:"floor"`
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() error {
	qf.Search = core.CleanString(qf.Search)
	qf.Gender = core.CleanString(qf.Gender, true /* lower */)
	qf.Status = core.CleanString(qf.Status, true /* lower */)

	var flds []core.FieldError
	switch Gender(qf.Gender) {
	case "", GenderBoys, GenderGirls, GenderMixed:
	default:
		if qf.Gender == "all" {
			qf.Gender = ""
		} else {
			flds = append(flds, core.FieldError{Field: "gender", Error: "unknown gender " + strconv.Quote(qf.Gender)})
		}
	}
	switch Status(qf.Status) {
	case "", StatusAvailable, StatusOccupied:
	default:
		if qf.Status == "all" {
			qf.Status = ""
		} else {
			flds = append(flds, core.FieldError{Field: "status", Error: "unknown status " + strconv.Quote(qf.Status)})
		}
	}
	if qf.Floor != 0 && (qf.Floor < MinFloor || qf.Floor > MaxFloor) {
		flds = append(flds, core.FieldError{Field: "floor", Error: "floor must be between 1 and 10"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Gender == "" && qf.Floor == 0 && qf.Status == ""
}

// Match reports whether the Room satisfies every provided filter field.
// Search does a case-insensitive match on Number or Description.
func (qf QueryFilter) Match(r Room) bool {
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(r.Number), s) && !strings.Contains(strings.ToLower(r.Description), s) {
			return false
		}
	}
	if qf.Gender != "" && string(r.Gender) != qf.Gender {
		return false
	}
	if qf.Floor != 0 && r.Floor != qf.Floor {
		return false
	}
	if qf.Status != "" && string(DeriveStatus(len(r.Occupants))) != qf.Status {
		return false
	}
	return true
}
