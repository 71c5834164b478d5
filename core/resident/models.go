package resident

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/foyer/core"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Type string

const (
	TypeInternal Type = "internal"
	TypeExternal Type = "external"
)

// Cycle is the intake session of an internal resident.
type Cycle string

const (
	CycleSep      Cycle = "sep"
	CycleNov      Cycle = "nov"
	CycleFev      Cycle = "fev"
	CycleExternal Cycle = "external"
)

type Resident struct {
	ID            string      `json:"id"`
	Identifier    string      `json:"identifier"`
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	AltPhone      string      `json:"altPhone"`
	NationalID    string      `json:"nationalId"`
	Gender        Gender      `json:"gender"`
	Type          Type        `json:"type"`
	Cycle         Cycle       `json:"cycle"`
	SessionYear   string      `json:"sessionYear"`
	CompanyName   string      `json:"companyName"`
	ArrivalDate   time.Time   `json:"arrivalDate"`   // UTC day
	DepartureDate null.Time   `json:"departureDate"` // UTC day
	RoomID        null.String `json:"roomId"`
	RoomNumber    string      `json:"roomNumber,omitempty"`
	Payment       Payment     `json:"payment"`
	TotalAmount   float64     `json:"totalAmount"`
	CreatedAt     time.Time   `json:"createdAt"` // UTC
	UpdatedAt     time.Time   `json:"updatedAt"` // UTC
}

// Derive recomputes the derived fields; called explicitly before every save.
func (r *Resident) Derive() {
	if r.Type == TypeExternal {
		r.Cycle = CycleExternal
	}
	r.Payment.normalize()
	r.TotalAmount = r.Payment.Total(r.Type)
}

// IsActive reports whether the resident is in residence on the day of `now`:
// arrived on or before that day and leaving on or after it.
// Without a departure date the stay has no known end and is not active.
func (r Resident) IsActive(now time.Time) bool {
	today := core.NewDate(now).Time
	if r.ArrivalDate.After(today) || !r.DepartureDate.Valid {
		return false
	}
	return !r.DepartureDate.Time.Before(today)
}

// IsInactive reports whether the resident has not arrived yet or has left before the day of `now`.
// A resident without a departure date who already arrived is neither active nor inactive.
func (r Resident) IsInactive(now time.Time) bool {
	today := core.NewDate(now).Time
	if r.ArrivalDate.After(today) {
		return true
	}
	return r.DepartureDate.Valid && r.DepartureDate.Time.Before(today)
}

func (r Resident) FullName() string {
	return r.FirstName + " " + r.LastName
}

// NewResident contains information needed to create a new Resident.
type NewResident struct {
	FirstName     string    `json:"firstName" validate:"required,max=100"`
	LastName      string    `json:"lastName" validate:"required,max=100"`
	Email         string    `json:"email" validate:"required,email"`
	Phone         string    `json:"phone" validate:"omitempty,phone"`
	AltPhone      string    `json:"altPhone" validate:"omitempty,phone"`
	NationalID    string    `json:"nationalId" validate:"omitempty,nationalid"`
	Gender        Gender    `json:"gender" validate:"required,oneof=male female"`
	Type          Type      `json:"type" validate:"required,oneof=internal external"`
	Cycle         Cycle     `json:"cycle" validate:"omitempty,oneof=sep nov fev external"`
	SessionYear   string    `json:"sessionYear" validate:"omitempty,year"`
	CompanyName   string    `json:"companyName" validate:"max=200"`
	ArrivalDate   core.Date `json:"arrivalDate"`
	DepartureDate core.Date `json:"departureDate"`
	RoomID        string    `json:"roomId" validate:"omitempty,uuid"`
	Payment       Payment   `json:"payment"`
}

func (nr *NewResident) clean() {
	nr.FirstName = core.CleanString(nr.FirstName)
	nr.LastName = core.CleanString(nr.LastName)
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	nr.Phone = core.CleanString(nr.Phone)
	nr.AltPhone = core.CleanString(nr.AltPhone)
	nr.NationalID = core.CleanString(nr.NationalID)
	nr.Gender = Gender(core.CleanString(string(nr.Gender), true /* lower */))
	nr.Type = Type(core.CleanString(string(nr.Type), true /* lower */))
	nr.Cycle = Cycle(core.CleanString(string(nr.Cycle), true /* lower */))
	nr.SessionYear = core.CleanString(nr.SessionYear)
	nr.CompanyName = core.CleanString(nr.CompanyName)
	nr.RoomID = core.CleanString(nr.RoomID, true /* lower */)
	nr.Payment.normalize()

	if nr.Type == TypeExternal {
		nr.Cycle = CycleExternal
		if nr.SessionYear == "" && !nr.ArrivalDate.IsZero() {
			nr.SessionYear = strconv.Itoa(nr.ArrivalDate.Year())
		}
	}
}

// Validate cleans the input, then checks its shape and the cross-field rules.
func (nr *NewResident) Validate(validate *validator.Validate) error {
	nr.clean()
	if err := validate.Struct(nr); err != nil {
		return err
	}

	var flds []core.FieldError
	if nr.ArrivalDate.IsZero() {
		flds = append(flds, core.FieldError{Field: "arrivalDate", Error: "this field is required"})
	} else if !nr.DepartureDate.IsZero() && !nr.DepartureDate.After(nr.ArrivalDate.Time) {
		flds = append(flds, core.FieldError{Field: "departureDate", Error: "departure date must be after the arrival date"})
	}
	if nr.Type == TypeInternal {
		switch nr.Cycle {
		case CycleSep, CycleNov, CycleFev:
		default:
			flds = append(flds, core.FieldError{Field: "cycle", Error: "cycle must be one of sep, nov or fev for internal residents"})
		}
		if nr.SessionYear == "" {
			flds = append(flds, core.FieldError{Field: "sessionYear", Error: "this field is required"})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// UpdateResident defines what information may be provided to modify an existing Resident.
// An empty RoomID unlinks the resident from its room; an empty DepartureDate clears it.
type UpdateResident struct {
	FirstName     *string    `json:"firstName"`
	LastName      *string    `json:"lastName"`
	Email         *string    `json:"email"`
	Phone         *string    `json:"phone"`
	AltPhone      *string    `json:"altPhone"`
	NationalID    *string    `json:"nationalId"`
	Gender        *Gender    `json:"gender"`
	Type          *Type      `json:"type"`
	Cycle         *Cycle     `json:"cycle"`
	SessionYear   *string    `json:"sessionYear"`
	CompanyName   *string    `json:"companyName"`
	ArrivalDate   *core.Date `json:"arrivalDate"`
	DepartureDate *core.Date `json:"departureDate"`
	RoomID        *string    `json:"roomId"`
	Payment       *Payment   `json:"payment"`
}

// merge applies the provided changes on top of the original Resident.
func (ur UpdateResident) merge(orig Resident) NewResident {
	nr := NewResident{
		FirstName:   orig.FirstName,
		LastName:    orig.LastName,
		Email:       orig.Email,
		Phone:       orig.Phone,
		AltPhone:    orig.AltPhone,
		NationalID:  orig.NationalID,
		Gender:      orig.Gender,
		Type:        orig.Type,
		Cycle:       orig.Cycle,
		SessionYear: orig.SessionYear,
		CompanyName: orig.CompanyName,
		ArrivalDate: core.NewDate(orig.ArrivalDate),
		RoomID:      orig.RoomID.String,
		Payment:     orig.Payment,
	}
	if orig.DepartureDate.Valid {
		nr.DepartureDate = core.NewDate(orig.DepartureDate.Time)
	}

	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&nr.FirstName, ur.FirstName)
	setStr(&nr.LastName, ur.LastName)
	setStr(&nr.Email, ur.Email)
	setStr(&nr.Phone, ur.Phone)
	setStr(&nr.AltPhone, ur.AltPhone)
	setStr(&nr.NationalID, ur.NationalID)
	setStr(&nr.SessionYear, ur.SessionYear)
	setStr(&nr.CompanyName, ur.CompanyName)
	setStr(&nr.RoomID, ur.RoomID)
	if ur.Gender != nil {
		nr.Gender = *ur.Gender
	}
	if ur.Type != nil {
		nr.Type = *ur.Type
		if nr.Type == TypeInternal && orig.Type == TypeExternal && ur.Cycle == nil {
			nr.Cycle = ""
		}
	}
	if ur.Cycle != nil {
		nr.Cycle = *ur.Cycle
	}
	if ur.ArrivalDate != nil {
		nr.ArrivalDate = *ur.ArrivalDate
	}
	if ur.DepartureDate != nil {
		nr.DepartureDate = *ur.DepartureDate
	}
	if ur.Payment != nil {
		nr.Payment = *ur.Payment
	}
	return nr
}

// apply copies a validated NewResident onto r and recomputes the derived fields.
func (nr NewResident) apply(r *Resident) {
	r.FirstName = nr.FirstName
	r.LastName = nr.LastName
	r.Email = nr.Email
	r.Phone = nr.Phone
	r.AltPhone = nr.AltPhone
	r.NationalID = nr.NationalID
	r.Gender = nr.Gender
	r.Type = nr.Type
	r.Cycle = nr.Cycle
	r.SessionYear = nr.SessionYear
	r.CompanyName = nr.CompanyName
	r.ArrivalDate = nr.ArrivalDate.Time
	r.DepartureDate = null.NewTime(nr.DepartureDate.Time, !nr.DepartureDate.IsZero())
	r.RoomID = null.NewString(nr.RoomID, nr.RoomID != "")
	r.Payment = nr.Payment
	r.Derive()
}
