package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/foyer/core"
)

type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days in week order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

const MaxShiftHours = 12

// DayIndex returns the position of d in the week (monday = 0), -1 if unknown.
func DayIndex(d Day) int {
	for i, day := range Days {
		if day == d {
			return i
		}
	}
	return -1
}

// Entry is the shift of one staff member on one weekday.
type Entry struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staffId"`
	Day       Day       `json:"day"`
	DayOff    bool      `json:"dayOff"`
	StartHour null.Int  `json:"startHour"`
	EndHour   null.Int  `json:"endHour"`
	Tasks     []string  `json:"tasks"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// NewEntry contains information needed to create a new schedule Entry.
type NewEntry struct {
	StaffID   string   `json:"staffId" validate:"required,uuid"`
	Day       Day      `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	DayOff    bool     `json:"dayOff"`
	StartHour *int     `json:"startHour" validate:"omitempty,min=0,max=23"`
	EndHour   *int     `json:"endHour" validate:"omitempty,min=0,max=23"`
	Tasks     []string `json:"tasks" validate:"dive,max=200"`
	Notes     string   `json:"notes" validate:"max=1000"`
}

func (ne *NewEntry) clean() {
	ne.StaffID = core.CleanString(ne.StaffID, true /* lower */)
	ne.Day = Day(core.CleanString(string(ne.Day), true /* lower */))
	ne.Notes = core.CleanString(ne.Notes)
	tasks := make([]string, 0, len(ne.Tasks))
	for _, t := range ne.Tasks {
		if t = core.CleanString(t); t != "" {
			tasks = append(tasks, t)
		}
	}
	ne.Tasks = tasks
}

// Validate checks the shape, then the shift rules: a day off has no hours nor tasks,
// a worked day has both hours with end > start and at most MaxShiftHours.
func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.clean()
	if err := validate.Struct(ne); err != nil {
		return err
	}

	var flds []core.FieldError
	if ne.DayOff {
		if ne.StartHour != nil || ne.EndHour != nil {
			flds = append(flds, core.FieldError{Field: "startHour", Error: "a day off cannot have working hours"})
		}
		if len(ne.Tasks) > 0 {
			flds = append(flds, core.FieldError{Field: "tasks", Error: "a day off cannot have tasks"})
		}
	} else {
		switch {
		case ne.StartHour == nil:
			flds = append(flds, core.FieldError{Field: "startHour", Error: "this field is required"})
		case ne.EndHour == nil:
			flds = append(flds, core.FieldError{Field: "endHour", Error: "this field is required"})
		case *ne.EndHour <= *ne.StartHour:
			flds = append(flds, core.FieldError{Field: "endHour", Error: "end hour must be after start hour"})
		case *ne.EndHour-*ne.StartHour > MaxShiftHours:
			flds = append(flds, core.FieldError{Field: "endHour", Error: "a shift cannot exceed 12 hours"})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (ne NewEntry) apply(e *Entry) {
	e.StaffID = ne.StaffID
	e.Day = ne.Day
	e.DayOff = ne.DayOff
	e.StartHour = null.IntFromPtr(ne.StartHour)
	e.EndHour = null.IntFromPtr(ne.EndHour)
	e.Tasks = ne.Tasks
	e.Notes = ne.Notes
}

// UpdateEntry defines what information may be provided to modify an existing Entry.
// Switching DayOff on clears the hours and tasks unless they are provided.
type UpdateEntry struct {
	Day       *Day      `json:"day"`
	DayOff    *bool     `json:"dayOff"`
	StartHour *int      `json:"startHour"`
	EndHour   *int      `json:"endHour"`
	Tasks     *[]string `json:"tasks"`
	Notes     *string   `json:"notes"`
}

func (ue UpdateEntry) merge(orig Entry) NewEntry {
	ne := NewEntry{
		StaffID:   orig.StaffID,
		Day:       orig.Day,
		DayOff:    orig.DayOff,
		StartHour: orig.StartHour.Ptr(),
		EndHour:   orig.EndHour.Ptr(),
		Tasks:     orig.Tasks,
		Notes:     orig.Notes,
	}
	if ue.Day != nil {
		ne.Day = *ue.Day
	}
	if ue.DayOff != nil {
		ne.DayOff = *ue.DayOff
		if ne.DayOff {
			ne.StartHour, ne.EndHour, ne.Tasks = nil, nil, nil
		}
	}
	if ue.StartHour != nil {
		ne.StartHour = ue.StartHour
	}
	if ue.EndHour != nil {
		ne.EndHour = ue.EndHour
	}
	if ue.Tasks != nil {
		ne.Tasks = *ue.Tasks
	}
	if ue.Notes != nil {
		ne.Notes = *ue.Notes
	}
	return ne
}
