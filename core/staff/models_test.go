package staff

import (
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/foyer/core"
)

func newValidator() *validator.Validate {
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func TestNewStaff_Validate(t *testing.T) {
	validate := newValidator()
	valid := func() NewStaff {
		return NewStaff{
			FirstName: " Marie ",
			LastName:  "Kanku",
			Email:     "Marie@Foyer.test",
			Phone:     "+243 812 345 678",
			Position:  "Cook",
			HireDate:  core.NewDate(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)),
			Salary:    1200,
		}
	}

	t.Run("cleans and defaults", func(t *testing.T) {
		ns := valid()
		ns.EmployeeID = " emp20230001 "
		require.NoError(t, ns.Validate(validate))
		assert.Equal(t, "Marie", ns.FirstName)
		assert.Equal(t, "marie@foyer.test", ns.Email)
		assert.Equal(t, "EMP20230001", ns.EmployeeID)
		assert.Equal(t, StatusActive, ns.Status)
	})

	tests := []struct {
		name   string
		modify func(ns *NewStaff)
		field  string
	}{
		{name: "missing first name", modify: func(ns *NewStaff) { ns.FirstName = "  " }, field: "firstName"},
		{name: "bad email", modify: func(ns *NewStaff) { ns.Email = "marie" }, field: "email"},
		{name: "missing phone", modify: func(ns *NewStaff) { ns.Phone = "" }, field: "phone"},
		{name: "missing position", modify: func(ns *NewStaff) { ns.Position = "" }, field: "position"},
		{name: "negative salary", modify: func(ns *NewStaff) { ns.Salary = -1 }, field: "salary"},
		{name: "unknown status", modify: func(ns *NewStaff) { ns.Status = "retired" }, field: "status"},
		{name: "missing hire date", modify: func(ns *NewStaff) { ns.HireDate = core.Date{} }, field: "hireDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := valid()
			tt.modify(&ns)
			err := ns.Validate(validate)
			require.Error(t, err)
			switch e := err.(type) {
			case validator.ValidationErrors:
				require.Len(t, e, 1)
				assert.Equal(t, tt.field, e[0].Field())
			case *core.ValidationError:
				require.Len(t, e.Fields, 1)
				assert.Equal(t, tt.field, e.Fields[0].Field)
			default:
				t.Fatalf("unexpected error %T: %v", err, err)
			}
		})
	}
}

func TestUpdateStaff_merge(t *testing.T) {
	orig := Staff{
		EmployeeID: "EMP20230001",
		FirstName:  "Marie",
		LastName:   "Kanku",
		Email:      "marie@foyer.test",
		Position:   "Cook",
		HireDate:   time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		Salary:     1200,
		Status:     StatusActive,
	}
	position := "Head cook"
	salary := 1500.0
	status := StatusInactive

	ns := UpdateStaff{Position: &position, Salary: &salary, Status: &status}.merge(orig)
	assert.Equal(t, "EMP20230001", ns.EmployeeID)
	assert.Equal(t, "Marie", ns.FirstName)
	assert.Equal(t, "Head cook", ns.Position)
	assert.Equal(t, 1500.0, ns.Salary)
	assert.Equal(t, StatusInactive, ns.Status)
	assert.Equal(t, orig.HireDate, ns.HireDate.Time)
}

func TestQueryFilter(t *testing.T) {
	s := Staff{FirstName: "Marie", LastName: "Kanku", Email: "marie@foyer.test", Phone: "+243812345678",
		EmployeeID: "EMP20230001", Position: "Cook", Status: StatusActive}

	tests := []struct {
		name    string
		filter  QueryFilter
		wantErr bool
		match   bool
	}{
		{name: "empty", filter: QueryFilter{}, match: true},
		{name: "search name", filter: QueryFilter{Search: " KAN "}, match: true},
		{name: "search employee id", filter: QueryFilter{Search: "emp2023"}, match: true},
		{name: "search miss", filter: QueryFilter{Search: "joseph"}, match: false},
		{name: "position is case insensitive", filter: QueryFilter{Position: "cook"}, match: true},
		{name: "position is exact", filter: QueryFilter{Position: "Coo"}, match: false},
		{name: "status all", filter: QueryFilter{Status: "ALL"}, match: true},
		{name: "status inactive", filter: QueryFilter{Status: "inactive"}, match: false},
		{name: "bad status", filter: QueryFilter{Status: "retired"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Clean()
			if tt.wantErr {
				assert.True(t, core.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.match, tt.filter.Match(s))
		})
	}
}
