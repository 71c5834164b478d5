package core

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitValidators(t *testing.T) {
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)

	type form struct {
		Email      string `json:"email" validate:"required"`
		Phone      string `json:"phone" validate:"omitempty,phone"`
		NationalID string `json:"nationalId" validate:"omitempty,nationalid"`
		Year       string `json:"sessionYear" validate:"omitempty,year"`
	}

	tests := []struct {
		name       string
		form       form
		wantFields map[string]string
	}{
		{name: "valid", form: form{Email: "a@b.c", Phone: "+243 810 000 000", NationalID: "12345678", Year: "2024"}},
		{
			name: "invalid",
			form: form{Phone: "call me", NationalID: "1234", Year: "24"},
			wantFields: map[string]string{
				"email":       "this field is required",
				"phone":       "phone must be a valid phone number",
				"nationalId":  "nationalId must contain exactly 8 digits",
				"sessionYear": "sessionYear must be a 4-digit year",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.form)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			got := make(map[string]string, len(vErrs))
			for _, e := range vErrs {
				got[e.Field()] = e.Translate(translator)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Room 101", CleanString("  Room 101\n"))
	assert.Equal(t, "room 101", CleanString("  Room 101\n", true))
	assert.Equal(t, "", CleanString(" \t "))
}
