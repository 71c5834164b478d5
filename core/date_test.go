package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: " 2024-09-01 ", want: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2024-09-01T23:30:00+02:00", want: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2024-09-01T23:30:00-02:00", want: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)},
		{in: "01/09/2024", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %v", got.Time)
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		Arrival   Date `json:"arrival"`
		Departure Date `json:"departure"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"arrival":"2024-09-01","departure":null}`), &v))
	assert.Equal(t, 2024, v.Arrival.Year())
	assert.True(t, v.Departure.IsZero())

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"arrival":"2024-09-01","departure":null}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"arrival":"tomorrow"}`), &v))
}
