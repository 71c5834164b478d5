package echoapi_test

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/foyer/core/schedule"
	"github.com/trezcool/foyer/core/staff"
)

var employeeIDRegex = regexp.MustCompile(`^EMP\d{8}$`)

func createStaff(t *testing.T, first, email, phone, position string) staff.Staff {
	t.Helper()
	code, res := do(t, http.MethodPost, "/api/v1/staff", staffToken, map[string]interface{}{
		"firstName": first,
		"lastName":  "Staff",
		"email":     email,
		"phone":     phone,
		"position":  position,
		"hireDate":  "2023-03-01",
		"salary":    1200,
	})
	require.Equal(t, http.StatusCreated, code, res.Message)
	var s staff.Staff
	res.decode(t, &s)
	return s
}

func Test_staffApi(t *testing.T) {
	store.Reset()

	cook := createStaff(t, "Neema", "neema@foyer.test", "+243810000010", "Cook")
	assert.Regexp(t, employeeIDRegex, cook.EmployeeID)
	assert.Equal(t, staff.StatusActive, cook.Status)
	guard := createStaff(t, "Zawadi", "zawadi@foyer.test", "+243810000011", "Guard")

	t.Run("duplicate email", func(t *testing.T) {
		code, res := do(t, http.MethodPost, "/api/v1/staff", staffToken, map[string]interface{}{
			"firstName": "X", "lastName": "Y", "email": "NEEMA@foyer.test", "phone": "+243810000012",
			"position": "Cook", "hireDate": "2023-03-02",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, res.Fields, "email")
	})
	t.Run("missing hire date", func(t *testing.T) {
		code, res := do(t, http.MethodPost, "/api/v1/staff", staffToken, map[string]interface{}{
			"firstName": "X", "lastName": "Y", "email": "xy@foyer.test", "phone": "+243810000012", "position": "Cook",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, res.Fields, "hireDate")
	})

	queries := []struct {
		name     string
		query    string
		wantCode int
		wantIDs  []string
	}{
		{name: "position", query: "?position=cook", wantCode: http.StatusOK, wantIDs: []string{cook.ID}},
		{name: "search", query: "?search=zaw", wantCode: http.StatusOK, wantIDs: []string{guard.ID}},
		{name: "inactive", query: "?status=inactive", wantCode: http.StatusOK, wantIDs: []string{}},
		{name: "bad status", query: "?status=retired", wantCode: http.StatusBadRequest},
	}
	for _, tt := range queries {
		t.Run(tt.name, func(t *testing.T) {
			code, res := do(t, http.MethodGet, "/api/v1/staff"+tt.query, staffToken, nil)
			require.Equal(t, tt.wantCode, code)
			if code != http.StatusOK {
				return
			}
			var members []staff.Staff
			res.decode(t, &members)
			ids := make([]string, 0, len(members))
			for _, s := range members {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("update keeps the employee id", func(t *testing.T) {
		code, res := do(t, http.MethodPut, "/api/v1/staff/"+guard.ID, staffToken, map[string]interface{}{
			"status": "inactive", "salary": 1500,
		})
		require.Equal(t, http.StatusOK, code, res.Message)
		var got staff.Staff
		res.decode(t, &got)
		assert.Equal(t, guard.EmployeeID, got.EmployeeID)
		assert.Equal(t, staff.StatusInactive, got.Status)
		assert.Equal(t, 1500.0, got.Salary)
	})

	t.Run("delete cascades to the schedule", func(t *testing.T) {
		code, res := do(t, http.MethodPost, "/api/v1/schedules", staffToken, map[string]interface{}{
			"staffId": cook.ID, "day": "monday", "startHour": 6, "endHour": 14,
		})
		require.Equal(t, http.StatusCreated, code, res.Message)
		var e schedule.Entry
		res.decode(t, &e)

		code, _ = do(t, http.MethodDelete, "/api/v1/staff/"+cook.ID, staffToken, nil)
		assert.Equal(t, http.StatusForbidden, code)
		code, _ = do(t, http.MethodDelete, "/api/v1/staff/"+cook.ID, adminToken, nil)
		require.Equal(t, http.StatusNoContent, code)

		code, _ = do(t, http.MethodGet, "/api/v1/schedules/"+e.ID, staffToken, nil)
		assert.Equal(t, http.StatusNotFound, code)
		code, _ = do(t, http.MethodGet, "/api/v1/staff/"+cook.ID+"/schedule", staffToken, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func Test_scheduleApi(t *testing.T) {
	store.Reset()
	s := createStaff(t, "Imani", "imani@foyer.test", "+243810000020", "Cleaner")
	other := createStaff(t, "Juma", "juma@foyer.test", "+243810000021", "Cleaner")

	entries := []map[string]interface{}{
		{"staffId": s.ID, "day": "friday", "startHour": 8, "endHour": 16, "tasks": []string{" rooms 1xx ", ""}},
		{"staffId": s.ID, "day": "Monday", "startHour": 7, "endHour": 15},
		{"staffId": s.ID, "day": "sunday", "dayOff": true},
		{"staffId": other.ID, "day": "monday", "startHour": 14, "endHour": 22},
	}
	for _, body := range entries {
		code, res := do(t, http.MethodPost, "/api/v1/schedules", staffToken, body)
		require.Equal(t, http.StatusCreated, code, res.Message)
	}

	invalid := []struct {
		name      string
		body      map[string]interface{}
		wantField string
	}{
		{name: "day taken", body: map[string]interface{}{"staffId": s.ID, "day": "monday", "dayOff": true}, wantField: "day"},
		{name: "unknown day", body: map[string]interface{}{"staffId": s.ID, "day": "someday", "dayOff": true}, wantField: "day"},
		{name: "missing hours", body: map[string]interface{}{"staffId": s.ID, "day": "tuesday"}, wantField: "startHour"},
		{name: "end before start", body: map[string]interface{}{"staffId": s.ID, "day": "tuesday", "startHour": 10, "endHour": 9}, wantField: "endHour"},
		{name: "shift too long", body: map[string]interface{}{"staffId": s.ID, "day": "tuesday", "startHour": 6, "endHour": 19}, wantField: "endHour"},
		{name: "hours on a day off", body: map[string]interface{}{"staffId": s.ID, "day": "tuesday", "dayOff": true, "startHour": 6}, wantField: "startHour"},
		{name: "unknown staff", body: map[string]interface{}{"staffId": "5f0fa5a8-7f1f-4bb4-9c5c-6c0b2d7c1c11", "day": "tuesday", "dayOff": true}, wantField: "staffId"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			code, res := do(t, http.MethodPost, "/api/v1/schedules", staffToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Contains(t, res.Fields, tt.wantField)
		})
	}

	t.Run("week is ordered", func(t *testing.T) {
		for _, path := range []string{"/api/v1/staff/" + s.ID + "/schedule", "/api/v1/schedules?staffId=" + s.ID} {
			code, res := do(t, http.MethodGet, path, staffToken, nil)
			require.Equal(t, http.StatusOK, code, path)
			var week []schedule.Entry
			res.decode(t, &week)
			require.Len(t, week, 3)
			assert.Equal(t, []schedule.Day{schedule.Monday, schedule.Friday, schedule.Sunday},
				[]schedule.Day{week[0].Day, week[1].Day, week[2].Day})
			assert.Equal(t, []string{"rooms 1xx"}, week[1].Tasks)
			assert.True(t, week[2].DayOff)
			assert.False(t, week[2].StartHour.Valid)
		}
	})

	t.Run("all entries", func(t *testing.T) {
		code, res := do(t, http.MethodGet, "/api/v1/schedules", staffToken, nil)
		require.Equal(t, http.StatusOK, code)
		require.NotNil(t, res.Results)
		assert.Equal(t, 4, *res.Results)
	})

	t.Run("update to a day off clears the shift", func(t *testing.T) {
		code, res := do(t, http.MethodGet, "/api/v1/staff/"+other.ID+"/schedule", staffToken, nil)
		require.Equal(t, http.StatusOK, code)
		var week []schedule.Entry
		res.decode(t, &week)
		require.Len(t, week, 1)

		code, res = do(t, http.MethodPut, "/api/v1/schedules/"+week[0].ID, staffToken, map[string]interface{}{"dayOff": true})
		require.Equal(t, http.StatusOK, code, res.Message)
		var e schedule.Entry
		res.decode(t, &e)
		assert.True(t, e.DayOff)
		assert.False(t, e.StartHour.Valid)
		assert.False(t, e.EndHour.Valid)

		code, _ = do(t, http.MethodDelete, "/api/v1/schedules/"+e.ID, adminToken, nil)
		assert.Equal(t, http.StatusNoContent, code)
	})
}
