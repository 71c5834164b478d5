package inmemdb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/resident"
	"github.com/trezcool/foyer/core/room"
	"github.com/trezcool/foyer/core/schedule"
	"github.com/trezcool/foyer/core/staff"
)

func seed(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	rooms := NewRoomRepository(db)
	for _, r := range []room.Room{
		{ID: "r1", Number: "101", Floor: 1, Capacity: 2, Gender: room.GenderMixed},
		{ID: "r2", Number: "102", Floor: 1, Capacity: 1, Gender: room.GenderGirls},
	} {
		_, err := rooms.CreateRoom(ctx, r)
		require.NoError(t, err)
	}

	residents := NewResidentRepository(db)
	arrival := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []resident.Resident{
		{ID: "a", Email: "a@foyer.test", Gender: resident.GenderFemale, Type: resident.TypeInternal, ArrivalDate: arrival,
			DepartureDate: null.TimeFrom(arrival.AddDate(1, 0, 0)), RoomID: null.StringFrom("r1")},
		{ID: "b", Email: "b@foyer.test", Gender: resident.GenderMale, Type: resident.TypeInternal, ArrivalDate: arrival},
		{ID: "c", Email: "c@foyer.test", Gender: resident.GenderFemale, Type: resident.TypeExternal, ArrivalDate: arrival,
			DepartureDate: null.TimeFrom(arrival.AddDate(0, 1, 0))},
	} {
		_, err := residents.CreateResident(ctx, r)
		require.NoError(t, err)
	}

	_, err := NewStaffRepository(db).CreateStaff(ctx, staff.Staff{ID: "s1", EmployeeID: "EMP20240001", Email: "s@foyer.test", Status: staff.StatusActive})
	require.NoError(t, err)
	_, err = NewScheduleRepository(db).CreateEntry(ctx, schedule.Entry{ID: "e1", StaffID: "s1", Day: schedule.Monday, DayOff: true})
	require.NoError(t, err)
}

func TestDB_Reset(t *testing.T) {
	db := Open()
	seed(t, db)
	_, _ = NewSequencer(db).Next(context.Background(), resident.SequenceName)

	db.Reset()
	c, err := NewDashboardRepository(db).Counts(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, c.TotalRooms)
	assert.Zero(t, c.TotalResidents)
	assert.Zero(t, c.TotalStaff)

	n, err := NewSequencer(db).Next(context.Background(), resident.SequenceName)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSequencer_Next(t *testing.T) {
	ctx := context.Background()
	seq := NewSequencer(Open())
	for want := int64(1); want <= 3; want++ {
		n, err := seq.Next(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := seq.Next(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counters are independent")
}

func TestDashboardRepository_Counts(t *testing.T) {
	db := Open()
	seed(t, db)

	c, err := NewDashboardRepository(db).Counts(context.Background(), time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3, 1, 3, 1, 1, 1}, []int{
		c.TotalRooms, c.OccupiedRooms, c.TotalCapacity, c.OccupiedBeds,
		c.TotalResidents, c.ActiveResidents, c.TotalStaff, c.ActiveStaff,
	})
	assert.Equal(t, map[string]int{"female": 2, "male": 1}, c.ByGender)
	assert.Equal(t, map[string]int{"internal": 2, "external": 1}, c.ByType)
}

func TestRoomRepository_DeleteRoom(t *testing.T) {
	ctx := context.Background()
	db := Open()
	seed(t, db)

	require.NoError(t, NewRoomRepository(db).DeleteRoom(ctx, "r1"))
	a, err := NewResidentRepository(db).GetResidentByID(ctx, "a")
	require.NoError(t, err)
	assert.False(t, a.RoomID.Valid)
	assert.Empty(t, a.RoomNumber)

	assert.True(t, core.IsNotFound(NewRoomRepository(db).DeleteRoom(ctx, "r1")))
}

func TestRoomRepository_AssignOccupants_concurrent(t *testing.T) {
	ctx := context.Background()
	db := Open()
	seed(t, db)
	rooms := NewRoomRepository(db)

	var wg sync.WaitGroup
	for _, ids := range [][]string{{"a"}, {"b"}, {"a", "b"}, {"c"}, {"b", "c"}, {"a", "b", "c"}} {
		wg.Add(1)
		go func(ids []string) {
			defer wg.Done()
			_, err := rooms.AssignOccupants(ctx, "r1", ids)
			if err != nil {
				assert.True(t, errors.Is(err, room.ErrCapacityExceeded))
			}
		}(ids)
	}
	wg.Wait()

	r, err := rooms.GetRoomByID(ctx, "r1")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(r.Occupants), r.Capacity)
	assert.NotEmpty(t, r.Occupants)

	// every resident links at most one room
	c, err := NewDashboardRepository(db).Counts(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, len(r.Occupants), c.OccupiedBeds)
}

func TestResidentRepository_roomCapacity(t *testing.T) {
	ctx := context.Background()
	db := Open()
	seed(t, db)
	residents := NewResidentRepository(db)

	b, err := residents.GetResidentByID(ctx, "b")
	require.NoError(t, err)
	b.RoomID = null.StringFrom("r1")
	_, err = residents.UpdateResident(ctx, b)
	require.NoError(t, err)

	c, err := residents.GetResidentByID(ctx, "c")
	require.NoError(t, err)
	c.RoomID = null.StringFrom("r1")
	_, err = residents.UpdateResident(ctx, c)
	assert.True(t, errors.Is(err, room.ErrCapacityExceeded))

	c.RoomID = null.StringFrom("nope")
	_, err = residents.UpdateResident(ctx, c)
	assert.True(t, core.IsNotFound(err))

	c.Email = "A@foyer.test"
	c.RoomID = null.String{}
	_, err = residents.UpdateResident(ctx, c)
	assert.True(t, errors.Is(err, resident.ErrEmailExists))
}
