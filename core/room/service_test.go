package room_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/resident"
	"github.com/trezcool/foyer/core/room"
	inmemdb "github.com/trezcool/foyer/storage/database/inmem"
)

type fixture struct {
	db        *inmemdb.DB
	svc       *room.Service
	residents resident.Repository
}

func newFixture(t *testing.T, enforceGender bool) fixture {
	t.Helper()
	db := inmemdb.Open()
	conf := &core.Config{Rules: core.RulesConfig{EnforceRoomGender: enforceGender}}
	return fixture{
		db:        db,
		svc:       room.NewService(inmemdb.NewRoomRepository(db), validator.New(), conf),
		residents: inmemdb.NewResidentRepository(db),
	}
}

func (f fixture) room(t *testing.T, number string, capacity int, gender room.Gender) room.Room {
	t.Helper()
	r, err := f.svc.Create(context.Background(), room.NewRoom{Number: number, Capacity: capacity, Gender: gender})
	require.NoError(t, err)
	return r
}

func (f fixture) resident(t *testing.T, id, email string, gender resident.Gender) resident.Resident {
	t.Helper()
	r, err := f.residents.CreateResident(context.Background(), resident.Resident{
		ID: id, Identifier: "SEP24-" + id[:4], FirstName: id[:4], LastName: "Test", Email: email,
		Gender: gender, Type: resident.TypeInternal, Cycle: resident.CycleSep,
	})
	require.NoError(t, err)
	return r
}

func occupantIDs(r room.Room) []string {
	ids := make([]string, 0, len(r.Occupants))
	for _, occ := range r.Occupants {
		ids = append(ids, occ.ID)
	}
	return ids
}

const (
	idA = "aaaaaaaa-0000-4000-8000-000000000001"
	idB = "bbbbbbbb-0000-4000-8000-000000000002"
	idC = "cccccccc-0000-4000-8000-000000000003"
)

func TestService_Assign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	r := f.room(t, "101", 2, room.GenderMixed)
	f.resident(t, idA, "a@foyer.test", resident.GenderFemale)
	f.resident(t, idB, "b@foyer.test", resident.GenderMale)
	f.resident(t, idC, "c@foyer.test", resident.GenderMale)

	// [A,B] -> occupied
	got, err := f.svc.Assign(ctx, r.ID, &[]string{idA, idB})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{idA, idB}, occupantIDs(got))
	assert.Equal(t, room.StatusOccupied, got.Status)

	// [A,B,C] -> capacity error, room unchanged
	_, err = f.svc.Assign(ctx, r.ID, &[]string{idA, idB, idC})
	assert.ErrorIs(t, err, room.ErrCapacityExceeded)
	assert.True(t, core.IsValidation(err))
	got, err = f.svc.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{idA, idB}, occupantIDs(got))

	// [] -> available, back references cleared
	got, err = f.svc.Assign(ctx, r.ID, &[]string{})
	require.NoError(t, err)
	assert.Empty(t, got.Occupants)
	assert.Equal(t, room.StatusAvailable, got.Status)
	a, err := f.residents.GetResidentByID(ctx, idA)
	require.NoError(t, err)
	assert.False(t, a.RoomID.Valid)
}

func TestService_Assign_errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	r := f.room(t, "101", 2, room.GenderMixed)
	f.resident(t, idA, "a@foyer.test", resident.GenderFemale)

	tests := []struct {
		name           string
		roomID         string
		ids            *[]string
		wantValidation bool
		wantNotFound   bool
	}{
		{name: "nil list", roomID: r.ID, ids: nil, wantValidation: true},
		{name: "malformed id", roomID: r.ID, ids: &[]string{"nope"}, wantValidation: true},
		{name: "duplicate", roomID: r.ID, ids: &[]string{idA, idA}, wantValidation: true},
		{name: "unknown room", roomID: idC, ids: &[]string{idA}, wantNotFound: true},
		{name: "malformed room id", roomID: "101", ids: &[]string{idA}, wantNotFound: true},
		{name: "unknown resident", roomID: r.ID, ids: &[]string{idA, idB}, wantNotFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Assign(ctx, tt.roomID, tt.ids)
			require.Error(t, err)
			assert.Equal(t, tt.wantValidation, core.IsValidation(err), err)
			assert.Equal(t, tt.wantNotFound, core.IsNotFound(err), err)
		})
	}

	got, err := f.svc.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Occupants, "failed assignments leave no partial state")
}

func TestService_Assign_moves(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	r1 := f.room(t, "101", 2, room.GenderMixed)
	r2 := f.room(t, "102", 2, room.GenderMixed)
	f.resident(t, idA, "a@foyer.test", resident.GenderFemale)
	f.resident(t, idB, "b@foyer.test", resident.GenderMale)

	_, err := f.svc.Assign(ctx, r1.ID, &[]string{idA, idB})
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, r2.ID, &[]string{idB})
	require.NoError(t, err)

	got1, err := f.svc.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	got2, err := f.svc.GetByID(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{idA}, occupantIDs(got1))
	assert.Equal(t, []string{idB}, occupantIDs(got2))

	b, err := f.residents.GetResidentByID(ctx, idB)
	require.NoError(t, err)
	assert.Equal(t, r2.ID, b.RoomID.String)
	assert.Equal(t, "102", b.RoomNumber)
}

func TestService_Assign_gender(t *testing.T) {
	ctx := context.Background()

	soft := newFixture(t, false)
	r := soft.room(t, "101", 2, room.GenderBoys)
	soft.resident(t, idA, "a@foyer.test", resident.GenderFemale)
	got, err := soft.svc.Assign(ctx, r.ID, &[]string{idA})
	require.NoError(t, err)
	require.Len(t, got.Occupants, 1)
	assert.False(t, got.Occupants[0].GenderCompatible)

	strict := newFixture(t, true)
	r = strict.room(t, "101", 2, room.GenderBoys)
	strict.resident(t, idA, "a@foyer.test", resident.GenderFemale)
	_, err = strict.svc.Assign(ctx, r.ID, &[]string{idA})
	assert.ErrorIs(t, err, room.ErrGenderMismatch)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	r := f.room(t, "101", 2, room.GenderMixed)
	f.room(t, "102", 2, room.GenderMixed)
	f.resident(t, idA, "a@foyer.test", resident.GenderFemale)
	f.resident(t, idB, "b@foyer.test", resident.GenderMale)
	r, err := f.svc.Assign(ctx, r.ID, &[]string{idA, idB})
	require.NoError(t, err)

	one, taken, renamed := 1, "102", "305"
	_, err = f.svc.Update(ctx, r, room.UpdateRoom{Capacity: &one})
	assert.ErrorIs(t, err, room.ErrCapacityBelowOccupancy)

	_, err = f.svc.Update(ctx, r, room.UpdateRoom{Number: &taken})
	assert.ErrorIs(t, err, room.ErrNumberExists)

	got, err := f.svc.Update(ctx, r, room.UpdateRoom{Number: &renamed})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Floor)
	assert.Len(t, got.Occupants, 2)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	r := f.room(t, "101", 2, room.GenderMixed)
	f.resident(t, idA, "a@foyer.test", resident.GenderFemale)
	f.resident(t, idB, "b@foyer.test", resident.GenderMale)
	_, err := f.svc.Assign(ctx, r.ID, &[]string{idA, idB})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, r.ID))
	for _, id := range []string{idA, idB} {
		res, err := f.residents.GetResidentByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, res.RoomID.Valid, "room reference cleared")
	}
	assert.True(t, core.IsNotFound(f.svc.Delete(ctx, r.ID)))
}

func TestService_FindIDsByNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	r := f.room(t, "B-12", 1, room.GenderMixed)

	ids, err := f.svc.FindIDsByNumber(ctx, " b-12 ")
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids)

	ids, err = f.svc.FindIDsByNumber(ctx, "999")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
