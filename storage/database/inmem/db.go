package inmemdb

import (
	"sync"

	"github.com/trezcool/foyer/core/resident"
	"github.com/trezcool/foyer/core/room"
	"github.com/trezcool/foyer/core/schedule"
	"github.com/trezcool/foyer/core/staff"
)

// DB is an in-memory store used in DEV without PostgreSQL and in tests.
// One lock guards every table so multi-table mutations are atomic.
type DB struct {
	mutex     sync.RWMutex
	rooms     map[string]room.Room
	residents map[string]resident.Resident
	staff     map[string]staff.Staff
	schedules map[string]schedule.Entry
	counters  map[string]int64
}

func Open() *DB {
	return &DB{
		rooms:     make(map[string]room.Room),
		residents: make(map[string]resident.Resident),
		staff:     make(map[string]staff.Staff),
		schedules: make(map[string]schedule.Entry),
		counters:  make(map[string]int64),
	}
}

// Reset empties every table. Tests only.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.rooms = make(map[string]room.Room)
	db.residents = make(map[string]resident.Resident)
	db.staff = make(map[string]staff.Staff)
	db.schedules = make(map[string]schedule.Entry)
	db.counters = make(map[string]int64)
}

// occupants resolves the residents linked to roomID. Caller must hold the lock.
func (db *DB) occupants(roomID string) []room.Occupant {
	occs := make([]room.Occupant, 0)
	for _, r := range db.residents {
		if r.RoomID.Valid && r.RoomID.String == roomID {
			occs = append(occs, room.Occupant{
				ID:         r.ID,
				Identifier: r.Identifier,
				FirstName:  r.FirstName,
				LastName:   r.LastName,
				Gender:     string(r.Gender),
				Type:       string(r.Type),
			})
		}
	}
	sortOccupants(occs)
	return occs
}

// room returns the stored room with its read-time fields. Caller must hold the lock.
func (db *DB) room(id string) (room.Room, bool) {
	r, ok := db.rooms[id]
	if !ok {
		return room.Room{}, false
	}
	r.Occupants = db.occupants(id)
	r.Derive()
	return r, true
}

// resident returns the stored resident with its room number. Caller must hold the lock.
func (db *DB) resident(id string) (resident.Resident, bool) {
	r, ok := db.residents[id]
	if !ok {
		return resident.Resident{}, false
	}
	r.RoomNumber = ""
	if r.RoomID.Valid {
		r.RoomNumber = db.rooms[r.RoomID.String].Number
	}
	return r, true
}
