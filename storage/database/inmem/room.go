package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/room"
)

type roomRepository struct {
	db *DB
}

var _ room.Repository = (*roomRepository)(nil) // interface compliance check

func NewRoomRepository(db *DB) room.Repository {
	return &roomRepository{db: db}
}

func sortOccupants(occs []room.Occupant) {
	sort.Slice(occs, func(i, j int) bool {
		if occs[i].LastName != occs[j].LastName {
			return occs[i].LastName < occs[j].LastName
		}
		return occs[i].ID < occs[j].ID
	})
}

func (repo *roomRepository) CheckRoomUniqueness(_ context.Context, number string, excludedID string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, r := range repo.db.rooms {
		if r.ID != excludedID && strings.EqualFold(r.Number, number) {
			return room.ErrNumberExists
		}
	}
	return nil
}

func (repo *roomRepository) CreateRoom(ctx context.Context, r room.Room) (room.Room, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.rooms {
		if strings.EqualFold(other.Number, r.Number) {
			return room.Room{}, room.ErrNumberExists
		}
	}
	r.Occupants = nil
	repo.db.rooms[r.ID] = r
	created, _ := repo.db.room(r.ID)
	return created, nil
}

func (repo *roomRepository) GetRoomByID(_ context.Context, id string) (room.Room, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.room(id); ok {
		return r, nil
	}
	return room.Room{}, core.NewNotFoundError("room", id)
}

func (repo *roomRepository) QueryRooms(_ context.Context, filter room.QueryFilter) ([]room.Room, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rooms := make([]room.Room, 0, len(repo.db.rooms))
	for id := range repo.db.rooms {
		r, _ := repo.db.room(id)
		if filter.Match(r) {
			rooms = append(rooms, r)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Floor != rooms[j].Floor {
			return rooms[i].Floor < rooms[j].Floor
		}
		return rooms[i].Number < rooms[j].Number
	})
	return rooms, nil
}

func (repo *roomRepository) FindRoomIDsByNumber(_ context.Context, number string) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	number = strings.ToLower(number)
	var ids []string
	for _, r := range repo.db.rooms {
		if strings.Contains(strings.ToLower(r.Number), number) {
			ids = append(ids, r.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (repo *roomRepository) UpdateRoom(_ context.Context, r room.Room) (room.Room, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rooms[r.ID]; !ok {
		return room.Room{}, core.NewNotFoundError("room", r.ID)
	}
	for _, other := range repo.db.rooms {
		if other.ID != r.ID && strings.EqualFold(other.Number, r.Number) {
			return room.Room{}, room.ErrNumberExists
		}
	}
	if len(repo.db.occupants(r.ID)) > r.Capacity {
		return room.Room{}, room.ErrCapacityBelowOccupancy
	}
	r.Occupants = nil
	repo.db.rooms[r.ID] = r
	updated, _ := repo.db.room(r.ID)
	return updated, nil
}

func (repo *roomRepository) DeleteRoom(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rooms[id]; !ok {
		return core.NewNotFoundError("room", id)
	}
	for rid, r := range repo.db.residents {
		if r.RoomID.Valid && r.RoomID.String == id {
			r.RoomID.Valid, r.RoomID.String = false, ""
			repo.db.residents[rid] = r
		}
	}
	delete(repo.db.rooms, id)
	return nil
}

func (repo *roomRepository) FindOccupants(_ context.Context, residentIDs []string) ([]room.Occupant, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	occs := make([]room.Occupant, 0, len(residentIDs))
	for _, id := range residentIDs {
		if r, ok := repo.db.residents[id]; ok {
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
	return occs, nil
}

func (repo *roomRepository) AssignOccupants(_ context.Context, roomID string, residentIDs []string) (room.Room, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r, ok := repo.db.rooms[roomID]
	if !ok {
		return room.Room{}, core.NewNotFoundError("room", roomID)
	}
	if len(residentIDs) > r.Capacity {
		return room.Room{}, room.ErrCapacityExceeded
	}
	for _, id := range residentIDs {
		if _, ok := repo.db.residents[id]; !ok {
			return room.Room{}, core.NewNotFoundError("resident", id)
		}
	}

	// unlink the previous occupants, then link the new ones
	for rid, res := range repo.db.residents {
		if res.RoomID.Valid && res.RoomID.String == roomID {
			res.RoomID.Valid, res.RoomID.String = false, ""
			repo.db.residents[rid] = res
		}
	}
	for _, id := range residentIDs {
		res := repo.db.residents[id]
		res.RoomID.Valid, res.RoomID.String = true, roomID
		repo.db.residents[id] = res
	}

	assigned, _ := repo.db.room(roomID)
	return assigned, nil
}
