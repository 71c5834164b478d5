package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/resident"
	"github.com/trezcool/foyer/core/room"
)

type residentRepository struct {
	db *DB
}

var _ resident.Repository = (*residentRepository)(nil) // interface compliance check

func NewResidentRepository(db *DB) resident.Repository {
	return &residentRepository{db: db}
}

// checkUniqueness mirrors the unique indexes of the SQL schema. Caller must hold the lock.
func (repo *residentRepository) checkUniqueness(r resident.Resident) error {
	for _, other := range repo.db.residents {
		if other.ID == r.ID {
			continue
		}
		switch {
		case strings.EqualFold(other.Email, r.Email):
			return resident.ErrEmailExists
		case r.Phone != "" && other.Phone == r.Phone:
			return resident.ErrPhoneExists
		case r.AltPhone != "" && other.AltPhone == r.AltPhone:
			return resident.ErrAltPhoneExists
		case r.NationalID != "" && other.NationalID == r.NationalID:
			return resident.ErrNationalIDExists
		}
	}
	return nil
}

// checkRoom verifies that the room exists and has a free bed for r. Caller must hold the lock.
func (repo *residentRepository) checkRoom(r resident.Resident) error {
	if !r.RoomID.Valid {
		return nil
	}
	rm, ok := repo.db.rooms[r.RoomID.String]
	if !ok {
		return core.NewNotFoundError("room", r.RoomID.String)
	}
	occupied := 0
	for _, occ := range repo.db.occupants(rm.ID) {
		if occ.ID != r.ID {
			occupied++
		}
	}
	if occupied >= rm.Capacity {
		return room.ErrCapacityExceeded
	}
	return nil
}

func (repo *residentRepository) CheckResidentUniqueness(_ context.Context, r resident.Resident) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.checkUniqueness(r)
}

func (repo *residentRepository) CreateResident(_ context.Context, r resident.Resident) (resident.Resident, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkUniqueness(r); err != nil {
		return resident.Resident{}, err
	}
	if err := repo.checkRoom(r); err != nil {
		return resident.Resident{}, err
	}
	repo.db.residents[r.ID] = r
	created, _ := repo.db.resident(r.ID)
	return created, nil
}

func (repo *residentRepository) GetResidentByID(_ context.Context, id string) (resident.Resident, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.resident(id); ok {
		return r, nil
	}
	return resident.Resident{}, core.NewNotFoundError("resident", id)
}

func (repo *residentRepository) QueryResidents(_ context.Context, filter resident.Filter) ([]resident.Resident, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	residents := make([]resident.Resident, 0)
	for id := range repo.db.residents {
		r, _ := repo.db.resident(id)
		if filter.Match(r) {
			residents = append(residents, r)
		}
	}
	resident.SortResidents(residents, filter.Ordering)

	total := len(residents)
	if !filter.Page.IsZero() {
		start := filter.Page.Offset()
		switch {
		case start < 0:
			start = 0
		case start > total:
			start = total
		}
		end := total
		if filter.Page.Limit < total-start {
			end = start + filter.Page.Limit
		}
		residents = residents[start:end]
	}
	return residents, total, nil
}

func (repo *residentRepository) UpdateResident(_ context.Context, r resident.Resident) (resident.Resident, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.residents[r.ID]
	if !ok {
		return resident.Resident{}, core.NewNotFoundError("resident", r.ID)
	}
	if err := repo.checkUniqueness(r); err != nil {
		return resident.Resident{}, err
	}
	if err := repo.checkRoom(r); err != nil {
		return resident.Resident{}, err
	}
	r.Identifier = orig.Identifier
	r.CreatedAt = orig.CreatedAt
	repo.db.residents[r.ID] = r
	updated, _ := repo.db.resident(r.ID)
	return updated, nil
}

func (repo *residentRepository) DeleteResident(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.residents[id]; !ok {
		return core.NewNotFoundError("resident", id)
	}
	delete(repo.db.residents, id)
	return nil
}
