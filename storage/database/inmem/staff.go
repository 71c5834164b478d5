package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

// checkUniqueness mirrors the unique constraints of the SQL schema. Caller must hold the lock.
func (repo *staffRepository) checkUniqueness(s staff.Staff) error {
	for _, other := range repo.db.staff {
		if other.ID == s.ID {
			continue
		}
		switch {
		case strings.EqualFold(other.Email, s.Email):
			return staff.ErrEmailExists
		case other.Phone == s.Phone:
			return staff.ErrPhoneExists
		case s.EmployeeID != "" && other.EmployeeID == s.EmployeeID:
			return staff.ErrEmployeeIDExists
		case strings.EqualFold(other.FirstName, s.FirstName) &&
			strings.EqualFold(other.LastName, s.LastName) &&
			other.HireDate.Equal(s.HireDate):
			return staff.ErrNameHireDateExists
		}
	}
	return nil
}

func (repo *staffRepository) CheckStaffUniqueness(_ context.Context, s staff.Staff) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.checkUniqueness(s)
}

func (repo *staffRepository) EmployeeIDExists(_ context.Context, employeeID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.staff {
		if s.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *staffRepository) CreateStaff(_ context.Context, s staff.Staff) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkUniqueness(s); err != nil {
		return staff.Staff{}, err
	}
	repo.db.staff[s.ID] = s
	return s, nil
}

func (repo *staffRepository) GetStaffByID(_ context.Context, id string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.staff[id]; ok {
		return s, nil
	}
	return staff.Staff{}, core.NewNotFoundError("staff", id)
}

func (repo *staffRepository) QueryStaff(_ context.Context, filter staff.QueryFilter) ([]staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	members := make([]staff.Staff, 0, len(repo.db.staff))
	for _, s := range repo.db.staff {
		if filter.Match(s) {
			members = append(members, s)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].CreatedAt.After(members[j].CreatedAt)
		}
		return members[i].ID < members[j].ID
	})
	return members, nil
}

func (repo *staffRepository) UpdateStaff(_ context.Context, s staff.Staff) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.staff[s.ID]
	if !ok {
		return staff.Staff{}, core.NewNotFoundError("staff", s.ID)
	}
	if err := repo.checkUniqueness(s); err != nil {
		return staff.Staff{}, err
	}
	s.EmployeeID = orig.EmployeeID
	s.CreatedAt = orig.CreatedAt
	repo.db.staff[s.ID] = s
	return s, nil
}

func (repo *staffRepository) DeleteStaff(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.staff[id]; !ok {
		return core.NewNotFoundError("staff", id)
	}
	for eid, e := range repo.db.schedules {
		if e.StaffID == id {
			delete(repo.db.schedules, eid)
		}
	}
	delete(repo.db.staff, id)
	return nil
}
