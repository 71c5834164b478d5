package inmemdb

import (
	"context"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/schedule"
)

type scheduleRepository struct {
	db *DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

// checkUniqueness enforces one entry per (staff, day). Caller must hold the lock.
func (repo *scheduleRepository) checkUniqueness(staffID string, day schedule.Day, excludedID string) error {
	for _, e := range repo.db.schedules {
		if e.ID != excludedID && e.StaffID == staffID && e.Day == day {
			return schedule.ErrDayTaken
		}
	}
	return nil
}

func (repo *scheduleRepository) CheckEntryUniqueness(_ context.Context, staffID string, day schedule.Day, excludedID string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.checkUniqueness(staffID, day, excludedID)
}

func (repo *scheduleRepository) CreateEntry(_ context.Context, e schedule.Entry) (schedule.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.staff[e.StaffID]; !ok {
		return schedule.Entry{}, core.NewNotFoundError("staff", e.StaffID)
	}
	if err := repo.checkUniqueness(e.StaffID, e.Day, e.ID); err != nil {
		return schedule.Entry{}, err
	}
	if e.Tasks == nil {
		e.Tasks = []string{}
	}
	repo.db.schedules[e.ID] = e
	return e, nil
}

func (repo *scheduleRepository) GetEntryByID(_ context.Context, id string) (schedule.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.schedules[id]; ok {
		return e, nil
	}
	return schedule.Entry{}, core.NewNotFoundError("schedule", id)
}

func (repo *scheduleRepository) QueryEntries(_ context.Context, staffID string) ([]schedule.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]schedule.Entry, 0)
	for _, e := range repo.db.schedules {
		if staffID == "" || e.StaffID == staffID {
			entries = append(entries, e)
		}
	}
	schedule.SortEntries(entries)
	return entries, nil
}

func (repo *scheduleRepository) UpdateEntry(_ context.Context, e schedule.Entry) (schedule.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.schedules[e.ID]
	if !ok {
		return schedule.Entry{}, core.NewNotFoundError("schedule", e.ID)
	}
	if err := repo.checkUniqueness(e.StaffID, e.Day, e.ID); err != nil {
		return schedule.Entry{}, err
	}
	if e.Tasks == nil {
		e.Tasks = []string{}
	}
	e.CreatedAt = orig.CreatedAt
	repo.db.schedules[e.ID] = e
	return e, nil
}

func (repo *scheduleRepository) DeleteEntry(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.schedules[id]; !ok {
		return core.NewNotFoundError("schedule", id)
	}
	delete(repo.db.schedules, id)
	return nil
}
