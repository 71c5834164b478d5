package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/foyer/core/dashboard"
	"github.com/trezcool/foyer/core/staff"
)

type dashboardRepository struct {
	db *DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *DB) dashboard.Repository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) Counts(_ context.Context, now time.Time) (dashboard.Counts, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	c := dashboard.Counts{
		ByGender: make(map[string]int),
		ByType:   make(map[string]int),
	}
	occupied := make(map[string]bool)
	for _, r := range repo.db.residents {
		c.TotalResidents++
		c.ByGender[string(r.Gender)]++
		c.ByType[string(r.Type)]++
		if r.IsActive(now) {
			c.ActiveResidents++
		}
		if r.RoomID.Valid {
			c.OccupiedBeds++
			occupied[r.RoomID.String] = true
		}
	}
	for _, rm := range repo.db.rooms {
		c.TotalRooms++
		c.TotalCapacity += rm.Capacity
	}
	c.OccupiedRooms = len(occupied)
	for _, s := range repo.db.staff {
		c.TotalStaff++
		if s.Status == staff.StatusActive {
			c.ActiveStaff++
		}
	}
	return c, nil
}
