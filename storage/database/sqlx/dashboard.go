package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/dashboard"
	"github.com/trezcool/foyer/core/staff"
)

type dashboardRepository struct {
	db *sqlx.DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil) // interface compliance check

func NewDashboardRepository(db *sqlx.DB) dashboard.Repository {
	return &dashboardRepository{db: db}
}

type groupCount struct {
	Key   string `db:"key"`
	Count int    `db:"n"`
}

// Counts reads every aggregate in one repeatable-read transaction so the numbers agree with each other.
func (repo *dashboardRepository) Counts(ctx context.Context, now time.Time) (dashboard.Counts, error) {
	c := dashboard.Counts{
		ByGender: make(map[string]int),
		ByType:   make(map[string]int),
	}
	today := core.NewDate(now).Time

	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY"); err != nil {
			return errors.Wrap(err, "setting isolation level")
		}

		var rooms struct {
			Total    int `db:"total"`
			Capacity int `db:"capacity"`
		}
		if err := tx.GetContext(ctx, &rooms, "SELECT COUNT(*) AS total, COALESCE(SUM(capacity), 0) AS capacity FROM rooms"); err != nil {
			return errors.Wrap(err, "counting rooms")
		}
		c.TotalRooms, c.TotalCapacity = rooms.Total, rooms.Capacity

		var residents struct {
			Total         int `db:"total"`
			Active        int `db:"active"`
			OccupiedBeds  int `db:"occupied_beds"`
			OccupiedRooms int `db:"occupied_rooms"`
		}
		err := tx.GetContext(ctx, &residents, `
			SELECT COUNT(*) AS total,
			       COUNT(*) FILTER (WHERE arrival_date <= $1 AND departure_date >= $1) AS active,
			       COUNT(room_id) AS occupied_beds,
			       COUNT(DISTINCT room_id) AS occupied_rooms
			FROM residents`,
			today,
		)
		if err != nil {
			return errors.Wrap(err, "counting residents")
		}
		c.TotalResidents, c.ActiveResidents = residents.Total, residents.Active
		c.OccupiedBeds, c.OccupiedRooms = residents.OccupiedBeds, residents.OccupiedRooms

		for col, dest := range map[string]map[string]int{"gender": c.ByGender, "type": c.ByType} {
			var groups []groupCount
			// col is one of the two literals above
			if err := tx.SelectContext(ctx, &groups, "SELECT "+col+" AS key, COUNT(*) AS n FROM residents GROUP BY "+col); err != nil {
				return errors.Wrapf(err, "counting residents by %s", col)
			}
			for _, g := range groups {
				dest[g.Key] = g.Count
			}
		}

		var members struct {
			Total  int `db:"total"`
			Active int `db:"active"`
		}
		err = tx.GetContext(ctx, &members,
			"SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = $1) AS active FROM staff", string(staff.StatusActive),
		)
		if err != nil {
			return errors.Wrap(err, "counting staff")
		}
		c.TotalStaff, c.ActiveStaff = members.Total, members.Active
		return nil
	})
	return c, err
}
