package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/schedule"
)

var scheduleColumns = []string{
	"id", "staff_id", "day", "day_off", "start_hour", "end_hour", "tasks", "notes", "created_at", "updated_at",
}

type entryRow struct {
	ID        string         `db:"id"`
	StaffID   string         `db:"staff_id"`
	Day       string         `db:"day"`
	DayOff    bool           `db:"day_off"`
	StartHour null.Int       `db:"start_hour"`
	EndHour   null.Int       `db:"end_hour"`
	Tasks     pq.StringArray `db:"tasks"`
	Notes     string         `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row entryRow) toEntry() schedule.Entry {
	tasks := []string(row.Tasks)
	if tasks == nil {
		tasks = []string{}
	}
	return schedule.Entry{
		ID:        row.ID,
		StaffID:   row.StaffID,
		Day:       schedule.Day(row.Day),
		DayOff:    row.DayOff,
		StartHour: row.StartHour,
		EndHour:   row.EndHour,
		Tasks:     tasks,
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func entryValues(e schedule.Entry) map[string]interface{} {
	tasks := e.Tasks
	if tasks == nil {
		tasks = []string{}
	}
	return map[string]interface{}{
		"day":        string(e.Day),
		"day_off":    e.DayOff,
		"start_hour": e.StartHour,
		"end_hour":   e.EndHour,
		"tasks":      pq.StringArray(tasks),
		"notes":      e.Notes,
		"updated_at": e.UpdatedAt,
	}
}

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) CheckEntryUniqueness(ctx context.Context, staffID string, day schedule.Day, excludedID string) error {
	where := sq.And{sq.Eq{"staff_id": staffID, "day": string(day)}}
	if excludedID != "" {
		where = append(where, sq.NotEq{"id": excludedID})
	}
	var found []int
	if err := selectx(ctx, repo.db, &found, psql.Select("1").From("schedules").Where(where).Limit(1)); err != nil {
		return errors.Wrap(err, "checking schedule day")
	}
	if len(found) > 0 {
		return schedule.ErrDayTaken
	}
	return nil
}

func getEntry(ctx context.Context, q queryer, id string) (schedule.Entry, error) {
	var row entryRow
	err := getx(ctx, q, &row, psql.Select(scheduleColumns...).From("schedules").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Entry{}, core.NewNotFoundError("schedule", id)
	}
	if err != nil {
		return schedule.Entry{}, errors.Wrap(err, "selecting schedule")
	}
	return row.toEntry(), nil
}

func (repo *scheduleRepository) CreateEntry(ctx context.Context, e schedule.Entry) (schedule.Entry, error) {
	vals := entryValues(e)
	vals["id"] = e.ID
	vals["staff_id"] = e.StaffID
	vals["created_at"] = e.CreatedAt
	if _, err := execx(ctx, repo.db, psql.Insert("schedules").SetMap(vals)); err != nil {
		if isForeignKeyViolation(err) {
			return schedule.Entry{}, core.NewNotFoundError("staff", e.StaffID)
		}
		return schedule.Entry{}, translate(err, "inserting schedule")
	}
	return getEntry(ctx, repo.db, e.ID)
}

func (repo *scheduleRepository) GetEntryByID(ctx context.Context, id string) (schedule.Entry, error) {
	return getEntry(ctx, repo.db, id)
}

func (repo *scheduleRepository) QueryEntries(ctx context.Context, staffID string) ([]schedule.Entry, error) {
	stmt := psql.Select(scheduleColumns...).From("schedules")
	if staffID != "" {
		stmt = stmt.Where(sq.Eq{"staff_id": staffID})
	}
	var rows []entryRow
	if err := selectx(ctx, repo.db, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "selecting schedules")
	}
	entries := make([]schedule.Entry, len(rows))
	for i, row := range rows {
		entries[i] = row.toEntry()
	}
	schedule.SortEntries(entries)
	return entries, nil
}

func (repo *scheduleRepository) UpdateEntry(ctx context.Context, e schedule.Entry) (schedule.Entry, error) {
	res, err := execx(ctx, repo.db, psql.Update("schedules").SetMap(entryValues(e)).Where(sq.Eq{"id": e.ID}))
	if err != nil {
		return schedule.Entry{}, translate(err, "updating schedule")
	}
	ok, err := affectedOne(res)
	if err != nil {
		return schedule.Entry{}, err
	}
	if !ok {
		return schedule.Entry{}, core.NewNotFoundError("schedule", e.ID)
	}
	return getEntry(ctx, repo.db, e.ID)
}

func (repo *scheduleRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := execx(ctx, repo.db, psql.Delete("schedules").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting schedule")
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewNotFoundError("schedule", id)
	}
	return nil
}
