package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/room"
)

var roomColumns = []string{"id", "number", "floor", "capacity", "gender", "description", "created_at", "updated_at"}

type roomRow struct {
	ID          string    `db:"id"`
	Number      string    `db:"number"`
	Floor       int       `db:"floor"`
	Capacity    int       `db:"capacity"`
	Gender      string    `db:"gender"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row roomRow) toRoom(occupants []room.Occupant) room.Room {
	r := room.Room{
		ID:          row.ID,
		Number:      row.Number,
		Capacity:    row.Capacity,
		Gender:      room.Gender(row.Gender),
		Description: row.Description,
		Occupants:   occupants,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
	r.Derive()
	return r
}

func roomValues(r room.Room) map[string]interface{} {
	return map[string]interface{}{
		"number":      r.Number,
		"floor":       room.DeriveFloor(r.Number),
		"capacity":    r.Capacity,
		"gender":      string(r.Gender),
		"description": r.Description,
		"updated_at":  r.UpdatedAt,
	}
}

type occupantRow struct {
	room.Occupant
	RoomID string `db:"room_id"`
}

type roomRepository struct {
	db *sqlx.DB
}

var _ room.Repository = (*roomRepository)(nil) // interface compliance check

func NewRoomRepository(db *sqlx.DB) room.Repository {
	return &roomRepository{db: db}
}

// occupantsByRoom loads the occupants of the given rooms, ordered by last name then id.
func occupantsByRoom(ctx context.Context, q queryer, roomIDs []string) (map[string][]room.Occupant, error) {
	byRoom := make(map[string][]room.Occupant, len(roomIDs))
	if len(roomIDs) == 0 {
		return byRoom, nil
	}
	var rows []occupantRow
	stmt := psql.Select("id", "identifier", "first_name", "last_name", "gender", "type", "room_id").
		From("residents").
		Where(sq.Eq{"room_id": roomIDs}).
		OrderBy("last_name", "id")
	if err := selectx(ctx, q, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "selecting occupants")
	}
	for _, row := range rows {
		byRoom[row.RoomID] = append(byRoom[row.RoomID], row.Occupant)
	}
	return byRoom, nil
}

func getRoom(ctx context.Context, q queryer, id string) (room.Room, error) {
	var row roomRow
	err := getx(ctx, q, &row, psql.Select(roomColumns...).From("rooms").Where(sq.Eq{"id": id}))
	if errors.Is(err, sql.ErrNoRows) {
		return room.Room{}, core.NewNotFoundError("room", id)
	}
	if err != nil {
		return room.Room{}, errors.Wrap(err, "selecting room")
	}
	occs, err := occupantsByRoom(ctx, q, []string{id})
	if err != nil {
		return room.Room{}, err
	}
	return row.toRoom(occs[id]), nil
}

func (repo *roomRepository) CheckRoomUniqueness(ctx context.Context, number string, excludedID string) error {
	where := sq.And{sq.Expr("LOWER(number) = LOWER(?)", number)}
	if excludedID != "" {
		where = append(where, sq.NotEq{"id": excludedID})
	}
	var found []int
	if err := selectx(ctx, repo.db, &found, psql.Select("1").From("rooms").Where(where).Limit(1)); err != nil {
		return errors.Wrap(err, "checking room number")
	}
	if len(found) > 0 {
		return room.ErrNumberExists
	}
	return nil
}

func (repo *roomRepository) CreateRoom(ctx context.Context, r room.Room) (room.Room, error) {
	vals := roomValues(r)
	vals["id"] = r.ID
	vals["created_at"] = r.CreatedAt
	if _, err := execx(ctx, repo.db, psql.Insert("rooms").SetMap(vals)); err != nil {
		return room.Room{}, translate(err, "inserting room")
	}
	return getRoom(ctx, repo.db, r.ID)
}

func (repo *roomRepository) GetRoomByID(ctx context.Context, id string) (room.Room, error) {
	return getRoom(ctx, repo.db, id)
}

func (repo *roomRepository) QueryRooms(ctx context.Context, filter room.QueryFilter) ([]room.Room, error) {
	var rows []roomRow
	stmt := psql.Select(roomColumns...).From("rooms").Where(roomPredicate(filter)).OrderBy("floor", "number")
	if err := selectx(ctx, repo.db, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "selecting rooms")
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	occs, err := occupantsByRoom(ctx, repo.db, ids)
	if err != nil {
		return nil, err
	}

	rooms := make([]room.Room, len(rows))
	for i, row := range rows {
		rooms[i] = row.toRoom(occs[row.ID])
	}
	return rooms, nil
}

func (repo *roomRepository) FindRoomIDsByNumber(ctx context.Context, number string) ([]string, error) {
	var ids []string
	stmt := psql.Select("id").From("rooms").Where(contains(number, "number")).OrderBy("id")
	if err := selectx(ctx, repo.db, &ids, stmt); err != nil {
		return nil, errors.Wrap(err, "selecting room ids")
	}
	return ids, nil
}

func (repo *roomRepository) UpdateRoom(ctx context.Context, r room.Room) (room.Room, error) {
	var updated room.Room
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := lockRoom(ctx, tx, r.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return core.NewNotFoundError("room", r.ID)
			}
			return errors.Wrap(err, "locking room")
		}
		var occupied int
		if err := tx.GetContext(ctx, &occupied, "SELECT COUNT(*) FROM residents WHERE room_id = $1", r.ID); err != nil {
			return errors.Wrap(err, "counting occupants")
		}
		if occupied > r.Capacity {
			return room.ErrCapacityBelowOccupancy
		}
		stmt := psql.Update("rooms").SetMap(roomValues(r)).Where(sq.Eq{"id": r.ID})
		if _, err := execx(ctx, tx, stmt); err != nil {
			return translate(err, "updating room")
		}
		var err error
		updated, err = getRoom(ctx, tx, r.ID)
		return err
	})
	return updated, err
}

// DeleteRoom relies on ON DELETE SET NULL to unlink the occupants.
func (repo *roomRepository) DeleteRoom(ctx context.Context, id string) error {
	res, err := execx(ctx, repo.db, psql.Delete("rooms").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting room")
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewNotFoundError("room", id)
	}
	return nil
}

func (repo *roomRepository) FindOccupants(ctx context.Context, residentIDs []string) ([]room.Occupant, error) {
	occs := make([]room.Occupant, 0, len(residentIDs))
	if len(residentIDs) == 0 {
		return occs, nil
	}
	stmt := psql.Select("id", "identifier", "first_name", "last_name", "gender", "type").
		From("residents").
		Where(sq.Eq{"id": residentIDs})
	if err := selectx(ctx, repo.db, &occs, stmt); err != nil {
		return nil, errors.Wrap(err, "selecting occupants")
	}
	return occs, nil
}

func (repo *roomRepository) AssignOccupants(ctx context.Context, roomID string, residentIDs []string) (room.Room, error) {
	var assigned room.Room
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		capacity, err := lockRoom(ctx, tx, roomID)
		if errors.Is(err, sql.ErrNoRows) {
			return core.NewNotFoundError("room", roomID)
		}
		if err != nil {
			return errors.Wrap(err, "locking room")
		}
		if len(residentIDs) > capacity {
			return room.ErrCapacityExceeded
		}

		if len(residentIDs) > 0 {
			var found []string
			if err = selectx(ctx, tx, &found, psql.Select("id").From("residents").Where(sq.Eq{"id": residentIDs})); err != nil {
				return errors.Wrap(err, "selecting residents")
			}
			if missing := firstMissing(residentIDs, found); missing != "" {
				return core.NewNotFoundError("resident", missing)
			}
		}

		now := time.Now().UTC()
		unlink := psql.Update("residents").
			Set("room_id", nil).
			Set("updated_at", now).
			Where(sq.Eq{"room_id": roomID})
		if _, err = execx(ctx, tx, unlink); err != nil {
			return errors.Wrap(err, "unlinking occupants")
		}
		if len(residentIDs) > 0 {
			link := psql.Update("residents").
				Set("room_id", roomID).
				Set("updated_at", now).
				Where(sq.Eq{"id": residentIDs})
			if _, err = execx(ctx, tx, link); err != nil {
				return errors.Wrap(err, "linking occupants")
			}
		}

		assigned, err = getRoom(ctx, tx, roomID)
		return err
	})
	return assigned, err
}

func firstMissing(want, found []string) string {
	set := make(map[string]struct{}, len(found))
	for _, id := range found {
		set[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := set[id]; !ok {
			return id
		}
	}
	return ""
}
