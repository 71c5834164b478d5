package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

func selectx(ctx context.Context, q queryer, dest interface{}, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func getx(ctx context.Context, q queryer, dest interface{}, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, q, dest, query, args...)
}

func execx(ctx context.Context, q queryer, stmt sq.Sqlizer) (sql.Result, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return q.ExecContext(ctx, query, args...)
}

// withTx runs fn in a transaction, rolled back if fn fails.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// affectedOne reports whether exactly one row was touched.
func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "reading affected rows")
	}
	return n == 1, nil
}

// lockRoom locks the room row for the rest of the transaction and returns its capacity.
func lockRoom(ctx context.Context, tx *sqlx.Tx, roomID string) (int, error) {
	var capacity int
	err := tx.GetContext(ctx, &capacity, "SELECT capacity FROM rooms WHERE id = $1 FOR UPDATE", roomID)
	return capacity, err
}
