package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core"
)

type sequencer struct {
	db *sqlx.DB
}

var _ core.Sequencer = (*sequencer)(nil) // interface compliance check

func NewSequencer(db *sqlx.DB) core.Sequencer {
	return &sequencer{db: db}
}

// Next increments and reads the counter in a single statement.
func (s *sequencer) Next(ctx context.Context, name string) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `
		INSERT INTO counters (name, seq) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq`,
		name,
	)
	return n, errors.Wrapf(err, "incrementing counter %q", name)
}
