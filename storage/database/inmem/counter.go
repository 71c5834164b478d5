package inmemdb

import (
	"context"

	"github.com/trezcool/foyer/core"
)

type sequencer struct {
	db *DB
}

var _ core.Sequencer = (*sequencer)(nil)

func NewSequencer(db *DB) core.Sequencer {
	return &sequencer{db: db}
}

func (s *sequencer) Next(_ context.Context, name string) (int64, error) {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	s.db.counters[name]++
	return s.db.counters[name], nil
}
