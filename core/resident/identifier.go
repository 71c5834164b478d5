package resident

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core"
)

// SequenceName is the counter shared by every resident identifier, whatever the cycle.
const SequenceName = "resident"

const externalPrefix = "EXT"

// FormatIdentifier renders `{PREFIX}{yy}-{seq}`, e.g. SEP24-0007.
func FormatIdentifier(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s%02d-%04d", strings.ToUpper(prefix), year%100, seq)
}

// IdentifierGenerator builds resident identifiers from the global resident sequence.
type IdentifierGenerator struct {
	seq core.Sequencer
}

func NewIdentifierGenerator(seq core.Sequencer) *IdentifierGenerator {
	return &IdentifierGenerator{seq: seq}
}

// Next draws the next sequence number and formats it for the resident's cycle.
// External residents are prefixed by EXT and the arrival year.
func (g *IdentifierGenerator) Next(ctx context.Context, typ Type, cycle Cycle, sessionYear string, arrival time.Time) (string, error) {
	prefix := string(cycle)
	year := arrival.Year()
	if typ == TypeExternal {
		prefix = externalPrefix
	} else if y, err := strconv.Atoi(sessionYear); err == nil {
		year = y
	}

	n, err := g.seq.Next(ctx, SequenceName)
	if err != nil {
		return "", errors.Wrap(err, "drawing resident sequence")
	}
	return FormatIdentifier(prefix, year, n), nil
}
