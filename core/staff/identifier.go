package staff

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const maxIDAttempts = 10

var (
	ErrEmployeeIDExhausted = errors.New("could not generate a unique employee id")

	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
	rngMu sync.Mutex

	// randDigitsFunc draws the 4 random digits of an employee id.
	randDigitsFunc = func() int { // mockable
		rngMu.Lock()
		defer rngMu.Unlock()
		return rng.Intn(10000)
	}
)

// FormatEmployeeID renders `EMP{yyyy}{dddd}`.
func FormatEmployeeID(year, digits int) string {
	return fmt.Sprintf("EMP%d%04d", year, digits)
}

// generateEmployeeID draws random ids until `exists` reports a free one.
func generateEmployeeID(ctx context.Context, year int, exists func(ctx context.Context, id string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := FormatEmployeeID(year, randDigitsFunc())
		taken, err := exists(ctx, id)
		if err != nil {
			return "", errors.Wrap(err, "checking employee id")
		}
		if !taken {
			return id, nil
		}
	}
	return "", ErrEmployeeIDExhausted
}
