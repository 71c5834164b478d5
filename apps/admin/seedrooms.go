package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/trezcool/foyer/core/room"
)

const maxSeededRooms = 200

// seedRooms creates the rooms numbered from..to. Numbers already taken are skipped.
func (cli *commandLine) seedRooms(from, to, capacity int, gender room.Gender) error {
	if cli.rooms == nil {
		return errNoDatabase
	}
	if to-from+1 > maxSeededRooms {
		return fmt.Errorf("cannot seed more than %d rooms at once", maxSeededRooms)
	}

	ctx := context.Background()
	var created, skipped int
	for n := from; n <= to; n++ {
		number := strconv.Itoa(n)
		r, err := cli.rooms.Create(ctx, room.NewRoom{Number: number, Capacity: capacity, Gender: gender})
		switch {
		case errors.Is(err, room.ErrNumberExists):
			skipped++
			fmt.Fprintf(cli.out, "skipped %s: already exists\n", number)
		case err != nil:
			return fmt.Errorf("creating room %s: %w", number, err)
		default:
			created++
			fmt.Fprintf(cli.out, "created %s (floor %d, %d beds)\n", r.Number, r.Floor, r.Beds)
		}
	}
	fmt.Fprintf(cli.out, "%d created, %d skipped\n", created, skipped)
	return nil
}
