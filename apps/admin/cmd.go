package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/foyer/apps/api/echo"
	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/room"
)

var (
	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("database is disabled")
)

type commandLine struct {
	conf  *core.Config
	db    *sqlx.DB      // nil when the database is disabled
	rooms *room.Service // idem
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) against the database")
	fmt.Fprintln(cli.out, "  seedrooms -from 101 -to 110 -capacity 2 -gender boys - create the missing rooms of a range")
	fmt.Fprintln(cli.out, "  token -subject ID [-username NAME] [-email EMAIL] [-roles staff,admin] [-ttl 24h] - issue an API token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seedrooms", flag.ContinueOnError)
	seedCmd.SetOutput(cli.out)
	seedFrom := seedCmd.Int("from", 0, "First room number of the range.")
	seedTo := seedCmd.Int("to", 0, "Last room number of the range (included).")
	seedCapacity := seedCmd.Int("capacity", 2, "Number of beds of each room.")
	seedGender := seedCmd.String("gender", string(room.GenderMixed), "boys, girls or mixed.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenSubject := tokenCmd.String("subject", "", "The id of the token holder.")
	tokenUsername := tokenCmd.String("username", "", "The username of the token holder.")
	tokenEmail := tokenCmd.String("email", "", "The email of the token holder.")
	tokenRoles := tokenCmd.String("roles", echoapi.RoleStaff, "Comma separated roles: staff, admin.")
	tokenTTL := tokenCmd.Duration("ttl", 24*time.Hour, "Validity of the token.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seedrooms":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *seedFrom <= 0 || *seedTo < *seedFrom {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seedRooms(*seedFrom, *seedTo, *seedCapacity, room.Gender(*seedGender))
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenSubject == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSubject, *tokenUsername, *tokenEmail, splitRoles(*tokenRoles), *tokenTTL)
	default:
		cli.printUsage()
		return errHelp
	}
}

func splitRoles(s string) []string {
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
