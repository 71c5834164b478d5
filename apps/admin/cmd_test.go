package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/foyer/apps/api/echo"
	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/room"
	inmemdb "github.com/trezcool/foyer/storage/database/inmem"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	conf := &core.Config{AppName: "Foyer", SecretKey: "test-secret"}
	out := new(bytes.Buffer)
	return &commandLine{
		conf:  conf,
		db:    new(sqlx.DB),
		rooms: room.NewService(inmemdb.NewRoomRepository(inmemdb.Open()), validator.New(), conf),
		out:   out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		require.Error(t, err)
		assert.Equal(t, tt.wantErrStr, err.Error())
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(_ *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_rooms_wing", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	t.Run("database disabled", func(t *testing.T) {
		cli.db = nil
		assert.Equal(t, errNoDatabase, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_seedRooms(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no range", args: []string{"seedrooms"}, wantErr: errHelp},
		{name: "reversed range", args: []string{"seedrooms", "-from", "110", "-to", "101"}, wantErr: errHelp},
		{name: "bad flag", args: []string{"seedrooms", "-from", "lol"}, wantErr: errHelp},
		{name: "too many", args: []string{"seedrooms", "-from", "1", "-to", "1000"}, wantErrStr: "cannot seed more than 200 rooms at once"},
		{name: "first batch", args: []string{"seedrooms", "-from", "101", "-to", "103", "-capacity", "2", "-gender", "girls"}},
		{name: "overlapping batch", args: []string{"seedrooms", "-from", "103", "-to", "104", "-capacity", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
	assert.Contains(t, out.String(), "skipped 103: already exists")
	assert.Contains(t, out.String(), "1 created, 1 skipped")

	rooms, err := cli.rooms.Query(context.Background(), room.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, rooms, 4)
	byNumber := make(map[string]room.Room, len(rooms))
	for _, r := range rooms {
		byNumber[r.Number] = r
	}
	assert.Equal(t, 2, byNumber["103"].Capacity)
	assert.Equal(t, room.GenderGirls, byNumber["103"].Gender)
	assert.Equal(t, 3, byNumber["104"].Capacity)
	assert.Equal(t, room.GenderMixed, byNumber["104"].Gender)

	t.Run("invalid capacity", func(t *testing.T) {
		err := cli.run([]string{"admin", "seedrooms", "-from", "201", "-to", "201", "-capacity", "9"})
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "creating room 201"))
	})
}

func Test_commandLine_token(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no subject", args: []string{"token"}, wantErr: errHelp},
		{name: "unknown role", args: []string{"token", "-subject", "u1", "-roles", "root"}, wantErrStr: `unknown role "root"`},
		{name: "admin", args: []string{"token", "-subject", "u1", "-username", "ops", "-roles", "Admin, staff", "-ttl", "1h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	claims := new(echoapi.Claims)
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, []string{echoapi.RoleAdmin, echoapi.RoleStaff}, claims.Roles)
	assert.WithinDuration(t, time.Now().Add(time.Hour), time.Unix(claims.ExpiresAt, 0), time.Minute)
}
