package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/foyer/core"
	"github.com/trezcool/foyer/core/room"
	logsvc "github.com/trezcool/foyer/services/logger"
	"github.com/trezcool/foyer/storage/database"
	sqlxrepos "github.com/trezcool/foyer/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up zap: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(!conf.Debug)

	cli := commandLine{conf: conf, out: os.Stdout}

	// set up DB
	if conf.Database.Enabled {
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer func() { _ = db.Close() }()

		validate := validator.New()
		cli.db = db
		cli.rooms = room.NewService(sqlxrepos.NewRoomRepository(db), validate, conf)
	}

	// start CLI
	err = cli.run(os.Args)
	logger.Sync()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
