package main

import "github.com/trezcool/foyer/storage/database"

var gooseRunFunc = database.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
