package main

import (
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/storage/database"
)

var (
	migrateFunc = database.Migrate // mockable

	errNoDatabase = errors.New("migrations need the postgres backend")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return migrateFunc(cli.db, args[0], args[1:]...)
}
