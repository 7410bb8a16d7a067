package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
	"github.com/jurnalspendapol-design/rubikon-mobile/core/user"
	logsvc "github.com/jurnalspendapol-design/rubikon-mobile/services/logger"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/database"
	inmemdb "github.com/jurnalspendapol-design/rubikon-mobile/storage/database/inmem"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/postgrest"
	"github.com/jurnalspendapol-design/rubikon-mobile/storage/repos"
)

func main() {
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	translator := core.NewTranslator(conf.Locale)
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up the data store
	var store core.DataStore
	var db *sqlx.DB
	switch conf.Backend.Driver {
	case core.BackendRest:
		store = postgrest.NewClient(conf)
	case core.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), conf.Backend.Timeout)
		var err error
		db, err = database.Open(ctx, conf)
		cancel()
		errAndDie(stdLogger, err)
		defer db.Close()
		store = database.NewStore(db)
	default:
		stdLogger.Printf("warning: %q backend, changes are lost on exit", conf.Backend.Driver)
		store = inmemdb.Open()
	}

	// start CLI
	cli := commandLine{
		conf:   conf,
		db:     db,
		usrSvc: user.NewService(repos.NewUserRepository(store), validate, logger, conf),
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		if db != nil {
			_ = db.Close()
		}
		os.Exit(1)
	}
}

func errAndDie(logger *log.Logger, err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
