package main

import (
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/skillforge/gateway/storage/state/sqlxstore"
)

func (cli *commandLine) migrate(args []string) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}

	db, err := sqlxstore.Open(cli.conf.Database)
	if err != nil {
		return errors.Wrap(err, "opening state database")
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(sqlxstore.Migrations)
	if err = goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}

	switch cmd {
	case "up":
		err = goose.Up(db.DB, "migrations")
	case "down":
		err = goose.Down(db.DB, "migrations")
	case "status":
		err = goose.Status(db.DB, "migrations")
	default:
		cli.printUsage()
		return errHelp
	}
	return errors.Wrapf(err, "running migrate %s", cmd)
}
