package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/skillforge/gateway/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|down|status - manage the state store schema")
	fmt.Fprintln(cli.out, "  mintoken -subject ID [-role ROLE] [-store ID] [-ttl DURATION] - mint a dev session token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])
	case "mintoken":
		return cli.mintoken(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
