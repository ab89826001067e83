package main

import (
	"log"
	"os"

	"github.com/skillforge/gateway/core"
)

func main() {
	conf := core.NewConfig()
	cli := &commandLine{conf: conf, out: os.Stdout}
	if err := cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
