package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds the smartbudget subcommands.
func register(c *subcommands.Commander) {
	c.Register(&summaryCmd{}, "ledger")
	c.Register(&analysisCmd{}, "ledger")

	c.Register(&exportCmd{}, "state")
	c.Register(&importCmd{}, "state")

	c.Register(&exportBigQueryCmd{}, "mirrors")
	c.Register(&syncNotionCmd{}, "mirrors")
}
