package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the game server"`
	Records RecordsCmd       `cmd:"" help:"List persisted game records"`
	Deck    DeckCmd          `cmd:"" help:"Print a shuffled deck"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("millebornes"),
		kong.Description("Realtime multiplayer 1000 Bornes game server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
