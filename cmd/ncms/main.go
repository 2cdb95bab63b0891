package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ncms/cmd/ncms/commands"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
	"git.home.luguber.info/inful/ncms/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	ctx := kong.Parse(cli,
		kong.Name("ncms"),
		kong.Description("Export Notion articles to the PHP site and publish them."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
		kong.Bind(global),
	)

	err := ctx.Run(global, cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
