package main

import (
	"github.com/alecthomas/kong"

	"github.com/wdromtool/romtool/pkg/cmdutil"
)

const (
	programName = "romtool"
	programDesc = "Western Digital firmware ROM forensic tool"
)

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.NamedMapper("accessiblefile", cmdutil.AccessibleFileMapper()),
		kong.Resolvers(cmdutil.ResolveConfirmDestructive()),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	err := ctx.Run(&context{Verbose: cli.Verbose})
	ctx.FatalIfErrorf(err)
}
