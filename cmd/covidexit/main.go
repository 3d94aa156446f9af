package main

import (
	"context"

	"covidexit/cmd/covidexit/commands"
	"covidexit/lib/osutil"
)

func main() {
	ctx, stop := osutil.SignalContext(context.Background())
	defer stop()
	commands.ExecuteContext(ctx)
}
