// Command git-hotspots ranks the functions of a Git repository by how often
// they changed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arsham/git-hotspots/cmd"
	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/internal/iocache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()

	iocache.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Profiling failed", perr)
	}
	if err != nil {
		contract.LogFatal(cmd.FatalMessage(err), err)
	}
}
