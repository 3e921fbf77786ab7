// Command vibanctl inspects and administers the boards, columns, hooks,
// and tasks that the viband daemon executes against. It talks to the
// database directly rather than to a running daemon process.
package main

import (
	"os"
	"runtime/debug"

	"github.com/nxy7/viban/internal/cli"
)

var version = "dev"

func main() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
