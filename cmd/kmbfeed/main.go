// Command kmbfeed fetches KMB bus data and replays the daily POI feed.
package main

import (
	"errors"
	"os"

	"github.com/ppiankov/kmbfeed/internal/cli"
)

// Set by -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err == nil {
		return
	}
	var ee *cli.ExitError
	if errors.As(err, &ee) {
		os.Exit(ee.Code)
	}
	os.Exit(1)
}
