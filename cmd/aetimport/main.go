// Command aetimport rebuilds Aet scene files as host animation projects.
package main

import (
	"os"
	"time"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "aetimport"
)

// SessionStartTime names the session log file.
var SessionStartTime = time.Now()

func main() {
	os.Exit(run(os.Args[1:]))
}
