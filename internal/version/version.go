package version

import "runtime/debug"

// Version is the current Talaria version.
var Version = "0.0.0-dev"

func init() {
	// Look through the binary's dependencies to find the current Talaria
	// version.
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path == "github.com/dogmatiq/talaria" {
				Version = dep.Version
			}
		}
	}
}
