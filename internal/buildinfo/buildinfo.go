// Package buildinfo reports the version the binary was built from.
package buildinfo

import "runtime/debug"

// Version is set at link time with -ldflags "-X h2o/internal/buildinfo.Version=...".
var Version = ""

func init() {
	if Version != "" {
		return
	}
	Version = "dev"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}
