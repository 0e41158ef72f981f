// Package version exposes the version stamped into the binary: either set
// explicitly at build time, or the VCS revision Go embeds.
package version

import "runtime/debug"

// Version can be set at build time:
// go build -ldflags "-X github.com/dissonaut/dissonaut/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision of the build, with a -dirty suffix when the
// working tree was modified, or empty when no build info is available.
var Hash = func() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		modified := false
		for _, setting := range info.Settings {
			if setting.Key == "vcs.modified" && setting.Value == "true" {
				modified = true
				break
			}
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				shortHash := setting.Value[:7]
				if modified {
					return shortHash + "-dirty"
				}
				return shortHash
			}
		}
	}
	return ""
}()

// VersionOrHash is what the -v flags of the commands print.
var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Hash
}()
