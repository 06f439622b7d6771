// Package buildinfo reports how the running binary was built, for the
// startup banner.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

type Info struct {
	Module       string
	GoVersion    string
	Revision     string
	RevisionTime string
	Modified     bool
}

// Collect reads the build metadata stamped into the binary. Fields stay
// empty when the binary was built outside version control.
func Collect() Info {
	out := Info{}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.Module = bi.Path
	out.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Revision = s.Value
		case "vcs.time":
			out.RevisionTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Banner formats the build metadata as a one-line startup message.
func (i Info) Banner() string {
	if i.Revision == "" {
		return fmt.Sprintf("%s built with %s (no VCS metadata)", i.Module, i.GoVersion)
	}

	mod := ""
	if i.Modified {
		mod = " (modified)"
	}

	return fmt.Sprintf("%s built with %s at commit %s from %s%s", i.Module, i.GoVersion, i.Revision, i.RevisionTime, mod)
}
