// Package version carries build metadata injected at link time.
package version

// Populated via -ldflags at release build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the version with its commit and build date.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
