// Package settings provides build metadata, runtime configuration, and
// context helpers used across the kliff CLI, TUI, and server.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "kliff"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigFile  string
	Interactive bool
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults used when kliff is started from the command line.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Interactive: false,
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
