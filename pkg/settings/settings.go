// Package settings holds build metadata and the per-run options shared by the
// gridx CLI and the library entry points.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "gridx"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, version and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the options of a single execution.
type Run struct {
	MinLogLevel int8
	LogFile     string
	ConfigPath  string
	StatePath   string
	Interactive bool
	NoColor     bool
}

// NewCliParams returns the defaults used by the CLI before flags are applied.
func NewCliParams() *Run {
	return &Run{MinLogLevel: 0}
}

// DebugEnabled reports whether verbose grid logging is on.
func (r *Run) DebugEnabled() bool {
	return r != nil && r.MinLogLevel < 0
}
