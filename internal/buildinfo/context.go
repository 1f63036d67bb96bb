// Package buildinfo carries build-time metadata that is not user configuration.
package buildinfo

import "fmt"

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// Context holds the values set through -ldflags at build time.
type Context struct {
	version   string
	buildDate string
	commit    string
}

// NewContext creates a Context. Empty values are reported as UnknownValue.
func NewContext(version, buildDate, commit string) *Context {
	return &Context{version: version, buildDate: buildDate, commit: commit}
}

// Version returns the release version.
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns the time the binary was built.
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// Commit returns the source revision.
func (c *Context) Commit() string {
	if c == nil || c.commit == "" {
		return UnknownValue
	}
	return c.commit
}

func (c *Context) String() string {
	return fmt.Sprintf("trailtracker %s (commit %s, built %s)", c.Version(), c.Commit(), c.BuildDate())
}
