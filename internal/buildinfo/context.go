// Package buildinfo holds build-time metadata injected through ldflags,
// kept apart from user configuration.
package buildinfo

// UnknownValue is reported for metadata the build did not set.
const UnknownValue = "unknown"

// Context is the version and build date of the running binary.
type Context struct {
	version   string
	buildDate string
}

// NewContext creates a Context. Empty values read back as UnknownValue.
func NewContext(version, buildDate string) *Context {
	return &Context{version: version, buildDate: buildDate}
}

// Version returns the git version tag of the build.
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns when the binary was built.
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// String formats the context for the version command.
func (c *Context) String() string {
	return c.Version() + " (built " + c.BuildDate() + ")"
}
