// Package quality wraps external static-analysis tools behind one driver
// interface and a name-keyed registry. A driver knows the file extensions
// its tool applies to, how to invoke the tool, and how to parse the tool's
// native report text into per-line violations.
package quality

import (
	"os/exec"
	"sort"

	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
)

// Driver adapts one quality tool.
type Driver interface {
	// Name is the registry key and the name shown in errors.
	Name() string
	// SupportedExtensions lists extensions (without dot) the tool applies to.
	SupportedExtensions() []string
	// Installed reports whether the external binary can be invoked.
	Installed() bool
	// Command returns the argv prefix used to invoke the tool.
	Command() []string
	// ParseReport converts the tool's native output into root-relative line
	// records. Pre-generated reports and live tool output go through the
	// same path and produce the same shape.
	ParseReport(text string, resolver gitpath.Resolver) (domain.LineRecords, error)
}

// Registry is an explicit registration table from tool name to driver,
// built at startup. It is not safe for concurrent mutation; populate it
// once, then treat lookups as read-only.
type Registry struct {
	drivers map[string]Driver
}

// NewRegistry builds a registry holding the given drivers.
func NewRegistry(drivers ...Driver) *Registry {
	r := &Registry{drivers: make(map[string]Driver, len(drivers))}
	for _, d := range drivers {
		r.Register(d)
	}
	return r
}

// DefaultRegistry returns the registry of built-in drivers.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewPylint(),
		NewPycodestyle(),
		NewPyflakes(),
		NewESLint(),
	)
}

// Register adds or replaces a driver under its name.
func (r *Registry) Register(d Driver) {
	r.drivers[d.Name()] = d
}

// Unregister removes a driver; used by tests restoring state around an
// assertion.
func (r *Registry) Unregister(name string) {
	delete(r.drivers, name)
}

// Lookup finds the driver for a user-supplied tool name. An unknown name is
// an UnrecognizedToolError, never an internal fault.
func (r *Registry) Lookup(name string) (Driver, error) {
	d, ok := r.drivers[name]
	if !ok {
		return nil, &domain.UnrecognizedToolError{Name: name}
	}
	return d, nil
}

// Names returns the registered tool names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// binaryInstalled checks PATH for the first element of a command.
func binaryInstalled(command []string) bool {
	if len(command) == 0 {
		return false
	}
	_, err := exec.LookPath(command[0])
	return err == nil
}

// NoopDriver validates the registry and extension plumbing: it reports zero
// annotations for any input and is never installed.
type NoopDriver struct {
	name       string
	extensions []string
	command    []string
}

// NewNoopDriver constructs a do-nothing driver under an arbitrary name.
func NewNoopDriver(name string, extensions, command []string) NoopDriver {
	return NoopDriver{name: name, extensions: extensions, command: command}
}

func (d NoopDriver) Name() string                  { return d.name }
func (d NoopDriver) SupportedExtensions() []string { return d.extensions }
func (d NoopDriver) Installed() bool               { return false }
func (d NoopDriver) Command() []string             { return d.command }

func (d NoopDriver) ParseReport(string, gitpath.Resolver) (domain.LineRecords, error) {
	return make(domain.LineRecords), nil
}
