package quality

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
)

// RunOptions shapes one quality-tool invocation.
type RunOptions struct {
	// Files are the root-relative changed files; the runner filters them by
	// the driver's extensions and the exclude globs before handing them to
	// the tool.
	Files []string
	// Options is a raw flag string passed through to the tool unaltered.
	Options string
	// Excludes are doublestar globs removing files from the tool's input.
	Excludes []string
}

// Runner produces a normalized quality report, either from a pre-generated
// report text or by invoking the tool itself. Both paths yield the identical
// report shape.
type Runner struct {
	registry *Registry
	resolver gitpath.Resolver
}

// NewRunner builds a runner over a registry and path resolver.
func NewRunner(registry *Registry, resolver gitpath.Resolver) *Runner {
	return &Runner{registry: registry, resolver: resolver}
}

// Report resolves the tool name and builds its report. pregenerated, when
// non-nil, is the tool's own output supplied by the caller and the driver is
// not invoked; otherwise the tool must be installed.
func (r *Runner) Report(ctx context.Context, tool string, pregenerated []byte, opts RunOptions) (domain.Report, error) {
	driver, err := r.registry.Lookup(tool)
	if err != nil {
		return domain.Report{}, err
	}

	var text string
	if pregenerated != nil {
		text = string(pregenerated)
	} else {
		if !driver.Installed() {
			return domain.Report{}, &domain.ToolNotInstalledError{Name: driver.Name()}
		}
		text, err = r.invoke(ctx, driver, opts)
		if err != nil {
			return domain.Report{}, err
		}
	}

	lines, err := driver.ParseReport(text, r.resolver)
	if err != nil {
		return domain.Report{}, err
	}

	return domain.Report{
		Name:             driver.Name(),
		Lines:            lines,
		MeasuresAllLines: true,
		Extensions:       driver.SupportedExtensions(),
	}, nil
}

// invoke runs the driver's command over the filtered file set. Quality tools
// exit non-zero when they find violations, so a non-zero exit with output is
// a result, not a failure.
func (r *Runner) invoke(ctx context.Context, driver Driver, opts RunOptions) (string, error) {
	files := FilterFiles(opts.Files, driver.SupportedExtensions(), opts.Excludes)
	if len(files) == 0 {
		return "", nil
	}

	argv := driver.Command()
	if opts.Options != "" {
		argv = append(argv, strings.Fields(strings.Trim(opts.Options, `"`))...)
	}
	argv = append(argv, files...)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("run %s: %w", driver.Name(), err)
		}
	}
	return stdout.String(), nil
}

// FilterFiles keeps files matching any of the extensions and none of the
// exclude globs. An empty extension list keeps everything.
func FilterFiles(files, extensions, excludes []string) []string {
	kept := make([]string, 0, len(files))
	for _, file := range files {
		if !matchesExtension(file, extensions) {
			continue
		}
		if matchesAnyGlob(file, excludes) {
			continue
		}
		kept = append(kept, file)
	}
	return kept
}

func matchesExtension(file string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(file, "."+ext) {
			return true
		}
	}
	return false
}

func matchesAnyGlob(file string, globs []string) bool {
	for _, pattern := range globs {
		if ok, err := doublestar.Match(pattern, file); err == nil && ok {
			return true
		}
	}
	return false
}
