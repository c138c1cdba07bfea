package quality

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
)

// commandDriver is the shared shape of the built-in drivers: a name, the
// extensions the tool applies to, the invocation argv, and a line parser.
type commandDriver struct {
	name       string
	extensions []string
	command    []string
	parse      func(text string, resolver gitpath.Resolver) (domain.LineRecords, error)
}

func (d commandDriver) Name() string                  { return d.name }
func (d commandDriver) SupportedExtensions() []string { return d.extensions }
func (d commandDriver) Command() []string             { return append([]string(nil), d.command...) }
func (d commandDriver) Installed() bool               { return binaryInstalled(d.command) }

func (d commandDriver) ParseReport(text string, resolver gitpath.Resolver) (domain.LineRecords, error) {
	return d.parse(text, resolver)
}

// pylint is invoked with an explicit message template so live output and
// pre-generated reports share one format:
//
//	path/to/file.py:123: [C0111(missing-docstring), Cls.method] message text
var pylintLine = regexp.MustCompile(`^(.+?):(\d+): \[(\w+)(?:\(([^)]*)\))?[^\]]*\](.*)$`)

const pylintTemplate = `--msg-template={path}:{line}: [{msg_id}({symbol}), {obj}] {msg}`

// NewPylint returns the pylint driver.
func NewPylint() Driver {
	return commandDriver{
		name:       "pylint",
		extensions: []string{"py"},
		command:    []string{"pylint", pylintTemplate},
		parse:      parsePylint,
	}
}

func parsePylint(text string, resolver gitpath.Resolver) (domain.LineRecords, error) {
	records := make(domain.LineRecords)
	var last *domain.Annotation

	for _, raw := range strings.Split(text, "\n") {
		m := pylintLine.FindStringSubmatch(raw)
		if m == nil {
			// Multi-line messages (duplicate-code snippets) continue the
			// previous violation rather than starting a new one.
			if last != nil && strings.TrimSpace(raw) != "" && !strings.HasPrefix(raw, "*") {
				last.Message += "\n" + raw
			}
			continue
		}
		line, err := strconv.Atoi(m[2])
		if err != nil || line <= 0 {
			continue
		}
		file := resolver.FromInvocation(m[1])
		message := m[3] + ": " + strings.TrimSpace(m[5])
		records[file] = append(records[file], domain.Annotation{
			Line:    line,
			Status:  domain.StatusViolation,
			Message: message,
		})
		last = &records[file][len(records[file])-1]
	}
	return records, nil
}

// pycodestyle reports one violation per line:
//
//	path/to/file.py:123:10: E401 multiple imports on one line
var columnarLine = regexp.MustCompile(`^([^:]+):(\d+):(\d+):? (.*)$`)

// NewPycodestyle returns the pycodestyle driver.
func NewPycodestyle() Driver {
	return commandDriver{
		name:       "pycodestyle",
		extensions: []string{"py"},
		command:    []string{"pycodestyle"},
		parse:      parseColumnar,
	}
}

// NewPyflakes returns the pyflakes driver. Modern pyflakes emits the same
// path:line:col: message shape as pycodestyle.
func NewPyflakes() Driver {
	return commandDriver{
		name:       "pyflakes",
		extensions: []string{"py"},
		command:    []string{"pyflakes"},
		parse:      parseColumnar,
	}
}

func parseColumnar(text string, resolver gitpath.Resolver) (domain.LineRecords, error) {
	records := make(domain.LineRecords)
	for _, raw := range strings.Split(text, "\n") {
		m := columnarLine.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		line, err := strconv.Atoi(m[2])
		if err != nil || line <= 0 {
			continue
		}
		file := resolver.FromInvocation(m[1])
		records[file] = append(records[file], domain.Annotation{
			Line:    line,
			Status:  domain.StatusViolation,
			Message: strings.TrimSpace(m[4]),
		})
	}
	return records, nil
}

// eslint is invoked with the compact formatter:
//
//	path/to/file.js: line 12, col 4, Error - Missing semicolon. (semi)
var eslintLine = regexp.MustCompile(`^(.+): line (\d+), col \d+, (.*)$`)

// NewESLint returns the eslint driver.
func NewESLint() Driver {
	return commandDriver{
		name:       "eslint",
		extensions: []string{"js", "jsx", "ts", "tsx"},
		command:    []string{"eslint", "--format=compact"},
		parse:      parseESLint,
	}
}

func parseESLint(text string, resolver gitpath.Resolver) (domain.LineRecords, error) {
	records := make(domain.LineRecords)
	for _, raw := range strings.Split(text, "\n") {
		m := eslintLine.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		line, err := strconv.Atoi(m[2])
		if err != nil || line <= 0 {
			continue
		}
		file := resolver.FromAbsolute(m[1])
		records[file] = append(records[file], domain.Annotation{
			Line:    line,
			Status:  domain.StatusViolation,
			Message: strings.TrimSpace(m[3]),
		})
	}
	return records, nil
}
