package domain

import "fmt"

// ParseError reports malformed diff input. It names the section (file header
// or hunk header) that could not be parsed; parsing does not attempt partial
// recovery within a file section.
type ParseError struct {
	Section string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed diff at %q: %s", e.Section, e.Reason)
}

// FormatError reports a coverage or violation report whose content does not
// match the schema of its declared source.
type FormatError struct {
	Source string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s report format: %s", e.Source, e.Reason)
}

// UnrecognizedToolError reports a quality-tool name with no registered driver.
type UnrecognizedToolError struct {
	Name string
}

func (e *UnrecognizedToolError) Error() string {
	return fmt.Sprintf("Quality tool not recognized: '%s'", e.Name)
}

// ToolNotInstalledError reports a registered driver whose external binary is
// missing and for which no pre-generated report was supplied.
type ToolNotInstalledError struct {
	Name string
}

func (e *ToolNotInstalledError) Error() string {
	return fmt.Sprintf("%s is not installed", e.Name)
}
