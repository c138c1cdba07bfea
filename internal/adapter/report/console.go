package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/diffscope/diffscope/internal/domain"
)

// ConsoleRenderer writes a text report to a writer, optionally colorized.
type ConsoleRenderer struct {
	out      io.Writer
	colorize bool
}

// NewConsoleRenderer constructs a console renderer. colorize should be true
// only when the writer is a terminal.
func NewConsoleRenderer(out io.Writer, colorize bool) *ConsoleRenderer {
	return &ConsoleRenderer{out: out, colorize: colorize}
}

const rule = "-------------"

// Render writes the report.
func (r *ConsoleRenderer) Render(m Model) error {
	w := r.out

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, m.Title())
	if m.Mode == ModeQuality {
		fmt.Fprintf(w, "Quality Report: %s\n", m.SourceName)
	}
	if m.CompareBranch != "" {
		fmt.Fprintf(w, "Diff: %s...HEAD, staged and unstaged changes\n", m.CompareBranch)
	}
	fmt.Fprintln(w, rule)

	if len(m.Result.Files) == 0 {
		fmt.Fprintln(w, "No lines with", lower(m.PercentLabel()), "information in this diff.")
		fmt.Fprintln(w, rule)
		return nil
	}

	for _, fr := range m.Result.Files {
		r.renderFile(w, m, fr)
	}

	fmt.Fprintln(w, rule)
	failing := m.Result.TotalAnnotatable - m.Result.TotalPassing
	fmt.Fprintf(w, "Total:   %d %s\n", m.Result.TotalAnnotatable, plural(m.Result.TotalAnnotatable, "line", "lines"))
	fmt.Fprintf(w, "%s: %d %s\n", m.FailLabel(), failing, plural(failing, "line", "lines"))
	fmt.Fprintf(w, "%s: %s%%\n", m.PercentLabel(), formatPercent(m.Result.TotalPercent))
	fmt.Fprintln(w, rule)
	return nil
}

func (r *ConsoleRenderer) renderFile(w io.Writer, m Model, fr domain.FileResult) {
	if fr.NotFound {
		fmt.Fprintf(w, "%s (not found in report)\n", fr.Path)
		return
	}

	pct := formatPercent(fr.Percent) + "%"
	if r.colorize {
		if len(fr.Failing) == 0 {
			pct = color.GreenString("%s", pct)
		} else {
			pct = color.RedString("%s", pct)
		}
	}

	switch {
	case m.Mode == ModeQuality && len(fr.Failing) > 0:
		fmt.Fprintf(w, "%s (%s):\n", fr.Path, pct)
		for _, fl := range fr.Failing {
			for _, msg := range fl.Messages {
				fmt.Fprintf(w, "    %s:%d: %s\n", fr.Path, fl.Line, msg)
			}
		}
	case len(fr.Failing) > 0:
		fmt.Fprintf(w, "%s (%s): Missing lines %s\n", fr.Path, pct, missingLineList(fr.Failing))
	default:
		fmt.Fprintf(w, "%s (%s)\n", fr.Path, pct)
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
