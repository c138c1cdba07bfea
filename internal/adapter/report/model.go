// Package report renders correlation results to the console and to HTML.
// Rendering is a boundary: it consumes the finished result and never feeds
// back into correlation.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diffscope/diffscope/internal/domain"
)

// Mode selects the vocabulary of a rendered report.
type Mode int

const (
	ModeCoverage Mode = iota
	ModeQuality
)

// Model is the aggregated, intersected data handed to rendering.
type Model struct {
	Mode Mode
	// SourceName names the annotation source ("coverage", "pylint").
	SourceName string
	// CompareBranch names the diff base shown in the header.
	CompareBranch string
	Result        domain.Result
}

// Title returns the report heading for the mode.
func (m Model) Title() string {
	if m.Mode == ModeQuality {
		return "Diff Quality"
	}
	return "Diff Coverage"
}

// FailLabel names the failing-line count row in the totals block.
func (m Model) FailLabel() string {
	if m.Mode == ModeQuality {
		return "Violations"
	}
	return "Missing"
}

// PercentLabel names the overall percentage row in the totals block.
func (m Model) PercentLabel() string {
	if m.Mode == ModeQuality {
		return "Quality"
	}
	return "Coverage"
}

// formatPercent renders a percentage with one decimal, dropping the decimal
// when it is zero (80.0 -> "80", 66.7 -> "66.7").
func formatPercent(p float64) string {
	s := strconv.FormatFloat(p, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// missingLineList renders failing line numbers as "3,7,10-12", collapsing
// consecutive runs.
func missingLineList(failing []domain.FailingLine) string {
	if len(failing) == 0 {
		return ""
	}
	var parts []string
	runStart, runEnd := failing[0].Line, failing[0].Line
	flush := func() {
		if runStart == runEnd {
			parts = append(parts, strconv.Itoa(runStart))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", runStart, runEnd))
		}
	}
	for _, fl := range failing[1:] {
		if fl.Line == runEnd+1 {
			runEnd = fl.Line
			continue
		}
		flush()
		runStart, runEnd = fl.Line, fl.Line
	}
	flush()
	return strings.Join(parts, ",")
}
