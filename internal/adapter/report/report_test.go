package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/domain"
)

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "80", formatPercent(80.0))
	assert.Equal(t, "66.7", formatPercent(66.7))
	assert.Equal(t, "100", formatPercent(100.0))
	assert.Equal(t, "0", formatPercent(0.0))
}

func TestMissingLineList(t *testing.T) {
	fl := func(lines ...int) []domain.FailingLine {
		out := make([]domain.FailingLine, len(lines))
		for i, n := range lines {
			out[i] = domain.FailingLine{Line: n}
		}
		return out
	}

	assert.Equal(t, "", missingLineList(nil))
	assert.Equal(t, "3", missingLineList(fl(3)))
	assert.Equal(t, "3,7", missingLineList(fl(3, 7)))
	assert.Equal(t, "3,7,10-12", missingLineList(fl(3, 7, 10, 11, 12)))
	assert.Equal(t, "1-3,9", missingLineList(fl(1, 2, 3, 9)))
}

func coverageModel() Model {
	return Model{
		Mode:          ModeCoverage,
		SourceName:    "coverage",
		CompareBranch: "origin/main",
		Result: domain.Result{
			Files: []domain.FileResult{
				{
					Path:        "subdir/file1.py",
					Annotatable: 10,
					Passing:     8,
					Percent:     80.0,
					Failing:     []domain.FailingLine{{Line: 3}, {Line: 7}},
				},
				{Path: "subdir/clean.py", Annotatable: 4, Passing: 4, Percent: 100.0},
				{Path: "unknown.py", NotFound: true},
			},
			TotalAnnotatable: 14,
			TotalPassing:     12,
			TotalPercent:     85.7,
		},
	}
}

func TestConsoleRenderer_Coverage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleRenderer(&buf, false).Render(coverageModel()))

	want := strings.Join([]string{
		"-------------",
		"Diff Coverage",
		"Diff: origin/main...HEAD, staged and unstaged changes",
		"-------------",
		"subdir/file1.py (80%): Missing lines 3,7",
		"subdir/clean.py (100%)",
		"unknown.py (not found in report)",
		"-------------",
		"Total:   14 lines",
		"Missing: 2 lines",
		"Coverage: 85.7%",
		"-------------",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestConsoleRenderer_Quality(t *testing.T) {
	m := Model{
		Mode:          ModeQuality,
		SourceName:    "pylint",
		CompareBranch: "origin/main",
		Result: domain.Result{
			Files: []domain.FileResult{
				{
					Path:        "file1.py",
					Annotatable: 2,
					Passing:     1,
					Percent:     50.0,
					Failing: []domain.FailingLine{
						{Line: 1, Messages: []string{"C0111: Missing docstring", "W0611: Unused import os"}},
					},
				},
			},
			TotalAnnotatable: 2,
			TotalPassing:     1,
			TotalPercent:     50.0,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewConsoleRenderer(&buf, false).Render(m))

	out := buf.String()
	assert.Contains(t, out, "Diff Quality\n")
	assert.Contains(t, out, "Quality Report: pylint\n")
	assert.Contains(t, out, "file1.py (50%):\n")
	assert.Contains(t, out, "    file1.py:1: C0111: Missing docstring\n")
	assert.Contains(t, out, "    file1.py:1: W0611: Unused import os\n")
	assert.Contains(t, out, "Violations: 1 line\n")
	assert.Contains(t, out, "Quality: 50%\n")
}

func TestConsoleRenderer_EmptyDiff(t *testing.T) {
	m := Model{Mode: ModeCoverage, SourceName: "coverage", Result: domain.Result{TotalPercent: 100.0}}

	var buf bytes.Buffer
	require.NoError(t, NewConsoleRenderer(&buf, false).Render(m))

	assert.Contains(t, buf.String(), "No lines with coverage information in this diff.")
	assert.NotContains(t, buf.String(), "Total:")
}

func TestHTMLRenderer_InlineCSS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, NewHTMLRenderer(path, "").Render(coverageModel()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<title>Diff Coverage</title>")
	assert.Contains(t, html, "<style>")
	assert.NotContains(t, html, `<link rel="stylesheet"`)
	assert.Contains(t, html, "subdir/file1.py")
	assert.Contains(t, html, ">3,7<")
	assert.Contains(t, html, "not found in report")
	assert.Contains(t, html, "<b>85.7%</b>")
}

func TestHTMLRenderer_ExternalCSS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.html")
	cssPath := filepath.Join(dir, "style.css")
	require.NoError(t, NewHTMLRenderer(path, cssPath).Render(coverageModel()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="style.css"`)
	assert.NotContains(t, string(data), "<style>")

	css, err := os.ReadFile(cssPath)
	require.NoError(t, err)
	assert.Equal(t, defaultCSS, string(css))
}

func TestHTMLRenderer_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "report.html")
	require.NoError(t, NewHTMLRenderer(path, "").Render(coverageModel()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestHTMLRenderer_QualitySubtitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	m := Model{Mode: ModeQuality, SourceName: "pylint", Result: domain.Result{TotalPercent: 100.0}}
	require.NoError(t, NewHTMLRenderer(path, "").Render(m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Diff Quality: Pylint")
}
