// Package correlate intersects a diff's changed lines with the per-line
// annotations of one or more normalized reports, aggregates per-file and
// overall percentages, and gates the result against a configured minimum.
package correlate

import (
	"math"
	"path"
	"strings"

	"github.com/samber/lo"

	"github.com/diffscope/diffscope/internal/domain"
)

// Correlate computes, per changed file, which changed lines the supplied
// reports pass or fail. Deleted files are excluded entirely; renamed files
// are keyed by their new path, which is how the changeset already stores
// them. A file no report describes is flagged NotFound and excluded from the
// aggregate denominator rather than counted as failing.
func Correlate(cs domain.Changeset, reports ...domain.Report) domain.Result {
	var result domain.Result

	for _, file := range cs.Paths() {
		fc := cs.Files[file]
		if fc.Status == domain.FileStatusDeleted {
			continue
		}
		lines, _ := cs.AddedLines(file)
		if len(lines) == 0 {
			// Pure renames and mode-only changes have nothing to correlate.
			continue
		}

		fr := correlateFile(file, lines, reports)
		if !fr.NotFound {
			result.TotalAnnotatable += fr.Annotatable
			result.TotalPassing += fr.Passing
		}
		result.Files = append(result.Files, fr)
	}

	result.TotalPercent = percent(result.TotalPassing, result.TotalAnnotatable)
	return result
}

func correlateFile(file string, lines []int, reports []domain.Report) domain.FileResult {
	fr := domain.FileResult{Path: file}

	known := lo.SomeBy(reports, func(r domain.Report) bool {
		return describes(r, file)
	})
	if !known {
		fr.NotFound = true
		fr.Percent = 0
		return fr
	}

	for _, line := range lines {
		hit, miss := false, false
		var messages []string
		measured := false

		for _, r := range reports {
			if !describes(r, file) {
				continue
			}
			if r.MeasuresAllLines {
				measured = true
			}
			for _, a := range r.Lines[file] {
				if a.Line != line {
					continue
				}
				measured = true
				switch a.Status {
				case domain.StatusHit:
					hit = true
				case domain.StatusMiss:
					miss = true
				case domain.StatusViolation:
					messages = append(messages, a.Message)
				}
			}
		}

		if !measured {
			// Changed but not annotatable (blank line, comment, file region
			// the tool does not measure): excluded from the denominator.
			continue
		}

		fr.Annotatable++
		switch {
		case len(messages) > 0:
			fr.Failing = append(fr.Failing, domain.FailingLine{Line: line, Messages: messages})
		case miss && !hit:
			fr.Failing = append(fr.Failing, domain.FailingLine{Line: line})
		default:
			fr.Passing++
		}
	}

	fr.Percent = percent(fr.Passing, fr.Annotatable)
	return fr
}

// describes reports whether a report can speak to a file at all: coverage
// reports describe the files they list, quality reports describe every file
// their tool's extensions apply to.
func describes(r domain.Report, file string) bool {
	if _, ok := r.Lines[file]; ok {
		return true
	}
	if !r.MeasuresAllLines {
		return false
	}
	if len(r.Extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(path.Ext(file), ".")
	return lo.Contains(r.Extensions, ext)
}

// percent is passing/annotatable scaled to 0..100 and rounded to one
// decimal. A file or run with nothing annotatable is vacuously 100%.
func percent(passing, annotatable int) float64 {
	if annotatable == 0 {
		return 100.0
	}
	return math.Round(float64(passing)/float64(annotatable)*1000) / 10
}
