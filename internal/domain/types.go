package domain

import "sort"

const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusDeleted  = "deleted"
	FileStatusRenamed  = "renamed"
)

// FileChange captures the change for a single file in a diff.
type FileChange struct {
	Path    string // root-relative path on the new side
	OldPath string // previous path when Status is renamed, otherwise empty
	Status  string
	// AddedLines holds the 1-based line numbers, in the new version of the
	// file, that were added or modified by the diff. Unique, strictly
	// positive. Empty for deleted files and hunk-less changes (pure renames,
	// mode changes).
	AddedLines []int
}

// Changeset is a parsed diff keyed by root-relative new-side path.
type Changeset struct {
	Files map[string]FileChange
}

// NewChangeset returns an empty changeset ready for population.
func NewChangeset() Changeset {
	return Changeset{Files: make(map[string]FileChange)}
}

// Paths returns the changed file paths in lexical order.
func (c Changeset) Paths() []string {
	paths := make([]string, 0, len(c.Files))
	for p := range c.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// AddedLines returns the changed-line numbers for path, sorted ascending.
// The second return reports whether the file is part of the diff at all;
// a file in the diff with no added lines (pure rename, mode change) returns
// an empty slice and true.
func (c Changeset) AddedLines(path string) ([]int, bool) {
	fc, ok := c.Files[path]
	if !ok {
		return nil, false
	}
	lines := append([]int(nil), fc.AddedLines...)
	sort.Ints(lines)
	return lines, true
}

// AnnotationStatus classifies a per-line fact from an annotation source.
type AnnotationStatus int

const (
	// StatusHit marks a line executed at least once by a coverage run.
	StatusHit AnnotationStatus = iota
	// StatusMiss marks a line a coverage run saw but never executed.
	StatusMiss
	// StatusViolation marks a line flagged by a quality tool.
	StatusViolation
)

// Annotation is a single per-line fact contributed by a report.
type Annotation struct {
	Line    int
	Status  AnnotationStatus
	Message string // violation text; empty for coverage annotations
}

// LineRecords maps a root-relative file path to its annotations, ordered by
// line number. Coverage sources contribute at most one annotation per line;
// quality sources may contribute several.
type LineRecords map[string][]Annotation

// Report is the normalized output of one annotation source.
type Report struct {
	// Name identifies the source for error messages ("cobertura", "pylint").
	Name  string
	Lines LineRecords
	// MeasuresAllLines is true for quality sources: every line of a file the
	// tool applies to is annotatable, and a line without a violation is
	// clean. Coverage sources leave it false: only lines present in the
	// report are annotatable.
	MeasuresAllLines bool
	// Extensions limits MeasuresAllLines to files with these extensions
	// (without the leading dot). Empty means no restriction.
	Extensions []string
}

// FailingLine is a changed line that is uncovered or violated, with every
// message reported at that line.
type FailingLine struct {
	Line     int
	Messages []string
}

// FileResult is the correlation outcome for one changed file.
type FileResult struct {
	Path string
	// NotFound is true when no supplied report describes the file; such
	// files are surfaced for visibility but excluded from aggregation.
	NotFound bool
	// Annotatable counts changed lines the reports can speak to.
	Annotatable int
	// Passing counts annotatable changed lines that are covered (coverage
	// mode) or clean (quality mode).
	Passing int
	Failing []FailingLine
	Percent float64 // 0..100, one decimal
}

// Result is the full correlation outcome handed to report rendering.
type Result struct {
	Files []FileResult // ordered by path
	// TotalAnnotatable and TotalPassing aggregate across files, weighted by
	// line count.
	TotalAnnotatable int
	TotalPassing     int
	TotalPercent     float64 // 0..100, one decimal
}
