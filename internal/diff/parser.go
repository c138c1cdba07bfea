package diff

import (
	"strconv"
	"strings"

	"github.com/diffscope/diffscope/internal/domain"
)

// Parse parses the raw textual output of `git diff` (with rename detection
// enabled) into a changeset: per file, its status and the set of line numbers
// added in the new version. Paths are reported exactly as the diff names
// them, with the a/ and b/ prefixes stripped; callers normalize them against
// the repository root.
func Parse(text string) (domain.Changeset, error) {
	cs := domain.NewChangeset()
	if strings.TrimSpace(text) == "" {
		return cs, nil
	}

	lines := strings.Split(text, "\n")

	var cur *fileSection
	flush := func() {
		if cur == nil {
			return
		}
		cs.Files[cur.path()] = cur.change()
		cur = nil
	}

	// Remaining old/new line counts of the hunk being consumed. Body lines
	// are only interpreted while a hunk is open, so content that happens to
	// look like a header ("--- x" produced by deleting "-- x") is never
	// mistaken for one.
	remainOld, remainNew := 0, 0
	newLine := 0

	for _, line := range lines {
		if remainOld > 0 || remainNew > 0 {
			if strings.HasPrefix(line, "\\") {
				// "\ No newline at end of file"
				continue
			}
			marker := byte(' ')
			if len(line) > 0 {
				marker = line[0]
			}
			switch marker {
			case '+':
				cur.added = append(cur.added, newLine)
				newLine++
				remainNew--
			case '-':
				remainOld--
			default:
				newLine++
				remainOld--
				remainNew--
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()
			cur = &fileSection{status: domain.FileStatusModified}
			cur.headerOld, cur.headerNew = splitGitHeaderPaths(strings.TrimPrefix(line, "diff --git "))

		case cur == nil:
			// Preamble before the first file section is ignored.

		case strings.HasPrefix(line, "new file mode"):
			cur.status = domain.FileStatusAdded

		case strings.HasPrefix(line, "deleted file mode"):
			cur.status = domain.FileStatusDeleted

		case strings.HasPrefix(line, "rename from "):
			cur.oldPath = unquotePath(strings.TrimPrefix(line, "rename from "))

		case strings.HasPrefix(line, "rename to "):
			cur.newPath = unquotePath(strings.TrimPrefix(line, "rename to "))
			cur.status = domain.FileStatusRenamed

		case strings.HasPrefix(line, "--- "):
			p := stripSide(strings.TrimPrefix(line, "--- "), "a/")
			if p == devNull {
				cur.status = domain.FileStatusAdded
			} else if cur.oldPath == "" {
				cur.oldPath = p
			}

		case strings.HasPrefix(line, "+++ "):
			p := stripSide(strings.TrimPrefix(line, "+++ "), "b/")
			if p == devNull {
				cur.status = domain.FileStatusDeleted
			} else if cur.newPath == "" {
				cur.newPath = p
			}

		case strings.HasPrefix(line, "@@"):
			hunk, err := parseHunkHeader(line)
			if err != nil {
				return domain.Changeset{}, &domain.ParseError{Section: cur.path(), Reason: "bad hunk header " + strconv.Quote(line)}
			}
			newLine = hunk.newStart
			remainOld = hunk.oldCount
			remainNew = hunk.newCount

		default:
			// similarity index, index, mode lines, "Binary files ... differ"
		}
	}
	flush()

	return cs, nil
}

// fileSection accumulates one `diff --git` section while parsing.
type fileSection struct {
	headerOld string
	headerNew string
	oldPath   string
	newPath   string
	status    string
	added     []int
}

const devNull = "/dev/null"

func (s *fileSection) path() string {
	if s.newPath != "" {
		return s.newPath
	}
	if s.status == domain.FileStatusDeleted && s.oldPath != "" {
		return s.oldPath
	}
	if s.headerNew != "" {
		return s.headerNew
	}
	return s.headerOld
}

func (s *fileSection) change() domain.FileChange {
	fc := domain.FileChange{
		Path:   s.path(),
		Status: s.status,
	}
	if s.status == domain.FileStatusRenamed {
		old := s.oldPath
		if old == "" {
			old = s.headerOld
		}
		fc.OldPath = old
	}
	if s.status != domain.FileStatusDeleted {
		fc.AddedLines = dedupe(s.added)
	}
	return fc
}

func dedupe(lines []int) []int {
	if len(lines) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(lines))
	out := make([]int, 0, len(lines))
	for _, n := range lines {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// splitGitHeaderPaths splits the "a/old b/new" remainder of a `diff --git`
// line. Quoted paths may contain spaces; unquoted paths containing spaces
// are resolved by the ---/+++/rename lines instead, so a best-effort split
// is acceptable here.
func splitGitHeaderPaths(rest string) (oldPath, newPath string) {
	if strings.HasPrefix(rest, "\"") {
		unquoted, remainder, ok := cutQuoted(rest)
		if !ok {
			return "", ""
		}
		oldPath = strings.TrimPrefix(unquoted, "a/")
		rest = strings.TrimSpace(remainder)
	} else {
		idx := strings.Index(rest, " b/")
		if idx < 0 {
			return "", ""
		}
		oldPath = strings.TrimPrefix(rest[:idx], "a/")
		rest = rest[idx+1:]
	}

	if strings.HasPrefix(rest, "\"") {
		unquoted, _, ok := cutQuoted(rest)
		if !ok {
			return oldPath, ""
		}
		newPath = strings.TrimPrefix(unquoted, "b/")
	} else {
		newPath = strings.TrimPrefix(rest, "b/")
	}
	return oldPath, newPath
}

// cutQuoted unquotes a leading C-style quoted string and returns the rest of
// the line after it.
func cutQuoted(s string) (unquoted, rest string, ok bool) {
	end := -1
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			end = i
			break
		}
	}
	if end < 0 {
		return "", "", false
	}
	u, err := strconv.Unquote(s[:end+1])
	if err != nil {
		return "", "", false
	}
	return u, s[end+1:], true
}

// unquotePath decodes git's C-style quoting of non-ASCII paths
// ("\346\226\207.py") into the UTF-8 path it names.
func unquotePath(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "\"") {
		if u, err := strconv.Unquote(p); err == nil {
			return u
		}
	}
	return p
}

// stripSide prepares a path from a ---/+++ line: drops the trailing
// tab-separated metadata some diff producers append, decodes quoting, and
// removes the a/ or b/ prefix.
func stripSide(p, prefix string) string {
	if idx := strings.IndexByte(p, '\t'); idx >= 0 {
		p = p[:idx]
	}
	p = unquotePath(p)
	if p == devNull {
		return p
	}
	return strings.TrimPrefix(p, prefix)
}

type hunkRange struct {
	oldStart int
	oldCount int
	newStart int
	newCount int
}

// parseHunkHeader parses a header like "@@ -10,7 +10,8 @@ optional context".
func parseHunkHeader(line string) (hunkRange, error) {
	var h hunkRange

	parts := strings.Split(line, "@@")
	if len(parts) < 3 {
		return h, strconv.ErrSyntax
	}

	sawOld, sawNew := false, false
	for _, part := range strings.Fields(strings.TrimSpace(parts[1])) {
		switch {
		case strings.HasPrefix(part, "-"):
			start, count, err := parseRange(strings.TrimPrefix(part, "-"))
			if err != nil {
				return h, err
			}
			h.oldStart, h.oldCount = start, count
			sawOld = true
		case strings.HasPrefix(part, "+"):
			start, count, err := parseRange(strings.TrimPrefix(part, "+"))
			if err != nil {
				return h, err
			}
			h.newStart, h.newCount = start, count
			sawNew = true
		}
	}
	if !sawOld || !sawNew {
		return h, strconv.ErrSyntax
	}
	return h, nil
}

// parseRange parses "start,count" or "start" (count defaults to 1).
func parseRange(s string) (start, count int, err error) {
	if idx := strings.Index(s, ","); idx >= 0 {
		start, err = strconv.Atoi(s[:idx])
		if err != nil {
			return 0, 0, err
		}
		count, err = strconv.Atoi(s[idx+1:])
		if err != nil {
			return 0, 0, err
		}
		return start, count, nil
	}
	start, err = strconv.Atoi(s)
	return start, 1, err
}
