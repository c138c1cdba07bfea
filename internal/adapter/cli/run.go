package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/diffscope/diffscope/internal/adapter/report"
	"github.com/diffscope/diffscope/internal/diff"
	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
	"github.com/diffscope/diffscope/internal/usecase/correlate"
)

// buildChangeset produces the parsed changeset and the path resolver for one
// run. The diff comes from git unless a pre-generated diff file was given;
// either way paths are normalized to root-relative form before correlation.
func buildChangeset(ctx context.Context, deps Dependencies, flags sharedFlags) (domain.Changeset, gitpath.Resolver, error) {
	var diffText string
	if flags.diffFile != "" {
		data, err := os.ReadFile(flags.diffFile)
		if err != nil {
			return domain.Changeset{}, gitpath.Resolver{}, fmt.Errorf("read diff file: %w", err)
		}
		diffText = string(data)
	} else {
		var err error
		diffText, err = deps.Producer.Diff(ctx, flags.compareBranch)
		if err != nil {
			// A failed git invocation is a hard stop, surfaced as-is.
			return domain.Changeset{}, gitpath.Resolver{}, err
		}
	}

	root, err := deps.Producer.Root()
	if err != nil {
		return domain.Changeset{}, gitpath.Resolver{}, fmt.Errorf("locate repository root: %w", err)
	}
	invocation, err := deps.Getwd()
	if err != nil {
		return domain.Changeset{}, gitpath.Resolver{}, fmt.Errorf("locate working dir: %w", err)
	}
	resolver, err := gitpath.NewResolver(root, invocation)
	if err != nil {
		return domain.Changeset{}, gitpath.Resolver{}, err
	}

	cs, err := diff.Parse(diffText)
	if err != nil {
		return domain.Changeset{}, gitpath.Resolver{}, err
	}

	// Diff paths are already root-relative; normalization squares away
	// separators and producer quirks so report joins line up.
	normalized := domain.NewChangeset()
	for path, fc := range cs.Files {
		fc.Path = resolver.FromRoot(path)
		if fc.OldPath != "" {
			fc.OldPath = resolver.FromRoot(fc.OldPath)
		}
		normalized.Files[fc.Path] = fc
	}

	if flags.includeUntracked {
		if err := addUntracked(ctx, deps, root, normalized); err != nil {
			return domain.Changeset{}, gitpath.Resolver{}, err
		}
	}
	return normalized, resolver, nil
}

// addUntracked folds untracked files into the changeset as fully added:
// every line of the file counts as changed, the way a brand-new file in the
// diff would.
func addUntracked(ctx context.Context, deps Dependencies, root string, cs domain.Changeset) error {
	files, err := deps.Producer.UntrackedFiles(ctx)
	if err != nil {
		return err
	}
	for _, file := range files {
		if _, exists := cs.Files[file]; exists {
			continue
		}
		data, err := os.ReadFile(filepath.Join(filepath.FromSlash(root), filepath.FromSlash(file)))
		if err != nil {
			return fmt.Errorf("read untracked file %s: %w", file, err)
		}
		n := countLines(data)
		if n == 0 {
			continue
		}
		lines := make([]int, n)
		for i := range lines {
			lines[i] = i + 1
		}
		cs.Files[file] = domain.FileChange{
			Path:       file,
			Status:     domain.FileStatusAdded,
			AddedLines: lines,
		}
	}
	return nil
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// changedFiles lists the non-deleted files with changed lines, for handing
// to a quality tool.
func changedFiles(cs domain.Changeset) []string {
	var files []string
	for _, path := range cs.Paths() {
		fc := cs.Files[path]
		if fc.Status == domain.FileStatusDeleted || len(fc.AddedLines) == 0 {
			continue
		}
		files = append(files, path)
	}
	return files
}

// renderAndGate renders the console report (and the HTML artifact when
// requested), then maps the overall percentage to the process exit code.
func renderAndGate(m report.Model, flags sharedFlags, colorize bool, out io.Writer) error {
	console := report.NewConsoleRenderer(out, colorize)
	if err := console.Render(m); err != nil {
		return err
	}

	if flags.htmlReport != "" {
		html := report.NewHTMLRenderer(flags.htmlReport, flags.externalCSS)
		if err := html.Render(m); err != nil {
			return err
		}
	}

	if code := correlate.Gate(m.Result.TotalPercent, flags.failUnder); code != correlate.ExitPass {
		return &ExitError{Code: code}
	}
	return nil
}
