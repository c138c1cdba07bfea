// Package git produces the unified diff text and repository facts the
// correlation pipeline consumes. go-git answers repository questions (root
// discovery, ref validation); the diff itself is produced by invoking git,
// whose output format is what the parser understands.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	goGit "github.com/go-git/go-git/v5"
)

// CommandError reports a failed git invocation. It is a hard failure: the
// run aborts before any report is produced, and it is never folded into the
// threshold gate's exit-code-1 soft failure.
type CommandError struct {
	Args   []string
	Stderr string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), strings.TrimSpace(e.Stderr))
}

// Engine wraps one repository directory.
type Engine struct {
	repoDir string
}

// NewEngine constructs an engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// Root returns the absolute path of the repository's working tree root,
// discovered upward from the engine's directory.
func (e *Engine) Root() (string, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("resolve worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// Diff returns the unified diff between compareBranch and the working tree,
// with rename detection enabled and prefixes pinned so the parser sees
// stable a/ and b/ forms.
func (e *Engine) Diff(ctx context.Context, compareBranch string) (string, error) {
	args := []string{
		"-c", "diff.mnemonicprefix=no",
		"-c", "diff.noprefix=no",
		"diff", compareBranch,
		"-M", "--no-color", "--no-ext-diff",
	}
	return e.run(ctx, e.repoDir, args)
}

// UntrackedFiles lists files in the working tree git does not yet track,
// root-relative, with the standard ignore rules applied. Listing runs from
// the repository root so invocation from a subdirectory sees the whole tree.
func (e *Engine) UntrackedFiles(ctx context.Context) ([]string, error) {
	root, err := e.Root()
	if err != nil {
		return nil, err
	}
	out, err := e.run(ctx, root, []string{"ls-files", "--others", "--exclude-standard"})
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

func (e *Engine) run(ctx context.Context, dir string, args []string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %v: %w", args, ctx.Err())
		}
		return "", &CommandError{Args: args, Stderr: stderr.String()}
	}
	return stdout.String(), nil
}
