// Package cli wires the correlation pipeline behind the diffscope command
// tree: `diffscope cover` for diff coverage and `diffscope quality` for diff
// quality.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/quality"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ExitError carries the process exit code decided by the threshold gate or
// by a recoverable configuration failure that was already reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// DiffProducer supplies the diff text, the untracked file list, and the
// repository root.
type DiffProducer interface {
	Diff(ctx context.Context, compareBranch string) (string, error)
	UntrackedFiles(ctx context.Context) ([]string, error)
	Root() (string, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Producer DiffProducer
	Registry *quality.Registry
	Args     Arguments
	Defaults config.Config
	// Getwd reports the invocation directory; injectable so tests can
	// exercise subdirectory invocation. Defaults to os.Getwd.
	Getwd func() (string, error)
	// Colorize enables console color; the host decides from TTY state.
	Colorize bool
	Version  string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}

	root := &cobra.Command{
		Use:   "diffscope",
		Short: "Correlate a diff with coverage and quality reports",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(coverCommand(deps, outWriter, errWriter))
	root.AddCommand(qualityCommand(deps, outWriter, errWriter))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

// sharedFlags are the flags both subcommands accept.
type sharedFlags struct {
	failUnder        float64
	compareBranch    string
	htmlReport       string
	externalCSS      string
	diffFile         string
	includeUntracked bool
}

func addSharedFlags(cmd *cobra.Command, deps Dependencies, flags *sharedFlags) {
	cmd.Flags().Float64Var(&flags.failUnder, "fail-under", deps.Defaults.Report.FailUnder,
		"Minimum overall percentage for a passing exit code")
	cmd.Flags().StringVar(&flags.compareBranch, "compare-branch", deps.Defaults.Git.CompareBranch,
		"Branch the diff is computed against")
	cmd.Flags().StringVar(&flags.htmlReport, "html-report", deps.Defaults.Report.HTMLPath,
		"Write an HTML report to this path")
	cmd.Flags().StringVar(&flags.externalCSS, "external-css-file", deps.Defaults.Report.CSSPath,
		"Write the report stylesheet to this path instead of inlining it")
	cmd.Flags().StringVar(&flags.diffFile, "diff-file", "",
		"Read the unified diff from this file instead of invoking git")
	cmd.Flags().BoolVar(&flags.includeUntracked, "include-untracked", false,
		"Treat untracked files as fully added")
}
