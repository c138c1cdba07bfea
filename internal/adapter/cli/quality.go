package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/adapter/report"
	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/quality"
	"github.com/diffscope/diffscope/internal/usecase/correlate"
)

func qualityCommand(deps Dependencies, out, errOut io.Writer) *cobra.Command {
	var flags sharedFlags
	var violations string
	var options string
	var excludes []string

	cmd := &cobra.Command{
		Use:   "quality --violations=<tool> [report-file]",
		Short: "Report which changed lines carry static-analysis violations",
		Long: "Correlates the diff against a quality tool's report. The tool " +
			"is invoked over the changed files unless a pre-generated report " +
			"file is supplied; both produce the same result.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(errOut, "", 0)

			cs, resolver, err := buildChangeset(cmd.Context(), deps, flags)
			if err != nil {
				return err
			}

			var pregenerated []byte
			if len(args) == 1 && args[0] != "" {
				pregenerated, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read quality report: %w", err)
				}
			}

			opts := quality.RunOptions{
				Files:    changedFiles(cs),
				Options:  options,
				Excludes: excludes,
			}
			if opts.Options == "" {
				opts.Options = deps.Defaults.Quality.Options
			}
			if len(opts.Excludes) == 0 {
				opts.Excludes = deps.Defaults.Quality.Excludes
			}

			runner := quality.NewRunner(deps.Registry, resolver)
			rep, err := runner.Report(cmd.Context(), violations, pregenerated, opts)
			if err != nil {
				var unrecognized *domain.UnrecognizedToolError
				var notInstalled *domain.ToolNotInstalledError
				var formatErr *domain.FormatError
				switch {
				case errors.As(err, &unrecognized):
					logger.Print(unrecognized.Error())
				case errors.As(err, &notInstalled):
					logger.Printf("Failure: '%s'", notInstalled.Error())
				case errors.As(err, &formatErr):
					logger.Printf("Failure: '%s'", formatErr.Error())
				default:
					return err
				}
				return &ExitError{Code: correlate.ExitFail}
			}

			result := correlate.Correlate(cs, rep)
			model := report.Model{
				Mode:          report.ModeQuality,
				SourceName:    violations,
				CompareBranch: flags.compareBranch,
				Result:        result,
			}
			return renderAndGate(model, flags, deps.Colorize, out)
		},
	}

	addSharedFlags(cmd, deps, &flags)
	cmd.Flags().StringVar(&violations, "violations", "", "Quality tool to correlate against (required)")
	cmd.Flags().StringVar(&options, "options", "", "Raw option string passed through to the quality tool")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "Glob pattern excluding files from the quality run (repeatable)")
	_ = cmd.MarkFlagRequired("violations")
	return cmd
}
