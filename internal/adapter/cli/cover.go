package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/adapter/report"
	"github.com/diffscope/diffscope/internal/coverage"
	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/usecase/correlate"
)

func coverCommand(deps Dependencies, out, errOut io.Writer) *cobra.Command {
	var flags sharedFlags

	cmd := &cobra.Command{
		Use:   "cover <coverage-report.xml>...",
		Short: "Report which changed lines are uncovered by tests",
		Long: "Correlates the diff against one or more coverage XML reports. " +
			"When several reports are given they are unioned: a line covered " +
			"by any run is covered.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(errOut, "", 0)

			cs, resolver, err := buildChangeset(cmd.Context(), deps, flags)
			if err != nil {
				return err
			}

			inputs := make([][]byte, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read coverage report: %w", err)
				}
				inputs = append(inputs, data)
			}

			rep, err := coverage.BuildReport(inputs, resolver)
			if err != nil {
				var formatErr *domain.FormatError
				if errors.As(err, &formatErr) {
					logger.Printf("Failure: '%s'", formatErr.Error())
					return &ExitError{Code: correlate.ExitFail}
				}
				return err
			}

			result := correlate.Correlate(cs, rep)
			model := report.Model{
				Mode:          report.ModeCoverage,
				SourceName:    "coverage",
				CompareBranch: flags.compareBranch,
				Result:        result,
			}
			return renderAndGate(model, flags, deps.Colorize, out)
		},
	}

	addSharedFlags(cmd, deps, &flags)
	return cmd
}
