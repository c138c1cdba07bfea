package coverage

import (
	"github.com/samber/lo"

	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
)

// Union merges line records from independent coverage runs most favorably: a
// line counted covered by any run is covered. The union never lowers a
// line's status relative to any single input.
func Union(inputs ...domain.LineRecords) domain.LineRecords {
	merged := make(domain.LineRecords)
	for _, input := range inputs {
		for _, file := range lo.Keys(input) {
			for _, annotation := range input[file] {
				record(merged, file, annotation.Line, annotation.Status == domain.StatusHit)
			}
		}
	}
	for file := range merged {
		sortByLine(merged[file])
	}
	return merged
}

// BuildReport parses every supplied report and unions them into one
// normalized coverage report. Any unparseable input fails the whole build;
// inputs are never silently dropped.
func BuildReport(inputs [][]byte, resolver gitpath.Resolver) (domain.Report, error) {
	parsed := make([]domain.LineRecords, 0, len(inputs))
	for _, data := range inputs {
		records, err := Parse(data, resolver)
		if err != nil {
			return domain.Report{}, err
		}
		parsed = append(parsed, records)
	}
	return domain.Report{
		Name:  "coverage",
		Lines: Union(parsed...),
	}, nil
}
