package coverage

import (
	"encoding/xml"
	"path"
	"sort"
	"strings"

	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
)

// Cobertura reads the Cobertura XML dialect: <coverage line-rate=...> with
// <class filename=...> entries. Filenames are root-relative, or relative to
// an absolute <source> prefix, depending on the producer.
type Cobertura struct{}

func (Cobertura) Name() string { return "cobertura" }

func (Cobertura) Matches(root xml.StartElement) bool {
	return root.Name.Local == "coverage" && !hasAttr(root, "generated")
}

type coberturaDoc struct {
	XMLName xml.Name         `xml:"coverage"`
	Sources []string         `xml:"sources>source"`
	Classes []coberturaClass `xml:"packages>package>classes>class"`
}

type coberturaClass struct {
	Filename string          `xml:"filename,attr"`
	Lines    []coberturaLine `xml:"lines>line"`
}

type coberturaLine struct {
	Number int `xml:"number,attr"`
	Hits   int `xml:"hits,attr"`
}

func (c Cobertura) Parse(data []byte, resolver gitpath.Resolver) (domain.LineRecords, error) {
	var doc coberturaDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.FormatError{Source: c.Name(), Reason: err.Error()}
	}
	if len(doc.Classes) == 0 {
		return nil, &domain.FormatError{Source: c.Name(), Reason: "no <class> entries"}
	}

	records := make(domain.LineRecords)
	for _, class := range doc.Classes {
		if class.Filename == "" {
			continue
		}
		file := resolveCobertura(class.Filename, doc.Sources, resolver)
		for _, line := range class.Lines {
			if line.Number <= 0 {
				continue
			}
			record(records, file, line.Number, line.Hits > 0)
		}
		sortByLine(records[file])
	}
	return records, nil
}

// resolveCobertura maps a class filename to root-relative form. An absolute
// filename, or one under an absolute <source> prefix, is re-rooted; anything
// else is taken as already root-relative (the common producer behavior).
func resolveCobertura(filename string, sources []string, resolver gitpath.Resolver) string {
	if strings.HasPrefix(filename, "/") || (len(filename) > 1 && filename[1] == ':') {
		return resolver.FromAbsolute(filename)
	}
	for _, src := range sources {
		src = strings.TrimSpace(src)
		if src == "" || src == "." {
			continue
		}
		if strings.HasPrefix(src, "/") {
			return resolver.FromAbsolute(path.Join(src, filename))
		}
	}
	return resolver.FromRoot(filename)
}

func sortByLine(annotations []domain.Annotation) {
	sort.Slice(annotations, func(i, j int) bool {
		return annotations[i].Line < annotations[j].Line
	})
}
