package coverage

import (
	"encoding/xml"
	"strings"

	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
)

// Clover reads the Clover XML dialect: <coverage generated=...> wrapping a
// <project> with <file> entries carrying <line num= count=> children.
type Clover struct{}

func (Clover) Name() string { return "clover" }

func (Clover) Matches(root xml.StartElement) bool {
	return root.Name.Local == "coverage" && hasAttr(root, "generated")
}

type cloverDoc struct {
	XMLName      xml.Name     `xml:"coverage"`
	PackageFiles []cloverFile `xml:"project>package>file"`
	ProjectFiles []cloverFile `xml:"project>file"`
}

type cloverFile struct {
	Name  string       `xml:"name,attr"`
	Path  string       `xml:"path,attr"`
	Lines []cloverLine `xml:"line"`
}

type cloverLine struct {
	Num   int    `xml:"num,attr"`
	Count int    `xml:"count,attr"`
	Type  string `xml:"type,attr"`
}

func (c Clover) Parse(data []byte, resolver gitpath.Resolver) (domain.LineRecords, error) {
	var doc cloverDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.FormatError{Source: c.Name(), Reason: err.Error()}
	}
	files := append(append([]cloverFile(nil), doc.PackageFiles...), doc.ProjectFiles...)
	if len(files) == 0 {
		return nil, &domain.FormatError{Source: c.Name(), Reason: "no <file> entries"}
	}

	records := make(domain.LineRecords)
	for _, f := range files {
		file := resolveClover(f, resolver)
		if file == "" {
			continue
		}
		for _, line := range f.Lines {
			// Method summary lines restate their statements' counts.
			if line.Type == "method" || line.Num <= 0 {
				continue
			}
			record(records, file, line.Num, line.Count > 0)
		}
		sortByLine(records[file])
	}
	return records, nil
}

func resolveClover(f cloverFile, resolver gitpath.Resolver) string {
	if f.Path != "" {
		if strings.HasPrefix(f.Path, "/") {
			return resolver.FromAbsolute(f.Path)
		}
		return resolver.FromRoot(f.Path)
	}
	if f.Name == "" {
		return ""
	}
	if strings.HasPrefix(f.Name, "/") {
		return resolver.FromAbsolute(f.Name)
	}
	return resolver.FromRoot(f.Name)
}
