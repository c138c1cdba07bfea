package coverage

import (
	"encoding/xml"
	"path"

	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
)

// JaCoCo reads the JaCoCo XML dialect: a <report> root with packages of
// <sourcefile> entries whose <line> children carry covered/missed
// instruction counts. Paths are package-qualified and relative to the
// directory the build ran from, so they are rewritten through the
// invocation offset.
type JaCoCo struct{}

func (JaCoCo) Name() string { return "jacoco" }

func (JaCoCo) Matches(root xml.StartElement) bool {
	return root.Name.Local == "report"
}

type jacocoDoc struct {
	XMLName  xml.Name        `xml:"report"`
	Packages []jacocoPackage `xml:"package"`
}

type jacocoPackage struct {
	Name        string             `xml:"name,attr"`
	SourceFiles []jacocoSourceFile `xml:"sourcefile"`
}

type jacocoSourceFile struct {
	Name  string       `xml:"name,attr"`
	Lines []jacocoLine `xml:"line"`
}

type jacocoLine struct {
	Nr int `xml:"nr,attr"`
	Mi int `xml:"mi,attr"` // missed instructions
	Ci int `xml:"ci,attr"` // covered instructions
}

func (j JaCoCo) Parse(data []byte, resolver gitpath.Resolver) (domain.LineRecords, error) {
	var doc jacocoDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.FormatError{Source: j.Name(), Reason: err.Error()}
	}
	if len(doc.Packages) == 0 {
		return nil, &domain.FormatError{Source: j.Name(), Reason: "no <package> entries"}
	}

	records := make(domain.LineRecords)
	for _, pkg := range doc.Packages {
		for _, sf := range pkg.SourceFiles {
			if sf.Name == "" {
				continue
			}
			file := resolver.FromInvocation(path.Join(pkg.Name, sf.Name))
			for _, line := range sf.Lines {
				if line.Nr <= 0 {
					continue
				}
				record(records, file, line.Nr, line.Ci > 0)
			}
			sortByLine(records[file])
		}
	}
	return records, nil
}
