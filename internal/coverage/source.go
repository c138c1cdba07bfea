// Package coverage normalizes coverage XML dialects into per-file, per-line
// hit/miss annotations. Dialects are selected by schema signature (root
// element and its attributes), never by guessing from parsed data.
package coverage

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/diffscope/diffscope/internal/domain"
	"github.com/diffscope/diffscope/internal/gitpath"
)

// Source is one coverage XML dialect.
type Source interface {
	// Name identifies the dialect in error messages.
	Name() string
	// Matches reports whether the document's root element carries this
	// dialect's schema signature.
	Matches(root xml.StartElement) bool
	// Parse converts report bytes into root-relative line records. A
	// document that matched but does not conform returns a FormatError
	// rather than an empty result.
	Parse(data []byte, resolver gitpath.Resolver) (domain.LineRecords, error)
}

// Dialects returns the supported dialects in detection order. Clover is
// tried before Cobertura: both use a <coverage> root and Clover is the one
// with the narrower signature.
func Dialects() []Source {
	return []Source{Clover{}, Cobertura{}, JaCoCo{}}
}

// Parse detects the dialect of one report and parses it. A report matching
// no known dialect is a FormatError; the run fails closed rather than
// dropping the input.
func Parse(data []byte, resolver gitpath.Resolver) (domain.LineRecords, error) {
	root, err := sniffRoot(data)
	if err != nil {
		return nil, &domain.FormatError{Source: "coverage", Reason: "not an XML document: " + err.Error()}
	}
	for _, dialect := range Dialects() {
		if dialect.Matches(root) {
			return dialect.Parse(data, resolver)
		}
	}
	return nil, &domain.FormatError{Source: "coverage", Reason: "unrecognized schema <" + root.Name.Local + ">"}
}

// sniffRoot returns the first start element of the document.
func sniffRoot(data []byte) (xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return xml.StartElement{}, io.ErrUnexpectedEOF
			}
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func hasAttr(start xml.StartElement, name string) bool {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

// record merges one hit/miss fact into the records, most favorable status
// winning when the same line appears more than once.
func record(records domain.LineRecords, path string, line int, hit bool) {
	status := domain.StatusMiss
	if hit {
		status = domain.StatusHit
	}
	for i, existing := range records[path] {
		if existing.Line != line {
			continue
		}
		if status == domain.StatusHit {
			records[path][i].Status = domain.StatusHit
		}
		return
	}
	records[path] = append(records[path], domain.Annotation{Line: line, Status: status})
}
