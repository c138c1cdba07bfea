package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/diffscope/diffscope/internal/domain"
)

// HTMLRenderer writes the report as a standalone HTML artifact. When an
// external CSS path is configured the stylesheet is written next to the
// report and linked; otherwise the default style is inlined.
type HTMLRenderer struct {
	path    string
	cssPath string
}

// NewHTMLRenderer constructs an HTML renderer targeting path. cssPath may be
// empty for inline styling.
func NewHTMLRenderer(path, cssPath string) *HTMLRenderer {
	return &HTMLRenderer{path: path, cssPath: cssPath}
}

const defaultCSS = `body { font-family: sans-serif; margin: 2em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 0.3em 0.8em; text-align: left; }
.pass { color: #080; }
.fail { color: #b00; }
.notfound { color: #888; font-style: italic; }
ul.messages { margin: 0.2em 0; }
`

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .CSSHref}}<link rel="stylesheet" type="text/css" href="{{.CSSHref}}">{{else}}<style>
{{.DefaultCSS}}</style>{{end}}
</head>
<body>
<h1>{{.Title}}{{if .Subtitle}}: {{.Subtitle}}{{end}}</h1>
{{if .CompareBranch}}<p>Diff: {{.CompareBranch}}...HEAD, staged and unstaged changes</p>{{end}}
<table>
<tr><th>File</th><th>{{.PercentLabel}}</th><th>{{.FailLabel}}</th></tr>
{{range .Files}}<tr>
<td>{{.Path}}</td>
{{if .NotFound}}<td class="notfound" colspan="2">not found in report</td>
{{else}}<td class="{{.Class}}">{{.Percent}}%</td><td>{{.Detail}}</td>{{end}}
</tr>
{{range .Messages}}<tr><td colspan="3"><ul class="messages"><li>{{.}}</li></ul></td></tr>
{{end}}{{end}}</table>
<p>Total: <b>{{.TotalAnnotatable}}</b> lines &mdash; {{.FailLabel}}: <b>{{.TotalFailing}}</b> &mdash; {{.PercentLabel}}: <b>{{.TotalPercent}}%</b></p>
</body>
</html>
`))

type htmlFile struct {
	Path     string
	NotFound bool
	Percent  string
	Class    string
	Detail   string
	Messages []string
}

type htmlData struct {
	Title            string
	Subtitle         string
	CompareBranch    string
	CSSHref          string
	DefaultCSS       template.CSS
	PercentLabel     string
	FailLabel        string
	Files            []htmlFile
	TotalAnnotatable int
	TotalFailing     int
	TotalPercent     string
}

// Render writes the HTML artifact (and the external stylesheet, when
// configured).
func (r *HTMLRenderer) Render(m Model) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	data := htmlData{
		Title:            m.Title(),
		CompareBranch:    m.CompareBranch,
		DefaultCSS:       template.CSS(defaultCSS),
		PercentLabel:     m.PercentLabel(),
		FailLabel:        m.FailLabel(),
		TotalAnnotatable: m.Result.TotalAnnotatable,
		TotalFailing:     m.Result.TotalAnnotatable - m.Result.TotalPassing,
		TotalPercent:     formatPercent(m.Result.TotalPercent),
	}
	if m.Mode == ModeQuality {
		data.Subtitle = cases.Title(language.English).String(m.SourceName)
	}
	if r.cssPath != "" {
		data.CSSHref = filepath.Base(r.cssPath)
	}
	for _, fr := range m.Result.Files {
		data.Files = append(data.Files, buildHTMLFile(m, fr))
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}

	if r.cssPath != "" {
		if err := os.WriteFile(r.cssPath, []byte(defaultCSS), 0o644); err != nil {
			return fmt.Errorf("write stylesheet: %w", err)
		}
	}
	return nil
}

func buildHTMLFile(m Model, fr domain.FileResult) htmlFile {
	hf := htmlFile{Path: fr.Path, NotFound: fr.NotFound}
	if fr.NotFound {
		return hf
	}
	hf.Percent = formatPercent(fr.Percent)
	if len(fr.Failing) == 0 {
		hf.Class = "pass"
		return hf
	}
	hf.Class = "fail"
	hf.Detail = missingLineList(fr.Failing)
	if m.Mode == ModeQuality {
		for _, fl := range fr.Failing {
			for _, msg := range fl.Messages {
				hf.Messages = append(hf.Messages, fmt.Sprintf("%s:%d: %s", fr.Path, fl.Line, msg))
			}
		}
	}
	return hf
}
