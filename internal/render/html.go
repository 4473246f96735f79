// Package render turns a tool's XML report into a standalone HTML page. The
// tool's own HTML output stays disabled; this pipeline owns report rendering
// so every tool's reports look the same.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/viant/afs"

	"github.com/kderr/varlint/internal/violation"
)

// HTMLPath derives the HTML report location from the XML report location by
// replacing the extension: spotbugsDebugReport.xml -> spotbugsDebugReport.html.
func HTMLPath(xmlPath string) string {
	return strings.TrimSuffix(xmlPath, filepath.Ext(xmlPath)) + ".html"
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #f0f0f0; }
.p1 { color: #b00020; font-weight: bold; }
.p2 { color: #b36b00; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{len .Violations}} violation(s)</p>
{{if .Violations}}<table>
<tr><th>Rule</th><th>Priority</th><th>Category</th><th>Class</th><th>Location</th><th>Message</th></tr>
{{range .Violations}}<tr>
<td>{{.Rule}}</td>
<td class="p{{.Priority}}">{{.Priority}}</td>
<td>{{.Category}}</td>
<td>{{.ClassName}}</td>
<td>{{.SourceFile}}:{{.Line}}</td>
<td>{{.Message}}</td>
</tr>
{{end}}</table>{{else}}<p>No violations found.</p>{{end}}
</body>
</html>
`))

type page struct {
	Title      string
	Violations []violation.Violation
}

// Renderer reads XML reports and writes the HTML rendition.
type Renderer struct {
	fs     afs.Service
	parser *violation.Parser
}

// NewRenderer returns a renderer backed by the shared file service.
func NewRenderer() *Renderer {
	return &Renderer{fs: afs.New(), parser: violation.NewParser()}
}

// Render reads the XML report, renders the page, and writes it to htmlPath.
// The classpath identifies the tool runtime whose rules the report refers to;
// it is surfaced in the page title so renditions from different tool versions
// are distinguishable.
func (r *Renderer) Render(ctx context.Context, xmlPath, htmlPath string, classpath []string) error {
	records, err := r.parser.Parse(ctx, xmlPath, "", "")
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	title := strings.TrimSuffix(filepath.Base(xmlPath), filepath.Ext(xmlPath))
	if len(classpath) > 0 {
		title += " (" + filepath.Base(classpath[0]) + ")"
	}
	buf := &bytes.Buffer{}
	if err := pageTemplate.Execute(buf, page{Title: title, Violations: records}); err != nil {
		return fmt.Errorf("render: execute template: %w", err)
	}
	if err := r.fs.Upload(ctx, htmlPath, 0o644, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("render: write %s: %w", htmlPath, err)
	}
	return nil
}
