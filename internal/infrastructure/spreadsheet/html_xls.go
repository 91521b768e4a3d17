// Package spreadsheet dibuja los documentos de requisición como hoja de cálculo:
// una tabla HTML con extensión .xls (lo que abren Excel y LibreOffice sin conversión)
// y un libro .xlsx real con excelize.
package spreadsheet

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jhoicas/em-inventario/internal/application/document"
)

var htmlTemplate = template.Must(template.New("xls").Funcs(template.FuncMap{
	"colspan": func(cols []string) int {
		if len(cols) < 2 {
			return 1
		}
		return len(cols) - 1
	},
}).Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel">
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body>
<table border="1">
<tr><th colspan="{{len .Columns}}">{{.Organization}}</th></tr>
<tr><th colspan="{{len .Columns}}">{{.Title}} {{.Number}}</th></tr>
{{- range .Fields}}
<tr><td><b>{{.Label}}</b></td><td colspan="{{colspan $.Columns}}">{{.Value}}</td></tr>
{{- end}}
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
{{- if .Notes}}
<tr><td><b>Remarks</b></td><td colspan="{{colspan .Columns}}">{{.Notes}}</td></tr>
{{- end}}
<tr>{{range .Signatures}}<td>{{.}}</td>{{end}}</tr>
</table>
</body>
</html>
`))

// HTMLRenderer implementa document.Renderer para .xls (tabla HTML).
type HTMLRenderer struct{}

// NewHTMLRenderer construye el renderer.
func NewHTMLRenderer() *HTMLRenderer { return &HTMLRenderer{} }

// Render ejecuta la plantilla; los valores se escapan.
func (r *HTMLRenderer) Render(l document.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, l); err != nil {
		return nil, fmt.Errorf("xls: ejecutar plantilla: %w", err)
	}
	return buf.Bytes(), nil
}
