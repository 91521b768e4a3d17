// Package pdf dibuja los documentos de requisición (comprobante de entrega y pase de salida)
// en una página A4 con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Organización + título  │  N° documento + fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CAMPOS: dos pares etiqueta/valor por fila                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Ítem | Código | Categoría | Cant. | Unidad      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OBSERVACIONES                                              │
//	│  FIRMAS (+ QR en el pase de salida)                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/em-inventario/internal/application/document"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorHeader  = &props.Color{Red: 217, Green: 225, Blue: 242}
)

// columnSizes ancho (en la grilla de 12) de cada columna de la tabla de ítems.
var columnSizes = []int{1, 4, 2, 2, 1, 2}

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoRenderer implementa document.Renderer para PDF.
type MarotoRenderer struct{}

// NewMarotoRenderer construye el renderer.
func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

// Render genera el PDF y devuelve sus bytes.
func (r *MarotoRenderer) Render(l document.Layout) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(l.Title, true).
		WithAuthor(l.Organization, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(l))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(fieldRows(l.Fields)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(l.Columns))
	m.AddRows(tableRows(l.Rows)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if l.Notes != "" {
		m.AddRows(notesRow(l.Notes))
	}
	m.AddRows(row.New(12))
	m.AddRows(signatureRow(l.Signatures, l.Code))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: organización + título (izq) y número + fecha (der).
func headerRow(l document.Layout) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(l.Organization, "E&M"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(l.Title, props.Text{
				Size: 10, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(nonEmpty(l.Number, "—"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New("Date: "+l.Date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

// fieldRows: dos pares etiqueta/valor por fila.
func fieldRows(fields []document.Field) []core.Row {
	rows := make([]core.Row, 0, (len(fields)+1)/2)
	for i := 0; i < len(fields); i += 2 {
		cols := []core.Col{fieldCol(fields[i])}
		if i+1 < len(fields) {
			cols = append(cols, fieldCol(fields[i+1]))
		} else {
			cols = append(cols, col.New(6))
		}
		rows = append(rows, row.New(7).Add(cols...))
	}
	return rows
}

func fieldCol(f document.Field) core.Col {
	return col.New(6).Add(
		text.New(f.Label+":", props.Text{Style: fontstyle.Bold, Size: 8, Top: 1, Color: colorPrimary}),
		text.New(nonEmpty(f.Value, "—"), props.Text{Size: 9, Top: 1, Left: 25}),
	)
}

// tableHeaderRow: cabecera de la tabla de ítems.
func tableHeaderRow(columns []string) core.Row {
	cols := make([]core.Col, 0, len(columns))
	for i, c := range columns {
		cols = append(cols, col.New(columnSize(i)).Add(text.New(c, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: columnAlign(i), Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorHeader}).Add(cols...)
}

// tableRows: una fila por ítem.
func tableRows(rows [][]string) []core.Row {
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		cols := make([]core.Col, 0, len(r))
		for i, v := range r {
			cols = append(cols, col.New(columnSize(i)).Add(text.New(v, props.Text{
				Size: 8, Align: columnAlign(i), Top: 1, Left: 1, Right: 1,
			})))
		}
		out = append(out, row.New(7).Add(cols...))
	}
	if len(out) == 0 {
		out = append(out, row.New(7).Add(col.New(12).Add(text.New("No items", props.Text{
			Size: 8, Align: align.Center, Top: 1, Color: colorGray,
		}))))
	}
	return out
}

func notesRow(notes string) core.Row {
	return row.New(14).Add(col.New(12).Add(
		text.New("Remarks", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
		text.New(notes, props.Text{Size: 8, Top: 7, Color: colorGray}),
	))
}

// signatureRow: líneas de firma y, si hay, el QR a la derecha.
func signatureRow(signatures []string, qr string) core.Row {
	width := 12
	if qr != "" {
		width = 9
	}
	cols := make([]core.Col, 0, len(signatures)+1)
	if len(signatures) > 0 {
		size := width / len(signatures)
		for _, s := range signatures {
			cols = append(cols, col.New(size).Add(
				text.New("______________________", props.Text{Size: 9, Align: align.Center, Top: 14}),
				text.New(s, props.Text{Size: 8, Align: align.Center, Top: 20, Color: colorGray}),
			))
		}
	}
	if qr != "" {
		cols = append(cols, col.New(12-width).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})))
	}
	return row.New(30).Add(cols...)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func columnSize(i int) int {
	if i < len(columnSizes) {
		return columnSizes[i]
	}
	return 1
}

func columnAlign(i int) align.Type {
	switch i {
	case 0, 4:
		return align.Center
	}
	return align.Left
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
