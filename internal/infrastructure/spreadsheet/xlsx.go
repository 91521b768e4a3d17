package spreadsheet

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/em-inventario/internal/application/document"
)

const sheetName = "Document"

// XLSXRenderer implementa document.Renderer para .xlsx.
type XLSXRenderer struct{}

// NewXLSXRenderer construye el renderer.
func NewXLSXRenderer() *XLSXRenderer { return &XLSXRenderer{} }

// Render arma el libro: cabecera, campos, tabla de ítems con filtro y firmas.
func (r *XLSXRenderer) Render(l document.Layout) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "00467F"},
	})
	labelStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border:    []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	set := func(col, row int, v any, style int) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
		if style != 0 {
			return f.SetCellStyle(sheetName, cell, cell, style)
		}
		return nil
	}

	rowN := 1
	if err := set(1, rowN, l.Organization, titleStyle); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	rowN++
	if err := set(1, rowN, l.Title+" "+l.Number, labelStyle); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	rowN += 2

	for _, fd := range l.Fields {
		if err := set(1, rowN, fd.Label, labelStyle); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
		if err := set(2, rowN, fd.Value, 0); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
		rowN++
	}
	rowN++

	tableStart := rowN
	for i, c := range l.Columns {
		if err := set(i+1, rowN, c, headerStyle); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
	}
	rowN++
	for _, r := range l.Rows {
		for i, v := range r {
			// Las columnas numéricas se guardan como número para que sumen en la hoja.
			var value any = v
			if n, err := strconv.Atoi(v); err == nil && (i == 0 || i == 4) {
				value = n
			}
			if err := set(i+1, rowN, value, 0); err != nil {
				return nil, fmt.Errorf("xlsx: %w", err)
			}
		}
		rowN++
	}
	if len(l.Columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(l.Columns))
		if err := f.AutoFilter(sheetName, fmt.Sprintf("A%d:%s%d", tableStart, last, tableStart), []excelize.AutoFilterOptions{}); err != nil {
			return nil, fmt.Errorf("xlsx: filtro: %w", err)
		}
	}

	if l.Notes != "" {
		rowN++
		if err := set(1, rowN, "Remarks", labelStyle); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
		if err := set(2, rowN, l.Notes, 0); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
	}
	rowN += 3
	for i, s := range l.Signatures {
		if err := set(i*2+1, rowN, s, labelStyle); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 32)
	_ = f.SetColWidth(sheetName, "C", "F", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}
