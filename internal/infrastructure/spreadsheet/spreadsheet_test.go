package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/em-inventario/internal/application/document"
)

func issuance() document.Layout {
	return document.IssuanceForm{
		Organization:    "E&M Department",
		ReferenceNumber: "REQ-000001",
		Date:            time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		RequisitionType: "issue",
		IssuedTo:        "<script>alert(1)</script>",
		Lines: []document.Line{
			{No: 1, Name: "Safety Helmet", Category: "ppe", Quantity: 5},
			{No: 2, Name: "Gloves", Code: "PPE-7", Category: "ppe", Quantity: 10, Unit: "pair"},
		},
	}.Layout()
}

func TestHTMLRenderer(t *testing.T) {
	out, err := NewHTMLRenderer().Render(issuance())
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<table")
	assert.Contains(t, html, "Safety Helmet")
	assert.Contains(t, html, "E&amp;M Department")
	assert.NotContains(t, html, "<script>", "los valores se escapan")
	assert.Equal(t, 2, strings.Count(html, "<td>ppe</td>"))
}

func TestXLSXRenderer(t *testing.T) {
	out, err := NewXLSXRenderer().Render(issuance())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "E&M Department", rows[0][0])

	var found bool
	for _, r := range rows {
		if len(r) > 4 && r[1] == "Gloves" {
			found = true
			assert.Equal(t, "PPE-7", r[2])
			assert.Equal(t, "10", r[4])
		}
	}
	assert.True(t, found, "la línea Gloves debe estar en la hoja")
}
