package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tipo de documento.
type Kind string

// Documentos disponibles.
const (
	KindIssuance Kind = "issuance"  // comprobante de entrega
	KindGatePass Kind = "gate-pass" // pase de salida para portería
)

// Format formato de salida.
type Format string

// Formatos de salida.
const (
	FormatXLS  Format = "xls"  // tabla HTML que abren las hojas de cálculo
	FormatXLSX Format = "xlsx" // libro Office Open XML
	FormatPDF  Format = "pdf"  // una página A4
)

// ContentType tipo MIME del formato.
func (f Format) ContentType() string {
	switch f {
	case FormatXLS:
		return "application/vnd.ms-excel"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Line una línea de ítem en un formulario.
type Line struct {
	No       int
	Category string
	Name     string
	Code     string
	Quantity int
	Unit     string
}

// IssuanceForm comprobante de entrega de materiales.
type IssuanceForm struct {
	Organization    string
	ReferenceNumber string
	Date            time.Time
	RequisitionType string
	IssuedTo        string
	Department      string
	Location        string
	Remarks         string
	IssuedBy        string
	Lines           []Line
}

// GatePassForm pase de salida que autoriza sacar los ítems del recinto.
type GatePassForm struct {
	Organization     string
	PassNumber       string
	ReferenceNumber  string
	Date             time.Time
	Bearer           string
	Department       string
	Destination      string
	Purpose          string
	ExpectedReturnAt *time.Time // nil = no retornable
	Lines            []Line
}

// Field par etiqueta/valor de la cabecera.
type Field struct {
	Label string
	Value string
}

// Layout contenido neutral de un documento; cada Renderer lo dibuja en su formato.
type Layout struct {
	Title        string
	Organization string
	Number       string
	Date         time.Time
	Fields       []Field
	Columns      []string
	Rows         [][]string
	Notes        string
	Signatures   []string
	Code         string // contenido del código QR; vacío = sin código
}

// Renderer dibuja un Layout en un formato concreto.
type Renderer interface {
	Render(l Layout) ([]byte, error)
}

var lineColumns = []string{"#", "Item", "Code", "Category", "Qty", "Unit"}

func lineRows(lines []Line) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			strconv.Itoa(l.No), l.Name, l.Code, categoryLabel(l.Category), strconv.Itoa(l.Quantity), l.Unit,
		})
	}
	return rows
}

// Layout construye el comprobante de entrega.
func (f IssuanceForm) Layout() Layout {
	return Layout{
		Title:        "Material Issuance Voucher",
		Organization: f.Organization,
		Number:       f.ReferenceNumber,
		Date:         f.Date,
		Fields: []Field{
			{"Reference", f.ReferenceNumber},
			{"Type", strings.ToUpper(f.RequisitionType)},
			{"Issued to", f.IssuedTo},
			{"Department", f.Department},
			{"Location", f.Location},
			{"Date", f.Date.Format("02/01/2006")},
		},
		Columns:    lineColumns,
		Rows:       lineRows(f.Lines),
		Notes:      f.Remarks,
		Signatures: []string{"Issued by " + f.IssuedBy, "Received by", "Approved by"},
	}
}

// Layout construye el pase de salida.
func (f GatePassForm) Layout() Layout {
	returnable := "No"
	if f.ExpectedReturnAt != nil {
		returnable = "Yes, by " + f.ExpectedReturnAt.Format("02/01/2006")
	}
	return Layout{
		Title:        "Gate Pass",
		Organization: f.Organization,
		Number:       f.PassNumber,
		Date:         f.Date,
		Fields: []Field{
			{"Gate pass", f.PassNumber},
			{"Requisition", f.ReferenceNumber},
			{"Bearer", f.Bearer},
			{"Department", f.Department},
			{"Destination", f.Destination},
			{"Returnable", returnable},
			{"Date", f.Date.Format("02/01/2006")},
		},
		Columns:    lineColumns,
		Rows:       lineRows(f.Lines),
		Notes:      f.Purpose,
		Signatures: []string{"Authorized by", "Security officer", "Bearer"},
		Code:       fmt.Sprintf("%s|%s|%s", f.PassNumber, f.ReferenceNumber, f.Date.Format(time.DateOnly)),
	}
}

// GatePassNumber deriva el número del pase a partir del número de referencia.
func GatePassNumber(reference string) string {
	if i := strings.LastIndex(reference, "-"); i >= 0 {
		return "GP" + reference[i:]
	}
	return "GP-" + reference
}

func categoryLabel(c string) string {
	return strings.ReplaceAll(c, "_", " ")
}
