// Package document genera el comprobante de entrega y el pase de salida de una requisición
// como hoja de cálculo (.xls HTML o .xlsx) o PDF A4. No guarda nada.
package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/em-inventario/internal/application/dto"
	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

// Source entrega la requisición guardada.
type Source interface {
	GetEntity(ctx context.Context, id string) (*entity.Requisition, error)
}

// File documento listo para descargar.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// UseCase generación de documentos.
type UseCase struct {
	source       Source
	organization string
	renderers    map[Format]Renderer
	log          zerolog.Logger
	now          func() time.Time
}

// NewUseCase construye el caso de uso. organization es el texto de cabecera de los documentos.
func NewUseCase(source Source, organization string, renderers map[Format]Renderer, log zerolog.Logger) *UseCase {
	return &UseCase{source: source, organization: organization, renderers: renderers, log: log, now: time.Now}
}

// ParseKind valida el tipo de documento.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindIssuance, KindGatePass:
		return k, nil
	case "gatepass", "gate_pass":
		return KindGatePass, nil
	}
	return "", fmt.Errorf("%w: documento %q", domain.ErrInvalidInput, s)
}

// ParseFormat valida el formato de salida.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatXLS, FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: formato %q", domain.ErrInvalidInput, s)
}

// FromRequisition genera el documento de una requisición guardada.
func (uc *UseCase) FromRequisition(ctx context.Context, kind Kind, format Format, id string) (*File, error) {
	req, err := uc.source.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, Line{No: l.LineNo, Category: string(l.ItemType), Name: l.ItemName, Code: l.ItemCode, Quantity: l.Quantity})
	}
	return uc.render(kind, format, formInput{
		reference:  req.ReferenceNumber,
		reqType:    string(req.RequisitionType),
		date:       req.CreatedAt,
		issuedTo:   req.IssuedTo,
		department: req.Department,
		location:   req.Location,
		remarks:    req.Remarks,
		issuedBy:   req.CreatedBy,
		returnBy:   req.ExpectedReturnAt,
		lines:      lines,
	})
}

// FromRequest genera el documento a partir de un formulario enviado por el cliente.
func (uc *UseCase) FromRequest(kind Kind, format Format, in dto.DocumentRequest) (*File, error) {
	if strings.TrimSpace(in.IssuedTo) == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]Line, 0, len(in.Items))
	for i, it := range in.Items {
		if strings.TrimSpace(it.ItemName) == "" || it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d", domain.ErrInvalidInput, i+1)
		}
		lines = append(lines, Line{No: i + 1, Category: it.ItemType, Name: it.ItemName, Code: it.ItemCode, Quantity: it.Quantity, Unit: it.Unit})
	}
	date := uc.now()
	if in.Date != nil {
		date = *in.Date
	}
	return uc.render(kind, format, formInput{
		reference:  in.ReferenceNumber,
		reqType:    in.RequisitionType,
		date:       date,
		issuedTo:   in.IssuedTo,
		department: in.Department,
		location:   in.Location,
		remarks:    in.Remarks,
		issuedBy:   in.IssuedBy,
		returnBy:   in.ExpectedReturnAt,
		lines:      lines,
	})
}

type formInput struct {
	reference, reqType                      string
	date                                    time.Time
	issuedTo, department, location, remarks string
	issuedBy                                string
	returnBy                                *time.Time
	lines                                   []Line
}

func (uc *UseCase) render(kind Kind, format Format, in formInput) (*File, error) {
	renderer, ok := uc.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: formato %q no disponible", domain.ErrInvalidInput, format)
	}
	var layout Layout
	switch kind {
	case KindIssuance:
		layout = IssuanceForm{
			Organization:    uc.organization,
			ReferenceNumber: in.reference,
			Date:            in.date,
			RequisitionType: in.reqType,
			IssuedTo:        in.issuedTo,
			Department:      in.department,
			Location:        in.location,
			Remarks:         in.remarks,
			IssuedBy:        in.issuedBy,
			Lines:           in.lines,
		}.Layout()
	case KindGatePass:
		layout = GatePassForm{
			Organization:     uc.organization,
			PassNumber:       GatePassNumber(in.reference),
			ReferenceNumber:  in.reference,
			Date:             in.date,
			Bearer:           in.issuedTo,
			Department:       in.department,
			Destination:      in.location,
			Purpose:          in.remarks,
			ExpectedReturnAt: in.returnBy,
			Lines:            in.lines,
		}.Layout()
	default:
		return nil, fmt.Errorf("%w: documento %q", domain.ErrInvalidInput, kind)
	}

	body, err := renderer.Render(layout)
	if err != nil {
		uc.log.Error().Err(err).Str("kind", string(kind)).Str("format", string(format)).Msg("no se pudo generar el documento")
		return nil, fmt.Errorf("generar %s.%s: %w", kind, format, err)
	}
	name := string(kind)
	if in.reference != "" {
		name += "-" + in.reference
	}
	return &File{Name: name + "." + string(format), ContentType: format.ContentType(), Body: body}, nil
}
