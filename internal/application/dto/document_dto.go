package dto

import "time"

// DocumentLineRequest una línea del formulario.
type DocumentLineRequest struct {
	ItemType string `json:"item_type"`
	ItemName string `json:"item_name" validate:"required"`
	ItemCode string `json:"item_code"`
	Quantity int    `json:"quantity" validate:"min=1"`
	Unit     string `json:"unit"`
}

// DocumentRequest formulario enviado directamente (sin requisición guardada).
type DocumentRequest struct {
	ReferenceNumber  string                `json:"reference_number"`
	RequisitionType  string                `json:"requisition_type"`
	Date             *time.Time            `json:"date"`
	IssuedTo         string                `json:"issued_to" validate:"required"`
	Department       string                `json:"department"`
	Location         string                `json:"location"`
	Remarks          string                `json:"remarks"`
	IssuedBy         string                `json:"issued_by"`
	ExpectedReturnAt *time.Time            `json:"expected_return_at"`
	Items            []DocumentLineRequest `json:"items" validate:"required,min=1"`
}
