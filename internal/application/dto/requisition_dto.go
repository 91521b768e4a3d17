package dto

import "time"

// RequisitionLineRequest una línea de la requisición.
type RequisitionLineRequest struct {
	ItemType string `json:"item_type"`
	ItemName string `json:"item_name" validate:"required"`
	ItemCode string `json:"item_code"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CreateRequisitionRequest entrada para registrar una requisición.
// ItemName/ItemCode/Quantity de primer nivel equivalen a una única línea; si Items trae líneas, se usan esas.
type CreateRequisitionRequest struct {
	RequisitionType  string                   `json:"requisition_type" validate:"required,oneof=issue return consume"`
	ItemType         string                   `json:"item_type" validate:"required"`
	ItemName         string                   `json:"item_name"`
	ItemCode         string                   `json:"item_code"`
	Quantity         int                      `json:"quantity"`
	Items            []RequisitionLineRequest `json:"items"`
	IssuedTo         string                   `json:"issued_to" validate:"required"`
	Location         string                   `json:"location"`
	Department       string                   `json:"department"`
	Remarks          string                   `json:"remarks"`
	Status           string                   `json:"status"`
	ExpectedReturnAt *time.Time               `json:"expected_return_at"`
}

// UpdateRequisitionRequest actualización parcial; los campos nil no cambian.
type UpdateRequisitionRequest struct {
	Status           *string    `json:"status"`
	IssuedTo         *string    `json:"issued_to"`
	Location         *string    `json:"location"`
	Department       *string    `json:"department"`
	Remarks          *string    `json:"remarks"`
	ExpectedReturnAt *time.Time `json:"expected_return_at"`
}

// RequisitionFilterRequest parámetros de búsqueda del libro.
type RequisitionFilterRequest struct {
	Type       string `query:"type"`
	Status     string `query:"status"`
	ItemType   string `query:"item_type"`
	Department string `query:"department"`
	Q          string `query:"q"`
	From       string `query:"from"` // RFC3339 o YYYY-MM-DD
	To         string `query:"to"`
	Overdue    bool   `query:"overdue"`
}

// RequisitionLineResponse salida de una línea, con su resultado de conciliación.
type RequisitionLineResponse struct {
	LineNo        int    `json:"line_no"`
	ItemType      string `json:"item_type"`
	ItemName      string `json:"item_name"`
	ItemCode      string `json:"item_code,omitempty"`
	Quantity      int    `json:"quantity"`
	Outcome       string `json:"outcome,omitempty"`
	OutcomeReason string `json:"outcome_reason,omitempty"`
	CatalogItemID string `json:"catalog_item_id,omitempty"`
}

// RequisitionResponse salida de una requisición.
type RequisitionResponse struct {
	ID               string                    `json:"id"`
	ReferenceNumber  string                    `json:"reference_number"`
	RequisitionType  string                    `json:"requisition_type"`
	ItemType         string                    `json:"item_type"`
	ItemName         string                    `json:"item_name"`
	Quantity         int                       `json:"quantity"`
	Items            []RequisitionLineResponse `json:"items"`
	IssuedTo         string                    `json:"issued_to"`
	Location         string                    `json:"location"`
	Department       string                    `json:"department"`
	Remarks          string                    `json:"remarks"`
	Status           string                    `json:"status"`
	Overdue          bool                      `json:"overdue"`
	ExpectedReturnAt *time.Time                `json:"expected_return_at,omitempty"`
	CreatedBy        string                    `json:"created_by,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	LastUpdated      time.Time                 `json:"last_updated"`
}

// ReconciliationResult resultado de conciliar una línea contra el catálogo.
type ReconciliationResult struct {
	LineNo     int    `json:"line_no"`
	Outcome    string `json:"outcome"`
	Category   string `json:"category"`
	ItemID     string `json:"item_id,omitempty"`
	Previous   *int   `json:"previous_quantity,omitempty"`
	Quantity   *int   `json:"quantity,omitempty"`
	Candidates int    `json:"candidates,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// CreateRequisitionResponse requisición guardada más el resultado por línea.
type CreateRequisitionResponse struct {
	Requisition    RequisitionResponse    `json:"requisition"`
	Reconciliation []ReconciliationResult `json:"reconciliation"`
}

// RequisitionListResponse listado del libro.
type RequisitionListResponse struct {
	Items []RequisitionResponse `json:"items"`
	Total int                   `json:"total"`
}
