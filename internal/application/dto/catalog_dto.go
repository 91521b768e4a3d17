package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItemRequest entrada para crear o sobrescribir un ítem del catálogo.
type CatalogItemRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Code        string           `json:"code"`
	Quantity    int              `json:"quantity" validate:"min=0"`
	Location    string           `json:"location"`
	Unit        string           `json:"unit"`
	Description string           `json:"description"`
	AssignedTo  string           `json:"assigned_to"`
	MinQuantity int              `json:"min_quantity" validate:"min=0"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
}

// CatalogItemResponse salida de un ítem del catálogo.
type CatalogItemResponse struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Code        string          `json:"code,omitempty"`
	Quantity    int             `json:"quantity"`
	Location    string          `json:"location,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Description string          `json:"description,omitempty"`
	AssignedTo  string          `json:"assigned_to,omitempty"`
	MinQuantity int             `json:"min_quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LowStock    bool            `json:"low_stock"`
	LastUpdated time.Time       `json:"last_updated"`
}

// CatalogQuery búsqueda y orden de un listado de catálogo.
// Sort: name | quantity | last_updated. Order: asc | desc.
type CatalogQuery struct {
	Q     string `query:"q"`
	Sort  string `query:"sort"`
	Order string `query:"order"`
}

// CatalogListResponse listado completo de una categoría (sin paginación).
type CatalogListResponse struct {
	Category string                `json:"category"`
	Items    []CatalogItemResponse `json:"items"`
	Total    int                   `json:"total"`
}
