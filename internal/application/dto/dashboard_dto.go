package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
type DashboardSummaryDTO struct {
	Categories           []CategorySummaryDTO  `json:"categories"`
	LowStock             []CatalogItemResponse `json:"low_stock"`
	StockValue           decimal.Decimal       `json:"stock_value"` // Σ cantidad × costo unitario
	RequisitionsByStatus map[string]int        `json:"requisitions_by_status"`
	RequisitionsByType   map[string]int        `json:"requisitions_by_type"`
	Overdue              int                   `json:"overdue"`
	Latest               []RequisitionResponse `json:"latest"`
}

// CategorySummaryDTO totales de una categoría.
type CategorySummaryDTO struct {
	Category      string          `json:"category"`
	Items         int             `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	LowStock      int             `json:"low_stock"`
	StockValue    decimal.Decimal `json:"stock_value"`
	Error         string          `json:"error,omitempty"` // la categoría no pudo leerse
}
