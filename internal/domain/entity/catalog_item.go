package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category identifica una categoría del catálogo E&M. Cada categoría se persiste de forma independiente.
type Category string

// Categorías de catálogo.
const (
	CategorySpareParts    Category = "spare_parts"    // repuestos (almacenamiento durable)
	CategoryTools         Category = "tools"          // herramientas
	CategoryPPE           Category = "ppe"            // equipo de protección personal
	CategoryStationery    Category = "stationery"     // papelería
	CategoryGeneralItems  Category = "general_items"  // artículos generales
	CategoryFaultyReturns Category = "faulty_returns" // devoluciones defectuosas
)

// Categories devuelve todas las categorías conocidas en orden de presentación.
func Categories() []Category {
	return []Category{
		CategorySpareParts,
		CategoryTools,
		CategoryPPE,
		CategoryStationery,
		CategoryGeneralItems,
		CategoryFaultyReturns,
	}
}

// Valid indica si la categoría es una de las conocidas.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// CatalogItem representa un ítem de cualquier categoría del catálogo.
// Quantity es el único campo que modifica la conciliación; el resto solo cambia por edición directa.
type CatalogItem struct {
	ID          string
	Category    Category
	Name        string
	Code        string // código de parte / ítem, opcional
	Quantity    int    // puede quedar negativa si se ajusta sin validación previa
	Location    string
	Unit        string // unidad de medida
	Description string
	AssignedTo  string // herramientas y EPP asignados a una persona
	MinQuantity int    // umbral de reposición (dashboard)
	UnitCost    decimal.Decimal
	LastUpdated time.Time
}

// LowStock indica si el ítem está en o por debajo de su umbral de reposición.
func (i *CatalogItem) LowStock() bool {
	return i.MinQuantity > 0 && i.Quantity <= i.MinQuantity
}

// StockValue devuelve Quantity * UnitCost.
func (i *CatalogItem) StockValue() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
