package repository

import (
	"context"

	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

// CatalogStore define el puerto de persistencia de una categoría del catálogo.
// Cada categoría tiene su propio store; no hay transacción compartida entre stores ni con el libro.
type CatalogStore interface {
	// List devuelve todos los ítems de la categoría (sin paginación).
	List(ctx context.Context) ([]entity.CatalogItem, error)
	// Get devuelve el ítem o nil si no existe.
	Get(ctx context.Context, id string) (*entity.CatalogItem, error)
	// Upsert inserta si el ID está vacío o no existe; si no, sobrescribe. Fija LastUpdated.
	Upsert(ctx context.Context, item entity.CatalogItem) (*entity.CatalogItem, error)
	// Remove elimina el ítem; no-op si no existe.
	Remove(ctx context.Context, id string) error
	// Find devuelve el primer ítem que coincide con m en el mismo orden que usa AdjustQuantity.
	// Devuelve domain.ErrNotFound si ningún ítem coincide.
	Find(ctx context.Context, m catalog.Matcher) (*entity.CatalogItem, error)
	// AdjustQuantity suma delta al primer ítem que coincide con m. No limita a cero.
	// Devuelve domain.ErrNotFound si ningún ítem coincide.
	AdjustQuantity(ctx context.Context, m catalog.Matcher, delta int) (*catalog.Adjustment, error)
}
