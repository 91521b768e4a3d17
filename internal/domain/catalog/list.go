package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

// Operaciones sobre una lista completa de ítems. Las usan los stores que guardan la
// categoría entera como un solo documento (memoria y almacenamiento local clave/valor).

// Upsert inserta o sobrescribe item en items y devuelve la lista resultante y el ítem guardado.
func Upsert(items []entity.CatalogItem, item entity.CatalogItem, now time.Time) ([]entity.CatalogItem, entity.CatalogItem) {
	item.LastUpdated = now
	if item.ID != "" {
		for i := range items {
			if items[i].ID == item.ID {
				items[i] = item
				return items, item
			}
		}
	} else {
		item.ID = uuid.New().String()
	}
	return append(items, item), item
}

// Remove quita el ítem con id; devuelve la lista sin cambios si no existe.
func Remove(items []entity.CatalogItem, id string) []entity.CatalogItem {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i:i], items[i+1:]...)
		}
	}
	return items
}

// Adjust suma delta al primer ítem que coincide con m (sin límite inferior).
func Adjust(items []entity.CatalogItem, m Matcher, delta int, now time.Time) (*Adjustment, error) {
	idx, candidates := FindFirst(items, m)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	prev := items[idx].Quantity
	items[idx].Quantity += delta
	items[idx].LastUpdated = now
	return &Adjustment{Item: items[idx], Previous: prev, Candidates: candidates}, nil
}

// First devuelve una copia del primer ítem que coincide con m, en el orden de items.
// Es el mismo ítem que ajustaría Adjust.
func First(items []entity.CatalogItem, m Matcher) (*entity.CatalogItem, error) {
	idx, _ := FindFirst(items, m)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	it := items[idx]
	return &it, nil
}

// Find devuelve una copia del ítem con id o nil.
func Find(items []entity.CatalogItem, id string) *entity.CatalogItem {
	for i := range items {
		if items[i].ID == id {
			it := items[i]
			return &it
		}
	}
	return nil
}

// SortByName ordena por nombre (sin mayúsculas) y luego por ID, para listados estables.
func SortByName(items []entity.CatalogItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
}
