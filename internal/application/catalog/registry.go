package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
)

// Registry asocia cada categoría con su store. Agregar una categoría es un Register.
type Registry struct {
	mu     sync.RWMutex
	stores map[entity.Category]repository.CatalogStore
}

// NewRegistry construye un registro vacío.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[entity.Category]repository.CatalogStore)}
}

// Register asocia store a category, reemplazando el anterior si lo había.
func (r *Registry) Register(category entity.Category, store repository.CatalogStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[category] = store
}

// Store devuelve el store de la categoría o domain.ErrUnknownCategory.
func (r *Registry) Store(category entity.Category) (repository.CatalogStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	return store, nil
}

// Categories devuelve las categorías registradas en el orden de entity.Categories;
// las que no son conocidas van al final.
func (r *Registry) Categories() []entity.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Category, 0, len(r.stores))
	seen := make(map[entity.Category]bool, len(r.stores))
	for _, c := range entity.Categories() {
		if _, ok := r.stores[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	extra := make([]entity.Category, 0, len(r.stores)-len(out))
	for c := range r.stores {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
