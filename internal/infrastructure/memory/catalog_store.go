// Package memory implementa los puertos de persistencia en memoria del proceso.
// Se usa en tests y con STORAGE_DRIVER=memory para levantar la API sin PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
)

var _ repository.CatalogStore = (*CatalogStore)(nil)

// CatalogStore guarda los ítems de una categoría en memoria.
type CatalogStore struct {
	mu       sync.RWMutex
	category entity.Category
	items    []entity.CatalogItem
	now      func() time.Time
}

// NewCatalogStore construye un store vacío para la categoría.
func NewCatalogStore(category entity.Category) *CatalogStore {
	return &CatalogStore{category: category, now: time.Now}
}

// List devuelve una copia de todos los ítems.
func (s *CatalogStore) List(_ context.Context) ([]entity.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.CatalogItem, len(s.items))
	copy(out, s.items)
	catalog.SortByName(out)
	return out, nil
}

// Get devuelve el ítem o nil.
func (s *CatalogStore) Get(_ context.Context, id string) (*entity.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Find(s.items, id), nil
}

// Upsert inserta o sobrescribe.
func (s *CatalogStore) Upsert(_ context.Context, item entity.CatalogItem) (*entity.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.Category = s.category
	var saved entity.CatalogItem
	s.items, saved = catalog.Upsert(s.items, item, s.now())
	return &saved, nil
}

// Remove elimina el ítem si existe.
func (s *CatalogStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = catalog.Remove(s.items, id)
	return nil
}

// Find busca en orden de inserción, como AdjustQuantity.
func (s *CatalogStore) Find(_ context.Context, m catalog.Matcher) (*entity.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.First(s.items, m)
}

// AdjustQuantity ajusta la cantidad del primer ítem que coincide.
func (s *CatalogStore) AdjustQuantity(_ context.Context, m catalog.Matcher, delta int) (*catalog.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.Adjust(s.items, m, delta, s.now())
}
