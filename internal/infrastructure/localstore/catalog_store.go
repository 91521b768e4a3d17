package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
)

var _ repository.CatalogStore = (*CatalogStore)(nil)

// KeyFor devuelve la clave fija bajo la que se guarda una categoría.
func KeyFor(category entity.Category) string {
	return "em." + string(category)
}

// storedItem forma JSON de un ítem, la misma que guardaba el navegador.
type storedItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Code        string          `json:"code,omitempty"`
	Quantity    int             `json:"quantity"`
	Location    string          `json:"location,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Description string          `json:"description,omitempty"`
	AssignedTo  string          `json:"assignedTo,omitempty"`
	MinQuantity int             `json:"minQuantity,omitempty"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// CatalogStore categoría completa como un arreglo JSON bajo KeyFor(category).
// Cada operación lee el arreglo, lo modifica y lo vuelve a escribir.
type CatalogStore struct {
	mu       sync.Mutex
	kv       *KV
	key      string
	category entity.Category
	now      func() time.Time
}

// NewCatalogStore construye el store de la categoría.
func NewCatalogStore(kv *KV, category entity.Category) *CatalogStore {
	return &CatalogStore{kv: kv, key: KeyFor(category), category: category, now: time.Now}
}

// List lee el arreglo completo ordenado por nombre.
func (s *CatalogStore) List(ctx context.Context) ([]entity.CatalogItem, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	catalog.SortByName(items)
	return items, nil
}

// Find busca en el orden guardado del arreglo, como AdjustQuantity.
func (s *CatalogStore) Find(ctx context.Context, m catalog.Matcher) (*entity.CatalogItem, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.First(items, m)
}

func (s *CatalogStore) load(ctx context.Context) ([]entity.CatalogItem, error) {
	raw, _, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	return s.decode(raw)
}

// Get busca por ID.
func (s *CatalogStore) Get(ctx context.Context, id string) (*entity.CatalogItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Find(items, id), nil
}

// Upsert inserta o sobrescribe y reescribe el arreglo.
func (s *CatalogStore) Upsert(ctx context.Context, item entity.CatalogItem) (*entity.CatalogItem, error) {
	item.Category = s.category
	var saved entity.CatalogItem
	err := s.update(ctx, func(items []entity.CatalogItem) ([]entity.CatalogItem, error) {
		var out []entity.CatalogItem
		out, saved = catalog.Upsert(items, item, s.now())
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Remove elimina por ID.
func (s *CatalogStore) Remove(ctx context.Context, id string) error {
	return s.update(ctx, func(items []entity.CatalogItem) ([]entity.CatalogItem, error) {
		return catalog.Remove(items, id), nil
	})
}

// AdjustQuantity ajusta el primer ítem que coincide; sin coincidencia no escribe.
func (s *CatalogStore) AdjustQuantity(ctx context.Context, m catalog.Matcher, delta int) (*catalog.Adjustment, error) {
	var adj *catalog.Adjustment
	err := s.update(ctx, func(items []entity.CatalogItem) ([]entity.CatalogItem, error) {
		var err error
		adj, err = catalog.Adjust(items, m, delta, s.now())
		return items, err
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func (s *CatalogStore) update(ctx context.Context, fn func([]entity.CatalogItem) ([]entity.CatalogItem, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Update(ctx, s.key, func(current string) (string, error) {
		items, err := s.decode(current)
		if err != nil {
			return "", err
		}
		items, err = fn(items)
		if err != nil {
			return "", err
		}
		return s.encode(items)
	})
}

func (s *CatalogStore) decode(raw string) ([]entity.CatalogItem, error) {
	if raw == "" {
		return []entity.CatalogItem{}, nil
	}
	var stored []storedItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", s.key, err)
	}
	items := make([]entity.CatalogItem, 0, len(stored))
	for _, st := range stored {
		items = append(items, entity.CatalogItem{
			ID:          st.ID,
			Category:    s.category,
			Name:        st.Name,
			Code:        st.Code,
			Quantity:    st.Quantity,
			Location:    st.Location,
			Unit:        st.Unit,
			Description: st.Description,
			AssignedTo:  st.AssignedTo,
			MinQuantity: st.MinQuantity,
			UnitCost:    st.UnitCost,
			LastUpdated: st.LastUpdated,
		})
	}
	return items, nil
}

func (s *CatalogStore) encode(items []entity.CatalogItem) (string, error) {
	stored := make([]storedItem, 0, len(items))
	for _, it := range items {
		stored = append(stored, storedItem{
			ID:          it.ID,
			Name:        it.Name,
			Code:        it.Code,
			Quantity:    it.Quantity,
			Location:    it.Location,
			Unit:        it.Unit,
			Description: it.Description,
			AssignedTo:  it.AssignedTo,
			MinQuantity: it.MinQuantity,
			UnitCost:    it.UnitCost,
			LastUpdated: it.LastUpdated,
		})
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("codificar %s: %w", s.key, err)
	}
	return string(b), nil
}
