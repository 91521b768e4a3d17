package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
)

var _ repository.CatalogStore = (*CatalogRepo)(nil)

const catalogColumns = `id, category, name, code, quantity, location, unit, description, assigned_to,
	min_quantity, unit_cost, last_updated`

// CatalogRepo catálogo de una categoría sobre la tabla catalog_items.
type CatalogRepo struct {
	q        Querier
	category entity.Category
	now      func() time.Time
}

// NewCatalogRepository construye el adaptador para la categoría. Pasar pool o tx (Querier).
func NewCatalogRepository(q Querier, category entity.Category) *CatalogRepo {
	return &CatalogRepo{q: q, category: category, now: time.Now}
}

// List devuelve los ítems de la categoría ordenados por nombre.
func (r *CatalogRepo) List(ctx context.Context) ([]entity.CatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE category = $1
		ORDER BY lower(name), id`
	rows, err := r.q.Query(ctx, query, r.category)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	defer rows.Close()
	list := []entity.CatalogItem{}
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *it)
	}
	return list, rows.Err()
}

// Get obtiene un ítem por ID; nil si no existe.
func (r *CatalogRepo) Get(ctx context.Context, id string) (*entity.CatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE category = $1 AND id = $2`
	it, err := scanCatalogItem(r.q.QueryRow(ctx, query, r.category, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}

// Upsert inserta o sobrescribe el ítem completo.
func (r *CatalogRepo) Upsert(ctx context.Context, item entity.CatalogItem) (*entity.CatalogItem, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.Category = r.category
	item.LastUpdated = r.now()
	query := `
		INSERT INTO catalog_items (id, category, name, code, quantity, location, unit, description, assigned_to,
			min_quantity, unit_cost, last_updated, name_key, code_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, code = EXCLUDED.code, quantity = EXCLUDED.quantity,
			name_key = EXCLUDED.name_key, code_key = EXCLUDED.code_key,
			location = EXCLUDED.location, unit = EXCLUDED.unit, description = EXCLUDED.description,
			assigned_to = EXCLUDED.assigned_to, min_quantity = EXCLUDED.min_quantity,
			unit_cost = EXCLUDED.unit_cost, last_updated = EXCLUDED.last_updated
		WHERE catalog_items.category = EXCLUDED.category`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.Category, item.Name, nullIfEmpty(item.Code), item.Quantity,
		nullIfEmpty(item.Location), nullIfEmpty(item.Unit), nullIfEmpty(item.Description),
		nullIfEmpty(item.AssignedTo), item.MinQuantity, item.UnitCost, item.LastUpdated,
		catalog.FoldKey(item.Name), nullIfEmpty(catalog.FoldKey(item.Code)),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert catalog item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// el ID existe en otra categoría
		return nil, fmt.Errorf("%w: el ítem %s pertenece a otra categoría", domain.ErrConflict, item.ID)
	}
	return &item, nil
}

// Remove elimina el ítem; no falla si no existe.
func (r *CatalogRepo) Remove(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM catalog_items WHERE category = $1 AND id = $2`, r.category, id)
	if err != nil {
		return fmt.Errorf("delete catalog item: %w", err)
	}
	return nil
}

// candidatesQuery candidatos de un Matcher, del más antiguo al más reciente.
// Find y AdjustQuantity comparten el orden para que ambos elijan el mismo ítem.
const candidatesQuery = `SELECT ` + catalogColumns + ` FROM catalog_items
	WHERE category = $1 AND (name_key = $2 OR code_key = $2)
	ORDER BY created_at, id`

// Find devuelve el candidato más antiguo sin bloquearlo.
func (r *CatalogRepo) Find(ctx context.Context, m catalog.Matcher) (*entity.CatalogItem, error) {
	if m.Empty() {
		return nil, domain.ErrNotFound
	}
	items, err := r.candidates(ctx, r.q, m, "")
	if err != nil {
		return nil, err
	}
	return catalog.First(items, m)
}

// AdjustQuantity bloquea los candidatos (SELECT FOR UPDATE), toma el más antiguo que coincide
// y suma delta en la misma transacción. Dos conciliaciones concurrentes sobre el mismo ítem se serializan.
func (r *CatalogRepo) AdjustQuantity(ctx context.Context, m catalog.Matcher, delta int) (*catalog.Adjustment, error) {
	if m.Empty() {
		return nil, domain.ErrNotFound
	}
	var adj *catalog.Adjustment
	err := NewTxRunner(r.q).Run(ctx, func(q Querier) error {
		items, err := r.candidates(ctx, q, m, " FOR UPDATE")
		if err != nil {
			return err
		}

		now := r.now()
		a, err := catalog.Adjust(items, m, delta, now)
		if err != nil {
			return err
		}
		_, err = q.Exec(ctx,
			`UPDATE catalog_items SET quantity = $2, last_updated = $3 WHERE id = $1`,
			a.Item.ID, a.Item.Quantity, now,
		)
		if err != nil {
			return fmt.Errorf("adjust quantity: %w", err)
		}
		adj = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func (r *CatalogRepo) candidates(ctx context.Context, q Querier, m catalog.Matcher, lock string) ([]entity.CatalogItem, error) {
	rows, err := q.Query(ctx, candidatesQuery+lock, r.category, m.Key())
	if err != nil {
		return nil, fmt.Errorf("select catalog candidates: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.CatalogItem, error) {
		it, err := scanCatalogItem(row)
		if err != nil {
			return entity.CatalogItem{}, err
		}
		return *it, nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func scanCatalogItem(row pgx.Row) (*entity.CatalogItem, error) {
	var it entity.CatalogItem
	var code, location, unit, description, assignedTo *string
	err := row.Scan(&it.ID, &it.Category, &it.Name, &code, &it.Quantity, &location, &unit, &description,
		&assignedTo, &it.MinQuantity, &it.UnitCost, &it.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan catalog item: %w", err)
	}
	it.Code = deref(code)
	it.Location = deref(location)
	it.Unit = deref(unit)
	it.Description = deref(description)
	it.AssignedTo = deref(assignedTo)
	return &it, nil
}
