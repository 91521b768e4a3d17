// Package catalog contiene los casos de uso de las pantallas de catálogo: listado con búsqueda
// y orden, alta/edición y baja de ítems, cada mutación notificada en el bus de cambios.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/em-inventario/internal/application/dto"
	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/infrastructure/events"
)

// Notifier publica la señal "el catálogo cambió".
type Notifier interface {
	Publish(ctx context.Context, s events.Signal) int
}

// UseCase CRUD sobre cualquier categoría registrada.
type UseCase struct {
	registry *Registry
	notifier Notifier
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(registry *Registry, notifier Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{registry: registry, notifier: notifier, log: log}
}

// ParseCategory valida el nombre de categoría de la URL.
func ParseCategory(s string) (entity.Category, error) {
	c := entity.Category(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !c.Valid() {
		return "", domain.ErrUnknownCategory
	}
	return c, nil
}

// List devuelve la categoría completa filtrada por q (nombre, código o ubicación) y ordenada.
func (uc *UseCase) List(ctx context.Context, category entity.Category, q dto.CatalogQuery) (*dto.CatalogListResponse, error) {
	store, err := uc.registry.Store(category)
	if err != nil {
		return nil, err
	}
	items, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(q.Q))
	out := make([]dto.CatalogItemResponse, 0, len(items))
	for i := range items {
		if search != "" && !matchesSearch(&items[i], search) {
			continue
		}
		out = append(out, ToCatalogItemResponse(&items[i]))
	}
	sortItems(out, q.Sort, q.Order)
	return &dto.CatalogListResponse{Category: string(category), Items: out, Total: len(out)}, nil
}

// Get obtiene un ítem; nil si no existe.
func (uc *UseCase) Get(ctx context.Context, category entity.Category, id string) (*dto.CatalogItemResponse, error) {
	store, err := uc.registry.Store(category)
	if err != nil {
		return nil, err
	}
	item, err := store.Get(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	resp := ToCatalogItemResponse(item)
	return &resp, nil
}

// Upsert crea (id vacío) o sobrescribe un ítem y notifica el cambio.
func (uc *UseCase) Upsert(ctx context.Context, category entity.Category, id string, in dto.CatalogItemRequest) (*dto.CatalogItemResponse, error) {
	if strings.TrimSpace(in.Name) == "" || in.Quantity < 0 || in.MinQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	store, err := uc.registry.Store(category)
	if err != nil {
		return nil, err
	}
	item := entity.CatalogItem{
		ID:          id,
		Category:    category,
		Name:        strings.TrimSpace(in.Name),
		Code:        strings.TrimSpace(in.Code),
		Quantity:    in.Quantity,
		Location:    in.Location,
		Unit:        in.Unit,
		Description: in.Description,
		AssignedTo:  in.AssignedTo,
		MinQuantity: in.MinQuantity,
		UnitCost:    decimal.Zero,
	}
	if in.UnitCost != nil {
		item.UnitCost = *in.UnitCost
	}
	saved, err := store.Upsert(ctx, item)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("category", string(category)).Str("item", saved.ID).Msg("ítem de catálogo guardado")
	uc.notifier.Publish(ctx, events.Signal{})
	resp := ToCatalogItemResponse(saved)
	return &resp, nil
}

// Remove elimina un ítem y notifica el cambio. Eliminar un ID inexistente no es error.
func (uc *UseCase) Remove(ctx context.Context, category entity.Category, id string) error {
	store, err := uc.registry.Store(category)
	if err != nil {
		return err
	}
	if err := store.Remove(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("category", string(category)).Str("item", id).Msg("ítem de catálogo eliminado")
	uc.notifier.Publish(ctx, events.Signal{})
	return nil
}

func matchesSearch(item *entity.CatalogItem, q string) bool {
	for _, f := range []string{item.Name, item.Code, item.Location, item.AssignedTo} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func sortItems(items []dto.CatalogItemResponse, by, order string) {
	var less func(a, b *dto.CatalogItemResponse) bool
	switch by {
	case "quantity":
		less = func(a, b *dto.CatalogItemResponse) bool { return a.Quantity < b.Quantity }
	case "last_updated", "lastUpdated":
		less = func(a, b *dto.CatalogItemResponse) bool { return a.LastUpdated.Before(b.LastUpdated) }
	default:
		less = func(a, b *dto.CatalogItemResponse) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(&items[j], &items[i])
		}
		return less(&items[i], &items[j])
	})
}

// ToCatalogItemResponse convierte la entidad a su salida HTTP.
func ToCatalogItemResponse(item *entity.CatalogItem) dto.CatalogItemResponse {
	return dto.CatalogItemResponse{
		ID:          item.ID,
		Category:    string(item.Category),
		Name:        item.Name,
		Code:        item.Code,
		Quantity:    item.Quantity,
		Location:    item.Location,
		Unit:        item.Unit,
		Description: item.Description,
		AssignedTo:  item.AssignedTo,
		MinQuantity: item.MinQuantity,
		UnitCost:    item.UnitCost,
		LowStock:    item.LowStock(),
		LastUpdated: item.LastUpdated,
	}
}
