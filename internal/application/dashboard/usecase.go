// Package dashboard arma el resumen de la consola: existencias por categoría, ítems bajo
// mínimo, valor del inventario y estado del libro de requisiciones.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	appcatalog "github.com/jhoicas/em-inventario/internal/application/catalog"
	"github.com/jhoicas/em-inventario/internal/application/dto"
	"github.com/jhoicas/em-inventario/internal/application/requisition"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/domain/repository"
)

const latestRequisitions = 5 // requisiciones recientes en el widget

// UseCase resumen del dashboard.
type UseCase struct {
	registry *appcatalog.Registry
	ledger   repository.RequisitionRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(registry *appcatalog.Registry, ledger repository.RequisitionRepository, log zerolog.Logger) *UseCase {
	return &UseCase{registry: registry, ledger: ledger, log: log, now: time.Now}
}

// Summary lee todas las categorías y el libro en paralelo.
// Una categoría que no se puede leer se reporta con Error y no invalida el resumen;
// un error del libro sí.
func (uc *UseCase) Summary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	categories := uc.registry.Categories()
	summaries := make([]dto.CategorySummaryDTO, len(categories))
	lowStock := make([][]dto.CatalogItemResponse, len(categories))
	var requisitions []*entity.Requisition

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range categories {
		g.Go(func() error {
			summaries[i], lowStock[i] = uc.summarizeCategory(gctx, c)
			return nil
		})
	}
	g.Go(func() error {
		var err error
		requisitions, err = uc.ledger.List(gctx, entity.RequisitionFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.DashboardSummaryDTO{
		Categories:           summaries,
		LowStock:             []dto.CatalogItemResponse{},
		StockValue:           decimal.Zero,
		RequisitionsByStatus: make(map[string]int),
		RequisitionsByType:   make(map[string]int),
		Latest:               []dto.RequisitionResponse{},
	}
	for i := range summaries {
		out.StockValue = out.StockValue.Add(summaries[i].StockValue)
		out.LowStock = append(out.LowStock, lowStock[i]...)
	}
	sort.SliceStable(out.LowStock, func(i, j int) bool {
		return out.LowStock[i].Quantity-out.LowStock[i].MinQuantity < out.LowStock[j].Quantity-out.LowStock[j].MinQuantity
	})

	now := uc.now()
	for _, r := range requisitions {
		out.RequisitionsByStatus[string(r.Status)]++
		out.RequisitionsByType[string(r.RequisitionType)]++
		if r.Overdue(now) {
			out.Overdue++
		}
	}
	// El libro ya viene ordenado de más reciente a más antiguo.
	for i := 0; i < len(requisitions) && i < latestRequisitions; i++ {
		out.Latest = append(out.Latest, requisition.ToRequisitionResponse(requisitions[i], now))
	}
	return out, nil
}

func (uc *UseCase) summarizeCategory(ctx context.Context, c entity.Category) (dto.CategorySummaryDTO, []dto.CatalogItemResponse) {
	sum := dto.CategorySummaryDTO{Category: string(c), StockValue: decimal.Zero}
	store, err := uc.registry.Store(c)
	if err != nil {
		sum.Error = err.Error()
		return sum, nil
	}
	items, err := store.List(ctx)
	if err != nil {
		uc.log.Error().Err(err).Str("category", string(c)).Msg("dashboard: no se pudo leer la categoría")
		sum.Error = err.Error()
		return sum, nil
	}
	var low []dto.CatalogItemResponse
	for i := range items {
		sum.Items++
		sum.TotalQuantity += items[i].Quantity
		sum.StockValue = sum.StockValue.Add(items[i].StockValue())
		if items[i].LowStock() {
			sum.LowStock++
			low = append(low, appcatalog.ToCatalogItemResponse(&items[i]))
		}
	}
	return sum, low
}
