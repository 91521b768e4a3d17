package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcatalog "github.com/jhoicas/em-inventario/internal/application/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/infrastructure/memory"
)

// failingStore simula un store inaccesible.
type failingStore struct{ *memory.CatalogStore }

func (failingStore) List(context.Context) ([]entity.CatalogItem, error) {
	return nil, errors.New("disco no disponible")
}

func (failingStore) AdjustQuantity(context.Context, catalog.Matcher, int) (*catalog.Adjustment, error) {
	return nil, errors.New("disco no disponible")
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	reg := appcatalog.NewRegistry()
	parts := memory.NewCatalogStore(entity.CategorySpareParts)
	ppe := memory.NewCatalogStore(entity.CategoryPPE)
	reg.Register(entity.CategorySpareParts, parts)
	reg.Register(entity.CategoryPPE, ppe)
	reg.Register(entity.CategoryTools, failingStore{memory.NewCatalogStore(entity.CategoryTools)})

	_, err := parts.Upsert(ctx, entity.CatalogItem{Name: "Bearing", Quantity: 4, MinQuantity: 5, UnitCost: decimal.RequireFromString("2.50")})
	require.NoError(t, err)
	_, err = parts.Upsert(ctx, entity.CatalogItem{Name: "V-Belt", Quantity: 10, UnitCost: decimal.NewFromInt(3)})
	require.NoError(t, err)
	_, err = ppe.Upsert(ctx, entity.CatalogItem{Name: "Gloves", Quantity: 1, MinQuantity: 10})
	require.NoError(t, err)

	ledger := memory.NewRequisitionRepository()
	past := time.Now().Add(-48 * time.Hour)
	for i, r := range []entity.Requisition{
		{ID: "a", ReferenceNumber: "REQ-000001", RequisitionType: entity.RequisitionIssue, Status: entity.StatusApproved, ExpectedReturnAt: &past},
		{ID: "b", ReferenceNumber: "REQ-000002", RequisitionType: entity.RequisitionReturn, Status: entity.StatusCompleted},
		{ID: "c", ReferenceNumber: "REQ-000003", RequisitionType: entity.RequisitionIssue, Status: entity.StatusPending},
	} {
		r.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, ledger.Create(ctx, &r))
	}

	uc := NewUseCase(reg, ledger, zerolog.Nop())
	sum, err := uc.Summary(ctx)
	require.NoError(t, err)

	require.Len(t, sum.Categories, 3)
	assert.Equal(t, "spare_parts", sum.Categories[0].Category)
	assert.Equal(t, 2, sum.Categories[0].Items)
	assert.Equal(t, 14, sum.Categories[0].TotalQuantity)
	assert.NotEmpty(t, sum.Categories[1].Error, "tools no se pudo leer")
	assert.True(t, decimal.NewFromInt(40).Equal(sum.StockValue), "4×2.50 + 10×3")

	require.Len(t, sum.LowStock, 2)
	assert.Equal(t, "Gloves", sum.LowStock[0].Name, "primero el más alejado de su mínimo")

	assert.Equal(t, 2, sum.RequisitionsByType["issue"])
	assert.Equal(t, 1, sum.RequisitionsByStatus["completed"])
	assert.Equal(t, 1, sum.Overdue)
	require.Len(t, sum.Latest, 3)
	assert.Equal(t, "REQ-000003", sum.Latest[0].ReferenceNumber)
}
