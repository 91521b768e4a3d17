package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
	"github.com/jhoicas/em-inventario/internal/infrastructure/memory"
)

func newRequisition(id string, seq int64, created time.Time) *entity.Requisition {
	return &entity.Requisition{
		ID:              id,
		ReferenceNumber: entity.FormatReference(seq),
		RequisitionType: entity.RequisitionIssue,
		ItemType:        entity.CategoryTools,
		Lines: []entity.RequisitionLine{
			{LineNo: 1, ItemType: entity.CategoryTools, ItemName: "Taladro", Quantity: 1},
		},
		IssuedTo:  "Ana",
		Status:    entity.StatusPending,
		CreatedAt: created,
	}
}

func TestRequisitionRepository_SecuenciaMonotona(t *testing.T) {
	repo := memory.NewRequisitionRepository()
	ctx := context.Background()

	a, err := repo.NextSequence(ctx)
	require.NoError(t, err)
	b, err := repo.NextSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, a+1, b)
}

func TestRequisitionRepository_ReferenciaDuplicada(t *testing.T) {
	repo := memory.NewRequisitionRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newRequisition("a", 1, now)))
	err := repo.Create(ctx, newRequisition("b", 1, now))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRequisitionRepository_CopiasAisladas(t *testing.T) {
	repo := memory.NewRequisitionRepository()
	ctx := context.Background()
	req := newRequisition("a", 1, time.Now())
	require.NoError(t, repo.Create(ctx, req))

	req.Lines[0].Quantity = 99
	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Lines[0].Quantity, "mutar la entrada no debe alterar lo guardado")

	missing, err := repo.GetByID(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRequisitionRepository_UpdateConservaLineas(t *testing.T) {
	repo := memory.NewRequisitionRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newRequisition("a", 1, time.Now())))

	require.NoError(t, repo.SaveLineOutcomes(ctx, "a", []entity.RequisitionLine{
		{LineNo: 1, Outcome: entity.OutcomeApplied, CatalogItemID: "item-1"},
	}))

	patch := newRequisition("a", 1, time.Now())
	patch.Lines = nil
	patch.Status = entity.StatusApproved
	require.NoError(t, repo.Update(ctx, patch))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, entity.OutcomeApplied, got.Lines[0].Outcome)
	assert.Equal(t, "item-1", got.Lines[0].CatalogItemID)

	assert.ErrorIs(t, repo.Update(ctx, newRequisition("x", 9, time.Now())), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "x"), domain.ErrNotFound)
}

func TestRequisitionRepository_ListOrdenDescendente(t *testing.T) {
	repo := memory.NewRequisitionRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newRequisition("a", 1, base)))
	require.NoError(t, repo.Create(ctx, newRequisition("b", 2, base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newRequisition("c", 3, base.Add(2*time.Hour))))

	out, err := repo.List(ctx, entity.RequisitionFilter{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{out[0].ID, out[1].ID, out[2].ID})

	out, err = repo.List(ctx, entity.RequisitionFilter{Search: "req-000002"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestCatalogStore_AjusteSinRecorte(t *testing.T) {
	store := memory.NewCatalogStore(entity.CategoryPPE)
	ctx := context.Background()

	saved, err := store.Upsert(ctx, entity.CatalogItem{Name: "Guantes", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryPPE, saved.Category)
	assert.NotEmpty(t, saved.ID)

	adj, err := store.AdjustQuantity(ctx, catalog.NewMatcher("GUANTES"), -3)
	require.NoError(t, err)
	assert.Equal(t, 1, adj.Previous)
	assert.Equal(t, -2, adj.Item.Quantity, "la cantidad no se recorta a cero")

	_, err = store.AdjustQuantity(ctx, catalog.NewMatcher("casco"), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Remove(ctx, saved.ID))
	require.NoError(t, store.Remove(ctx, saved.ID))
	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
