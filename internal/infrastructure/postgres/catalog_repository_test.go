package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

// newTestCatalog abre TEST_DATABASE_URL con el esquema aplicado y una categoría propia del test.
// Sin la variable el test se omite.
func newTestCatalog(t *testing.T) (*pgxpool.Pool, *CatalogRepo) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definida")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(ctx, pool))

	category := entity.Category("test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM catalog_items WHERE category = $1`, category)
	})
	return pool, NewCatalogRepository(pool, category)
}

func TestCatalogRepo_AdjustPlegadoUnicode(t *testing.T) {
	_, repo := newTestCatalog(t)
	ctx := context.Background()

	saved, err := repo.Upsert(ctx, entity.CatalogItem{Name: "Straße", Quantity: 4})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, entity.CatalogItem{Name: "Válvula de bola", Code: "VB-1", Quantity: 2})
	require.NoError(t, err)

	adj, err := repo.AdjustQuantity(ctx, catalog.NewMatcher("STRASSE"), -1)
	require.NoError(t, err, "debe coincidir igual que los stores en memoria")
	assert.Equal(t, saved.ID, adj.Item.ID)
	assert.Equal(t, 3, adj.Item.Quantity)

	adj, err = repo.AdjustQuantity(ctx, catalog.NewMatcher("VÁLVULA DE BOLA"), 3)
	require.NoError(t, err)
	assert.Equal(t, 5, adj.Item.Quantity)

	_, err = repo.AdjustQuantity(ctx, catalog.NewMatcher("inexistente"), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogRepo_FindMismoOrdenQueAdjust(t *testing.T) {
	_, repo := newTestCatalog(t)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, entity.CatalogItem{Name: "X-100", Quantity: 1})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, entity.CatalogItem{Name: "Angle Grinder", Code: "X-100", Quantity: 50})
	require.NoError(t, err)

	found, err := repo.Find(ctx, catalog.NewMatcher("x-100"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	adj, err := repo.AdjustQuantity(ctx, catalog.NewMatcher("x-100"), -1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, adj.Item.ID)
	assert.Equal(t, 2, adj.Candidates)
}

// Filas anteriores a name_key/code_key se completan al aplicar el esquema.
func TestEnsureSchema_CompletaClaves(t *testing.T) {
	pool, repo := newTestCatalog(t)
	ctx := context.Background()

	id := uuid.NewString()
	_, err := pool.Exec(ctx, `INSERT INTO catalog_items (id, category, name, code, quantity) VALUES ($1, $2, $3, $4, 7)`,
		id, repo.category, "Rodamiento 6204", "SP-42")
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(ctx, pool))

	found, err := repo.Find(ctx, catalog.NewMatcher("sp-42"))
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
}
