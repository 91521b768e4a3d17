package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/em-inventario/internal/domain"
	"github.com/jhoicas/em-inventario/internal/domain/catalog"
	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

func TestMatcher_NombreSinMayusculas(t *testing.T) {
	m := catalog.NewMatcher("  safety HELMET ")
	item := &entity.CatalogItem{Name: "Safety Helmet"}
	assert.True(t, m.Match(item))
}

func TestMatcher_PorCodigo(t *testing.T) {
	m := catalog.NewMatcher("sp-0042")
	assert.True(t, m.Match(&entity.CatalogItem{Name: "Bearing 6204", Code: "SP-0042"}))
	assert.False(t, m.Match(&entity.CatalogItem{Name: "Bearing 6204"}))
}

func TestMatcher_PlegadoUnicode(t *testing.T) {
	m := catalog.NewMatcher("VÁLVULA DE BOLA")
	assert.True(t, m.Match(&entity.CatalogItem{Name: "válvula de bola"}))
}

func TestMatcher_VacioNoCoincide(t *testing.T) {
	m := catalog.NewMatcher("   ")
	assert.True(t, m.Empty())
	assert.False(t, m.Match(&entity.CatalogItem{Name: ""}))
}

func TestFindFirst(t *testing.T) {
	items := []entity.CatalogItem{
		{ID: "1", Name: "Power Drill"},
		{ID: "2", Name: "Hammer"},
		{ID: "3", Name: "power drill"},
	}

	idx, n := catalog.FindFirst(items, catalog.NewMatcher("Power Drill"))
	assert.Equal(t, 0, idx, "debe tomarse la primera coincidencia")
	assert.Equal(t, 2, n)

	idx, n = catalog.FindFirst(items, catalog.NewMatcher("Nonexistent Widget"))
	assert.Equal(t, -1, idx)
	assert.Zero(t, n)
}

// La clave indexada y el criterio del Matcher se pliegan igual, también con "ß".
func TestFoldKey_CoincideConMatcher(t *testing.T) {
	assert.Equal(t, catalog.NewMatcher("STRASSE").Key(), catalog.FoldKey("Straße"))
	assert.Equal(t, catalog.NewMatcher("válvula").Key(), catalog.FoldKey(" VÁLVULA "))
	assert.Empty(t, catalog.FoldKey("   "))
}

func TestFirst_OrdenDeLaLista(t *testing.T) {
	items := []entity.CatalogItem{
		{ID: "b", Name: "Zeta", Code: "K-1"},
		{ID: "a", Name: "K-1"},
	}
	it, err := catalog.First(items, catalog.NewMatcher("k-1"))
	require.NoError(t, err)
	assert.Equal(t, "b", it.ID)

	_, err = catalog.First(items, catalog.NewMatcher("otro"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
