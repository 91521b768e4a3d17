// Package catalog contiene la lógica de dominio compartida por todos los almacenes de catálogo:
// cómo se localiza un ítem a partir del nombre o código escrito en una requisición.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/em-inventario/internal/domain/entity"
)

var folder = cases.Fold()

// Matcher localiza ítems cuyo nombre o código coincide con Key sin distinguir mayúsculas
// (plegado Unicode, "VÁLVULA" == "válvula") e ignorando espacios en los extremos.
type Matcher struct {
	key string
}

// NewMatcher construye el matcher para el criterio dado.
func NewMatcher(key string) Matcher {
	return Matcher{key: fold(key)}
}

// Key devuelve el criterio normalizado.
func (m Matcher) Key() string { return m.key }

// Empty indica si el criterio está vacío (no coincide con nada).
func (m Matcher) Empty() bool { return m.key == "" }

// Match evalúa el criterio contra un ítem.
func (m Matcher) Match(item *entity.CatalogItem) bool {
	if m.Empty() {
		return false
	}
	if fold(item.Name) == m.key {
		return true
	}
	return item.Code != "" && fold(item.Code) == m.key
}

// FindFirst devuelve el índice del primer ítem que coincide y el total de candidatos.
// idx es -1 cuando no hay coincidencias.
func FindFirst(items []entity.CatalogItem, m Matcher) (idx, candidates int) {
	idx = -1
	for i := range items {
		if m.Match(&items[i]) {
			if idx < 0 {
				idx = i
			}
			candidates++
		}
	}
	return idx, candidates
}

// Adjustment resultado de AdjustQuantity: el ítem ya ajustado, su cantidad previa
// y cuántos ítems coincidían (más de uno significa que se tomó el primero).
type Adjustment struct {
	Item       entity.CatalogItem
	Previous   int
	Candidates int
}

// FoldKey normaliza un nombre o código igual que Matcher. Los stores que indexan la clave
// (columna name_key/code_key en PostgreSQL) deben calcularla con esta función.
func FoldKey(s string) string {
	return fold(s)
}

func fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}
