package localstore

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestDB crea una base SQLite en memoria con el esquema aplicado.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err, "abrir base de test")
	t.Cleanup(func() { db.Close() })
	return db
}
