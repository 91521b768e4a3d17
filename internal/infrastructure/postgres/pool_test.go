package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/em-inventario/pkg/config"
)

func TestNewPoolConfig_DesdeCampos(t *testing.T) {
	cfg := config.DBConfig{Host: "127.0.0.1", Port: 5433, User: "em", Password: "p@ss", DBName: "inventario", SSLMode: "disable"}

	pc, err := newPoolConfig(cfg, "em-inventario-1a2b3c4d")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss", pc.ConnConfig.Password, "la contraseña se escapa en el DSN")
	assert.Equal(t, "em-inventario-1a2b3c4d", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(poolMaxConns), pc.MaxConns)
}

func TestNewPoolConfig_DatabaseURLTienePrioridad(t *testing.T) {
	cfg := config.DBConfig{DatabaseURL: "postgres://u:p@127.0.0.1:6543/otra?sslmode=disable", Host: "ignorado", Port: 5432}

	pc, err := newPoolConfig(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "otra", pc.ConnConfig.Database)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)
	_, ok := pc.ConnConfig.RuntimeParams["application_name"]
	assert.False(t, ok)
}
