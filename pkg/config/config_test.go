package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "em_local.db", cfg.Storage.LocalStorePath)
	assert.Equal(t, "best_effort", cfg.Reconcile.Policy)
	assert.True(t, cfg.Reconcile.EnforceStock)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Entorno(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("ENFORCE_STOCK", "false")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RECONCILE_POLICY", "strict")

	v := viper.New()
	v.AutomaticEnv()
	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.False(t, cfg.Reconcile.EnforceStock)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "strict", cfg.Reconcile.Policy)
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	v := viper.New()
	v.AutomaticEnv()
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "em", Password: "p@ss/word", DBName: "em", SSLMode: "disable"}
	assert.Equal(t, "postgres://em:p%40ss%2Fword@db:5432/em?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
