package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.App.StoreDriver)
	assert.Equal(t, LockModeNone, cfg.Stock.LockMode)
	assert.Equal(t, "system", cfg.App.DefaultActor)
	assert.Equal(t, 5, cfg.Stock.LockTTLSeconds)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("STOCK_LOCK_MODE", "local")
	t.Setenv("DEFAULT_ACTOR", "bodega")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.App.StoreDriver)
	assert.Equal(t, LockModeLocal, cfg.Stock.LockMode)
	assert.Equal(t, "bodega", cfg.App.DefaultActor)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_RedisSinDireccion_RetornaError(t *testing.T) {
	t.Setenv("STOCK_LOCK_MODE", "redis")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DriverInvalido_RetornaError(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{User: "app", Password: "p@ss", Host: "db", Port: 5432, DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otra"
	assert.Equal(t, "postgres://otra", c.ConnectionString())
}
