package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.Billing.GraceDays)
	assert.Equal(t, "America/Sao_Paulo", cfg.Billing.Timezone)
	assert.Equal(t, 3, cfg.Checkout.MaxAttempts)
	assert.Equal(t, "inventory:low_stock", cfg.Redis.LowStockStream)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("BILLING_GRACE_DAYS", "7")
	t.Setenv("ASAAS_WEBHOOK_TOKEN", "tok")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Billing.GraceDays)
	assert.Equal(t, "tok", cfg.Billing.WebhookToken)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)
}

func TestBillingConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, BillingConfig{Timezone: "Nada/Inexistente"}.Location())
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "retail", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/retail?sslmode=disable", c.ConnectionString())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
