package redis

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-api/internal/application/ports"
	"github.com/jhoicas/retail-api/internal/domain/entity"
)

func getRedisClient(t *testing.T) *goredis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := NewClient(context.Background(), addr, "", 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testSignal() ports.LowStockSignal {
	return ports.LowStockSignal{
		OrganizationID: "org1",
		StockKey:       entity.StockKey{StoreID: "s1", ProductID: "p1", VariantID: "v1"},
		Quantity:       2,
		MinStock:       5,
		ReferenceID:    "sale-1",
		At:             time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestStreamPublisher_XAdd(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	stream := "test:low_stock:" + time.Now().Format("150405.000000")
	t.Cleanup(func() { client.Del(context.Background(), stream) })

	p := NewStreamPublisher(client, stream)
	require.NoError(t, p.PublishLowStock(ctx, testSignal()))

	msgs, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "p1", msgs[0].Values["product_id"])
	assert.Equal(t, "2", msgs[0].Values["quantity"])
	assert.Equal(t, "2026-03-20T12:00:00Z", msgs[0].Values["at"])
}

func TestStreamPublisher_ErrorConClienteCerrado(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	_ = client.Close()

	err := NewStreamPublisher(client, "x").PublishLowStock(context.Background(), testSignal())
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))
	require.NoError(t, p.PublishLowStock(context.Background(), testSignal()))
	assert.Contains(t, buf.String(), `"product_id":"p1"`)
	assert.Contains(t, buf.String(), `"min_stock":5`)
}
