package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-api/internal/application/ports"
)

// streamMaxLen tope aproximado del stream; los consumidores leen avisos recientes.
const streamMaxLen = 10000

var (
	_ ports.LowStockPublisher = (*StreamPublisher)(nil)
	_ ports.LowStockPublisher = (*LogPublisher)(nil)
)

// StreamPublisher publica avisos de stock bajo en un stream de Redis (XADD).
type StreamPublisher struct {
	client *goredis.Client
	stream string
}

// NewStreamPublisher construye el adaptador sobre un cliente ya conectado.
func NewStreamPublisher(client *goredis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) PublishLowStock(ctx context.Context, s ports.LowStockSignal) error {
	if err := p.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: signalValues(s),
	}).Err(); err != nil {
		return fmt.Errorf("xadd low stock (stream=%s): %w", p.stream, err)
	}
	return nil
}

func signalValues(s ports.LowStockSignal) map[string]any {
	return map[string]any{
		"organization_id": s.OrganizationID,
		"store_id":        s.StoreID,
		"product_id":      s.ProductID,
		"variant_id":      s.VariantID,
		"quantity":        strconv.FormatInt(s.Quantity, 10),
		"min_stock":       strconv.FormatInt(s.MinStock, 10),
		"reference_id":    s.ReferenceID,
		"at":              s.At.UTC().Format(time.RFC3339),
	}
}

// LogPublisher deja el aviso en el log; se usa cuando no hay Redis configurado.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishLowStock(_ context.Context, s ports.LowStockSignal) error {
	p.log.Warn().
		Str("organization_id", s.OrganizationID).
		Str("store_id", s.StoreID).
		Str("product_id", s.ProductID).
		Str("variant_id", s.VariantID).
		Int64("quantity", s.Quantity).
		Int64("min_stock", s.MinStock).
		Str("reference_id", s.ReferenceID).
		Msg("stock bajo")
	return nil
}

// NewClient abre el cliente y verifica la conexión con PING.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
