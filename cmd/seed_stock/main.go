// seed_stock carga el stock inicial de una organización desde un CSV.
// Cada fila se aplica como ajuste (entrada) con su movimiento y, si trae min_stock, fija el umbral.
//
// Uso: go run ./cmd/seed_stock <organization_id> [ruta/stock.csv]
// Por defecto lee stock.csv en el directorio actual. Usa la misma configuración de DB que la API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/application/inventory"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/infrastructure/postgres"
	"github.com/jhoicas/retail-api/pkg/config"
	"github.com/jhoicas/retail-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_stock <organization_id> [stock.csv]")
		os.Exit(2)
	}
	orgID := os.Args[1]
	csvPath := "stock.csv"
	if len(os.Args) > 2 {
		csvPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_stock"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	stockUC := inventory.NewStockUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewInventoryRepository(pool),
		postgres.NewStockMovementRepository(pool),
		postgres.NewProductRepository(pool),
		postgres.NewStoreRepository(pool),
		nil, nil, log.Zerolog(),
		inventory.Options{MaxAttempts: cfg.Checkout.MaxAttempts},
	)
	sess := entity.Session{UserID: "seed_stock", OrganizationID: orgID, Role: entity.RoleAdmin}

	var applied, failed int
	for _, r := range rows {
		if err := apply(ctx, stockUC, sess, r); err != nil {
			failed++
			log.Error().Err(err).Int("line", r.Line).Str("product_id", r.ProductID).Msg("fila no aplicada")
			continue
		}
		applied++
	}

	fmt.Printf("Cargado %s: %d filas aplicadas, %d con error\n", csvPath, applied, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func apply(ctx context.Context, uc *inventory.StockUseCase, sess entity.Session, r stockRow) error {
	reason := r.Reason
	if reason == "" {
		reason = "carga inicial"
	}
	if r.Quantity > 0 {
		if _, err := uc.Adjust(ctx, sess, dto.AdjustStockRequest{
			StoreID:   r.StoreID,
			ProductID: r.ProductID,
			VariantID: r.VariantID,
			Quantity:  r.Quantity,
			Reason:    reason,
		}); err != nil {
			return fmt.Errorf("ajuste: %w", err)
		}
	}
	if r.MinStock > 0 {
		if _, err := uc.SetMinStock(ctx, sess, dto.SetMinStockRequest{
			StoreID:   r.StoreID,
			ProductID: r.ProductID,
			VariantID: r.VariantID,
			MinStock:  r.MinStock,
		}); err != nil {
			return fmt.Errorf("stock mínimo: %w", err)
		}
	}
	return nil
}
