package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// venta base: 2 tenis M a 19990 y 1 camisa a 4990.
func sellBase(t *testing.T, uc *CheckoutUseCase) *dto.SaleResponse {
	t.Helper()
	res, err := uc.Checkout(context.Background(), sess, dto.CheckoutRequest{ClientID: "cli1", Lines: []dto.CheckoutLineRequest{
		{ProductID: "tenis", VariantID: "tenis-m", Quantity: 2, UnitPriceCents: 19990},
		{ProductID: "camisa", Quantity: 1, UnitPriceCents: 4990},
	}})
	require.NoError(t, err)
	return res
}

func TestExchange_CambioDeTalla(t *testing.T) {
	uc, s := newFixture(t)
	s.SeedStock(keyTenisM, 2, 0)
	s.SeedStock(keyCamisa, 1, 0)
	s.SeedStock(keyTenisG, 1, 0)
	original := sellBase(t, uc)

	res, err := uc.Exchange(context.Background(), sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-m", Quantity: 1, UnitPriceCents: 1}},
		Taken:    []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-g", Quantity: 1, UnitPriceCents: 21990}},
	})
	require.NoError(t, err)
	assert.Equal(t, "exchange", res.Kind)
	assert.Equal(t, original.ID, res.OriginalSaleID)
	assert.Equal(t, "cli1", res.ClientID)
	// devuelto al precio original, no al informado
	assert.Equal(t, int64(21990-19990), res.TotalCents)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, int64(19990), res.Lines[0].UnitPriceCents)
	assert.Equal(t, "returned", res.Lines[0].Direction)

	assert.Equal(t, int64(1), quantity(t, s, keyTenisM))
	assert.Zero(t, quantity(t, s, keyTenisG))
	assert.Equal(t, 2, s.SaleCount())
}

func TestExchange_SoloDevolucionGeneraCredito(t *testing.T) {
	uc, s := newFixture(t)
	s.SeedStock(keyTenisM, 2, 0)
	s.SeedStock(keyCamisa, 1, 0)
	original := sellBase(t, uc)

	res, err := uc.Exchange(context.Background(), sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "camisa", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-4990), res.TotalCents)
	assert.Equal(t, "-49.90", res.Total)
	assert.Equal(t, int64(1), quantity(t, s, keyCamisa))
}

func TestExchange_SinStockParaLoLlevadoSeRechazaEntera(t *testing.T) {
	uc, s := newFixture(t)
	s.SeedStock(keyTenisM, 2, 0)
	s.SeedStock(keyCamisa, 1, 0)
	original := sellBase(t, uc)
	movsBefore := len(s.Movements())

	_, err := uc.Exchange(context.Background(), sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-m", Quantity: 1}},
		Taken:    []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-g", Quantity: 1, UnitPriceCents: 21990}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 0, ise.LineIndex)

	// lo devuelto tampoco entra
	assert.Zero(t, quantity(t, s, keyTenisM))
	assert.Equal(t, 1, s.SaleCount())
	assert.Len(t, s.Movements(), movsBefore)
}

func TestExchange_MismaClaveDevueltaYLlevada(t *testing.T) {
	uc, s := newFixture(t)
	s.SeedStock(keyTenisM, 2, 0)
	s.SeedStock(keyCamisa, 1, 0)
	original := sellBase(t, uc)

	// defecto: se cambia por otra unidad del mismo SKU sin stock extra
	res, err := uc.Exchange(context.Background(), sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-m", Quantity: 1}},
		Taken:    []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-m", Quantity: 1, UnitPriceCents: 19990}},
	})
	require.NoError(t, err)
	assert.Zero(t, res.TotalCents)
	assert.Zero(t, quantity(t, s, keyTenisM))
}

func TestExchange_TopeDeDevolucion(t *testing.T) {
	uc, s := newFixture(t)
	s.SeedStock(keyTenisM, 2, 0)
	s.SeedStock(keyCamisa, 1, 0)
	original := sellBase(t, uc)
	ctx := context.Background()

	_, err := uc.Exchange(ctx, sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-m", Quantity: 3}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Exchange(ctx, sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-m", Quantity: 2}},
	})
	require.NoError(t, err)

	// ya se devolvió todo lo vendido de esa clave
	_, err = uc.Exchange(ctx, sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-m", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(2), quantity(t, s, keyTenisM))
}

func TestExchange_Validaciones(t *testing.T) {
	uc, s := newFixture(t)
	s.SeedStock(keyTenisM, 2, 0)
	s.SeedStock(keyCamisa, 1, 0)
	original := sellBase(t, uc)
	ctx := context.Background()

	_, err := uc.Exchange(ctx, sess, original.ID, dto.ExchangeRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas devueltas")

	_, err = uc.Exchange(ctx, sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "tenis", VariantID: "tenis-g", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "variante no vendida")

	_, err = uc.Exchange(ctx, sess, "no-existe", dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "camisa", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Exchange(ctx, entity.Session{OrganizationID: "org2", StoreID: "s9"}, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "camisa", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "venta de otra organización")

	exch, err := uc.Exchange(ctx, sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "camisa", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = uc.Exchange(ctx, sess, exch.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "camisa", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "troca de una troca")
}

func TestExchange_CantidadesFueraDeRango(t *testing.T) {
	uc, s := newFixture(t)
	s.SeedStock(keyTenisM, 2, 0)
	s.SeedStock(keyCamisa, 1, 0)
	original := sellBase(t, uc)
	ctx := context.Background()

	_, err := uc.Exchange(ctx, sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "camisa", Quantity: 1}},
		Taken: []dto.ExchangeLineRequest{
			{ProductID: "tenis", VariantID: "tenis-g", Quantity: 1 << 62, UnitPriceCents: 1},
			{ProductID: "tenis", VariantID: "tenis-g", Quantity: 1<<62 + 1, UnitPriceCents: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Exchange(ctx, sess, original.ID, dto.ExchangeRequest{
		Returned: []dto.ExchangeLineRequest{{ProductID: "camisa", Quantity: entity.MaxLineQuantity + 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, quantity(t, s, keyCamisa))
	assert.Zero(t, quantity(t, s, keyTenisG))
	assert.Equal(t, 1, s.SaleCount())
}
