package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-api/internal/domain"
)

func TestComputeTotal(t *testing.T) {
	s := Sale{Lines: []SaleLine{
		{Quantity: 2, UnitPriceCents: 19990, Direction: LineOut},
		{Quantity: 1, UnitPriceCents: 4990, Direction: LineReturned},
	}}
	total, err := s.ComputeTotal()
	require.NoError(t, err)
	assert.Equal(t, int64(2*19990-4990), total)
}

func TestComputeTotal_Desbordamiento(t *testing.T) {
	cases := []struct {
		nombre string
		lines  []SaleLine
	}{
		{"producto de línea", []SaleLine{{Quantity: MaxLineQuantity, UnitPriceCents: math.MaxInt64 / 2, Direction: LineOut}}},
		{"suma de líneas", []SaleLine{
			{Quantity: 1, UnitPriceCents: math.MaxInt64, Direction: LineOut},
			{Quantity: 1, UnitPriceCents: 1, Direction: LineOut},
		}},
		{"suma negativa", []SaleLine{
			{Quantity: 1, UnitPriceCents: math.MaxInt64, Direction: LineReturned},
			{Quantity: 2, UnitPriceCents: 1, Direction: LineReturned},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			_, err := (&Sale{Lines: tc.lines}).ComputeTotal()
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLimitesDeLinea(t *testing.T) {
	assert.True(t, ValidQuantity(1))
	assert.True(t, ValidQuantity(MaxLineQuantity))
	assert.False(t, ValidQuantity(0))
	assert.False(t, ValidQuantity(MaxLineQuantity+1))
	assert.True(t, ValidPrice(0))
	assert.False(t, ValidPrice(-1))
	assert.False(t, ValidPrice(MaxUnitPriceCents+1))
}

func TestAritmeticaConControl(t *testing.T) {
	_, ok := AddInt64(math.MaxInt64, 1)
	assert.False(t, ok)
	_, ok = AddInt64(math.MinInt64, -1)
	assert.False(t, ok)
	v, ok := AddInt64(-5, 3)
	assert.True(t, ok)
	assert.Equal(t, int64(-2), v)

	_, ok = MulInt64(1<<32, 1<<31)
	assert.False(t, ok)
	_, ok = MulInt64(math.MinInt64, -1)
	assert.False(t, ok)
	v, ok = MulInt64(-3, 7)
	assert.True(t, ok)
	assert.Equal(t, int64(-21), v)
}
