package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadRows_ComasConCabecera(t *testing.T) {
	in := "store_id,product_id,variant_id,quantity,min_stock,reason\n" +
		"s1,p1,,10,2,inventario inicial\n" +
		"s1,p2,v1,3\n"
	rows, err := readRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, stockRow{Line: 2, StoreID: "s1", ProductID: "p1", Quantity: 10, MinStock: 2, Reason: "inventario inicial"}, rows[0])
	assert.Equal(t, "v1", rows[1].VariantID)
	assert.Zero(t, rows[1].MinStock)
}

func TestReadRows_PuntoYComaEnLatin1(t *testing.T) {
	utf := "s1;p1;;5;1;recepción bodega\n"
	latin, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(utf))
	require.NoError(t, err)

	rows, err := readRows(bytes.NewReader(latin))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "recepción bodega", rows[0].Reason)
	assert.Equal(t, int64(5), rows[0].Quantity)
}

func TestReadRows_Errores(t *testing.T) {
	cases := map[string]string{
		"pocas columnas":       "s1,p1,\n",
		"cantidad negativa":    "s1,p1,,-3\n",
		"cantidad no numérica": "s1,p1,,diez\n",
		"sin producto":         "s1,,,3\n",
		"mínimo inválido":      "s1,p1,,3,x\n",
	}
	for nombre, in := range cases {
		t.Run(nombre, func(t *testing.T) {
			_, err := readRows(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}
