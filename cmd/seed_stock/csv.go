package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// stockRow fila del archivo de carga inicial.
type stockRow struct {
	Line      int
	StoreID   string
	ProductID string
	VariantID string
	Quantity  int64
	MinStock  int64
	Reason    string
}

// readRows lee el CSV: store_id, product_id, variant_id, quantity[, min_stock[, reason]].
// Acepta ',' o ';' como separador y archivos en ISO-8859-1 (exportados desde hojas de cálculo).
// La cabecera es opcional.
func readRows(r io.Reader) ([]stockRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer archivo: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	br := bufio.NewReader(src)
	first, _ := br.Peek(4096)
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if firstLine, _, _ := bytes.Cut(first, []byte("\n")); bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		cr.Comma = ';'
	}

	var rows []stockRow
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "store_id") {
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row, err := parseRow(line, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(line int, rec []string) (stockRow, error) {
	if len(rec) < 4 {
		return stockRow{}, fmt.Errorf("línea %d: se esperaban al menos 4 columnas, hay %d", line, len(rec))
	}
	field := func(i int) string {
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	row := stockRow{
		Line:      line,
		StoreID:   field(0),
		ProductID: field(1),
		VariantID: field(2),
		Reason:    field(5),
	}
	if row.StoreID == "" || row.ProductID == "" {
		return stockRow{}, fmt.Errorf("línea %d: store_id y product_id son obligatorios", line)
	}
	q, err := strconv.ParseInt(field(3), 10, 64)
	if err != nil || q < 0 {
		return stockRow{}, fmt.Errorf("línea %d: cantidad inválida %q", line, field(3))
	}
	row.Quantity = q
	if s := field(4); s != "" {
		minStock, err := strconv.ParseInt(s, 10, 64)
		if err != nil || minStock < 0 {
			return stockRow{}, fmt.Errorf("línea %d: stock mínimo inválido %q", line, s)
		}
		row.MinStock = minStock
	}
	return row, nil
}
