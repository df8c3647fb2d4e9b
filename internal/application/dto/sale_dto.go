package dto

import "time"

// CheckoutLineRequest línea del carrito. VariantID solo para productos con stock por variante.
type CheckoutLineRequest struct {
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id,omitempty"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// CheckoutRequest body para POST /api/checkout.
type CheckoutRequest struct {
	ClientID string                `json:"client_id,omitempty"`
	Lines    []CheckoutLineRequest `json:"lines"`
}

// ExchangeLineRequest línea de una troca (devuelta o llevada).
type ExchangeLineRequest struct {
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id,omitempty"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents,omitempty"` // ignorado en devueltas: se usa el precio original
}

// ExchangeRequest body para POST /api/sales/:id/exchange.
type ExchangeRequest struct {
	Returned []ExchangeLineRequest `json:"returned"`
	Taken    []ExchangeLineRequest `json:"taken"`
}

// SaleLineResponse línea de venta en respuestas.
type SaleLineResponse struct {
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id,omitempty"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
	Direction      string `json:"direction"`
}

// SaleResponse venta confirmada. Total es TotalCents formateado con dos decimales.
type SaleResponse struct {
	ID             string             `json:"id"`
	OrganizationID string             `json:"organization_id"`
	StoreID        string             `json:"store_id"`
	ClientID       string             `json:"client_id,omitempty"`
	Kind           string             `json:"kind"`
	OriginalSaleID string             `json:"original_sale_id,omitempty"`
	TotalCents     int64              `json:"total_cents"`
	Total          string             `json:"total"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	Lines          []SaleLineResponse `json:"lines"`
}
