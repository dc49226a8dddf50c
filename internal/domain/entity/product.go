package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de producto.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product representa un producto del almacén. Quantity es el saldo actual en
// existencia: una caché desnormalizada del libro de movimientos que solo el
// servicio de mutación puede modificar.
type Product struct {
	ID          string
	SKU         string // código único
	Barcode     string
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	Quantity    int64           // saldo actual, siempre >= 0
	Status      string          // active, inactive
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductVariant representa una variante (talla, color, presentación) de un producto.
type ProductVariant struct {
	ID        string
	ProductID string
	SKU       string
	Name      string
	CreatedAt time.Time
}
