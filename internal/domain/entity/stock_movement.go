package entity

import "time"

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeStockIn  = "stock_in"  // entrada
	MovementTypeStockOut = "stock_out" // salida
)

// Motivos de movimiento (enum cerrado, validado por tipo).
const (
	ReasonInitialStock = "initial_stock"
	ReasonPurchase     = "purchase"
	ReasonSale         = "sale"
	ReasonAdjustment   = "adjustment"
	ReasonTransfer     = "transfer"
	ReasonReturn       = "return"
	ReasonDamage       = "damage"
	ReasonExpired      = "expired"
	ReasonOther        = "other"
)

// stockInReasons y stockOutReasons definen qué motivos admite cada tipo de movimiento.
var stockInReasons = map[string]bool{
	ReasonInitialStock: true,
	ReasonPurchase:     true,
	ReasonAdjustment:   true,
	ReasonTransfer:     true,
	ReasonReturn:       true,
	ReasonOther:        true,
}

var stockOutReasons = map[string]bool{
	ReasonSale:       true,
	ReasonAdjustment: true,
	ReasonTransfer:   true,
	ReasonDamage:     true,
	ReasonExpired:    true,
	ReasonOther:      true,
}

// ValidStockInReason indica si el motivo es admisible para una entrada.
func ValidStockInReason(reason string) bool { return stockInReasons[reason] }

// ValidStockOutReason indica si el motivo es admisible para una salida.
func ValidStockOutReason(reason string) bool { return stockOutReasons[reason] }

// StockMovement es una entrada del libro de movimientos: registro inmutable de un
// cambio de inventario. El saldo del producto es una caché del CurrentStock de la
// entrada más reciente; las correcciones se modelan como entradas nuevas de motivo
// "adjustment", nunca como ediciones del historial.
type StockMovement struct {
	ID              int64
	ProductID       string
	VariantID       *string
	UserID          string
	Type            string // stock_in | stock_out
	Quantity        int64  // positivo entrada, negativo salida
	PreviousStock   int64
	CurrentStock    int64 // invariante: CurrentStock = PreviousStock + Quantity
	Reason          string
	ReferenceNumber string
	Notes           string
	IdempotencyKey  *string
	MovementDate    time.Time
	CreatedAt       time.Time
}

// ChainConsistent verifica el invariante aritmético de la entrada.
func (m *StockMovement) ChainConsistent() bool {
	return m.CurrentStock == m.PreviousStock+m.Quantity
}

// MovementWithRefs es una fila de consulta del historial con los datos del
// producto/variante/usuario ya resueltos para presentación y búsqueda.
type MovementWithRefs struct {
	StockMovement
	ProductName string
	ProductSKU  string
	VariantSKU  *string
	UserName    string
}

// SKUCode devuelve el SKU a mostrar: prefiere el de la variante, luego el del
// producto, y "N/A" si ninguno existe.
func (m *MovementWithRefs) SKUCode() string {
	if m.VariantSKU != nil && *m.VariantSKU != "" {
		return *m.VariantSKU
	}
	if m.ProductSKU != "" {
		return m.ProductSKU
	}
	return "N/A"
}
