package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Motivos por tipo: cada tipo de movimiento admite un enum cerrado de motivos
// y rechaza los del otro tipo.
// ──────────────────────────────────────────────────────────────────────────────

func TestValidStockInReason(t *testing.T) {
	for _, r := range []string{"initial_stock", "purchase", "adjustment", "transfer", "return", "other"} {
		assert.True(t, entity.ValidStockInReason(r), "motivo %q debe ser válido para entrada", r)
	}
	for _, r := range []string{"sale", "damage", "expired", "", "robo", "STOCK_IN"} {
		assert.False(t, entity.ValidStockInReason(r), "motivo %q no debe ser válido para entrada", r)
	}
}

func TestValidStockOutReason(t *testing.T) {
	for _, r := range []string{"sale", "adjustment", "transfer", "damage", "expired", "other"} {
		assert.True(t, entity.ValidStockOutReason(r), "motivo %q debe ser válido para salida", r)
	}
	for _, r := range []string{"initial_stock", "purchase", "return", "", "venta"} {
		assert.False(t, entity.ValidStockOutReason(r), "motivo %q no debe ser válido para salida", r)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ChainConsistent: el invariante aritmético saldo anterior + delta = saldo
// resultante, con delta firmado (negativo en salidas).
// ──────────────────────────────────────────────────────────────────────────────

func TestChainConsistent(t *testing.T) {
	entrada := &entity.StockMovement{Quantity: 50, PreviousStock: 0, CurrentStock: 50}
	assert.True(t, entrada.ChainConsistent(), "0 + 50 = 50 es consistente")

	salida := &entity.StockMovement{Quantity: -20, PreviousStock: 50, CurrentStock: 30}
	assert.True(t, salida.ChainConsistent(), "50 - 20 = 30 es consistente")

	rota := &entity.StockMovement{Quantity: 10, PreviousStock: 5, CurrentStock: 20}
	assert.False(t, rota.ChainConsistent(), "5 + 10 != 20 debe detectarse")
}

// ──────────────────────────────────────────────────────────────────────────────
// SKUCode: prioridad variante > producto > "N/A".
// ──────────────────────────────────────────────────────────────────────────────

func TestSKUCode_PrefiereVariante(t *testing.T) {
	variantSKU := "CAM-ROJA-M"
	m := &entity.MovementWithRefs{ProductSKU: "CAM-001", VariantSKU: &variantSKU}
	assert.Equal(t, "CAM-ROJA-M", m.SKUCode())
}

func TestSKUCode_CaeAlProducto(t *testing.T) {
	vacio := ""
	conNil := &entity.MovementWithRefs{ProductSKU: "CAM-001"}
	assert.Equal(t, "CAM-001", conNil.SKUCode())

	conVacio := &entity.MovementWithRefs{ProductSKU: "CAM-001", VariantSKU: &vacio}
	assert.Equal(t, "CAM-001", conVacio.SKUCode(), "variante con SKU vacío no debe ganar")
}

func TestSKUCode_SinSKU(t *testing.T) {
	m := &entity.MovementWithRefs{}
	assert.Equal(t, "N/A", m.SKUCode())
}
