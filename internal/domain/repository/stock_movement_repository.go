package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// MovementFilter filtros de consulta sobre el libro de movimientos.
// Search hace coincidencia de subcadena (case-insensitive) contra nombre de
// producto, SKU, código de barras, SKU de variante y número de referencia.
type MovementFilter struct {
	From      *time.Time // inicio inclusivo
	To        *time.Time // fin inclusivo
	Type      string     // stock_in | stock_out | "" (todos)
	Search    string
	ProductID string // "" = todos los productos
	UserID    string // "" = todos los actores
}

// MovementStats agregados del libro en un rango de fechas.
// TotalOut se devuelve como suma con signo (<= 0); la capa de presentación
// decide si lo muestra en valor absoluto.
type MovementStats struct {
	TotalIn       int64
	TotalOut      int64
	MovementCount int64
}

// StockMovementRepository define el puerto de persistencia para el libro de
// movimientos. Create solo debe invocarse dentro de la transacción de mutación,
// con la fila del producto ya bloqueada.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id int64) (*entity.StockMovement, error)
	// List devuelve la página ordenada por movement_date DESC, id DESC, y el total de filas del filtro.
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.MovementWithRefs, int64, error)
	Stats(ctx context.Context, from, to *time.Time) (*MovementStats, error)
}
