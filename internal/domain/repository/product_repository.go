package repository

import (
	"context"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos y variantes.
// Los métodos de saldo (GetQuantityForUpdate/UpdateQuantity) solo deben usarse
// dentro de la transacción del servicio de mutación.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error

	// GetQuantityForUpdate lee el saldo actual bloqueando la fila (SELECT FOR UPDATE).
	GetQuantityForUpdate(ctx context.Context, id string) (int64, error)
	// UpdateQuantity fija el nuevo saldo del producto.
	UpdateQuantity(ctx context.Context, id string, quantity int64) error

	CreateVariant(ctx context.Context, variant *entity.ProductVariant) error
	GetVariant(ctx context.Context, id string) (*entity.ProductVariant, error)
	ListVariants(ctx context.Context, productID string) ([]*entity.ProductVariant, error)

	// Agregados sobre el saldo desnormalizado (para estadísticas).
	TotalStock(ctx context.Context) (int64, error)
	CountBelow(ctx context.Context, threshold int64) (int64, error)
}
