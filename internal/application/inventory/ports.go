package inventory

import (
	"context"

	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que la actualización del saldo y el append al libro de
// movimientos se confirman juntos o no se confirman en absoluto.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
