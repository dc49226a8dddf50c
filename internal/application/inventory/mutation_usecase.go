package inventory

import (
	"context"
	"time"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// MutationUseCase es el único mutador autorizado del saldo de productos.
// Cada operación abre una transacción, bloquea la fila del producto
// (SELECT FOR UPDATE), actualiza el saldo y agrega la entrada al libro de
// movimientos; Commit o Rollback, nunca efectos parciales.
type MutationUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
}

// NewMutationUseCase construye el caso de uso.
func NewMutationUseCase(txRunner TxRunner, productRepo repository.ProductRepository) *MutationUseCase {
	return &MutationUseCase{txRunner: txRunner, productRepo: productRepo}
}

// MutationInput entrada para StockIn / StockOut. Quantity siempre positiva.
type MutationInput struct {
	ProductID       string
	VariantID       string // opcional
	Quantity        int64
	Reason          string
	ReferenceNumber string
	Notes           string
	IdempotencyKey  string // opcional; repetir la misma clave produce ErrDuplicate, nunca doble débito
	ActorID         string
}

// MovementResult resultado de una mutación confirmada.
type MovementResult struct {
	MovementID int64
	NewBalance int64
}

// StockIn registra una entrada de inventario y devuelve el nuevo saldo.
func (uc *MutationUseCase) StockIn(ctx context.Context, input MutationInput) (*MovementResult, error) {
	if !entity.ValidStockInReason(input.Reason) {
		return nil, domain.ErrInvalidInput
	}
	return uc.apply(ctx, entity.MovementTypeStockIn, input)
}

// StockOut registra una salida de inventario y devuelve el nuevo saldo.
// Si el saldo disponible es menor a la cantidad solicitada, falla con
// InsufficientStockError y no escribe nada.
func (uc *MutationUseCase) StockOut(ctx context.Context, input MutationInput) (*MovementResult, error) {
	if !entity.ValidStockOutReason(input.Reason) {
		return nil, domain.ErrInvalidInput
	}
	return uc.apply(ctx, entity.MovementTypeStockOut, input)
}

// apply valida la entrada, abre la transacción y ejecuta la secuencia
// leer-verificar-escribir con la fila del producto bloqueada.
func (uc *MutationUseCase) apply(ctx context.Context, movementType string, input MutationInput) (*MovementResult, error) {
	if input.ProductID == "" || input.ActorID == "" || input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	// Producto y variante se validan antes de abrir la transacción: un rechazo
	// de validación nunca toca la base de datos.
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	var variantID *string
	if input.VariantID != "" {
		variant, err := uc.productRepo.GetVariant(ctx, input.VariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil || variant.ProductID != input.ProductID {
			return nil, domain.ErrNotFound
		}
		variantID = &input.VariantID
	}

	var idempotencyKey *string
	if input.IdempotencyKey != "" {
		idempotencyKey = &input.IdempotencyKey
	}

	now := time.Now()
	var result MovementResult

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila del producto: dos salidas concurrentes sobre el mismo
		// producto se serializan aquí y no pueden pasar ambas la verificación de
		// suficiencia contra un saldo obsoleto.
		current, err := productRepo.GetQuantityForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}

		signed := input.Quantity
		if movementType == entity.MovementTypeStockOut {
			if current < input.Quantity {
				return &domain.InsufficientStockError{Available: current, Requested: input.Quantity}
			}
			signed = -input.Quantity
		}
		newBalance := current + signed

		if err := productRepo.UpdateQuantity(ctx, input.ProductID, newBalance); err != nil {
			return err
		}

		mov := &entity.StockMovement{
			ProductID:       input.ProductID,
			VariantID:       variantID,
			UserID:          input.ActorID,
			Type:            movementType,
			Quantity:        signed,
			PreviousStock:   current,
			CurrentStock:    newBalance,
			Reason:          input.Reason,
			ReferenceNumber: input.ReferenceNumber,
			Notes:           input.Notes,
			IdempotencyKey:  idempotencyKey,
			MovementDate:    now,
			CreatedAt:       now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}

		result = MovementResult{MovementID: mov.ID, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
