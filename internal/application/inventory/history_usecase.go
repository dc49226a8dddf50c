package inventory

import (
	"context"
	"time"

	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// HistoryUseCase consultas de solo lectura sobre el libro de movimientos:
// historial filtrado/paginado y estadísticas agregadas. Nunca escribe.
type HistoryUseCase struct {
	movRepo           repository.StockMovementRepository
	productRepo       repository.ProductRepository
	lowStockThreshold int64
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	lowStockThreshold int64,
) *HistoryUseCase {
	return &HistoryUseCase{
		movRepo:           movRepo,
		productRepo:       productRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

// ListMovements devuelve una página del historial global según los filtros.
func (uc *HistoryUseCase) ListMovements(ctx context.Context, q dto.StockHistoryQuery) (*dto.StockHistoryResponse, error) {
	filter, err := buildFilter(q, "", "")
	if err != nil {
		return nil, err
	}
	q.DefaultPage()
	items, total, err := uc.movRepo.List(ctx, filter, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.StockHistoryResponse{
		Items: toMovementResponses(items),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// ListForProduct devuelve el historial de un producto junto con su saldo actual.
func (uc *HistoryUseCase) ListForProduct(ctx context.Context, productID string, q dto.StockHistoryQuery) (*dto.ProductHistoryResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	filter, err := buildFilter(q, productID, "")
	if err != nil {
		return nil, err
	}
	q.DefaultPage()
	items, total, err := uc.movRepo.List(ctx, filter, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.ProductHistoryResponse{
		ProductID:    productID,
		CurrentStock: product.Quantity,
		Items:        toMovementResponses(items),
		Page:         dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// ListForActor devuelve únicamente los movimientos creados por el actor indicado
// (historial de autoservicio). El scoping por rol lo decide la capa HTTP; aquí el
// filtro de actor ya viene resuelto.
func (uc *HistoryUseCase) ListForActor(ctx context.Context, actorID, productID string, q dto.StockHistoryQuery) (*dto.StockHistoryResponse, error) {
	if actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	filter, err := buildFilter(q, productID, actorID)
	if err != nil {
		return nil, err
	}
	q.DefaultPage()
	items, total, err := uc.movRepo.List(ctx, filter, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.StockHistoryResponse{
		Items: toMovementResponses(items),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Statistics calcula los agregados del rango: entradas, salidas (valor absoluto),
// variación neta, número de movimientos, existencia total y productos con stock bajo.
func (uc *HistoryUseCase) Statistics(ctx context.Context, start, end string) (*dto.StockStatisticsResponse, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	stats, err := uc.movRepo.Stats(ctx, from, to)
	if err != nil {
		return nil, err
	}
	totalStock, err := uc.productRepo.TotalStock(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := uc.productRepo.CountBelow(ctx, uc.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	totalOut := -stats.TotalOut // en almacenamiento las salidas son negativas
	return &dto.StockStatisticsResponse{
		TotalIn:           stats.TotalIn,
		TotalOut:          totalOut,
		NetChange:         stats.TotalIn - totalOut,
		MovementCount:     stats.MovementCount,
		CurrentTotalStock: totalStock,
		LowStockCount:     lowStock,
	}, nil
}

// buildFilter traduce la query HTTP a un filtro de repositorio, validando el tipo
// de movimiento y el rango de fechas.
func buildFilter(q dto.StockHistoryQuery, productID, userID string) (repository.MovementFilter, error) {
	if q.Type != "" && q.Type != entity.MovementTypeStockIn && q.Type != entity.MovementTypeStockOut {
		return repository.MovementFilter{}, domain.ErrInvalidInput
	}
	from, to, err := parseRange(q.Start, q.End)
	if err != nil {
		return repository.MovementFilter{}, err
	}
	return repository.MovementFilter{
		From:      from,
		To:        to,
		Type:      q.Type,
		Search:    q.Search,
		ProductID: productID,
		UserID:    userID,
	}, nil
}

// parseRange interpreta fechas "2006-01-02". El inicio es a las 00:00 y el fin es
// inclusivo hasta el último instante del día.
func parseRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		d, err := time.Parse("2006-01-02", start)
		if err != nil {
			return nil, nil, domain.ErrInvalidInput
		}
		from = &d
	}
	if end != "" {
		d, err := time.Parse("2006-01-02", end)
		if err != nil {
			return nil, nil, domain.ErrInvalidInput
		}
		eod := d.Add(24*time.Hour - time.Nanosecond)
		to = &eod
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.ErrInvalidInput
	}
	return from, to, nil
}

func toMovementResponses(items []*entity.MovementWithRefs) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(items))
	for _, m := range items {
		out = append(out, dto.StockMovementResponse{
			ID:              m.ID,
			ProductID:       m.ProductID,
			ProductName:     m.ProductName,
			SKUCode:         m.SKUCode(),
			VariantID:       m.VariantID,
			Type:            m.Type,
			Quantity:        m.Quantity,
			PreviousStock:   m.PreviousStock,
			CurrentStock:    m.CurrentStock,
			Reason:          m.Reason,
			ReferenceNumber: m.ReferenceNumber,
			Notes:           m.Notes,
			UserID:          m.UserID,
			UserName:        m.UserName,
			MovementDate:    m.MovementDate,
		})
	}
	return out
}
