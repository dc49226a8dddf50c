package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/application/inventory"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/infrastructure/metrics"
)

// StockMutator puerto del servicio de mutación de inventario.
type StockMutator interface {
	StockIn(ctx context.Context, input inventory.MutationInput) (*inventory.MovementResult, error)
	StockOut(ctx context.Context, input inventory.MutationInput) (*inventory.MovementResult, error)
}

// StockHistorian puerto del servicio de consulta de historial.
type StockHistorian interface {
	ListMovements(ctx context.Context, q dto.StockHistoryQuery) (*dto.StockHistoryResponse, error)
	ListForProduct(ctx context.Context, productID string, q dto.StockHistoryQuery) (*dto.ProductHistoryResponse, error)
	ListForActor(ctx context.Context, actorID, productID string, q dto.StockHistoryQuery) (*dto.StockHistoryResponse, error)
	Statistics(ctx context.Context, start, end string) (*dto.StockStatisticsResponse, error)
}

// StockExporter puerto del exportador de historial a Excel.
type StockExporter interface {
	ExportMovements(ctx context.Context, q dto.StockHistoryQuery) ([]byte, error)
}

// StockHandler maneja las peticiones HTTP del libro de movimientos (protegido).
type StockHandler struct {
	mutator  StockMutator
	history  StockHistorian
	exporter StockExporter
}

// NewStockHandler construye el handler.
func NewStockHandler(mutator StockMutator, history StockHistorian, exporter StockExporter) *StockHandler {
	return &StockHandler{mutator: mutator, history: history, exporter: exporter}
}

// mutationInput arma el input del caso de uso desde el body y el actor del token.
func mutationInput(in dto.StockMutationRequest, actorID string) inventory.MutationInput {
	return inventory.MutationInput{
		ProductID:       in.ProductID,
		VariantID:       in.VariantID,
		Quantity:        in.Quantity,
		Reason:          in.Reason,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
		IdempotencyKey:  in.IdempotencyKey,
		ActorID:         actorID,
	}
}

// mutationError mapea los errores del servicio de mutación a respuestas HTTP.
// Todo rechazo garantiza que ni el saldo ni el libro fueron tocados.
func mutationError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		metrics.InsufficientStockRejected()
		return c.Status(fiber.StatusBadRequest).JSON(dto.InsufficientStockResponse{
			Code:      "INSUFFICIENT_STOCK",
			Message:   "stock insuficiente",
			Available: insufficient.Available,
			Requested: insufficient.Requested,
		})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cantidad o motivo inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto o variante no encontrado"})
	}
	if errors.Is(err, domain.ErrDuplicate) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "idempotency_key ya utilizada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// StockIn godoc
// @Summary      Registrar entrada de inventario
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMutationRequest  true  "product_id, quantity, reason (initial_stock|purchase|adjustment|transfer|return|other)"
// @Success      201   {object}  dto.StockMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/in [post]
func (h *StockHandler) StockIn(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.StockMutationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.mutator.StockIn(c.Context(), mutationInput(in, actorID))
	if err != nil {
		return mutationError(c, err)
	}
	metrics.MovementRecorded("stock_in")
	return c.Status(fiber.StatusCreated).JSON(dto.StockMutationResponse{
		MovementID: result.MovementID,
		NewBalance: result.NewBalance,
	})
}

// StockOut godoc
// @Summary      Registrar salida de inventario
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMutationRequest  true  "product_id, quantity, reason (sale|adjustment|transfer|damage|expired|other)"
// @Success      201   {object}  dto.StockMutationResponse
// @Failure      400   {object}  dto.InsufficientStockResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/out [post]
func (h *StockHandler) StockOut(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.StockMutationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.mutator.StockOut(c.Context(), mutationInput(in, actorID))
	if err != nil {
		return mutationError(c, err)
	}
	metrics.MovementRecorded("stock_out")
	return c.Status(fiber.StatusCreated).JSON(dto.StockMutationResponse{
		MovementID: result.MovementID,
		NewBalance: result.NewBalance,
	})
}

// History godoc
// @Summary      Historial global de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        start   query  string  false  "Fecha inicio (2006-01-02, inclusiva)"
// @Param        end     query  string  false  "Fecha fin (2006-01-02, inclusiva)"
// @Param        type    query  string  false  "stock_in | stock_out"
// @Param        search  query  string  false  "Subcadena sobre producto, SKU, código de barras o referencia"
// @Param        limit   query  int     false  "Tamaño de página (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	var q dto.StockHistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	out, err := h.history.ListMovements(c.Context(), q)
	if err != nil {
		return historyError(c, err)
	}
	return c.JSON(out)
}

// ProductHistory godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        start   query  string  false  "Fecha inicio (2006-01-02)"
// @Param        end     query  string  false  "Fecha fin (2006-01-02)"
// @Param        type    query  string  false  "stock_in | stock_out"
// @Param        search  query  string  false  "Subcadena de búsqueda"
// @Success      200  {object}  dto.ProductHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *StockHandler) ProductHistory(c *fiber.Ctx) error {
	var q dto.StockHistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	out, err := h.history.ListForProduct(c.Context(), c.Params("id"), q)
	if err != nil {
		return historyError(c, err)
	}
	return c.JSON(out)
}

// MyMovements godoc
// @Summary      Historial propio del actor autenticado
// @Description  Devuelve solo los movimientos creados por el usuario del token,
//               opcionalmente limitados a un producto.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Limitar a un producto"
// @Success      200  {object}  dto.StockHistoryResponse
// @Router       /api/stock/my-movements [get]
func (h *StockHandler) MyMovements(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var q dto.StockHistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	out, err := h.history.ListForActor(c.Context(), actorID, c.Query("product_id"), q)
	if err != nil {
		return historyError(c, err)
	}
	return c.JSON(out)
}

// Statistics godoc
// @Summary      Estadísticas de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "Fecha inicio (2006-01-02)"
// @Param        end    query  string  false  "Fecha fin (2006-01-02)"
// @Success      200  {object}  dto.StockStatisticsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/statistics [get]
func (h *StockHandler) Statistics(c *fiber.Ctx) error {
	out, err := h.history.Statistics(c.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		return historyError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar historial a Excel
// @Tags         stock
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        start   query  string  false  "Fecha inicio (2006-01-02)"
// @Param        end     query  string  false  "Fecha fin (2006-01-02)"
// @Param        type    query  string  false  "stock_in | stock_out"
// @Param        search  query  string  false  "Subcadena de búsqueda"
// @Success      200  {file}  binary
// @Router       /api/stock/movements/export [get]
func (h *StockHandler) Export(c *fiber.Ctx) error {
	var q dto.StockHistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	data, err := h.exporter.ExportMovements(c.Context(), q)
	if err != nil {
		return historyError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="movimientos.xlsx"`)
	return c.Send(data)
}

func historyError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
