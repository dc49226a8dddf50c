package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/application/inventory"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
	apphttp "github.com/tu-usuario/warehouse-pro/internal/interfaces/http"
)

// stubMutator devuelve respuestas fijas para probar el mapeo HTTP del handler
// sin base de datos.
type stubMutator struct {
	result *inventory.MovementResult
	err    error
	gotIn  *inventory.MutationInput
}

func (s *stubMutator) StockIn(ctx context.Context, in inventory.MutationInput) (*inventory.MovementResult, error) {
	s.gotIn = &in
	return s.result, s.err
}

func (s *stubMutator) StockOut(ctx context.Context, in inventory.MutationInput) (*inventory.MovementResult, error) {
	s.gotIn = &in
	return s.result, s.err
}

// buildStockApp monta las rutas de mutación con el actor ya resuelto en locals,
// como lo dejaría AuthMiddleware.
func buildStockApp(mutator apphttp.StockMutator) *fiber.App {
	app := fiber.New()
	handler := apphttp.NewStockHandler(mutator, nil, nil)
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalUserID, testUserID)
		c.Locals(apphttp.LocalRole, "bodeguero")
		return c.Next()
	})
	app.Post("/stock/in", handler.StockIn)
	app.Post("/stock/out", handler.StockOut)
	return app
}

func postStock(t *testing.T, app *fiber.App, path string, body dto.StockMutationRequest) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de la salida rechazada por stock insuficiente: HTTP 400 con el detalle
// disponible/solicitado en el cuerpo.
// ──────────────────────────────────────────────────────────────────────────────

func TestStockOut_StockInsuficiente_Retorna400ConDetalle(t *testing.T) {
	mutator := &stubMutator{err: &domain.InsufficientStockError{Available: 5, Requested: 10}}
	app := buildStockApp(mutator)

	resp := postStock(t, app, "/stock/out", dto.StockMutationRequest{
		ProductID: "p-1", Quantity: 10, Reason: "sale",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode,
		"stock insuficiente debe mapear a 400, no a conflicto")

	var body dto.InsufficientStockResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, int64(5), body.Available)
	assert.Equal(t, int64(10), body.Requested)
}

func TestStockOut_Confirmada_Retorna201ConNuevoSaldo(t *testing.T) {
	mutator := &stubMutator{result: &inventory.MovementResult{MovementID: 7, NewBalance: 20}}
	app := buildStockApp(mutator)

	resp := postStock(t, app, "/stock/out", dto.StockMutationRequest{
		ProductID: "p-1", Quantity: 10, Reason: "sale",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body dto.StockMutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(7), body.MovementID)
	assert.Equal(t, int64(20), body.NewBalance)

	require.NotNil(t, mutator.gotIn)
	assert.Equal(t, testUserID, mutator.gotIn.ActorID, "el actor sale del token, no del body")
}

func TestStockIn_ClaveIdempotenciaRepetida_Retorna409(t *testing.T) {
	mutator := &stubMutator{err: domain.ErrDuplicate}
	app := buildStockApp(mutator)

	resp := postStock(t, app, "/stock/in", dto.StockMutationRequest{
		ProductID: "p-1", Quantity: 10, Reason: "purchase", IdempotencyKey: "pedido-42",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStockIn_ProductoInexistente_Retorna404(t *testing.T) {
	mutator := &stubMutator{err: domain.ErrNotFound}
	app := buildStockApp(mutator)

	resp := postStock(t, app, "/stock/in", dto.StockMutationRequest{
		ProductID: "no-existe", Quantity: 10, Reason: "purchase",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStockIn_EntradaInvalida_Retorna400(t *testing.T) {
	mutator := &stubMutator{err: domain.ErrInvalidInput}
	app := buildStockApp(mutator)

	resp := postStock(t, app, "/stock/in", dto.StockMutationRequest{
		ProductID: "p-1", Quantity: 0, Reason: "purchase",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
