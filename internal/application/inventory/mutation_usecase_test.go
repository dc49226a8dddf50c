package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/internal/application/inventory"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
)

const (
	testProductID = "11111111-1111-1111-1111-111111111111"
	testVariantID = "22222222-2222-2222-2222-222222222222"
	testActorID   = "33333333-3333-3333-3333-333333333333"
)

func newMutationFixture(initialStock int64) (*inventory.MutationUseCase, *fakeStore) {
	store := newFakeStore()
	store.addProduct(testProductID, "CAM-001", "Camiseta", initialStock)
	store.addVariant(testVariantID, testProductID, "CAM-ROJA-M")
	uc := inventory.NewMutationUseCase(&fakeTxRunner{store: store}, &fakeProductRepo{store: store})
	return uc, store
}

func mutation(quantity int64, reason string) inventory.MutationInput {
	return inventory.MutationInput{
		ProductID: testProductID,
		ActorID:   testActorID,
		Quantity:  quantity,
		Reason:    reason,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo completo: entrada y salida encadenan saldo anterior → saldo resultante.
// ──────────────────────────────────────────────────────────────────────────────

func TestMutation_EntradaYSalidaEncadenanSaldos(t *testing.T) {
	uc, store := newMutationFixture(0)
	ctx := context.Background()

	in, err := uc.StockIn(ctx, mutation(50, "purchase"))
	require.NoError(t, err)
	assert.Equal(t, int64(50), in.NewBalance, "0 + 50 = 50")

	out, err := uc.StockOut(ctx, mutation(20, "sale"))
	require.NoError(t, err)
	assert.Equal(t, int64(30), out.NewBalance, "50 - 20 = 30")

	require.Len(t, store.movements, 2, "cada mutación deja exactamente una entrada en el libro")

	primera, segunda := store.movements[0], store.movements[1]
	assert.Equal(t, int64(0), primera.PreviousStock)
	assert.Equal(t, int64(50), primera.CurrentStock)
	assert.Equal(t, int64(50), primera.Quantity)
	assert.True(t, primera.ChainConsistent())

	assert.Equal(t, int64(50), segunda.PreviousStock, "la salida parte del saldo que dejó la entrada")
	assert.Equal(t, int64(30), segunda.CurrentStock)
	assert.Equal(t, int64(-20), segunda.Quantity, "las salidas se guardan con delta negativo")
	assert.True(t, segunda.ChainConsistent())

	assert.Equal(t, int64(30), store.products[testProductID].Quantity,
		"el saldo del producto debe coincidir con el CurrentStock de la última entrada")
}

func TestMutation_EntradaConVariante(t *testing.T) {
	uc, store := newMutationFixture(0)

	input := mutation(5, "purchase")
	input.VariantID = testVariantID
	_, err := uc.StockIn(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, store.movements, 1)
	require.NotNil(t, store.movements[0].VariantID)
	assert.Equal(t, testVariantID, *store.movements[0].VariantID)
	assert.Equal(t, "CAM-ROJA-M", store.movements[0].SKUCode(), "el SKU mostrado es el de la variante")
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock insuficiente: rechazo atómico, con detalle disponible/solicitado.
// ──────────────────────────────────────────────────────────────────────────────

func TestMutation_SalidaMayorAlSaldo_RechazoAtomico(t *testing.T) {
	uc, store := newMutationFixture(5)

	_, err := uc.StockOut(context.Background(), mutation(10, "sale"))
	require.Error(t, err)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient, "el error debe llevar el detalle del rechazo")
	assert.Equal(t, int64(5), insufficient.Available)
	assert.Equal(t, int64(10), insufficient.Requested)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "debe poder detectarse con errors.Is")

	assert.Empty(t, store.movements, "un rechazo no deja entradas en el libro")
	assert.Equal(t, int64(5), store.products[testProductID].Quantity, "el saldo no debe cambiar")
}

func TestMutation_SalidaExacta_DejaSaldoCero(t *testing.T) {
	uc, store := newMutationFixture(5)

	result, err := uc.StockOut(context.Background(), mutation(5, "sale"))
	require.NoError(t, err, "retirar exactamente el saldo disponible es válido")
	assert.Equal(t, int64(0), result.NewBalance)
	assert.Equal(t, int64(0), store.products[testProductID].Quantity)
}

// Dos salidas concurrentes que juntas exceden el saldo: exactamente una gana.
func TestMutation_SalidasConcurrentes_SoloUnaGana(t *testing.T) {
	uc, store := newMutationFixture(5)

	var wg sync.WaitGroup
	results := make([]error, 2)
	quantities := []int64{3, 4}
	for i := range quantities {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = uc.StockOut(context.Background(), mutation(quantities[i], "sale"))
		}(i)
	}
	wg.Wait()

	var okCount, rejectedCount int
	for _, err := range results {
		if err == nil {
			okCount++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		rejectedCount++
	}
	assert.Equal(t, 1, okCount, "exactamente una salida debe confirmarse")
	assert.Equal(t, 1, rejectedCount, "la otra debe rechazarse por stock insuficiente")

	final := store.products[testProductID].Quantity
	assert.GreaterOrEqual(t, final, int64(0), "el saldo nunca puede quedar negativo")
	assert.Len(t, store.movements, 1, "solo la salida confirmada queda en el libro")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de entradas.
// ──────────────────────────────────────────────────────────────────────────────

func TestMutation_CantidadInvalida(t *testing.T) {
	uc, store := newMutationFixture(10)
	ctx := context.Background()

	for _, q := range []int64{0, -3} {
		_, err := uc.StockIn(ctx, mutation(q, "purchase"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad %d debe rechazarse", q)
	}
	assert.Empty(t, store.movements)
}

func TestMutation_MotivoInvalidoPorTipo(t *testing.T) {
	uc, _ := newMutationFixture(10)
	ctx := context.Background()

	// "sale" es motivo de salida, no de entrada.
	_, err := uc.StockIn(ctx, mutation(5, "sale"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// "purchase" es motivo de entrada, no de salida.
	_, err = uc.StockOut(ctx, mutation(5, "purchase"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.StockOut(ctx, mutation(5, "motivo-inventado"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMutation_ProductoInexistente(t *testing.T) {
	uc, _ := newMutationFixture(10)

	input := mutation(5, "purchase")
	input.ProductID = "99999999-9999-9999-9999-999999999999"
	_, err := uc.StockIn(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMutation_VarianteDeOtroProducto(t *testing.T) {
	uc, store := newMutationFixture(10)
	store.addProduct("otro-producto", "OTR-001", "Otro", 0)
	store.addVariant("variante-ajena", "otro-producto", "OTR-V1")

	input := mutation(5, "purchase")
	input.VariantID = "variante-ajena"
	_, err := uc.StockIn(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la variante debe pertenecer al producto indicado")
}

func TestMutation_SinActor(t *testing.T) {
	uc, _ := newMutationFixture(10)

	input := mutation(5, "purchase")
	input.ActorID = ""
	_, err := uc.StockIn(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia: repetir la misma clave nunca produce doble débito.
// ──────────────────────────────────────────────────────────────────────────────

func TestMutation_IdempotencyKeyRepetida(t *testing.T) {
	uc, store := newMutationFixture(20)
	ctx := context.Background()

	input := mutation(5, "sale")
	input.IdempotencyKey = "pedido-42"

	_, err := uc.StockOut(ctx, input)
	require.NoError(t, err)

	_, err = uc.StockOut(ctx, input)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "la segunda petición con la misma clave debe rechazarse")

	assert.Len(t, store.movements, 1, "solo la primera petición queda en el libro")
	assert.Equal(t, int64(15), store.products[testProductID].Quantity,
		"el débito debe aplicarse exactamente una vez")
}
