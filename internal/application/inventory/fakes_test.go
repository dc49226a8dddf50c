package inventory_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tu-usuario/warehouse-pro/internal/application/inventory"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para los casos de uso de inventario.
//
// fakeStore simula la base de datos: productos con saldo, variantes y el libro
// de movimientos. fakeTxRunner serializa las "transacciones" con un mutex, que
// es exactamente la semántica que SELECT FOR UPDATE da sobre la fila del
// producto en producción.
// ──────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	variants  map[string]*entity.ProductVariant
	movements []*entity.MovementWithRefs
	idemKeys  map[string]bool
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[string]*entity.Product{},
		variants: map[string]*entity.ProductVariant{},
		idemKeys: map[string]bool{},
		nextID:   1,
	}
}

func (s *fakeStore) addProduct(id, sku, name string, quantity int64) {
	s.products[id] = &entity.Product{ID: id, SKU: sku, Name: name, Quantity: quantity, Status: entity.ProductStatusActive}
}

func (s *fakeStore) addVariant(id, productID, sku string) {
	s.variants[id] = &entity.ProductVariant{ID: id, ProductID: productID, SKU: sku}
}

// ── fakeProductRepo ──────────────────────────────────────────────────────────

type fakeProductRepo struct{ store *fakeStore }

func (r *fakeProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.store.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.store.products[id], nil
}

func (r *fakeProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.store.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *entity.Product) error {
	r.store.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetQuantityForUpdate(ctx context.Context, id string) (int64, error) {
	p, ok := r.store.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p.Quantity, nil
}

func (r *fakeProductRepo) UpdateQuantity(ctx context.Context, id string, quantity int64) error {
	p, ok := r.store.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Quantity = quantity
	return nil
}

func (r *fakeProductRepo) CreateVariant(ctx context.Context, v *entity.ProductVariant) error {
	r.store.variants[v.ID] = v
	return nil
}

func (r *fakeProductRepo) GetVariant(ctx context.Context, id string) (*entity.ProductVariant, error) {
	return r.store.variants[id], nil
}

func (r *fakeProductRepo) ListVariants(ctx context.Context, productID string) ([]*entity.ProductVariant, error) {
	var out []*entity.ProductVariant
	for _, v := range r.store.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) TotalStock(ctx context.Context) (int64, error) {
	var total int64
	for _, p := range r.store.products {
		total += p.Quantity
	}
	return total, nil
}

func (r *fakeProductRepo) CountBelow(ctx context.Context, threshold int64) (int64, error) {
	var n int64
	for _, p := range r.store.products {
		if p.Quantity < threshold {
			n++
		}
	}
	return n, nil
}

// ── fakeMovementRepo ─────────────────────────────────────────────────────────

type fakeMovementRepo struct{ store *fakeStore }

func (r *fakeMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.IdempotencyKey != nil {
		if r.store.idemKeys[*m.IdempotencyKey] {
			return domain.ErrDuplicate
		}
		r.store.idemKeys[*m.IdempotencyKey] = true
	}
	m.ID = r.store.nextID
	r.store.nextID++

	row := &entity.MovementWithRefs{StockMovement: *m, UserName: "Tester"}
	if p, ok := r.store.products[m.ProductID]; ok {
		row.ProductName = p.Name
		row.ProductSKU = p.SKU
	}
	if m.VariantID != nil {
		if v, ok := r.store.variants[*m.VariantID]; ok {
			sku := v.SKU
			row.VariantSKU = &sku
		}
	}
	r.store.movements = append(r.store.movements, row)
	return nil
}

func (r *fakeMovementRepo) GetByID(ctx context.Context, id int64) (*entity.StockMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			mov := m.StockMovement
			return &mov, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeMovementRepo) matches(m *entity.MovementWithRefs, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.UserID != "" && m.UserID != f.UserID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.From != nil && m.MovementDate.Before(*f.From) {
		return false
	}
	if f.To != nil && m.MovementDate.After(*f.To) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		hay := strings.ToLower(m.ProductName + " " + m.ProductSKU + " " + m.ReferenceNumber)
		if m.VariantSKU != nil {
			hay += " " + strings.ToLower(*m.VariantSKU)
		}
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

func (r *fakeMovementRepo) List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.MovementWithRefs, int64, error) {
	var filtered []*entity.MovementWithRefs
	// Recorrido en reversa: más reciente (ID mayor) primero.
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		if r.matches(r.store.movements[i], f) {
			filtered = append(filtered, r.store.movements[i])
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (r *fakeMovementRepo) Stats(ctx context.Context, from, to *time.Time) (*repository.MovementStats, error) {
	stats := &repository.MovementStats{}
	f := repository.MovementFilter{From: from, To: to}
	for _, m := range r.store.movements {
		if !r.matches(m, f) {
			continue
		}
		stats.MovementCount++
		if m.Quantity > 0 {
			stats.TotalIn += m.Quantity
		} else {
			stats.TotalOut += m.Quantity
		}
	}
	return stats, nil
}

// ── fakeTxRunner ─────────────────────────────────────────────────────────────

type fakeTxRunner struct {
	store *fakeStore
	// failCommit permite simular un fallo de escritura dentro de la transacción.
	failCommit error
}

func (tx *fakeTxRunner) Run(ctx context.Context, fn func(repository.StockMovementRepository, repository.ProductRepository) error) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	if tx.failCommit != nil {
		return tx.failCommit
	}

	// Snapshot para poder "revertir la transacción" si fn falla: los saldos
	// ya escritos y las entradas del libro vuelven a su estado anterior.
	quantities := make(map[string]int64, len(tx.store.products))
	for id, p := range tx.store.products {
		quantities[id] = p.Quantity
	}
	movCount := len(tx.store.movements)
	keys := make(map[string]bool, len(tx.store.idemKeys))
	for k, v := range tx.store.idemKeys {
		keys[k] = v
	}
	nextID := tx.store.nextID

	err := fn(&fakeMovementRepo{store: tx.store}, &fakeProductRepo{store: tx.store})
	if err != nil {
		for id, q := range quantities {
			tx.store.products[id].Quantity = q
		}
		tx.store.movements = tx.store.movements[:movCount]
		tx.store.idemKeys = keys
		tx.store.nextID = nextID
	}
	return err
}

var _ inventory.TxRunner = (*fakeTxRunner)(nil)
var _ repository.ProductRepository = (*fakeProductRepo)(nil)
var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)
