package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega una entrada al libro y asigna su ID. Debe invocarse con la fila
// del producto ya bloqueada dentro de la misma transacción que actualiza el saldo.
// Una idempotency_key repetida produce ErrDuplicate (índice único parcial).
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements
			(product_id, variant_id, user_id, movement_type, quantity, previous_stock, current_stock,
			 reason, reference_number, notes, idempotency_key, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		movement.ProductID, movement.VariantID, movement.UserID, movement.Type,
		movement.Quantity, movement.PreviousStock, movement.CurrentStock,
		movement.Reason, movement.ReferenceNumber, movement.Notes,
		movement.IdempotencyKey, movement.MovementDate, movement.CreatedAt,
	).Scan(&movement.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID. Devuelve nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id int64) (*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, variant_id, user_id, movement_type, quantity, previous_stock,
		       current_stock, reason, reference_number, notes, idempotency_key, movement_date, created_at
		FROM stock_movements WHERE id = $1`
	var m entity.StockMovement
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ProductID, &m.VariantID, &m.UserID, &m.Type, &m.Quantity,
		&m.PreviousStock, &m.CurrentStock, &m.Reason, &m.ReferenceNumber,
		&m.Notes, &m.IdempotencyKey, &m.MovementDate, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// buildWhere arma la cláusula WHERE dinámica del filtro con argumentos posicionales.
func buildWhere(f repository.MovementFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any
	pos := 1

	if f.ProductID != "" {
		where += fmt.Sprintf(" AND m.product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.UserID != "" {
		where += fmt.Sprintf(" AND m.user_id = $%d", pos)
		args = append(args, f.UserID)
		pos++
	}
	if f.Type != "" {
		where += fmt.Sprintf(" AND m.movement_type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.From != nil {
		where += fmt.Sprintf(" AND m.movement_date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		where += fmt.Sprintf(" AND m.movement_date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.Search != "" {
		// Subcadena case-insensitive sobre producto, variante y referencia.
		where += fmt.Sprintf(
			" AND (p.name ILIKE $%d OR p.sku ILIKE $%d OR p.barcode ILIKE $%d OR v.sku ILIKE $%d OR m.reference_number ILIKE $%d)",
			pos, pos, pos, pos, pos)
		args = append(args, "%"+f.Search+"%")
		pos++
	}
	return where, args
}

const movementJoins = `
	FROM stock_movements m
	JOIN products p ON p.id = m.product_id
	LEFT JOIN product_variants v ON v.id = m.variant_id
	JOIN users u ON u.id = m.user_id`

// List devuelve la página del historial ordenada por fecha de movimiento
// descendente (empates por id descendente, es decir orden de inserción) y el
// total de filas que cumplen el filtro.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.MovementWithRefs, int64, error) {
	where, args := buildWhere(filter)

	countQuery := `SELECT COUNT(*)` + movementJoins + where
	var total int64
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	pos := len(args) + 1
	query := `
	SELECT m.id, m.product_id, m.variant_id, m.user_id, m.movement_type, m.quantity,
	       m.previous_stock, m.current_stock, m.reason, m.reference_number, m.notes,
	       m.movement_date, m.created_at,
	       p.name, p.sku, v.sku, u.name` +
		movementJoins + where +
		fmt.Sprintf(" ORDER BY m.movement_date DESC, m.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.MovementWithRefs
	for rows.Next() {
		var m entity.MovementWithRefs
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.VariantID, &m.UserID, &m.Type, &m.Quantity,
			&m.PreviousStock, &m.CurrentStock, &m.Reason, &m.ReferenceNumber, &m.Notes,
			&m.MovementDate, &m.CreatedAt,
			&m.ProductName, &m.ProductSKU, &m.VariantSKU, &m.UserName,
		); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, total, rows.Err()
}

// Stats agrega entradas, salidas (suma con signo) y número de movimientos del rango.
func (r *StockMovementRepo) Stats(ctx context.Context, from, to *time.Time) (*repository.MovementStats, error) {
	query := `
	SELECT COALESCE(SUM(quantity) FILTER (WHERE quantity > 0), 0) AS total_in,
	       COALESCE(SUM(quantity) FILTER (WHERE quantity < 0), 0) AS total_out,
	       COUNT(*)                                               AS movement_count
	FROM stock_movements WHERE 1=1`
	var args []any
	pos := 1
	if from != nil {
		query += fmt.Sprintf(" AND movement_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND movement_date <= $%d", pos)
		args = append(args, *to)
		pos++
	}

	var stats repository.MovementStats
	err := r.q.QueryRow(ctx, query, args...).Scan(&stats.TotalIn, &stats.TotalOut, &stats.MovementCount)
	if err != nil {
		return nil, fmt.Errorf("movement stats: %w", err)
	}
	return &stats, nil
}
