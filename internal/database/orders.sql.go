package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getOrder = `-- name: GetOrder :one
SELECT id, table_id, status, total, payment_method, created_at, updated_at, closed_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableID,
		&i.Status,
		&i.Total,
		&i.PaymentMethod,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClosedAt,
	)
	return i, err
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT id, table_id, status, total, payment_method, created_at, updated_at, closed_at
FROM orders
WHERE id = $1
FOR NO KEY UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableID,
		&i.Status,
		&i.Total,
		&i.PaymentMethod,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClosedAt,
	)
	return i, err
}

const getActiveOrderByTable = `-- name: GetActiveOrderByTable :one
SELECT id, table_id, status, total, payment_method, created_at, updated_at, closed_at
FROM orders
WHERE table_id = $1 AND status <> 'paid'
LIMIT 1
`

func (q *Queries) GetActiveOrderByTable(ctx context.Context, tableID uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getActiveOrderByTable, tableID)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableID,
		&i.Status,
		&i.Total,
		&i.PaymentMethod,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClosedAt,
	)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (table_id, status, total)
VALUES ($1, 'pending', 0)
RETURNING id, table_id, status, total, payment_method, created_at, updated_at, closed_at
`

func (q *Queries) CreateOrder(ctx context.Context, tableID uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder, tableID)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableID,
		&i.Status,
		&i.Total,
		&i.PaymentMethod,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClosedAt,
	)
	return i, err
}

const updateOrderTotals = `-- name: UpdateOrderTotals :one
UPDATE orders
SET total = $2, status = $3, updated_at = now()
WHERE id = $1 AND status <> 'paid'
RETURNING id, table_id, status, total, payment_method, created_at, updated_at, closed_at
`

type UpdateOrderTotalsParams struct {
	ID     uuid.UUID      `json:"id"`
	Total  pgtype.Numeric `json:"total"`
	Status OrderStatus    `json:"status"`
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderTotals, arg.ID, arg.Total, arg.Status)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableID,
		&i.Status,
		&i.Total,
		&i.PaymentMethod,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClosedAt,
	)
	return i, err
}

const markOrderPaid = `-- name: MarkOrderPaid :one
UPDATE orders
SET status = 'paid', payment_method = $2, closed_at = $3, updated_at = now()
WHERE id = $1 AND status <> 'paid'
RETURNING id, table_id, status, total, payment_method, created_at, updated_at, closed_at
`

type MarkOrderPaidParams struct {
	ID            uuid.UUID          `json:"id"`
	PaymentMethod PaymentMethod      `json:"payment_method"`
	ClosedAt      pgtype.Timestamptz `json:"closed_at"`
}

func (q *Queries) MarkOrderPaid(ctx context.Context, arg MarkOrderPaidParams) (Order, error) {
	row := q.db.QueryRow(ctx, markOrderPaid, arg.ID, arg.PaymentMethod, arg.ClosedAt)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableID,
		&i.Status,
		&i.Total,
		&i.PaymentMethod,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ClosedAt,
	)
	return i, err
}

const getOrderTotalCheck = `-- name: GetOrderTotalCheck :one
SELECT o.total,
       COALESCE(SUM(i.unit_price * i.quantity), 0)::numeric(12, 2) AS line_sum
FROM orders o
LEFT JOIN order_items i ON i.order_id = o.id
WHERE o.id = $1
GROUP BY o.id
`

type GetOrderTotalCheckRow struct {
	Total   pgtype.Numeric `json:"total"`
	LineSum pgtype.Numeric `json:"line_sum"`
}

// GetOrderTotalCheck reads the cached total and the line sum in one snapshot.
func (q *Queries) GetOrderTotalCheck(ctx context.Context, id uuid.UUID) (GetOrderTotalCheckRow, error) {
	row := q.db.QueryRow(ctx, getOrderTotalCheck, id)
	var i GetOrderTotalCheckRow
	err := row.Scan(&i.Total, &i.LineSum)
	return i, err
}
