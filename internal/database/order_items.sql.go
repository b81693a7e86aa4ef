package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT id, order_id, product_id, quantity, unit_price, notes, status, created_at, updated_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Quantity,
			&i.UnitPrice,
			&i.Notes,
			&i.Status,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderLines = `-- name: ListOrderLines :many
SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.notes, i.status,
       i.created_at, i.updated_at, p.name AS product_name
FROM order_items i
JOIN products p ON p.id = i.product_id
WHERE i.order_id = $1
ORDER BY i.created_at, i.id
`

type ListOrderLinesRow struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   pgtype.Numeric  `json:"unit_price"`
	Notes       string          `json:"notes"`
	Status      OrderItemStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ProductName string          `json:"product_name"`
}

func (q *Queries) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]ListOrderLinesRow, error) {
	rows, err := q.db.Query(ctx, listOrderLines, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderLinesRow{}
	for rows.Next() {
		var i ListOrderLinesRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Quantity,
			&i.UnitPrice,
			&i.Notes,
			&i.Status,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.ProductName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getOrderItem = `-- name: GetOrderItem :one
SELECT id, order_id, product_id, quantity, unit_price, notes, status, created_at, updated_at
FROM order_items
WHERE id = $1
`

func (q *Queries) GetOrderItem(ctx context.Context, id uuid.UUID) (OrderItem, error) {
	row := q.db.QueryRow(ctx, getOrderItem, id)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Notes,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findMergeableOrderItem = `-- name: FindMergeableOrderItem :one
SELECT id, order_id, product_id, quantity, unit_price, notes, status, created_at, updated_at
FROM order_items
WHERE order_id = $1 AND product_id = $2 AND status <> 'delivered'
ORDER BY created_at, id
LIMIT 1
`

type FindMergeableOrderItemParams struct {
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
}

func (q *Queries) FindMergeableOrderItem(ctx context.Context, arg FindMergeableOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, findMergeableOrderItem, arg.OrderID, arg.ProductID)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Notes,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, product_id, quantity, unit_price, notes, status)
VALUES ($1, $2, $3, $4, $5, 'pending')
RETURNING id, order_id, product_id, quantity, unit_price, notes, status, created_at, updated_at
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID      `json:"order_id"`
	ProductID uuid.UUID      `json:"product_id"`
	Quantity  int32          `json:"quantity"`
	UnitPrice pgtype.Numeric `json:"unit_price"`
	Notes     string         `json:"notes"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
		arg.Notes,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Notes,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const incrementOrderItemQuantity = `-- name: IncrementOrderItemQuantity :one
UPDATE order_items
SET quantity = quantity + $2, updated_at = now()
WHERE id = $1
RETURNING id, order_id, product_id, quantity, unit_price, notes, status, created_at, updated_at
`

type IncrementOrderItemQuantityParams struct {
	ID       uuid.UUID `json:"id"`
	Quantity int32     `json:"quantity"`
}

func (q *Queries) IncrementOrderItemQuantity(ctx context.Context, arg IncrementOrderItemQuantityParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, incrementOrderItemQuantity, arg.ID, arg.Quantity)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Notes,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteOrderItem = `-- name: DeleteOrderItem :one
DELETE FROM order_items
WHERE id = $1 AND order_id = $2
RETURNING id
`

type DeleteOrderItemParams struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"order_id"`
}

func (q *Queries) DeleteOrderItem(ctx context.Context, arg DeleteOrderItemParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteOrderItem, arg.ID, arg.OrderID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const updateOrderItemStatus = `-- name: UpdateOrderItemStatus :one
UPDATE order_items
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING id, order_id, product_id, quantity, unit_price, notes, status, created_at, updated_at
`

type UpdateOrderItemStatusParams struct {
	ID       uuid.UUID       `json:"id"`
	Status   OrderItemStatus `json:"status"`
	Status_2 OrderItemStatus `json:"status_2"`
}

// UpdateOrderItemStatus is a compare-and-set: Status_2 is the expected current status.
func (q *Queries) UpdateOrderItemStatus(ctx context.Context, arg UpdateOrderItemStatusParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, updateOrderItemStatus, arg.ID, arg.Status, arg.Status_2)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Notes,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const markOrderItemsDelivered = `-- name: MarkOrderItemsDelivered :execrows
UPDATE order_items
SET status = 'delivered', updated_at = now()
WHERE order_id = $1 AND status <> 'delivered'
`

func (q *Queries) MarkOrderItemsDelivered(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, markOrderItemsDelivered, orderID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listActiveOrderItems = `-- name: ListActiveOrderItems :many
SELECT i.id, i.order_id, i.product_id, i.quantity, i.notes, i.status, i.created_at,
       p.name AS product_name, p.station, o.table_id, t.label AS table_label
FROM order_items i
JOIN orders o ON o.id = i.order_id
JOIN products p ON p.id = i.product_id
LEFT JOIN dining_tables t ON t.id = o.table_id
WHERE i.status IN ('pending', 'preparing')
  AND o.status <> 'paid'
  AND ($1::order_item_status IS NULL OR i.status = $1::order_item_status)
  AND ($2::kitchen_station IS NULL OR p.station = $2::kitchen_station)
ORDER BY i.created_at, i.id
`

type ListActiveOrderItemsParams struct {
	Status  NullOrderItemStatus `json:"status"`
	Station NullKitchenStation  `json:"station"`
}

type ListActiveOrderItemsRow struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int32           `json:"quantity"`
	Notes       string          `json:"notes"`
	Status      OrderItemStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProductName string          `json:"product_name"`
	Station     KitchenStation  `json:"station"`
	TableID     pgtype.UUID     `json:"table_id"`
	TableLabel  pgtype.Text     `json:"table_label"`
}

func (q *Queries) ListActiveOrderItems(ctx context.Context, arg ListActiveOrderItemsParams) ([]ListActiveOrderItemsRow, error) {
	rows, err := q.db.Query(ctx, listActiveOrderItems, arg.Status, arg.Station)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListActiveOrderItemsRow{}
	for rows.Next() {
		var i ListActiveOrderItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Quantity,
			&i.Notes,
			&i.Status,
			&i.CreatedAt,
			&i.ProductName,
			&i.Station,
			&i.TableID,
			&i.TableLabel,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
