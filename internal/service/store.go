package service

import (
	"context"

	"github.com/comanda-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pool is what the engine needs from *pgxpool.Pool: plain reads plus
// transactions for every mutation.
type Pool interface {
	database.DBTX
	TxBeginner
}

// Store defines the DB methods the engine uses.
// Satisfied by *database.Queries (and its WithTx variant).
type Store interface {
	GetTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error)
	GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.DiningTable, error)
	ListTables(ctx context.Context, status database.NullTableStatus) ([]database.DiningTable, error)
	OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.DiningTable, error)
	ReleaseTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error)

	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetActiveOrderByTable(ctx context.Context, tableID uuid.UUID) (database.Order, error)
	CreateOrder(ctx context.Context, tableID uuid.UUID) (database.Order, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, arg database.MarkOrderPaidParams) (database.Order, error)
	GetOrderTotalCheck(ctx context.Context, id uuid.UUID) (database.GetOrderTotalCheckRow, error)

	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderLinesRow, error)
	GetOrderItem(ctx context.Context, id uuid.UUID) (database.OrderItem, error)
	FindMergeableOrderItem(ctx context.Context, arg database.FindMergeableOrderItemParams) (database.OrderItem, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	IncrementOrderItemQuantity(ctx context.Context, arg database.IncrementOrderItemQuantityParams) (database.OrderItem, error)
	DeleteOrderItem(ctx context.Context, arg database.DeleteOrderItemParams) (uuid.UUID, error)
	UpdateOrderItemStatus(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error)
	MarkOrderItemsDelivered(ctx context.Context, orderID uuid.UUID) (int64, error)
	ListActiveOrderItems(ctx context.Context, arg database.ListActiveOrderItemsParams) ([]database.ListActiveOrderItemsRow, error)
}

// NewStore creates a Store from a DBTX (pool or tx).
// This allows the engine to create store instances from transactions.
type NewStore func(db database.DBTX) Store

// Product is the catalog's view of a sellable item.
type Product struct {
	ID       uuid.UUID               `json:"id"`
	Name     string                  `json:"name"`
	Category string                  `json:"category"`
	Station  database.KitchenStation `json:"station"`
	Price    decimal.Decimal         `json:"price"`
	Active   bool                    `json:"active"`
}

// Catalog is read-only product reference data. A missing product is
// reported as ErrNotFound.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
}
