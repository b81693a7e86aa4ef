package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const defaultUrgentAfter = 15 * time.Minute

// Engine owns every floor mutation: tables, orders, ticket lines and
// settlement. Mutations on the same order (or table, when opening) are
// serialized in-process and again in the database with row locks.
type Engine struct {
	pool      Pool
	newStore  NewStore
	store     Store
	catalog   Catalog
	publisher Publisher
	locks     *keyLocks

	urgentAfter time.Duration
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sets where committed changes are announced.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithUrgentAfter sets the age at which a queued line is urgent.
func WithUrgentAfter(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.urgentAfter = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a new Engine.
func NewEngine(pool Pool, newStore NewStore, catalog Catalog, opts ...Option) *Engine {
	e := &Engine{
		pool:        pool,
		newStore:    newStore,
		store:       newStore(pool),
		catalog:     catalog,
		locks:       newKeyLocks(),
		urgentAfter: defaultUrgentAfter,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UrgentAfter reports the configured urgency threshold.
func (e *Engine) UrgentAfter() time.Duration { return e.urgentAfter }

// inTx runs fn inside a transaction and commits only when fn succeeds.
func (e *Engine) inTx(ctx context.Context, fn func(st Store) error) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(e.newStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// publish announces committed changes. Delivery failures never fail the
// mutation that caused them.
func (e *Engine) publish(ctx context.Context, events ...Event) {
	if e.publisher == nil {
		return
	}
	for _, ev := range events {
		if ev.At.IsZero() {
			ev.At = e.now()
		}
		if err := e.publisher.Publish(ctx, ev); err != nil {
			log.Printf("WARN: publish %s %s: %v", ev.Type, ev.RecordID, err)
		}
	}
}

// lockedOrder loads the order under a row lock and rejects paid orders.
func lockedOrder(ctx context.Context, st Store, orderID uuid.UUID) (database.Order, error) {
	order, err := st.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.Status == database.OrderStatusPAID {
		return database.Order{}, fmt.Errorf("order %s is paid: %w", orderID, ErrInvalidState)
	}
	return order, nil
}

// recompute re-derives the order total and status from its full line set,
// persists them and verifies the stored total.
func recompute(ctx context.Context, st Store, orderID uuid.UUID) (database.Order, error) {
	items, err := st.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("list order items: %w", err)
	}

	total := itemsTotal(items)
	order, err := st.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:     orderID,
		Total:  decimalToNumeric(total),
		Status: rollupStatus(items),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, fmt.Errorf("order %s is paid: %w", orderID, ErrInvalidState)
		}
		return database.Order{}, fmt.Errorf("update order totals: %w", err)
	}

	if stored := numericToDecimal(order.Total); !stored.Equal(total) {
		log.Printf("CRITICAL: order %s stored total %s, lines sum to %s", orderID, stored.StringFixed(2), total.StringFixed(2))
		return database.Order{}, fmt.Errorf("order %s: %w", orderID, ErrConsistency)
	}
	return order, nil
}

// itemsTotal is Σ unit_price × quantity.
func itemsTotal(items []database.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(numericToDecimal(it.UnitPrice).Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return total
}

func linesTotal(lines []database.ListOrderLinesRow) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(numericToDecimal(l.UnitPrice).Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return total
}

// rollupStatus derives an unpaid order's status from its lines.
func rollupStatus(items []database.OrderItem) database.OrderStatus {
	var pending, finished, delivered int
	for _, it := range items {
		switch it.Status {
		case database.OrderItemStatusPENDING:
			pending++
		case database.OrderItemStatusREADY:
			finished++
		case database.OrderItemStatusDELIVERED:
			finished++
			delivered++
		}
	}

	switch n := len(items); {
	case n == 0 || pending == n:
		return database.OrderStatusPENDING
	case delivered == n:
		return database.OrderStatusDELIVERED
	case finished == n:
		return database.OrderStatusREADY
	default:
		return database.OrderStatusPREPARING
	}
}

func uuidFromPg(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
