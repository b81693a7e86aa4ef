package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	// DefaultQuantity is used when a request leaves Quantity at zero.
	DefaultQuantity int32 = 1
	// MaxLineQuantity bounds a single line, merged quantity included.
	MaxLineQuantity int32 = 999
)

// AddLineRequest is the validated input for adding a product to an order.
// A zero Quantity means DefaultQuantity.
type AddLineRequest struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Notes     string
}

// AddLineResult is the touched line and the recomputed order.
type AddLineResult struct {
	Order  database.Order
	Line   database.OrderItem
	Merged bool
}

// OrderDetail is an order with its lines and product names.
type OrderDetail struct {
	Order database.Order
	Lines []database.ListOrderLinesRow
	Total decimal.Decimal
}

// AddLine adds a product to an unpaid order. A line for the same product
// that has not been delivered absorbs the quantity; otherwise a new pending
// line is created at the catalog price of the moment.
func (e *Engine) AddLine(ctx context.Context, req AddLineRequest) (*AddLineResult, error) {
	if req.Quantity == 0 {
		req.Quantity = DefaultQuantity
	}
	if req.Quantity < 0 || req.Quantity > MaxLineQuantity {
		return nil, fmt.Errorf("quantity %d: %w", req.Quantity, ErrInvalidQuantity)
	}

	product, err := e.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", req.ProductID, ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !product.Active {
		return nil, fmt.Errorf("product %s is inactive: %w", req.ProductID, ErrInvalidState)
	}

	unlock := e.locks.lock(orderKey(req.OrderID))
	defer unlock()

	var res AddLineResult
	err = e.inTx(ctx, func(st Store) error {
		if _, err := lockedOrder(ctx, st, req.OrderID); err != nil {
			return err
		}

		existing, err := st.FindMergeableOrderItem(ctx, database.FindMergeableOrderItemParams{
			OrderID:   req.OrderID,
			ProductID: req.ProductID,
		})
		switch {
		case err == nil:
			if existing.Quantity > MaxLineQuantity-req.Quantity {
				return fmt.Errorf("line %s would hold %d units: %w",
					existing.ID, int64(existing.Quantity)+int64(req.Quantity), ErrInvalidQuantity)
			}
			res.Line, err = st.IncrementOrderItemQuantity(ctx, database.IncrementOrderItemQuantityParams{
				ID:       existing.ID,
				Quantity: req.Quantity,
			})
			if err != nil {
				return fmt.Errorf("increment order item: %w", err)
			}
			res.Merged = true
		case errors.Is(err, pgx.ErrNoRows):
			res.Line, err = st.CreateOrderItem(ctx, database.CreateOrderItemParams{
				OrderID:   req.OrderID,
				ProductID: req.ProductID,
				Quantity:  req.Quantity,
				UnitPrice: decimalToNumeric(product.Price),
				Notes:     req.Notes,
			})
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		default:
			return fmt.Errorf("find mergeable order item: %w", err)
		}

		res.Order, err = recompute(ctx, st, req.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	evType := enum.EventLineAdded
	if res.Merged {
		evType = enum.EventLineUpdated
	}
	e.publish(ctx, Event{Type: evType, RecordID: res.Line.ID, OrderID: req.OrderID, TableID: uuidFromPg(res.Order.TableID)})
	return &res, nil
}

// RemoveLine deletes a line from an unpaid order whatever its production
// status and returns the recomputed order.
func (e *Engine) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (database.Order, error) {
	unlock := e.locks.lock(orderKey(orderID))
	defer unlock()

	var order database.Order
	err := e.inTx(ctx, func(st Store) error {
		if _, err := lockedOrder(ctx, st, orderID); err != nil {
			return err
		}

		if _, err := st.DeleteOrderItem(ctx, database.DeleteOrderItemParams{ID: lineID, OrderID: orderID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("line %s in order %s: %w", lineID, orderID, ErrNotFound)
			}
			return fmt.Errorf("delete order item: %w", err)
		}

		var err error
		order, err = recompute(ctx, st, orderID)
		return err
	})
	if err != nil {
		return database.Order{}, err
	}

	e.publish(ctx, Event{Type: enum.EventLineRemoved, RecordID: lineID, OrderID: orderID, TableID: uuidFromPg(order.TableID)})
	return order, nil
}

// CurrentTotal returns the cached order total after checking it against the
// line sum read in the same statement.
func (e *Engine) CurrentTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	row, err := e.store.GetOrderTotalCheck(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("get order total: %w", err)
	}

	total := numericToDecimal(row.Total)
	if sum := numericToDecimal(row.LineSum); !total.Equal(sum) {
		log.Printf("CRITICAL: order %s stored total %s, lines sum to %s", orderID, total.StringFixed(2), sum.StringFixed(2))
		return decimal.Zero, fmt.Errorf("order %s: %w", orderID, ErrConsistency)
	}
	return total, nil
}

// GetOrder returns an order with its lines in insertion order.
func (e *Engine) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	lines, err := e.store.ListOrderLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	return &OrderDetail{Order: order, Lines: lines, Total: linesTotal(lines)}, nil
}
