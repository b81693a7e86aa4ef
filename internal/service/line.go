package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// allowedTransitions is the kitchen's production state machine. Delivery
// happens only through settlement.
var allowedTransitions = map[database.OrderItemStatus][]database.OrderItemStatus{
	database.OrderItemStatusPENDING:   {database.OrderItemStatusPREPARING},
	database.OrderItemStatusPREPARING: {database.OrderItemStatusREADY},
}

// CanTransition reports whether a line may move from one production status
// to another.
func CanTransition(from, to database.OrderItemStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SetProductionStatus advances a line through pending → preparing → ready.
func (e *Engine) SetProductionStatus(ctx context.Context, lineID uuid.UUID, status database.OrderItemStatus) (database.OrderItem, error) {
	current, err := e.store.GetOrderItem(ctx, lineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderItem{}, fmt.Errorf("line %s: %w", lineID, ErrNotFound)
		}
		return database.OrderItem{}, fmt.Errorf("get order item: %w", err)
	}

	unlock := e.locks.lock(orderKey(current.OrderID))
	defer unlock()

	var (
		line  database.OrderItem
		order database.Order
	)
	err = e.inTx(ctx, func(st Store) error {
		if _, err := lockedOrder(ctx, st, current.OrderID); err != nil {
			return err
		}

		// Re-read under the order lock.
		item, err := st.GetOrderItem(ctx, lineID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("line %s: %w", lineID, ErrNotFound)
			}
			return fmt.Errorf("get order item: %w", err)
		}
		if !CanTransition(item.Status, status) {
			return fmt.Errorf("line %s %s → %s: %w", lineID, item.Status, status, ErrInvalidTransition)
		}

		line, err = st.UpdateOrderItemStatus(ctx, database.UpdateOrderItemStatusParams{
			ID:       lineID,
			Status:   status,
			Status_2: item.Status,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("line %s changed concurrently: %w", lineID, ErrInvalidTransition)
			}
			return fmt.Errorf("update order item status: %w", err)
		}

		order, err = recompute(ctx, st, current.OrderID)
		return err
	})
	if err != nil {
		return database.OrderItem{}, err
	}

	e.publish(ctx, Event{Type: enum.EventLineStatusChanged, RecordID: lineID, OrderID: line.OrderID, TableID: uuidFromPg(order.TableID)})
	return line, nil
}
