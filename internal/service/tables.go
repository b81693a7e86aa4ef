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
)

// OpenTableResult is the table together with its unpaid order.
type OpenTableResult struct {
	Table   database.DiningTable
	Order   database.Order
	Created bool
}

// OpenTable occupies a free table with a new empty order. Opening a table
// that already has an unpaid order returns that order unchanged.
func (e *Engine) OpenTable(ctx context.Context, tableID uuid.UUID) (*OpenTableResult, error) {
	unlock := e.locks.lock(tableKey(tableID))
	defer unlock()

	var res OpenTableResult
	err := e.inTx(ctx, func(st Store) error {
		table, err := st.GetTableForUpdate(ctx, tableID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("table %s: %w", tableID, ErrNotFound)
			}
			return fmt.Errorf("get table: %w", err)
		}

		order, err := st.GetActiveOrderByTable(ctx, tableID)
		switch {
		case err == nil:
			res.Order = order
			// Heal a table whose flag drifted from its open tab.
			if table.Status != database.TableStatusOCCUPIED || uuidFromPg(table.CurrentOrderID) != order.ID {
				table, err = st.OccupyTable(ctx, database.OccupyTableParams{ID: tableID, CurrentOrderID: order.ID})
				if err != nil {
					return fmt.Errorf("occupy table: %w", err)
				}
			}
			res.Table = table
			return nil
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("get active order: %w", err)
		}

		order, err = st.CreateOrder(ctx, tableID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		table, err = st.OccupyTable(ctx, database.OccupyTableParams{ID: tableID, CurrentOrderID: order.ID})
		if err != nil {
			return fmt.Errorf("occupy table: %w", err)
		}
		res = OpenTableResult{Table: table, Order: order, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Created {
		e.publish(ctx,
			Event{Type: enum.EventTableOpened, RecordID: tableID, OrderID: res.Order.ID, TableID: tableID},
			Event{Type: enum.EventOrderCreated, RecordID: res.Order.ID, OrderID: res.Order.ID, TableID: tableID},
		)
	}
	return &res, nil
}

// GetOrCreateActiveOrder returns the table's unpaid order, opening the table
// when it has none.
func (e *Engine) GetOrCreateActiveOrder(ctx context.Context, tableID uuid.UUID) (database.Order, error) {
	res, err := e.OpenTable(ctx, tableID)
	if err != nil {
		return database.Order{}, err
	}
	return res.Order, nil
}

// ListTables returns every table ordered by label, optionally filtered by
// status ("free" or "occupied").
func (e *Engine) ListTables(ctx context.Context, status string) ([]database.DiningTable, error) {
	filter := database.NullTableStatus{}
	switch database.TableStatus(status) {
	case "":
	case database.TableStatusFREE, database.TableStatusOCCUPIED:
		filter = database.NullTableStatus{TableStatus: database.TableStatus(status), Valid: true}
	default:
		return nil, fmt.Errorf("table status %q: %w", status, ErrInvalidFilter)
	}

	tables, err := e.store.ListTables(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// ListOccupiedTables returns the tables a cashier can settle.
func (e *Engine) ListOccupiedTables(ctx context.Context) ([]database.DiningTable, error) {
	return e.ListTables(ctx, string(database.TableStatusOCCUPIED))
}

// ReleaseTable frees a table from outside settlement. It only succeeds when
// the table is occupied but no unpaid order backs it any more; a table with
// an open tab is released by paying the tab.
func (e *Engine) ReleaseTable(ctx context.Context, tableID uuid.UUID) (database.DiningTable, error) {
	unlock := e.locks.lock(tableKey(tableID))
	defer unlock()

	var released database.DiningTable
	err := e.inTx(ctx, func(st Store) error {
		table, err := st.GetTableForUpdate(ctx, tableID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("table %s: %w", tableID, ErrNotFound)
			}
			return fmt.Errorf("get table: %w", err)
		}
		if table.Status != database.TableStatusOCCUPIED {
			return fmt.Errorf("table %s is not occupied: %w", tableID, ErrInvalidState)
		}

		_, err = st.GetActiveOrderByTable(ctx, tableID)
		if err == nil {
			return fmt.Errorf("table %s has an unpaid order: %w", tableID, ErrInvalidState)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("get active order: %w", err)
		}

		log.Printf("WARN: releasing table %s with no unpaid order (current order %s)", tableID, uuidFromPg(table.CurrentOrderID))
		released, err = st.ReleaseTable(ctx, tableID)
		if err != nil {
			return fmt.Errorf("release table: %w", err)
		}
		return nil
	})
	if err != nil {
		return database.DiningTable{}, err
	}

	e.publish(ctx, Event{Type: enum.EventTableReleased, RecordID: tableID, TableID: tableID})
	return released, nil
}

// releaseTable frees the table owning a just-paid order. The table must be
// occupied by exactly that order.
func releaseTable(ctx context.Context, st Store, tableID, orderID uuid.UUID) (database.DiningTable, error) {
	table, err := st.GetTableForUpdate(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.DiningTable{}, fmt.Errorf("table %s: %w", tableID, ErrNotFound)
		}
		return database.DiningTable{}, fmt.Errorf("get table: %w", err)
	}
	if table.Status != database.TableStatusOCCUPIED || uuidFromPg(table.CurrentOrderID) != orderID {
		return database.DiningTable{}, fmt.Errorf("table %s is not held by order %s: %w", tableID, orderID, ErrInvalidState)
	}

	released, err := st.ReleaseTable(ctx, tableID)
	if err != nil {
		return database.DiningTable{}, fmt.Errorf("release table: %w", err)
	}
	return released, nil
}
