package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// SettlementView is what the cashier sees before taking payment.
type SettlementView struct {
	Table database.DiningTable
	Order database.Order
	Lines []database.ListOrderLinesRow
	Total decimal.Decimal
}

// SettlementResult is the state after a successful payment.
type SettlementResult struct {
	Order   database.Order
	Table   *database.DiningTable
	Receipt Receipt
}

// Receipt is the settled snapshot handed to the receipt renderer.
type Receipt struct {
	OrderID       uuid.UUID              `json:"order_id"`
	TableLabel    string                 `json:"table_label"`
	Lines         []ReceiptLine          `json:"lines"`
	Total         decimal.Decimal        `json:"total"`
	PaymentMethod database.PaymentMethod `json:"payment_method"`
	ClosedAt      time.Time              `json:"closed_at"`
}

// ReceiptLine is one priced line on a receipt.
type ReceiptLine struct {
	Name      string          `json:"name"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Notes     string          `json:"notes,omitempty"`
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m database.PaymentMethod) bool {
	switch m {
	case database.PaymentMethodCASH, database.PaymentMethodCARD, database.PaymentMethodPIX:
		return true
	}
	return false
}

// LoadSettlementView returns the table's unpaid order with its lines and the
// total computed from them.
func (e *Engine) LoadSettlementView(ctx context.Context, tableID uuid.UUID) (*SettlementView, error) {
	table, err := e.store.GetTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("table %s: %w", tableID, ErrNotFound)
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	order, err := e.store.GetActiveOrderByTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no unpaid order for table %s: %w", tableID, ErrNotFound)
		}
		return nil, fmt.Errorf("get active order: %w", err)
	}

	lines, err := e.store.ListOrderLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	return &SettlementView{Table: table, Order: order, Lines: lines, Total: linesTotal(lines)}, nil
}

// CompletePayment settles an order as one unit: every line is delivered, the
// order is paid and its table released. On any failure nothing changes.
func (e *Engine) CompletePayment(ctx context.Context, orderID uuid.UUID, method database.PaymentMethod) (*SettlementResult, error) {
	if !ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%q: %w", method, ErrInvalidPaymentMethod)
	}

	unlock := e.locks.lock(orderKey(orderID))
	defer unlock()

	// The owning table never changes, so it can be read before locking it.
	current, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	tableID := uuidFromPg(current.TableID)
	if tableID != uuid.Nil {
		unlockTable := e.locks.lock(tableKey(tableID))
		defer unlockTable()
	}

	var res SettlementResult
	err = e.inTx(ctx, func(st Store) error {
		order, err := lockedOrder(ctx, st, orderID)
		if err != nil {
			return err
		}

		if _, err := st.MarkOrderItemsDelivered(ctx, orderID); err != nil {
			return fmt.Errorf("mark items delivered: %w", err)
		}

		lines, err := st.ListOrderLines(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list order lines: %w", err)
		}
		total := linesTotal(lines)
		if stored := numericToDecimal(order.Total); !stored.Equal(total) {
			log.Printf("CRITICAL: order %s stored total %s, lines sum to %s", orderID, stored.StringFixed(2), total.StringFixed(2))
			return fmt.Errorf("order %s: %w", orderID, ErrConsistency)
		}

		closedAt := e.now()
		res.Order, err = st.MarkOrderPaid(ctx, database.MarkOrderPaidParams{
			ID:            orderID,
			PaymentMethod: method,
			ClosedAt:      pgtype.Timestamptz{Time: closedAt, Valid: true},
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("order %s is paid: %w", orderID, ErrInvalidState)
			}
			return fmt.Errorf("mark order paid: %w", err)
		}

		label := ""
		if tableID != uuid.Nil {
			released, err := releaseTable(ctx, st, tableID, orderID)
			if err != nil {
				return err
			}
			res.Table = &released
			label = released.Label
		}

		res.Receipt = buildReceipt(res.Order, label, lines)
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := []Event{{Type: enum.EventOrderPaid, RecordID: orderID, OrderID: orderID, TableID: tableID}}
	if res.Table != nil {
		events = append(events, Event{Type: enum.EventTableReleased, RecordID: tableID, OrderID: orderID, TableID: tableID})
	}
	e.publish(ctx, events...)
	return &res, nil
}

// Receipt rebuilds the settled snapshot of a paid order.
func (e *Engine) Receipt(ctx context.Context, orderID uuid.UUID) (*Receipt, error) {
	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != database.OrderStatusPAID {
		return nil, fmt.Errorf("order %s is not paid: %w", orderID, ErrInvalidState)
	}

	lines, err := e.store.ListOrderLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	label := ""
	if order.TableID.Valid {
		table, err := e.store.GetTable(ctx, uuidFromPg(order.TableID))
		switch {
		case err == nil:
			label = table.Label
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("get table: %w", err)
		}
	}

	r := buildReceipt(order, label, lines)
	return &r, nil
}

func buildReceipt(order database.Order, tableLabel string, lines []database.ListOrderLinesRow) Receipt {
	r := Receipt{
		OrderID:       order.ID,
		TableLabel:    tableLabel,
		Lines:         make([]ReceiptLine, 0, len(lines)),
		Total:         linesTotal(lines),
		PaymentMethod: order.PaymentMethod.PaymentMethod,
		ClosedAt:      order.ClosedAt.Time,
	}
	for _, l := range lines {
		price := numericToDecimal(l.UnitPrice)
		r.Lines = append(r.Lines, ReceiptLine{
			Name:      l.ProductName,
			Quantity:  l.Quantity,
			UnitPrice: price,
			Subtotal:  price.Mul(decimal.NewFromInt32(l.Quantity)),
			Notes:     l.Notes,
		})
	}
	return r
}
