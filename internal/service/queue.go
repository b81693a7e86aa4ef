package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/google/uuid"
)

// QueueFilter narrows the production queue. Zero values match everything.
type QueueFilter struct {
	Status  database.OrderItemStatus
	Station database.KitchenStation
}

// QueueLine is one pending or preparing line as the kitchen sees it.
type QueueLine struct {
	LineID      uuid.UUID                `json:"line_id"`
	OrderID     uuid.UUID                `json:"order_id"`
	ProductID   uuid.UUID                `json:"product_id"`
	ProductName string                   `json:"product_name"`
	Quantity    int32                    `json:"quantity"`
	Notes       string                   `json:"notes"`
	Status      database.OrderItemStatus `json:"status"`
	Station     database.KitchenStation  `json:"station"`
	TableID     uuid.UUID                `json:"table_id"`
	TableLabel  string                   `json:"table_label"`
	CreatedAt   time.Time                `json:"created_at"`
	Elapsed     time.Duration            `json:"elapsed"`
	Urgent      bool                     `json:"urgent"`
}

// IsUrgent reports whether a line created at createdAt has waited at least
// after by now.
func IsUrgent(createdAt, now time.Time, after time.Duration) bool {
	return now.Sub(createdAt) >= after
}

// ListActiveLines returns pending and preparing lines across unpaid orders,
// oldest first, annotated with table label, elapsed time and urgency.
func (e *Engine) ListActiveLines(ctx context.Context, f QueueFilter) ([]QueueLine, error) {
	params := database.ListActiveOrderItemsParams{}
	switch f.Status {
	case "":
	case database.OrderItemStatusPENDING, database.OrderItemStatusPREPARING:
		params.Status = database.NullOrderItemStatus{OrderItemStatus: f.Status, Valid: true}
	default:
		return nil, fmt.Errorf("queue status %q: %w", f.Status, ErrInvalidFilter)
	}
	switch f.Station {
	case "":
	case database.KitchenStationKITCHEN, database.KitchenStationBAR:
		params.Station = database.NullKitchenStation{KitchenStation: f.Station, Valid: true}
	default:
		return nil, fmt.Errorf("queue station %q: %w", f.Station, ErrInvalidFilter)
	}

	rows, err := e.store.ListActiveOrderItems(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list active order items: %w", err)
	}

	now := e.now()
	lines := make([]QueueLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, QueueLine{
			LineID:      r.ID,
			OrderID:     r.OrderID,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			Notes:       r.Notes,
			Status:      r.Status,
			Station:     r.Station,
			TableID:     uuidFromPg(r.TableID),
			TableLabel:  r.TableLabel.String,
			CreatedAt:   r.CreatedAt,
			Elapsed:     now.Sub(r.CreatedAt),
			Urgent:      IsUrgent(r.CreatedAt, now, e.urgentAfter),
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].CreatedAt.Before(lines[j].CreatedAt)
	})
	return lines, nil
}
