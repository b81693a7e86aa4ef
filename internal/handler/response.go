package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeServiceError maps engine errors to HTTP statuses. op names the
// operation for the log line.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidFilter):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrConsistency):
		log.Printf("CRITICAL: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order total inconsistent, contact a manager"})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// urlUUID parses the named chi URL parameter. On failure it writes a 400
// and returns false.
func urlUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + label})
		return uuid.Nil, false
	}
	return id, true
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func optionalUUID(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	u := uuid.UUID(id.Bytes)
	return &u
}

// --- Shared response types ---

type tableResponse struct {
	ID             uuid.UUID  `json:"id"`
	Label          string     `json:"label"`
	Status         string     `json:"status"`
	CurrentOrderID *uuid.UUID `json:"current_order_id"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toTableResponse(t database.DiningTable) tableResponse {
	return tableResponse{
		ID:             t.ID,
		Label:          t.Label,
		Status:         string(t.Status),
		CurrentOrderID: optionalUUID(t.CurrentOrderID),
		UpdatedAt:      t.UpdatedAt,
	}
}

type orderResponse struct {
	ID            uuid.UUID  `json:"id"`
	TableID       *uuid.UUID `json:"table_id"`
	Status        string     `json:"status"`
	Total         string     `json:"total"`
	PaymentMethod *string    `json:"payment_method"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:        o.ID,
		TableID:   optionalUUID(o.TableID),
		Status:    string(o.Status),
		Total:     numericToString(o.Total),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.PaymentMethod.Valid {
		s := string(o.PaymentMethod.PaymentMethod)
		resp.PaymentMethod = &s
	}
	if o.ClosedAt.Valid {
		resp.ClosedAt = &o.ClosedAt.Time
	}
	return resp
}

type lineResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int32     `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	Subtotal    string    `json:"subtotal"`
	Notes       string    `json:"notes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func subtotal(unitPrice pgtype.Numeric, qty int32) string {
	val, err := unitPrice.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return money(d.Mul(decimal.NewFromInt32(qty)))
}

func toLineResponse(i database.OrderItem) lineResponse {
	return lineResponse{
		ID:        i.ID,
		OrderID:   i.OrderID,
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		UnitPrice: numericToString(i.UnitPrice),
		Subtotal:  subtotal(i.UnitPrice, i.Quantity),
		Notes:     i.Notes,
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func toLineResponses(rows []database.ListOrderLinesRow) []lineResponse {
	lines := make([]lineResponse, len(rows))
	for i, l := range rows {
		lines[i] = lineResponse{
			ID:          l.ID,
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   numericToString(l.UnitPrice),
			Subtotal:    subtotal(l.UnitPrice, l.Quantity),
			Notes:       l.Notes,
			Status:      string(l.Status),
			CreatedAt:   l.CreatedAt,
			UpdatedAt:   l.UpdatedAt,
		}
	}
	return lines
}
