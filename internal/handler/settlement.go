package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/receipt"
	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
)

// SettlementEngine defines the engine methods needed by checkout handlers.
// Satisfied by *service.Engine; narrow interface for testability.
type SettlementEngine interface {
	LoadSettlementView(ctx context.Context, tableID uuid.UUID) (*service.SettlementView, error)
	CompletePayment(ctx context.Context, orderID uuid.UUID, method database.PaymentMethod) (*service.SettlementResult, error)
	Receipt(ctx context.Context, orderID uuid.UUID) (*service.Receipt, error)
}

// SettlementHandler handles the cashier's checkout endpoints.
type SettlementHandler struct {
	engine SettlementEngine
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(engine SettlementEngine) *SettlementHandler {
	return &SettlementHandler{engine: engine}
}

// --- Request / Response types ---

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type settlementViewResponse struct {
	Table tableResponse  `json:"table"`
	Order orderResponse  `json:"order"`
	Lines []lineResponse `json:"lines"`
	Total string         `json:"total"`
}

type receiptLineResponse struct {
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
	Notes     string `json:"notes,omitempty"`
}

type receiptResponse struct {
	OrderID       uuid.UUID             `json:"order_id"`
	TableLabel    string                `json:"table_label"`
	Lines         []receiptLineResponse `json:"lines"`
	Total         string                `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	ClosedAt      time.Time             `json:"closed_at"`
}

type paymentResponse struct {
	Order   orderResponse   `json:"order"`
	Table   *tableResponse  `json:"table"`
	Receipt receiptResponse `json:"receipt"`
}

func toReceiptResponse(r service.Receipt) receiptResponse {
	resp := receiptResponse{
		OrderID:       r.OrderID,
		TableLabel:    r.TableLabel,
		Lines:         make([]receiptLineResponse, len(r.Lines)),
		Total:         money(r.Total),
		PaymentMethod: string(r.PaymentMethod),
		ClosedAt:      r.ClosedAt,
	}
	for i, l := range r.Lines {
		resp.Lines[i] = receiptLineResponse{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: money(l.UnitPrice),
			Subtotal:  money(l.Subtotal),
			Notes:     l.Notes,
		}
	}
	return resp
}

// --- Handlers ---

// View handles GET /tables/{id}/settlement.
func (h *SettlementHandler) View(w http.ResponseWriter, r *http.Request) {
	tableID, ok := urlUUID(w, r, "id", "table ID")
	if !ok {
		return
	}

	view, err := h.engine.LoadSettlementView(r.Context(), tableID)
	if err != nil {
		writeServiceError(w, "load settlement view", err)
		return
	}

	writeJSON(w, http.StatusOK, settlementViewResponse{
		Table: toTableResponse(view.Table),
		Order: toOrderResponse(view.Order),
		Lines: toLineResponses(view.Lines),
		Total: money(view.Total),
	})
}

// Pay handles POST /orders/{id}/payment.
func (h *SettlementHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order ID")
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method is required"})
		return
	}

	method := database.PaymentMethod(strings.ToLower(req.PaymentMethod))
	result, err := h.engine.CompletePayment(r.Context(), orderID, method)
	if err != nil {
		writeServiceError(w, "complete payment", err)
		return
	}

	resp := paymentResponse{
		Order:   toOrderResponse(result.Order),
		Receipt: toReceiptResponse(result.Receipt),
	}
	if result.Table != nil {
		t := toTableResponse(*result.Table)
		resp.Table = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// Receipt handles GET /orders/{id}/receipt.
// Plain text for the printer by default; ?format=json returns the snapshot.
func (h *SettlementHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order ID")
	if !ok {
		return
	}

	rc, err := h.engine.Receipt(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, "receipt", err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, toReceiptResponse(*rc))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := receipt.Render(w, *rc); err != nil {
		log.Printf("ERROR: render receipt %s: %v", orderID, err)
	}
}
