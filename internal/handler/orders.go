package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderEngine defines the engine methods needed by order handlers.
// Satisfied by *service.Engine; narrow interface for testability.
type OrderEngine interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*service.OrderDetail, error)
	CurrentTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
	AddLine(ctx context.Context, req service.AddLineRequest) (*service.AddLineResult, error)
	RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (database.Order, error)
}

// OrderHandler handles order and ticket line endpoints.
type OrderHandler struct {
	engine OrderEngine
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(engine OrderEngine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

// --- Request / Response types ---

type addLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int32 `json:"quantity"` // omitted means one unit
	Notes     string `json:"notes"`
}

type addLineResponse struct {
	Order  orderResponse `json:"order"`
	Line   lineResponse  `json:"line"`
	Merged bool          `json:"merged"`
}

type orderDetailResponse struct {
	orderResponse
	Lines []lineResponse `json:"lines"`
}

type totalResponse struct {
	OrderID uuid.UUID `json:"order_id"`
	Total   string    `json:"total"`
}

// --- Handlers ---

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order ID")
	if !ok {
		return
	}

	detail, err := h.engine.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}

	resp := orderDetailResponse{
		orderResponse: toOrderResponse(detail.Order),
		Lines:         toLineResponses(detail.Lines),
	}
	writeJSON(w, http.StatusOK, resp)
}

// Total handles GET /orders/{id}/total.
func (h *OrderHandler) Total(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order ID")
	if !ok {
		return
	}

	total, err := h.engine.CurrentTotal(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, "current total", err)
		return
	}
	writeJSON(w, http.StatusOK, totalResponse{OrderID: orderID, Total: money(total)})
}

// AddLine handles POST /orders/{id}/lines.
// Responds 201 for a new line, 200 when the quantity merged into an existing one.
func (h *OrderHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order ID")
	if !ok {
		return
	}

	var req addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product_id"})
		return
	}
	quantity := service.DefaultQuantity
	if req.Quantity != nil {
		if *req.Quantity < 1 || *req.Quantity > service.MaxLineQuantity {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": service.ErrInvalidQuantity.Error()})
			return
		}
		quantity = *req.Quantity
	}

	result, err := h.engine.AddLine(r.Context(), service.AddLineRequest{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, "add line", err)
		return
	}

	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}
	writeJSON(w, status, addLineResponse{
		Order:  toOrderResponse(result.Order),
		Line:   toLineResponse(result.Line),
		Merged: result.Merged,
	})
}

// RemoveLine handles DELETE /orders/{id}/lines/{lineID}.
func (h *OrderHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order ID")
	if !ok {
		return
	}
	lineID, ok := urlUUID(w, r, "lineID", "line ID")
	if !ok {
		return
	}

	order, err := h.engine.RemoveLine(r.Context(), orderID, lineID)
	if err != nil {
		writeServiceError(w, "remove line", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}
