package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
)

// KitchenEngine defines the engine methods needed by kitchen screen handlers.
// Satisfied by *service.Engine; narrow interface for testability.
type KitchenEngine interface {
	ListActiveLines(ctx context.Context, f service.QueueFilter) ([]service.QueueLine, error)
	SetProductionStatus(ctx context.Context, lineID uuid.UUID, status database.OrderItemStatus) (database.OrderItem, error)
}

// KitchenHandler handles the production queue endpoints.
type KitchenHandler struct {
	engine KitchenEngine
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(engine KitchenEngine) *KitchenHandler {
	return &KitchenHandler{engine: engine}
}

type queueLineResponse struct {
	LineID         uuid.UUID `json:"line_id"`
	OrderID        uuid.UUID `json:"order_id"`
	TableID        uuid.UUID `json:"table_id"`
	TableLabel     string    `json:"table_label"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int32     `json:"quantity"`
	Notes          string    `json:"notes"`
	Status         string    `json:"status"`
	Station        string    `json:"station"`
	CreatedAt      time.Time `json:"created_at"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
	Urgent         bool      `json:"urgent"`
}

type updateLineStatusRequest struct {
	Status string `json:"status"`
}

// Queue handles GET /kitchen/queue?status=&station=.
func (h *KitchenHandler) Queue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lines, err := h.engine.ListActiveLines(r.Context(), service.QueueFilter{
		Status:  database.OrderItemStatus(q.Get("status")),
		Station: database.KitchenStation(q.Get("station")),
	})
	if err != nil {
		writeServiceError(w, "list active lines", err)
		return
	}

	resp := make([]queueLineResponse, len(lines))
	for i, l := range lines {
		resp[i] = queueLineResponse{
			LineID:         l.LineID,
			OrderID:        l.OrderID,
			TableID:        l.TableID,
			TableLabel:     l.TableLabel,
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			Quantity:       l.Quantity,
			Notes:          l.Notes,
			Status:         string(l.Status),
			Station:        string(l.Station),
			CreatedAt:      l.CreatedAt,
			ElapsedSeconds: int64(l.Elapsed / time.Second),
			Urgent:         l.Urgent,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /kitchen/lines/{id}/status.
func (h *KitchenHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	lineID, ok := urlUUID(w, r, "id", "line ID")
	if !ok {
		return
	}

	var req updateLineStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	switch status := database.OrderItemStatus(req.Status); status {
	case database.OrderItemStatusPREPARING, database.OrderItemStatusREADY:
		item, err := h.engine.SetProductionStatus(r.Context(), lineID, status)
		if err != nil {
			writeServiceError(w, "set production status", err)
			return
		}
		writeJSON(w, http.StatusOK, toLineResponse(item))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be preparing or ready"})
	}
}
