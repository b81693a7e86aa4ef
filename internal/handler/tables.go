package handler

import (
	"context"
	"net/http"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
)

// TableEngine defines the engine methods needed by table handlers.
// Satisfied by *service.Engine; narrow interface for testability.
type TableEngine interface {
	ListTables(ctx context.Context, status string) ([]database.DiningTable, error)
	OpenTable(ctx context.Context, tableID uuid.UUID) (*service.OpenTableResult, error)
	ReleaseTable(ctx context.Context, tableID uuid.UUID) (database.DiningTable, error)
}

// TableHandler handles the floor map endpoints.
type TableHandler struct {
	engine TableEngine
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(engine TableEngine) *TableHandler {
	return &TableHandler{engine: engine}
}

type openTableResponse struct {
	Table   tableResponse `json:"table"`
	Order   orderResponse `json:"order"`
	Created bool          `json:"created"`
}

// List handles GET /tables?status=free|occupied.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.engine.ListTables(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, "list tables", err)
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Open handles POST /tables/{id}/open.
// Responds 201 when a new order was started, 200 when the table already had one.
func (h *TableHandler) Open(w http.ResponseWriter, r *http.Request) {
	tableID, ok := urlUUID(w, r, "id", "table ID")
	if !ok {
		return
	}

	result, err := h.engine.OpenTable(r.Context(), tableID)
	if err != nil {
		writeServiceError(w, "open table", err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, openTableResponse{
		Table:   toTableResponse(result.Table),
		Order:   toOrderResponse(result.Order),
		Created: result.Created,
	})
}

// Release handles POST /tables/{id}/release.
func (h *TableHandler) Release(w http.ResponseWriter, r *http.Request) {
	tableID, ok := urlUUID(w, r, "id", "table ID")
	if !ok {
		return
	}

	table, err := h.engine.ReleaseTable(r.Context(), tableID)
	if err != nil {
		writeServiceError(w, "release table", err)
		return
	}
	writeJSON(w, http.StatusOK, toTableResponse(table))
}
