package handler

import (
	"context"
	"net/http"

	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
)

// ProductLister defines the catalog methods needed by the menu handler.
// Satisfied by *catalog.Reader.
type ProductLister interface {
	ListActive(ctx context.Context) ([]service.Product, error)
}

// ProductHandler serves the read-only menu.
type ProductHandler struct {
	catalog ProductLister
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(catalog ProductLister) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Station  string    `json:"station"`
	Price    string    `json:"price"`
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, "list products", err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = productResponse{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Station:  string(p.Station),
			Price:    money(p.Price),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
