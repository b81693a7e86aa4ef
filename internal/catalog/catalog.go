// Package catalog serves read-only product reference data to the engine and
// the menu endpoint.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ProductStore defines the DB methods the catalog reads.
type ProductStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (database.GetProductRow, error)
	ListActiveProducts(ctx context.Context) ([]database.ListActiveProductsRow, error)
}

// Reader reads products straight from the store.
type Reader struct {
	store ProductStore
}

// NewReader creates a new Reader.
func NewReader(store ProductStore) *Reader {
	return &Reader{store: store}
}

// GetProduct returns one product, active or not.
func (r *Reader) GetProduct(ctx context.Context, id uuid.UUID) (service.Product, error) {
	row, err := r.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.Product{}, fmt.Errorf("product %s: %w", id, service.ErrNotFound)
		}
		return service.Product{}, fmt.Errorf("get product: %w", err)
	}
	return service.Product{
		ID:       row.ID,
		Name:     row.Name,
		Category: row.CategoryName.String,
		Station:  row.Station,
		Price:    numericToDecimal(row.Price),
		Active:   row.Active,
	}, nil
}

// ListActive returns the menu: active products grouped by category name.
func (r *Reader) ListActive(ctx context.Context) ([]service.Product, error) {
	rows, err := r.store.ListActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	products := make([]service.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, service.Product{
			ID:       row.ID,
			Name:     row.Name,
			Category: row.CategoryName.String,
			Station:  row.Station,
			Price:    numericToDecimal(row.Price),
			Active:   row.Active,
		})
	}
	return products, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}
