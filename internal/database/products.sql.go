package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getProduct = `-- name: GetProduct :one
SELECT p.id, p.category_id, p.name, p.price, p.station, p.active, p.created_at, p.updated_at,
       c.name AS category_name
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.id = $1
`

type GetProductRow struct {
	ID           uuid.UUID      `json:"id"`
	CategoryID   pgtype.UUID    `json:"category_id"`
	Name         string         `json:"name"`
	Price        pgtype.Numeric `json:"price"`
	Station      KitchenStation `json:"station"`
	Active       bool           `json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	CategoryName pgtype.Text    `json:"category_name"`
}

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (GetProductRow, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i GetProductRow
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.Price,
		&i.Station,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CategoryName,
	)
	return i, err
}

const listActiveProducts = `-- name: ListActiveProducts :many
SELECT p.id, p.category_id, p.name, p.price, p.station, p.active, p.created_at, p.updated_at,
       c.name AS category_name
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.active = true
ORDER BY c.name NULLS LAST, p.name
`

type ListActiveProductsRow struct {
	ID           uuid.UUID      `json:"id"`
	CategoryID   pgtype.UUID    `json:"category_id"`
	Name         string         `json:"name"`
	Price        pgtype.Numeric `json:"price"`
	Station      KitchenStation `json:"station"`
	Active       bool           `json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	CategoryName pgtype.Text    `json:"category_name"`
}

func (q *Queries) ListActiveProducts(ctx context.Context) ([]ListActiveProductsRow, error) {
	rows, err := q.db.Query(ctx, listActiveProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListActiveProductsRow{}
	for rows.Next() {
		var i ListActiveProductsRow
		if err := rows.Scan(
			&i.ID,
			&i.CategoryID,
			&i.Name,
			&i.Price,
			&i.Station,
			&i.Active,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.CategoryName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
