package database

import (
	"context"

	"github.com/google/uuid"
)

const getTable = `-- name: GetTable :one
SELECT id, label, status, current_order_id, created_at, updated_at
FROM dining_tables
WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (DiningTable, error) {
	row := q.db.QueryRow(ctx, getTable, id)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.Label,
		&i.Status,
		&i.CurrentOrderID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getTableForUpdate = `-- name: GetTableForUpdate :one
SELECT id, label, status, current_order_id, created_at, updated_at
FROM dining_tables
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetTableForUpdate(ctx context.Context, id uuid.UUID) (DiningTable, error) {
	row := q.db.QueryRow(ctx, getTableForUpdate, id)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.Label,
		&i.Status,
		&i.CurrentOrderID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listTables = `-- name: ListTables :many
SELECT id, label, status, current_order_id, created_at, updated_at
FROM dining_tables
WHERE ($1::table_status IS NULL OR status = $1::table_status)
ORDER BY label
`

func (q *Queries) ListTables(ctx context.Context, status NullTableStatus) ([]DiningTable, error) {
	rows, err := q.db.Query(ctx, listTables, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DiningTable{}
	for rows.Next() {
		var i DiningTable
		if err := rows.Scan(
			&i.ID,
			&i.Label,
			&i.Status,
			&i.CurrentOrderID,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const occupyTable = `-- name: OccupyTable :one
UPDATE dining_tables
SET status = 'occupied', current_order_id = $2, updated_at = now()
WHERE id = $1
RETURNING id, label, status, current_order_id, created_at, updated_at
`

type OccupyTableParams struct {
	ID             uuid.UUID `json:"id"`
	CurrentOrderID uuid.UUID `json:"current_order_id"`
}

func (q *Queries) OccupyTable(ctx context.Context, arg OccupyTableParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, occupyTable, arg.ID, arg.CurrentOrderID)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.Label,
		&i.Status,
		&i.CurrentOrderID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const releaseTable = `-- name: ReleaseTable :one
UPDATE dining_tables
SET status = 'free', current_order_id = NULL, updated_at = now()
WHERE id = $1
RETURNING id, label, status, current_order_id, created_at, updated_at
`

func (q *Queries) ReleaseTable(ctx context.Context, id uuid.UUID) (DiningTable, error) {
	row := q.db.QueryRow(ctx, releaseTable, id)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.Label,
		&i.Status,
		&i.CurrentOrderID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
