package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event is a notification that a record changed. Consumers re-read state;
// events carry identifiers only.
type Event struct {
	Type     string    `json:"type"`
	RecordID uuid.UUID `json:"record_id"`
	OrderID  uuid.UUID `json:"order_id,omitzero"`
	TableID  uuid.UUID `json:"table_id,omitzero"`
	At       time.Time `json:"at"`
}

// Publisher delivers events to a feed. Publish must not block for long.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Publishers fans an event out to every publisher in order.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
