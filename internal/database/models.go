package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type TableStatus string

const (
	TableStatusFREE     TableStatus = "free"
	TableStatusOCCUPIED TableStatus = "occupied"
)

func (e *TableStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = TableStatus(s)
	case string:
		*e = TableStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for TableStatus: %T", src)
	}
	return nil
}

type NullTableStatus struct {
	TableStatus TableStatus
	Valid       bool // Valid is true if TableStatus is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullTableStatus) Scan(value interface{}) error {
	if value == nil {
		ns.TableStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.TableStatus.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullTableStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.TableStatus), nil
}

type OrderStatus string

const (
	OrderStatusPENDING   OrderStatus = "pending"
	OrderStatusPREPARING OrderStatus = "preparing"
	OrderStatusREADY     OrderStatus = "ready"
	OrderStatusDELIVERED OrderStatus = "delivered"
	OrderStatusPAID      OrderStatus = "paid"
)

func (e *OrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderStatus(s)
	case string:
		*e = OrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

type OrderItemStatus string

const (
	OrderItemStatusPENDING   OrderItemStatus = "pending"
	OrderItemStatusPREPARING OrderItemStatus = "preparing"
	OrderItemStatusREADY     OrderItemStatus = "ready"
	OrderItemStatusDELIVERED OrderItemStatus = "delivered"
)

func (e *OrderItemStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderItemStatus(s)
	case string:
		*e = OrderItemStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderItemStatus: %T", src)
	}
	return nil
}

type NullOrderItemStatus struct {
	OrderItemStatus OrderItemStatus
	Valid           bool // Valid is true if OrderItemStatus is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullOrderItemStatus) Scan(value interface{}) error {
	if value == nil {
		ns.OrderItemStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderItemStatus.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullOrderItemStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderItemStatus), nil
}

type PaymentMethod string

const (
	PaymentMethodCASH PaymentMethod = "cash"
	PaymentMethodCARD PaymentMethod = "card"
	PaymentMethodPIX  PaymentMethod = "pix"
)

func (e *PaymentMethod) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = PaymentMethod(s)
	case string:
		*e = PaymentMethod(s)
	default:
		return fmt.Errorf("unsupported scan type for PaymentMethod: %T", src)
	}
	return nil
}

type NullPaymentMethod struct {
	PaymentMethod PaymentMethod
	Valid         bool // Valid is true if PaymentMethod is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullPaymentMethod) Scan(value interface{}) error {
	if value == nil {
		ns.PaymentMethod, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.PaymentMethod.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullPaymentMethod) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.PaymentMethod), nil
}

type KitchenStation string

const (
	KitchenStationKITCHEN KitchenStation = "kitchen"
	KitchenStationBAR     KitchenStation = "bar"
)

func (e *KitchenStation) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = KitchenStation(s)
	case string:
		*e = KitchenStation(s)
	default:
		return fmt.Errorf("unsupported scan type for KitchenStation: %T", src)
	}
	return nil
}

type NullKitchenStation struct {
	KitchenStation KitchenStation
	Valid          bool // Valid is true if KitchenStation is not NULL
}

// Scan implements the Scanner interface.
func (ns *NullKitchenStation) Scan(value interface{}) error {
	if value == nil {
		ns.KitchenStation, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.KitchenStation.Scan(value)
}

// Value implements the driver Valuer interface.
func (ns NullKitchenStation) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.KitchenStation), nil
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type DiningTable struct {
	ID             uuid.UUID   `json:"id"`
	Label          string      `json:"label"`
	Status         TableStatus `json:"status"`
	CurrentOrderID pgtype.UUID `json:"current_order_id"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type Order struct {
	ID            uuid.UUID          `json:"id"`
	TableID       pgtype.UUID        `json:"table_id"`
	Status        OrderStatus        `json:"status"`
	Total         pgtype.Numeric     `json:"total"`
	PaymentMethod NullPaymentMethod  `json:"payment_method"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	ClosedAt      pgtype.Timestamptz `json:"closed_at"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice pgtype.Numeric  `json:"unit_price"`
	Notes     string          `json:"notes"`
	Status    OrderItemStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Product struct {
	ID         uuid.UUID      `json:"id"`
	CategoryID pgtype.UUID    `json:"category_id"`
	Name       string         `json:"name"`
	Price      pgtype.Numeric `json:"price"`
	Station    KitchenStation `json:"station"`
	Active     bool           `json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
