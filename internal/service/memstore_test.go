package service

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/comanda-pos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// memDB is an in-memory stand-in for Postgres. Transactions are serialized
// by txMu and roll back to a snapshot taken at Begin.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	tables   map[uuid.UUID]database.DiningTable
	orders   map[uuid.UUID]database.Order
	items    map[uuid.UUID]database.OrderItem
	products map[uuid.UUID]Product

	// failOn makes the named store method return the error.
	failOn    map[string]error
	commitErr error
	clock     time.Time
}

func newMemDB() *memDB {
	return &memDB{
		tables:   map[uuid.UUID]database.DiningTable{},
		orders:   map[uuid.UUID]database.Order{},
		items:    map[uuid.UUID]database.OrderItem{},
		products: map[uuid.UUID]Product{},
		failOn:   map[string]error{},
		clock:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so creation order is stable.
func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *memDB) addTable(label string) database.DiningTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := database.DiningTable{ID: uuid.New(), Label: label, Status: database.TableStatusFREE, CreatedAt: m.tick()}
	t.UpdatedAt = t.CreatedAt
	m.tables[t.ID] = t
	return t
}

func (m *memDB) addProduct(name, price string, station database.KitchenStation) Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := Product{ID: uuid.New(), Name: name, Price: decimal.RequireFromString(price), Station: station, Category: "Mains", Active: true}
	m.products[p.ID] = p
	return p
}

func (m *memDB) table(id uuid.UUID) database.DiningTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[id]
}

func (m *memDB) order(id uuid.UUID) database.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memDB) orderItems(orderID uuid.UUID) []database.OrderItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsOf(orderID)
}

func (m *memDB) itemsOf(orderID uuid.UUID) []database.OrderItem {
	var out []database.OrderItem
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memDB) failWith(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[method] = err
}

func (m *memDB) fail(method string) error {
	return m.failOn[method]
}

type memSnapshot struct {
	tables map[uuid.UUID]database.DiningTable
	orders map[uuid.UUID]database.Order
	items  map[uuid.UUID]database.OrderItem
}

func (m *memDB) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{tables: maps.Clone(m.tables), orders: maps.Clone(m.orders), items: maps.Clone(m.items)}
}

func (m *memDB) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables, m.orders, m.items = s.tables, s.orders, s.items
}

// --- pool and tx ---

func (m *memDB) Begin(ctx context.Context) (pgx.Tx, error) {
	m.txMu.Lock()
	return &memTx{db: m, snap: m.snapshot()}, nil
}

func (m *memDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *memDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *memDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}

// memTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type memTx struct {
	db     *memDB
	snap   memSnapshot
	closed bool
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (t *memTx) Commit(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	defer t.db.txMu.Unlock()
	if t.db.commitErr != nil {
		t.db.restore(t.snap)
		return t.db.commitErr
	}
	return nil
}
func (t *memTx) Rollback(ctx context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	t.db.restore(t.snap)
	t.db.txMu.Unlock()
	return nil
}
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (t *memTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (t *memTx) Conn() *pgx.Conn { panic("not implemented") }

// --- store ---

// memStore implements Store over memDB. Every call locks the data mutex.
type memStore struct{ db *memDB }

func (m *memDB) newStore(database.DBTX) Store { return &memStore{db: m} }

func (s *memStore) GetTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("GetTable"); err != nil {
		return database.DiningTable{}, err
	}
	t, ok := s.db.tables[id]
	if !ok {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	return t, nil
}

func (s *memStore) GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.DiningTable, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("GetTableForUpdate"); err != nil {
		return database.DiningTable{}, err
	}
	t, ok := s.db.tables[id]
	if !ok {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	return t, nil
}

func (s *memStore) ListTables(ctx context.Context, status database.NullTableStatus) ([]database.DiningTable, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []database.DiningTable{}
	for _, t := range s.db.tables {
		if status.Valid && t.Status != status.TableStatus {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s *memStore) OccupyTable(ctx context.Context, arg database.OccupyTableParams) (database.DiningTable, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("OccupyTable"); err != nil {
		return database.DiningTable{}, err
	}
	t, ok := s.db.tables[arg.ID]
	if !ok {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	t.Status = database.TableStatusOCCUPIED
	t.CurrentOrderID = pgtype.UUID{Bytes: arg.CurrentOrderID, Valid: true}
	t.UpdatedAt = s.db.tick()
	s.db.tables[t.ID] = t
	return t, nil
}

func (s *memStore) ReleaseTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("ReleaseTable"); err != nil {
		return database.DiningTable{}, err
	}
	t, ok := s.db.tables[id]
	if !ok {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	t.Status = database.TableStatusFREE
	t.CurrentOrderID = pgtype.UUID{}
	t.UpdatedAt = s.db.tick()
	s.db.tables[t.ID] = t
	return t, nil
}

func (s *memStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (s *memStore) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("GetOrderForUpdate"); err != nil {
		return database.Order{}, err
	}
	o, ok := s.db.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (s *memStore) GetActiveOrderByTable(ctx context.Context, tableID uuid.UUID) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, o := range s.db.orders {
		if o.TableID.Valid && uuid.UUID(o.TableID.Bytes) == tableID && o.Status != database.OrderStatusPAID {
			return o, nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (s *memStore) CreateOrder(ctx context.Context, tableID uuid.UUID) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("CreateOrder"); err != nil {
		return database.Order{}, err
	}
	now := s.db.tick()
	o := database.Order{
		ID:        uuid.New(),
		TableID:   pgtype.UUID{Bytes: tableID, Valid: true},
		Status:    database.OrderStatusPENDING,
		Total:     decimalToNumeric(decimal.Zero),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.db.orders[o.ID] = o
	return o, nil
}

func (s *memStore) UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("UpdateOrderTotals"); err != nil {
		return database.Order{}, err
	}
	o, ok := s.db.orders[arg.ID]
	if !ok || o.Status == database.OrderStatusPAID {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Total = arg.Total
	o.Status = arg.Status
	o.UpdatedAt = s.db.tick()
	s.db.orders[o.ID] = o
	return o, nil
}

func (s *memStore) MarkOrderPaid(ctx context.Context, arg database.MarkOrderPaidParams) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("MarkOrderPaid"); err != nil {
		return database.Order{}, err
	}
	o, ok := s.db.orders[arg.ID]
	if !ok || o.Status == database.OrderStatusPAID {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = database.OrderStatusPAID
	o.PaymentMethod = database.NullPaymentMethod{PaymentMethod: arg.PaymentMethod, Valid: true}
	o.ClosedAt = arg.ClosedAt
	o.UpdatedAt = s.db.tick()
	s.db.orders[o.ID] = o
	return o, nil
}

func (s *memStore) GetOrderTotalCheck(ctx context.Context, id uuid.UUID) (database.GetOrderTotalCheckRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orders[id]
	if !ok {
		return database.GetOrderTotalCheckRow{}, pgx.ErrNoRows
	}
	return database.GetOrderTotalCheckRow{
		Total:   o.Total,
		LineSum: decimalToNumeric(itemsTotal(s.db.itemsOf(id))),
	}, nil
}

func (s *memStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("ListOrderItemsByOrder"); err != nil {
		return nil, err
	}
	return s.db.itemsOf(orderID), nil
}

func (s *memStore) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderLinesRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("ListOrderLines"); err != nil {
		return nil, err
	}
	out := []database.ListOrderLinesRow{}
	for _, it := range s.db.itemsOf(orderID) {
		out = append(out, database.ListOrderLinesRow{
			ID:          it.ID,
			OrderID:     it.OrderID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Notes:       it.Notes,
			Status:      it.Status,
			CreatedAt:   it.CreatedAt,
			UpdatedAt:   it.UpdatedAt,
			ProductName: s.db.products[it.ProductID].Name,
		})
	}
	return out, nil
}

func (s *memStore) GetOrderItem(ctx context.Context, id uuid.UUID) (database.OrderItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	it, ok := s.db.items[id]
	if !ok {
		return database.OrderItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (s *memStore) FindMergeableOrderItem(ctx context.Context, arg database.FindMergeableOrderItemParams) (database.OrderItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, it := range s.db.itemsOf(arg.OrderID) {
		if it.ProductID == arg.ProductID && it.Status != database.OrderItemStatusDELIVERED {
			return it, nil
		}
	}
	return database.OrderItem{}, pgx.ErrNoRows
}

func (s *memStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("CreateOrderItem"); err != nil {
		return database.OrderItem{}, err
	}
	now := s.db.tick()
	it := database.OrderItem{
		ID:        uuid.New(),
		OrderID:   arg.OrderID,
		ProductID: arg.ProductID,
		Quantity:  arg.Quantity,
		UnitPrice: arg.UnitPrice,
		Notes:     arg.Notes,
		Status:    database.OrderItemStatusPENDING,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.db.items[it.ID] = it
	return it, nil
}

func (s *memStore) IncrementOrderItemQuantity(ctx context.Context, arg database.IncrementOrderItemQuantityParams) (database.OrderItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("IncrementOrderItemQuantity"); err != nil {
		return database.OrderItem{}, err
	}
	it, ok := s.db.items[arg.ID]
	if !ok {
		return database.OrderItem{}, pgx.ErrNoRows
	}
	it.Quantity += arg.Quantity
	it.UpdatedAt = s.db.tick()
	s.db.items[it.ID] = it
	return it, nil
}

func (s *memStore) DeleteOrderItem(ctx context.Context, arg database.DeleteOrderItemParams) (uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("DeleteOrderItem"); err != nil {
		return uuid.Nil, err
	}
	it, ok := s.db.items[arg.ID]
	if !ok || it.OrderID != arg.OrderID {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(s.db.items, arg.ID)
	return arg.ID, nil
}

func (s *memStore) UpdateOrderItemStatus(ctx context.Context, arg database.UpdateOrderItemStatusParams) (database.OrderItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("UpdateOrderItemStatus"); err != nil {
		return database.OrderItem{}, err
	}
	it, ok := s.db.items[arg.ID]
	if !ok || it.Status != arg.Status_2 {
		return database.OrderItem{}, pgx.ErrNoRows
	}
	it.Status = arg.Status
	it.UpdatedAt = s.db.tick()
	s.db.items[it.ID] = it
	return it, nil
}

func (s *memStore) MarkOrderItemsDelivered(ctx context.Context, orderID uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("MarkOrderItemsDelivered"); err != nil {
		return 0, err
	}
	var n int64
	for id, it := range s.db.items {
		if it.OrderID == orderID && it.Status != database.OrderItemStatusDELIVERED {
			it.Status = database.OrderItemStatusDELIVERED
			s.db.items[id] = it
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListActiveOrderItems(ctx context.Context, arg database.ListActiveOrderItemsParams) ([]database.ListActiveOrderItemsRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []database.ListActiveOrderItemsRow{}
	for _, it := range s.db.items {
		if it.Status != database.OrderItemStatusPENDING && it.Status != database.OrderItemStatusPREPARING {
			continue
		}
		if arg.Status.Valid && it.Status != arg.Status.OrderItemStatus {
			continue
		}
		p := s.db.products[it.ProductID]
		if arg.Station.Valid && p.Station != arg.Station.KitchenStation {
			continue
		}
		o := s.db.orders[it.OrderID]
		if o.Status == database.OrderStatusPAID {
			continue
		}
		row := database.ListActiveOrderItemsRow{
			ID:          it.ID,
			OrderID:     it.OrderID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			Notes:       it.Notes,
			Status:      it.Status,
			CreatedAt:   it.CreatedAt,
			ProductName: p.Name,
			Station:     p.Station,
			TableID:     o.TableID,
		}
		if t, ok := s.db.tables[uuid.UUID(o.TableID.Bytes)]; ok && o.TableID.Valid {
			row.TableLabel = pgtype.Text{String: t.Label, Valid: true}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- catalog and publisher ---

type memCatalog struct{ db *memDB }

func (c memCatalog) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	p, ok := c.db.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var errStoreDown = errors.New("store down")
