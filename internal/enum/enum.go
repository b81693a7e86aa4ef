package enum

// ── Group A: Roles (carried in JWT claims) ──

const (
	UserRoleManager = "MANAGER"
	UserRoleWaiter  = "WAITER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)

// ── Group B: Event types published after every committed mutation ──

const (
	EventTableOpened       = "table.opened"
	EventTableReleased     = "table.released"
	EventOrderCreated      = "order.created"
	EventOrderPaid         = "order.paid"
	EventLineAdded         = "line.added"
	EventLineUpdated       = "line.updated"
	EventLineRemoved       = "line.removed"
	EventLineStatusChanged = "line.status_changed"
	EventLineOverdue       = "line.overdue"
)

// ── Group C: Websocket feeds ──

const (
	FeedFloor   = "floor"
	FeedKitchen = "kitchen"
)

// Feeds lists every feed a client may subscribe to.
var Feeds = []string{FeedFloor, FeedKitchen}

// KitchenEvents are the event types the kitchen feed receives. The floor
// feed receives every event.
var KitchenEvents = map[string]bool{
	EventOrderPaid:         true,
	EventLineAdded:         true,
	EventLineUpdated:       true,
	EventLineRemoved:       true,
	EventLineStatusChanged: true,
	EventLineOverdue:       true,
}
