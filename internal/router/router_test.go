package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/comanda-pos/api/internal/auth"
	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/router"
	"github.com/comanda-pos/api/internal/service"
	"github.com/comanda-pos/api/internal/ws"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const secret = "router-test-secret"

// notFoundEngine answers every call with ErrNotFound so that a 404 proves
// the request got past the role guard.
type notFoundEngine struct{}

func (notFoundEngine) ListTables(ctx context.Context, status string) ([]database.DiningTable, error) {
	return []database.DiningTable{}, nil
}
func (notFoundEngine) OpenTable(ctx context.Context, tableID uuid.UUID) (*service.OpenTableResult, error) {
	return nil, service.ErrNotFound
}
func (notFoundEngine) ReleaseTable(ctx context.Context, tableID uuid.UUID) (database.DiningTable, error) {
	return database.DiningTable{}, service.ErrNotFound
}
func (notFoundEngine) GetOrder(ctx context.Context, orderID uuid.UUID) (*service.OrderDetail, error) {
	return nil, service.ErrNotFound
}
func (notFoundEngine) CurrentTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, service.ErrNotFound
}
func (notFoundEngine) AddLine(ctx context.Context, req service.AddLineRequest) (*service.AddLineResult, error) {
	return nil, service.ErrNotFound
}
func (notFoundEngine) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (database.Order, error) {
	return database.Order{}, service.ErrNotFound
}
func (notFoundEngine) ListActiveLines(ctx context.Context, f service.QueueFilter) ([]service.QueueLine, error) {
	return nil, nil
}
func (notFoundEngine) SetProductionStatus(ctx context.Context, lineID uuid.UUID, status database.OrderItemStatus) (database.OrderItem, error) {
	return database.OrderItem{}, service.ErrNotFound
}
func (notFoundEngine) LoadSettlementView(ctx context.Context, tableID uuid.UUID) (*service.SettlementView, error) {
	return nil, service.ErrNotFound
}
func (notFoundEngine) CompletePayment(ctx context.Context, orderID uuid.UUID, method database.PaymentMethod) (*service.SettlementResult, error) {
	return nil, service.ErrNotFound
}
func (notFoundEngine) Receipt(ctx context.Context, orderID uuid.UUID) (*service.Receipt, error) {
	return nil, service.ErrNotFound
}

type emptyMenu struct{}

func (emptyMenu) ListActive(ctx context.Context) ([]service.Product, error) {
	return nil, nil
}

func newTestRouter() http.Handler {
	cfg := &config.Config{JWTSecret: secret, AllowedOrigins: []string{"http://localhost:5173"}}
	return router.New(cfg, notFoundEngine{}, emptyMenu{}, ws.NewHub())
}

func do(t *testing.T, h http.Handler, role, method, path, body string) int {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		token, err := auth.GenerateToken(secret, uuid.New(), role, time.Hour)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestHealth(t *testing.T) {
	if code := do(t, newTestRouter(), "", "GET", "/health", ""); code != http.StatusOK {
		t.Errorf("status: got %d, want %d", code, http.StatusOK)
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	if code := do(t, newTestRouter(), "", "GET", "/ws/feed?feed=kitchen", ""); code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", code, http.StatusUnauthorized)
	}
}

func TestRoleGuards(t *testing.T) {
	id := uuid.NewString()
	pay := `{"payment_method":"cash"}`
	status := `{"status":"preparing"}`
	line := `{"product_id":"` + uuid.NewString() + `","quantity":1}`

	tests := []struct {
		name   string
		role   string
		method string
		path   string
		body   string
		want   int
	}{
		{"anonymous tables", "", "GET", "/tables", "", http.StatusUnauthorized},
		{"kitchen lists tables", enum.UserRoleKitchen, "GET", "/tables", "", http.StatusOK},
		{"any role menu", enum.UserRoleKitchen, "GET", "/products", "", http.StatusOK},
		{"waiter opens table", enum.UserRoleWaiter, "POST", "/tables/" + id + "/open", "", http.StatusNotFound},
		{"kitchen cannot open table", enum.UserRoleKitchen, "POST", "/tables/" + id + "/open", "", http.StatusForbidden},
		{"waiter cannot release", enum.UserRoleWaiter, "POST", "/tables/" + id + "/release", "", http.StatusForbidden},
		{"manager releases", enum.UserRoleManager, "POST", "/tables/" + id + "/release", "", http.StatusNotFound},
		{"waiter cannot view settlement", enum.UserRoleWaiter, "GET", "/tables/" + id + "/settlement", "", http.StatusForbidden},
		{"cashier views settlement", enum.UserRoleCashier, "GET", "/tables/" + id + "/settlement", "", http.StatusNotFound},
		{"kitchen reads order", enum.UserRoleKitchen, "GET", "/orders/" + id, "", http.StatusNotFound},
		{"waiter adds line", enum.UserRoleWaiter, "POST", "/orders/" + id + "/lines", line, http.StatusNotFound},
		{"kitchen cannot add line", enum.UserRoleKitchen, "POST", "/orders/" + id + "/lines", line, http.StatusForbidden},
		{"waiter cannot take payment", enum.UserRoleWaiter, "POST", "/orders/" + id + "/payment", pay, http.StatusForbidden},
		{"cashier takes payment", enum.UserRoleCashier, "POST", "/orders/" + id + "/payment", pay, http.StatusNotFound},
		{"waiter cannot see kitchen queue", enum.UserRoleWaiter, "GET", "/kitchen/queue", "", http.StatusForbidden},
		{"kitchen sees queue", enum.UserRoleKitchen, "GET", "/kitchen/queue", "", http.StatusOK},
		{"cashier cannot advance line", enum.UserRoleCashier, "PATCH", "/kitchen/lines/" + id + "/status", status, http.StatusForbidden},
		{"kitchen advances line", enum.UserRoleKitchen, "PATCH", "/kitchen/lines/" + id + "/status", status, http.StatusNotFound},
	}
	h := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := do(t, h, tt.role, tt.method, tt.path, tt.body); code != tt.want {
				t.Errorf("status: got %d, want %d", code, tt.want)
			}
		})
	}
}
