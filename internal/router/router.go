package router

import (
	"log"
	"net/http"

	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/handler"
	mw "github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Engine is everything the HTTP surface needs from the order engine.
// Satisfied by *service.Engine.
type Engine interface {
	handler.TableEngine
	handler.OrderEngine
	handler.KitchenEngine
	handler.SettlementEngine
}

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, engine Engine, products handler.ProductLister, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/feed", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	tables := handler.NewTableHandler(engine)
	orders := handler.NewOrderHandler(engine)
	kitchen := handler.NewKitchenHandler(engine)
	settlement := handler.NewSettlementHandler(engine)
	menu := handler.NewProductHandler(products)

	floorStaff := mw.RequireRole(enum.UserRoleWaiter, enum.UserRoleCashier, enum.UserRoleManager)
	cashDesk := mw.RequireRole(enum.UserRoleCashier, enum.UserRoleManager)
	kitchenScreen := mw.RequireRole(enum.UserRoleKitchen, enum.UserRoleManager)
	managerOnly := mw.RequireRole(enum.UserRoleManager)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Get("/products", menu.List)

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", tables.List)
			r.With(floorStaff).Post("/{id}/open", tables.Open)
			r.With(managerOnly).Post("/{id}/release", tables.Release)
			r.With(cashDesk).Get("/{id}/settlement", settlement.View)
		})

		r.Route("/orders/{id}", func(r chi.Router) {
			r.Get("/", orders.Get)
			r.Get("/total", orders.Total)
			r.With(floorStaff).Post("/lines", orders.AddLine)
			r.With(floorStaff).Delete("/lines/{lineID}", orders.RemoveLine)
			r.With(cashDesk).Post("/payment", settlement.Pay)
			r.With(cashDesk).Get("/receipt", settlement.Receipt)
		})

		r.Route("/kitchen", func(r chi.Router) {
			r.Use(kitchenScreen)
			r.Get("/queue", kitchen.Queue)
			r.Patch("/lines/{id}/status", kitchen.UpdateStatus)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
