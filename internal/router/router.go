package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavolo-pos/api/internal/catalog"
	"github.com/tavolo-pos/api/internal/config"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/handler"
	mw "github.com/tavolo-pos/api/internal/middleware"
	"github.com/tavolo-pos/api/internal/service"
	"github.com/tavolo-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, outlet scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/outlets/{outletID}/kitchen", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	catalogService := catalog.NewService(queries)
	lineService := service.NewLineService(pool, func(db database.DBTX) service.LineStore {
		return database.New(db)
	}, catalogService)
	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, catalogService)
	paymentService := service.NewPaymentService(pool, func(db database.DBTX) service.PaymentStore {
		return database.New(db)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/outlets/{outletID}", func(r chi.Router) {
			r.Use(mw.RequireOutlet)

			// Staff and menu management
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleOwner, enum.UserRoleManager))

				userHandler := handler.NewUserHandler(queries)
				userHandler.RegisterRoutes(r)

				menuHandler := handler.NewMenuHandler(queries)
				menuHandler.RegisterRoutes(r)

				reportHandler := handler.NewReportHandler(queries)
				reportHandler.RegisterRoutes(r)
			})

			// Floor operations
			tableHandler := handler.NewTableHandler(queries)
			tableHandler.RegisterRoutes(r)

			orderHandler := handler.NewOrderHandler(queries, orderService, hub)
			orderHandler.RegisterRoutes(r)

			lineHandler := handler.NewLineHandler(queries, lineService, hub)
			lineHandler.RegisterRoutes(r)

			paymentHandler := handler.NewPaymentHandler(queries, paymentService, hub)
			paymentHandler.RegisterRoutes(r)
		})
	})

	return r
}
