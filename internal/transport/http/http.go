package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/shopmesh/order-svc/internal/service/models/order"
	"github.com/shopmesh/order-svc/internal/service/models/status"
	deleteorder "github.com/shopmesh/order-svc/internal/transport/http/delete_order"
	getorder "github.com/shopmesh/order-svc/internal/transport/http/get_order"
	listorders "github.com/shopmesh/order-svc/internal/transport/http/list_orders"
	orderstats "github.com/shopmesh/order-svc/internal/transport/http/order_stats"
	placeorder "github.com/shopmesh/order-svc/internal/transport/http/place_order"
	"github.com/shopmesh/order-svc/internal/transport/http/respond"
	updatestatus "github.com/shopmesh/order-svc/internal/transport/http/update_status"
	"github.com/shopmesh/order-svc/pkg/http/middleware/trace"
	"github.com/shopmesh/order-svc/pkg/logger"
	"github.com/spf13/viper"
)

type checkoutService interface {
	PlaceOrder(ctx context.Context, model order.PlaceOrderModel) (order.Order, error)
}

type lifecycleService interface {
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus status.Status) (order.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

type queryService interface {
	GetOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, int64, error)
	GetOrder(ctx context.Context, id uuid.UUID) (order.Order, error)
	GetStats(ctx context.Context) (order.StatsModel, error)
}

type HTTPTransport struct {
	server    *http.Server
	router    *chi.Mux
	checkout  checkoutService
	lifecycle lifecycleService
	queries   queryService
}

func NewHTTPTransport(
	checkout checkoutService,
	lifecycle lifecycleService,
	queries queryService,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:    server,
		router:    router,
		checkout:  checkout,
		lifecycle: lifecycle,
		queries:   queries,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/health", h.health)

	h.router.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/stats/summary", h.orderStats)
		r.Get("/orders/{id}", h.getOrder)
		r.Patch("/orders/{id}/status", h.updateStatus)
		r.Delete("/orders/{id}", h.deleteOrder)
	})
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	placeorder.PlaceOrder(w, r, h.checkout)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.queries)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.queries)
}

func (h *HTTPTransport) orderStats(w http.ResponseWriter, r *http.Request) {
	orderstats.OrderStats(w, r, h.queries)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.lifecycle)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.lifecycle)
}

func (h *HTTPTransport) health(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
