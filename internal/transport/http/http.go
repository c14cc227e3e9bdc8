package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/ordering/internal/service/models/order"
	createorder "github.com/corray333/backend-labs/ordering/internal/transport/http/create_order"
	"github.com/corray333/backend-labs/ordering/internal/transport/http/docs"
	getpaymentstatus "github.com/corray333/backend-labs/ordering/internal/transport/http/get_payment_status"
	listorders "github.com/corray333/backend-labs/ordering/internal/transport/http/list_orders"
	"github.com/corray333/backend-labs/ordering/internal/transport/http/response"
	updatestatus "github.com/corray333/backend-labs/ordering/internal/transport/http/update_status"
	"github.com/corray333/backend-labs/ordering/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/ordering/pkg/logger"
	"github.com/corray333/backend-labs/ordering/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type service interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (order.CreateResult, error)
	ListOrders(ctx context.Context) ([]order.View, error)
	GetPaymentStatus(ctx context.Context, code string) (string, error)
	UpdateOrderStatus(ctx context.Context, req order.UpdateStatusRequest) error
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	service  service
	gatherer prometheus.Gatherer
}

// NewHTTPTransport creates the HTTP transport. Request metrics are registered in reg and
// served from gatherer on /metrics.
func NewHTTPTransport(service service, reg prometheus.Registerer, gatherer prometheus.Gatherer) *HTTPTransport {
	serverMetrics := metrics.NewServerMetrics(reg, "http")
	router := newRouter(serverMetrics)
	server := newServer(router)

	return &HTTPTransport{
		server:   server,
		router:   router,
		service:  service,
		gatherer: gatherer,
	}
}

// Handler returns the router, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

func (h *HTTPTransport) Run() error {
	slog.Info("HTTP server listening", "addr", h.server.Addr)

	return h.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Handle("/metrics", metrics.Handler(h.gatherer))

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/", h.health)

		r.Route("/order", func(r chi.Router) {
			r.Post("/create", h.createOrder)
			r.Get("/list", h.listOrders)
			r.Get("/get-payment-status/{code}", h.getPaymentStatus)
			r.Patch("/update-status", h.updateStatus)
		})

		r.Get("/swagger/doc.json", docs.Handler)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/api/swagger/doc.json")))
	})
}

func (h *HTTPTransport) health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Envelope{Message: "Orders server is up!"})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service)
}

func (h *HTTPTransport) getPaymentStatus(w http.ResponseWriter, r *http.Request) {
	getpaymentstatus.GetPaymentStatus(w, r, h.service)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.service)
}

func newRouter(serverMetrics *metrics.ServerMetrics) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware(viper.GetString("otel.service_name")))
	router.Use(serverMetrics.Middleware)

	if timeout := viper.GetInt("server.http.request_timeout_seconds"); timeout > 0 {
		router.Use(middleware.Timeout(time.Duration(timeout) * time.Second))
	}

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
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
