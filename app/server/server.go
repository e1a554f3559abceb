// Package server wires the HTTP handlers into a mux and runs it.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/trucksigns/truck-signs-api/app/api"
	"github.com/trucksigns/truck-signs-api/app/catalog"
	"github.com/trucksigns/truck-signs-api/app/categories"
	"github.com/trucksigns/truck-signs-api/app/comments"
	"github.com/trucksigns/truck-signs-api/app/metrics"
	"github.com/trucksigns/truck-signs-api/app/orders"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Catalog    *catalog.CatalogHandler
	Upload     *catalog.UploadHandler
	Categories *categories.CategoryHandler
	Orders     *orders.OrdersHandler
	Comments   *comments.CommentsHandler
	Metrics    *metrics.Recorder
}

var index = map[string]string{
	"categories":                "/categories",
	"lettering-item-categories": "/lettering-item-categories",
	"products":                  "/products",
	"product-colors":            "/product-colors",
	"logos":                     "/logos",
	"comments":                  "/comments",
	"upload-image":              "/products/upload-image",
	"health":                    "/health",
	"latency":                   "/metrics/latency",
}

func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		api.OKResponse(w, http.StatusOK, index)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		api.OKResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /categories", h.Categories.HandleGetAll)
	mux.HandleFunc("GET /categories/{id}/products", h.Catalog.HandleGetCategoryProducts)
	mux.HandleFunc("GET /lettering-item-categories", h.Categories.HandleGetLetteringItemCategories)

	mux.HandleFunc("GET /products", h.Catalog.HandleGet)
	mux.HandleFunc("GET /products/{id}", h.Catalog.HandleGetProduct)
	mux.HandleFunc("GET /product-colors", h.Catalog.HandleGetColors)
	mux.HandleFunc("GET /logos", h.Catalog.HandleGetLogos)
	mux.HandleFunc("GET /product-variations/{id}", h.Catalog.HandleGetVariation)

	mux.HandleFunc("POST /products/upload-image", h.Upload.HandleUpload)
	mux.HandleFunc("GET /media/{name}", h.Upload.HandleGetMedia)

	mux.HandleFunc("POST /products/{id}/order", h.Orders.HandleCreate)
	mux.HandleFunc("GET /orders/{id}", h.Orders.HandleGet)
	mux.HandleFunc("GET /orders/{id}/payment", h.Orders.HandleGetPayment)
	mux.HandleFunc("POST /orders/{id}/payment", h.Orders.HandlePayment)

	mux.HandleFunc("GET /comments", h.Comments.HandleGetAll)
	mux.HandleFunc("POST /comments", h.Comments.HandleCreate)

	var handler http.Handler = mux
	if h.Metrics != nil {
		mux.HandleFunc("GET /metrics/latency", h.Metrics.HandleLatency)
		handler = h.Metrics.Middleware(handler)
	}
	return Recover(logger, LogRequests(logger, handler))
}

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run serves handler until ctx is cancelled, then drains in-flight requests
// for up to cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg Config, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
