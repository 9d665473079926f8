package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"foodbridge/internal/config"
	"foodbridge/internal/geo"
	"foodbridge/internal/mylogger"
	"foodbridge/internal/order-service/adapters/driven/cartstore"
	"foodbridge/internal/order-service/adapters/driven/db"
	"foodbridge/internal/order-service/adapters/driver/myhttp/handle"
	"foodbridge/internal/order-service/adapters/driver/myhttp/middleware"
	"foodbridge/internal/order-service/core/services"
)

const WaitTime = 10

type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DB
	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
	wg     sync.WaitGroup
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	s := &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
		mux:    http.NewServeMux(),
	}

	return s
}

// Run initializes routes and starts listening. It returns when the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	// Initialize database connection
	db, err := db.New(s.ctx, s.cfg.DB, mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	mylog.Info("Successful database connection")

	// Configure routes and handlers
	s.Configure()

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.OrderServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.OrderServicePort)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	s.wg.Wait()

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mylog.Error("Failed to close database", err)
			return fmt.Errorf("db close: %w", err)
		}
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure sets up the HTTP handlers for carts, checkout and orders.
func (s *Server) Configure() {
	// Repositories
	geoClient := geo.NewGoogleClient(s.cfg.Geo)
	lotRepo := db.NewLotRepo(s.db)
	checkoutRepo := db.NewCheckoutRepo(s.db, geoClient, s.cfg.App.PerKmRate)
	orderRepo := db.NewOrderRepo(s.db)
	routeRepo := db.NewRouteRepo(s.db)

	store := cartstore.New(s.appCtx, s.mylog, time.Duration(s.cfg.Cart.InactiveSeconds)*time.Second)

	// services
	cartService := services.NewCartService(s.appCtx, s.mylog, store, lotRepo, checkoutRepo, s.cfg.Cart.ExpirySeconds)
	routeService := services.NewRouteService(s.appCtx, s.mylog, orderRepo, routeRepo, geoClient)
	orderService := services.NewOrderService(s.appCtx, s.mylog, orderRepo, routeService)

	// handlers
	cartHandler := handle.NewCartHandler(cartService, s.mylog)
	orderHandler := handle.NewOrderHandler(orderService, routeService, s.mylog)

	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	// Register routes
	s.mux.Handle("GET /cart", authMiddleware.Wrap(cartHandler.GetCart(), "NGO"))
	s.mux.Handle("POST /cart/items", authMiddleware.Wrap(cartHandler.AddItem(), "NGO"))
	s.mux.Handle("PUT /cart/items/{donation_id}", authMiddleware.Wrap(cartHandler.UpdateItem(), "NGO"))
	s.mux.Handle("DELETE /cart/items/{donation_id}", authMiddleware.Wrap(cartHandler.RemoveItem(), "NGO"))
	s.mux.Handle("DELETE /cart", authMiddleware.Wrap(cartHandler.ClearCart(), "NGO"))
	s.mux.Handle("POST /cart/checkout", authMiddleware.Wrap(cartHandler.Checkout(), "NGO"))

	s.mux.Handle("POST /orders", authMiddleware.Wrap(orderHandler.CreateOrder(), "NGO"))
	s.mux.Handle("GET /orders", authMiddleware.Wrap(orderHandler.ListOrders(), "ADMIN"))
	s.mux.Handle("GET /orders/my", authMiddleware.Wrap(orderHandler.ListMyOrders(), "NGO"))
	s.mux.Handle("GET /orders/{order_id}", authMiddleware.Wrap(orderHandler.GetOrder()))
	s.mux.Handle("GET /orders/{order_id}/route", authMiddleware.Wrap(orderHandler.GetRoute()))
	s.mux.Handle("PUT /orders/{order_id}/payment-status", authMiddleware.Wrap(orderHandler.UpdatePaymentStatus(), "ADMIN", "NGO"))
}
