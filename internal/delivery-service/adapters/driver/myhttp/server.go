package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"foodbridge/internal/config"
	"foodbridge/internal/delivery-service/adapters/driven/bm"
	"foodbridge/internal/delivery-service/adapters/driven/db"
	"foodbridge/internal/delivery-service/adapters/driver/myhttp/handle"
	"foodbridge/internal/delivery-service/adapters/driver/myhttp/middleware"
	"foodbridge/internal/delivery-service/adapters/driver/myhttp/ws"
	"foodbridge/internal/delivery-service/core/ports"
	"foodbridge/internal/delivery-service/core/services"
	"foodbridge/internal/mylogger"
)

var ErrServerClosed = errors.New("Server closed")

const WaitTime = 10

type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DB
	mb     ports.IDeliveryBroker
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

	// Initialize RabbitMQ connection
	mb, err := bm.New(s.appCtx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	// Configure routes and handlers
	s.Configure()

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.DeliveryServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.DeliveryServicePort)

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

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close message broker", err)
		} else {
			s.mylog.Info("Message broker closed")
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

// Configure sets up the delivery HTTP routes and the courier websocket endpoint.
func (s *Server) Configure() {
	// Repositories
	deliveryRepo := db.NewDeliveryRepo(s.db)

	// services
	deliveryService := services.NewDeliveryService(s.appCtx, s.mylog, deliveryRepo, s.mb)

	// handlers
	deliveryHandler := handle.NewDeliveryHandler(s.mylog, deliveryService)
	dispatcher := ws.NewDispatcher(s.appCtx, s.mylog, deliveryService)

	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	// Register routes
	s.mux.Handle("POST /orders/{order_id}/assign", authMiddleware.Wrap(deliveryHandler.Assign(), "COURIER", "ADMIN"))
	s.mux.Handle("PUT /orders/{order_id}/delivery-status", authMiddleware.Wrap(deliveryHandler.UpdateStatus(), "COURIER"))
	s.mux.Handle("GET /couriers/{courier_id}/orders", authMiddleware.Wrap(deliveryHandler.CourierOrders(), "COURIER", "ADMIN"))

	// websocket routes
	s.mux.Handle("/ws/couriers/{courier_id}", dispatcher.CourierHandler())
}
