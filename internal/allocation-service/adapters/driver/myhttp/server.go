package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"foodbridge/internal/allocation-service/adapters/driven/db"
	"foodbridge/internal/allocation-service/adapters/driven/solver"
	"foodbridge/internal/allocation-service/adapters/driver/myhttp/handle"
	"foodbridge/internal/allocation-service/adapters/driver/myhttp/middleware"
	"foodbridge/internal/allocation-service/core/services"
	"foodbridge/internal/config"
	"foodbridge/internal/geo"
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
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.AllocationServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.AllocationServicePort)

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

// Configure sets up the HTTP handlers for donations, organizations and
// allocations.
func (s *Server) Configure() {
	// Repositories
	donationRepo := db.NewDonationRepo(s.db)
	orgRepo := db.NewOrganizationRepo(s.db)
	allocRepo := db.NewAllocationRepo(s.db)

	// driven adapters
	geoClient := geo.NewGoogleClient(s.cfg.Geo)
	mipSolver := solver.New(s.mylog, s.cfg.App.SolverTimeoutSeconds)

	// services
	allocationService := services.NewAllocationService(s.appCtx, s.mylog, allocRepo, orgRepo, donationRepo, mipSolver, geoClient)
	donationService := services.NewDonationService(s.appCtx, s.mylog, donationRepo, geoClient, allocationService)
	orgService := services.NewOrganizationService(s.appCtx, s.mylog, orgRepo, geoClient)

	// handlers
	donationHandler := handle.NewDonationHandler(donationService, s.mylog)
	orgHandler := handle.NewOrganizationHandler(orgService, s.mylog)
	allocationHandler := handle.NewAllocationHandler(allocationService, s.mylog)

	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.JwtSecret)

	// Register routes
	s.mux.Handle("POST /donations", authMiddleware.Wrap(donationHandler.CreateDonation(), "DONOR"))
	s.mux.Handle("GET /donations", authMiddleware.Wrap(donationHandler.ListDonations()))
	s.mux.Handle("GET /donations/{donation_id}", authMiddleware.Wrap(donationHandler.GetDonation()))
	s.mux.Handle("PATCH /donations/{donation_id}", authMiddleware.Wrap(donationHandler.UpdateDonation(), "DONOR"))
	s.mux.Handle("DELETE /donations/{donation_id}", authMiddleware.Wrap(donationHandler.DeleteDonation(), "DONOR"))

	s.mux.Handle("POST /organizations", authMiddleware.Wrap(orgHandler.CreateOrganization(), "NGO"))
	s.mux.Handle("GET /organizations", authMiddleware.Wrap(orgHandler.ListOrganizations()))
	s.mux.Handle("PUT /organizations/{organization_id}/verify", authMiddleware.Wrap(orgHandler.VerifyOrganization(), "ADMIN"))

	s.mux.Handle("POST /allocations/solve", authMiddleware.Wrap(allocationHandler.RunSolvePass(), "ADMIN"))
	s.mux.Handle("GET /allocations", authMiddleware.Wrap(allocationHandler.ListAllocations(), "ADMIN"))
	s.mux.Handle("GET /allocations/my", authMiddleware.Wrap(allocationHandler.ListMyAllocations(), "NGO"))
	s.mux.Handle("POST /allocations/manual", authMiddleware.Wrap(allocationHandler.ManualAllocate(), "ADMIN"))
	s.mux.Handle("PUT /allocations/{allocation_id}", authMiddleware.Wrap(allocationHandler.RespondToAllocation(), "NGO"))
}
