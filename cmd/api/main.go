package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"loan-servicing/configs"
	"loan-servicing/internal/handler"
	"loan-servicing/internal/metrics"
	"loan-servicing/internal/middleware"
	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
	"loan-servicing/internal/service"
	"loan-servicing/pkg/scheduler"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories, metrics, services and handlers
	repos := repository.NewRepository(db)
	m := metrics.New()

	services := service.NewService(service.Dependencies{
		Repos:   repos,
		Logger:  log,
		Config:  cfg,
		Metrics: m,
	})

	handlers := handler.NewHandler(handler.Dependencies{
		Services: services,
		Logger:   log,
		Config:   cfg,
	})

	// Initialize router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/register", handlers.User.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", handlers.User.Login).Methods(http.MethodPost)
	router.HandleFunc("/invitations/accept", handlers.User.AcceptInvitation).Methods(http.MethodPost)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Protected routes with middleware
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	api.Use(middleware.LogMiddleware(log))
	api.Use(middleware.MetricsMiddleware(m))

	writer := middleware.RequireRole(models.RoleAdmin, models.RoleMember)
	admin := middleware.RequireRole(models.RoleAdmin)

	// Organization and user endpoints
	api.HandleFunc("/organization", handlers.Organization.Get).Methods(http.MethodGet)
	api.Handle("/organization", admin(http.HandlerFunc(handlers.Organization.Update))).Methods(http.MethodPut)
	api.HandleFunc("/users/me", handlers.User.GetMe).Methods(http.MethodGet)
	api.HandleFunc("/users", handlers.User.GetAll).Methods(http.MethodGet)
	api.Handle("/users/{id}", admin(http.HandlerFunc(handlers.User.Deactivate))).Methods(http.MethodDelete)
	api.Handle("/invitations", admin(http.HandlerFunc(handlers.User.Invite))).Methods(http.MethodPost)

	// Borrower endpoints
	api.Handle("/borrowers", writer(http.HandlerFunc(handlers.Borrower.Create))).Methods(http.MethodPost)
	api.HandleFunc("/borrowers", handlers.Borrower.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/borrowers/{id}", handlers.Borrower.GetByID).Methods(http.MethodGet)
	api.Handle("/borrowers/{id}", writer(http.HandlerFunc(handlers.Borrower.Update))).Methods(http.MethodPut)
	api.Handle("/borrowers/{id}", writer(http.HandlerFunc(handlers.Borrower.Delete))).Methods(http.MethodDelete)

	// Property endpoints
	api.Handle("/properties", writer(http.HandlerFunc(handlers.Property.Create))).Methods(http.MethodPost)
	api.HandleFunc("/properties", handlers.Property.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}", handlers.Property.GetByID).Methods(http.MethodGet)
	api.Handle("/properties/{id}", writer(http.HandlerFunc(handlers.Property.Update))).Methods(http.MethodPut)
	api.Handle("/properties/{id}", writer(http.HandlerFunc(handlers.Property.Delete))).Methods(http.MethodDelete)

	// Loan and schedule endpoints
	api.Handle("/loans", writer(http.HandlerFunc(handlers.Loan.Create))).Methods(http.MethodPost)
	api.HandleFunc("/loans", handlers.Loan.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", handlers.Loan.GetByID).Methods(http.MethodGet)
	api.Handle("/loans/{id}", writer(http.HandlerFunc(handlers.Loan.Update))).Methods(http.MethodPut)
	api.Handle("/loans/{id}", writer(http.HandlerFunc(handlers.Loan.Delete))).Methods(http.MethodDelete)
	api.Handle("/loans/{id}/status", writer(http.HandlerFunc(handlers.Loan.UpdateStatus))).Methods(http.MethodPut)
	api.HandleFunc("/loans/{id}/schedule", handlers.Loan.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/properties", handlers.Property.GetByLoan).Methods(http.MethodGet)
	api.Handle("/loans/{id}/schedule", writer(http.HandlerFunc(handlers.Loan.RegenerateSchedule))).Methods(http.MethodPost)

	// Payment endpoints
	api.Handle("/loans/{id}/payments", writer(http.HandlerFunc(handlers.Payment.Apply))).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/payments", handlers.Payment.GetByLoan).Methods(http.MethodGet)
	api.HandleFunc("/payments", handlers.Payment.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}", handlers.Payment.GetByID).Methods(http.MethodGet)

	// Import endpoints
	api.Handle("/imports/borrowers", writer(http.HandlerFunc(handlers.Import.ImportBorrowers))).Methods(http.MethodPost)
	api.Handle("/imports/loans", writer(http.HandlerFunc(handlers.Import.ImportLoans))).Methods(http.MethodPost)
	api.Handle("/imports/payments", writer(http.HandlerFunc(handlers.Import.ImportPayments))).Methods(http.MethodPost)
	api.HandleFunc("/imports", handlers.Import.GetBatches).Methods(http.MethodGet)

	// Reconciliation endpoints
	api.Handle("/reconciliation/statements", writer(http.HandlerFunc(handlers.Reconciliation.ImportStatement))).Methods(http.MethodPost)
	api.HandleFunc("/reconciliation/unmatched", handlers.Reconciliation.GetUnmatched).Methods(http.MethodGet)
	api.HandleFunc("/reconciliation/suggestions", handlers.Reconciliation.SuggestMatches).Methods(http.MethodGet)
	api.Handle("/reconciliation/matches", writer(http.HandlerFunc(handlers.Reconciliation.ConfirmMatch))).Methods(http.MethodPost)
	api.Handle("/reconciliation/{id}/ignore", writer(http.HandlerFunc(handlers.Reconciliation.Ignore))).Methods(http.MethodPost)

	// Audit endpoints
	api.HandleFunc("/audit", handlers.Audit.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/audit/{type}/{id}", handlers.Audit.GetByEntity).Methods(http.MethodGet)

	// Start the overdue sweep scheduler
	sweepScheduler := scheduler.NewScheduler(services.Loan, log)
	sweepScheduler.Start(time.Duration(cfg.Scheduler.SweepIntervalHours) * time.Hour)
	defer sweepScheduler.Stop()

	// Configure and start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	// Start the server in a goroutine
	go func() {
		log.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline context for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server gracefully stopped")
}

func initDB(cfg *configs.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password,
		cfg.Database.DBName, cfg.Database.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
