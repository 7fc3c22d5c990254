package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sovannra/microfin/internal/config"
	"github.com/sovannra/microfin/internal/events/kafka"
	"github.com/sovannra/microfin/internal/handler"
	"github.com/sovannra/microfin/internal/repository"
	"github.com/sovannra/microfin/internal/service"
	"github.com/sovannra/microfin/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	var publisher service.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokerList(), cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("kafka publisher enabled", zap.String("topic", cfg.Kafka.Topic))
	}

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Initialize services
	clientService := service.NewClientService(clientRepo, logger)
	applicationService := service.NewApplicationService(appRepo, productRepo, clientRepo, logger)
	billingService := service.NewBillingService(loanRepo, paymentRepo, appRepo, productRepo, redisClient, publisher, cfg, logger)

	clientHandler := handler.NewClientHandler(clientService)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	billingHandler := handler.NewBillingHandler(billingService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(clientHandler, applicationHandler, billingHandler, healthHandler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return logger
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	clientHandler *handler.ClientHandler,
	applicationHandler *handler.ApplicationHandler,
	billingHandler *handler.BillingHandler,
	healthHandler *handler.HealthHandler,
	logger *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/clients", clientHandler.ListClients).Methods("GET")
	api.HandleFunc("/clients", clientHandler.CreateClient).Methods("POST")
	api.HandleFunc("/clients/{clientId}", clientHandler.GetClient).Methods("GET")
	api.HandleFunc("/clients/{clientId}", clientHandler.UpdateClient).Methods("PUT")
	api.HandleFunc("/clients/{clientId}", clientHandler.DeleteClient).Methods("DELETE")
	api.HandleFunc("/clients/{clientId}/socio-eco", clientHandler.GetSocioEco).Methods("GET")
	api.HandleFunc("/clients/{clientId}/socio-eco", clientHandler.UpsertSocioEco).Methods("PUT")

	api.HandleFunc("/loan-products", applicationHandler.ListProducts).Methods("GET")
	api.HandleFunc("/loan-applications", applicationHandler.ListApplications).Methods("GET")
	api.HandleFunc("/loan-applications", applicationHandler.CreateApplication).Methods("POST")
	api.HandleFunc("/loan-applications/{appId}", applicationHandler.GetApplication).Methods("GET")
	api.HandleFunc("/loan-applications/{appId}", applicationHandler.UpdateApplication).Methods("PUT")
	api.HandleFunc("/loan-applications/{appId}", applicationHandler.DeleteApplication).Methods("DELETE")
	api.HandleFunc("/loan-applications/{appId}/disburse", billingHandler.Disburse).Methods("POST")

	api.HandleFunc("/loan-accounts", billingHandler.ListAccounts).Methods("GET")
	api.HandleFunc("/loans/{loanId}/schedule", billingHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{loanId}/outstanding", billingHandler.GetOutstanding).Methods("GET")
	api.HandleFunc("/payment-schedules", billingHandler.GetBoard).Methods("GET")
	api.HandleFunc("/payments", billingHandler.MakePayment).Methods("POST")
	api.HandleFunc("/payments/{loanId}", billingHandler.PaymentHistory).Methods("GET")

	return router
}
