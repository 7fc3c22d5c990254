package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sovannra/microfin/internal/config"
	"github.com/sovannra/microfin/internal/domain"
	"github.com/sovannra/microfin/internal/repository"
	"github.com/sovannra/microfin/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	productRepo := repository.NewProductRepository(db)
	billingService := service.NewBillingService(loanRepo, paymentRepo, appRepo, productRepo, redisClient, nil, cfg, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal("invalid scheduler timezone", zap.Error(err))
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, cfg, billingService, logger)

	c.Start()
	logger.Info("scheduler started",
		zap.String("digest_cron", cfg.Scheduler.DigestCron),
		zap.String("reminder_cron", cfg.Scheduler.ReminderCron),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, billing *service.BillingService, logger *zap.Logger) {
	// Daily collections digest: derived late/grace counts per branch,
	// cached for the dashboard. Installment base state is never touched
	// here, lateness stays a computed property.
	_, err := c.AddFunc(cfg.Scheduler.DigestCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		digests, err := billing.CollectionsDigest(ctx, time.Now())
		if err != nil {
			logger.Error("collections digest failed", zap.Error(err))
			return
		}

		for _, digest := range digests {
			logger.Info("collections digest",
				zap.String("branch_id", digest.BranchID),
				zap.Int("due_today", digest.DueToday),
				zap.Int("in_grace", digest.InGrace),
				zap.Int("late", digest.Late),
				zap.Int("total_open", digest.TotalOpen),
			)
		}
	})
	if err != nil {
		logger.Error("failed to schedule collections digest job", zap.Error(err))
	}

	// Weekly reminder pass over upcoming installments.
	_, err = c.AddFunc(cfg.Scheduler.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		sendPaymentReminders(ctx, billing, cfg.Business.ReminderWindowDays, logger)
	})
	if err != nil {
		logger.Error("failed to schedule payment reminder job", zap.Error(err))
	}
}

func sendPaymentReminders(ctx context.Context, billing *service.BillingService, windowDays int, logger *zap.Logger) {
	now := time.Now()
	entries, err := billing.GetBoard(ctx, domain.BoardFilter{DateFilter: domain.DateFilterUpcoming}, now)
	if err != nil {
		logger.Error("payment reminder pass failed", zap.Error(err))
		return
	}

	cutoff := now.AddDate(0, 0, windowDays)
	for _, entry := range entries {
		if entry.DueDate.After(cutoff) {
			continue
		}
		logger.Info("payment reminder",
			zap.Int64("loan_id", entry.LoanID),
			zap.String("client_name", entry.ClientName),
			zap.String("phone", entry.PrimaryPhone),
			zap.Time("due_date", entry.DueDate),
			zap.String("total_due", entry.TotalDue.String()),
		)
	}
}
