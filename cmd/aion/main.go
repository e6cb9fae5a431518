package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aion/internal/api"
	"aion/internal/api/handlers"
	"aion/internal/repository"
	"aion/internal/service"
	"aion/pkg/auth"
	"aion/pkg/config"
	"aion/pkg/logger"
	"aion/pkg/postgres"

	"go.uber.org/zap"
)

// @title AION API
// @version 1.0
// @description AI personal finance backend: agent-driven budgets, expense intake and reports

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting AION service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	budgetRepo := repository.NewBudgetRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)
	notificationRepo := repository.NewNotificationRepository(db, appLogger)
	agentRepo := repository.NewAgentRepository(db, appLogger)
	conversationRepo := repository.NewConversationRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	llmService, err := service.NewLLMService(&cfg.GigaChat, cfg.Agents.UtilityModel, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	ocrService := service.NewOCRService(llmService, appLogger)
	agentService := service.NewAgentService(agentRepo, conversationRepo, appLogger)
	notificationService := service.NewNotificationService(notificationRepo, appLogger)

	locks := service.NewBudgetLocks()
	budgetService := service.NewBudgetService(llmService, agentService, budgetRepo, userRepo, locks, &cfg.Agents, appLogger)
	expenseService := service.NewExpenseService(llmService, agentService, budgetRepo, expenseRepo, notificationService, ocrService, locks, &cfg.Agents, appLogger)
	reportService := service.NewReportService(llmService, agentService, budgetRepo, expenseRepo, &cfg.Agents, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	budgetHandler := handlers.NewBudgetHandler(budgetService, appLogger)
	expenseHandler := handlers.NewExpenseHandler(expenseService, appLogger)
	notificationHandler := handlers.NewNotificationHandler(notificationService, appLogger)
	reportHandler := handlers.NewReportHandler(reportService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, budgetHandler, expenseHandler, notificationHandler, reportHandler, jwtManager, appLogger)

	// Notification retention worker
	retentionCtx, stopRetention := context.WithCancel(ctx)
	defer stopRetention()
	go runRetentionSweep(retentionCtx, notificationService, &cfg.Retention, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	stopRetention()
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

// runRetentionSweep deletes old notifications on a fixed interval until
// the context is cancelled.
func runRetentionSweep(ctx context.Context, notifications *service.NotificationService, cfg *config.RetentionConfig, logger *zap.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := notifications.DeleteOlderThan(ctx, cfg.NotificationDays); err != nil {
				logger.Error("Notification retention sweep failed", zap.Error(err))
			}
		}
	}
}
