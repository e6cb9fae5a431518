package main

import (
	"context"
	"log"
	"time"

	"aion/internal/models"
	"aion/internal/repository"
	"aion/pkg/auth"
	"aion/pkg/config"
	"aion/pkg/logger"
	"aion/pkg/postgres"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Seeds a demo user with a starter budget set and a welcome
// notification. Running it twice is safe: it exits early when the demo
// user already exists.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	budgetRepo := repository.NewBudgetRepository(db, appLogger)
	notificationRepo := repository.NewNotificationRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	const demoEmail = "demo@aion.local"

	existing, err := userRepo.GetByEmail(ctx, demoEmail)
	if err != nil {
		appLogger.Fatal("Failed to check for demo user", zap.Error(err))
	}
	if existing != nil {
		appLogger.Info("Demo user already exists, nothing to do", zap.String("email", demoEmail))
		return
	}

	hashed, err := auth.HashPassword("demo1234")
	if err != nil {
		appLogger.Fatal("Failed to hash demo password", zap.Error(err))
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     demoEmail,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		appLogger.Fatal("Failed to create demo user", zap.Error(err))
	}
	appLogger.Info("Demo user created", zap.String("email", demoEmail))

	starters := []struct {
		title       string
		allocated   int64
		description string
	}{
		{"Groceries", 30000, "Food and household essentials"},
		{"Transport", 8000, "Public transport and fuel"},
		{"Utilities", 12000, "Electricity, water and internet"},
		{"Leisure", 10000, "Eating out and entertainment"},
		{"Savings", 20000, "Monthly savings target"},
	}

	for _, b := range starters {
		budget := &models.Budget{
			ID:          uuid.New(),
			UserID:      user.ID,
			Title:       b.title,
			Allocated:   decimal.NewFromInt(b.allocated),
			Spent:       decimal.Zero,
			Description: b.description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := budgetRepo.Create(ctx, budget); err != nil {
			appLogger.Fatal("Failed to create starter budget",
				zap.String("title", b.title),
				zap.Error(err),
			)
		}
	}
	appLogger.Info("Starter budgets created", zap.Int("count", len(starters)))

	welcome := &models.Notification{
		ID:        uuid.New(),
		UserID:    user.ID,
		Type:      models.NotificationSystem,
		Priority:  models.PriorityLow,
		Title:     "Welcome to AION",
		Message:   "Your starter budgets are ready. Send a message to the budget agent to tailor them to your income.",
		CreatedAt: now,
	}
	if err := notificationRepo.Create(ctx, welcome); err != nil {
		appLogger.Fatal("Failed to create welcome notification", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}
