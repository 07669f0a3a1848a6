package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dormops/dormd/internal/app"
	"github.com/dormops/dormd/internal/config"
	"github.com/dormops/dormd/internal/notifier"
	"github.com/dormops/dormd/internal/repository"
	"github.com/dormops/dormd/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting dormd",
		zap.String("environment", cfg.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	userRepo := repository.NewUserRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	// Telegram relay is optional: without a token, notifications stay in
	// the database only
	var relay service.Relay
	if cfg.TelegramToken != "" {
		tg, err := notifier.NewTelegramRelay(cfg.TelegramToken, logger)
		if err != nil {
			logger.Warn("Telegram relay disabled", zap.Error(err))
		} else {
			relay = tg
			logger.Info("Telegram relay enabled")
		}
	}

	notifications := service.NewNotificationService(notificationRepo, userRepo, relay, logger)
	roomService := service.NewRoomService(roomRepo, logger)
	expiration := service.NewExpirationService(assignmentRepo, roomService, notifications, logger)

	scheduler := app.NewScheduler(expiration, logger)
	scheduler.Start(ctx)

	<-ctx.Done()
	scheduler.Stop()
	logger.Info("dormd stopped")
}
