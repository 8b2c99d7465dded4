package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rupayx/wallet-service/internal/api"
	"github.com/rupayx/wallet-service/internal/assistant"
	"github.com/rupayx/wallet-service/internal/config"
	"github.com/rupayx/wallet-service/internal/handler"
	"github.com/rupayx/wallet-service/internal/infrastructure/kafka"
	"github.com/rupayx/wallet-service/internal/infrastructure/redis"
	"github.com/rupayx/wallet-service/internal/notify"
	"github.com/rupayx/wallet-service/internal/observability"
	core "github.com/rupayx/wallet-service/internal/repository/postgres"
	"github.com/rupayx/wallet-service/internal/seed"
	service "github.com/rupayx/wallet-service/internal/services"
	"github.com/rupayx/wallet-service/internal/views"
	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	shutdown, _ := observability.Setup("wallet-service")
	defer shutdown(context.Background())

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	userRepo := core.NewPostgresUserRepository(db)
	txRepo := core.NewPostgresTransactionRepository(db)
	upiRepo := core.NewPostgresUpiRepository(db)
	taskRepo := core.NewPostgresTaskRepository(db)
	settingsRepo := core.NewPostgresSettingsRepository(db)

	redisClient := redis.NewClient(cfg.RedisAddr)
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := seed.EnsureDefaults(ctx, settingsRepo, taskRepo); err != nil {
		cancel()
		log.Fatalf("Failed to seed defaults: %v", err)
	}
	cancel()

	sender := notify.NewEmailJSSender(cfg.EmailJSEndpoint, cfg.EmailJSServiceID, cfg.EmailJSTemplateID, cfg.EmailJSPublicKey)
	assistantClient := assistant.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey)

	authSvc := service.NewAuthService(userRepo, txRepo, settingsRepo, redisClient, sender, cfg.JWTSecret)
	ledgerSvc := service.NewLedgerService(userRepo, txRepo, upiRepo, taskRepo, producer)
	adminSvc := service.NewAdminService(userRepo, taskRepo, settingsRepo)
	upiSvc := service.NewUpiService(upiRepo)
	sessions := views.NewStore(redisClient)

	h := handler.NewHandler(authSvc, ledgerSvc, adminSvc, upiSvc, assistantClient, sessions)
	router := api.SetupRouter(h, redisClient, cfg.JWTSecret)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}
	go func() {
		log.Printf("Starting server on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
