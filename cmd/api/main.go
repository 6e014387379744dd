package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/sujanms/gharbhada/internal/adapter/gateway/esewa"
	"github.com/sujanms/gharbhada/internal/adapter/handler"
	"github.com/sujanms/gharbhada/internal/adapter/repository/postgres"
	"github.com/sujanms/gharbhada/internal/core/services"
	"github.com/sujanms/gharbhada/internal/platform/config"
	"github.com/sujanms/gharbhada/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		log.Fatalf("Failed to connect to db after retries: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	defer db.Close()

	log.Printf("Connecting to Redis at %s...", cfg.RedisAddr)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Redis connected successfully!")

	roomRepo := postgres.NewRoomRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	userRepo := postgres.NewUserRepository(db)

	gateway := esewa.NewClient(cfg.EsewaGatewayURL, cfg.EsewaProductCode, cfg.EsewaSecretKey, cfg.EsewaTimeout)

	bookingService := services.NewBookingService(roomRepo, purchaseRepo, bookingRepo, paymentRepo, userRepo, gateway, redisClient)
	roomService := services.NewRoomService(roomRepo, redisClient)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenExpiry)

	sweeper := services.NewSweeper(bookingService, cfg.SweepInterval, cfg.PendingTTL)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	router := handler.NewRouter(
		logger,
		authService,
		handler.NewAuthHandler(authService),
		handler.NewRoomHandler(roomService),
		handler.NewBookingHandler(bookingService),
		handler.NewEsewaHandler(bookingService),
		cfg.AllowedOrigins,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
