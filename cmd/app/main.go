package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/tripbooking/config"
	"github.com/mkravets/tripbooking/internal/bootstrap"
	"github.com/mkravets/tripbooking/internal/cache"
	"github.com/mkravets/tripbooking/internal/kafka"
	"github.com/mkravets/tripbooking/internal/pricing"
	"github.com/mkravets/tripbooking/internal/repository"
	"github.com/mkravets/tripbooking/internal/service/booking"
	"github.com/mkravets/tripbooking/internal/service/catalog"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	packageRepo := repository.NewPackageRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	catalogService := catalog.NewCatalogService(packageRepo, redisCache)
	calculator := pricing.NewCalculator(catalogService)
	bookingService := booking.NewBookingService(
		bookingRepo,
		userRepo,
		calculator,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, bookingService, catalogService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
