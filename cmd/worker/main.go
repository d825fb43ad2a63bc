package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/tripbooking/config"
	"github.com/mkravets/tripbooking/internal/email"
	"github.com/mkravets/tripbooking/internal/kafka"
	"github.com/mkravets/tripbooking/internal/repository"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker consumes booking notifications and mails the booking's owner.
// Delivery is best effort: a missing user or SMTP hiccup is logged, never
// re-queued.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	sender := email.NewSender(cfg.SMTP)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode event error: %v", err)
			return nil
		}

		user, err := userRepo.GetByID(ctx, event.UserID)
		if err != nil {
			log.Printf("lookup user %d: %v", event.UserID, err)
			return nil
		}
		if user == nil || user.Email == "" {
			log.Printf("no email for user %d, skipping notification", event.UserID)
			return nil
		}

		if err := sender.Send(user.Email, event); err != nil {
			log.Printf("send email for booking %s: %v", event.BookingID, err)
		}
		return nil
	}); err != nil {
		log.Printf("consumer stopped: %v", err)
	}
}
