package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fjod/go_shop/internal/checkout"
	"github.com/fjod/go_shop/internal/postgres"
	"github.com/fjod/go_shop/internal/publisher"
)

type Config struct {
	KafkaBrokers []string
	DB           postgres.Credentials
}

func loadConfig() *Config {
	return &Config{
		KafkaBrokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
		DB: postgres.Credentials{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "shop"),
			Password: getEnv("DB_PASSWORD", "shop"),
			DBName:   getEnv("DB_NAME", "shop"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	db, err := postgres.Open(&cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	repo := checkout.NewRepository(db)
	poller := publisher.NewOutboxPoller(repo, cfg.KafkaBrokers...)
	defer poller.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down worker...")
		cancel()
	}()

	log.Println("outbox worker starting")
	poller.Run(ctx)
}
