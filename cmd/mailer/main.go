// Command mailer drains the verification mail queue.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agora/internal/config"
	"agora/internal/mail"
	"agora/internal/middleware"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring unreadable .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is required for the mailer")
	}

	consumer, err := mail.DialConsumer(cfg.RabbitMQURL, cfg.MailExchange, cfg.MailQueue)
	if err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}
	defer func() { _ = consumer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	middleware.Logger.Info("Mailer consuming", "queue", cfg.MailQueue)
	if err := consumer.Run(ctx, mail.LogDispatcher{Logger: middleware.Logger}); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Mailer stopped: %v", err)
		return
	}
	middleware.Logger.Info("Mailer stopped")
}
