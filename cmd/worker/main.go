// Command main runs the mail delivery worker: it consumes the Redis outbox
// and delivers messages over SMTP.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/mail"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		log.Fatal("Mail worker requires Redis; check REDIS_URL")
	}

	var sender mail.Sender
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(cfg)
	} else {
		log.Println("SMTP_HOST not set; messages will be logged, not delivered")
		sender = mail.NewLogSender()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := mail.NewWorker(rdb, sender)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Mail worker stopped: %v", err)
	}
}
