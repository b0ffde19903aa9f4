// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/teamalpha/slackconnect-backend/internal/db"
	"github.com/teamalpha/slackconnect-backend/internal/queue"
	"github.com/teamalpha/slackconnect-backend/internal/repository"
	"github.com/teamalpha/slackconnect-backend/internal/service"
	"github.com/teamalpha/slackconnect-backend/internal/slack"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("failed to open DB: %v", err)
	}
	defer conn.Close()

	if err := db.InitSchema(conn); err != nil {
		log.Fatalf("failed to init schema: %v", err)
	}

	messageRepo := &repository.MessageRepository{DB: conn}
	userRepo := &repository.UserRepository{DB: conn}

	// Delivery events are optional: without a broker the worker still
	// dispatches, it just stops feeding the notification layer.
	var events queue.Publisher = queue.NoopPublisher{}
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		publisher, err := queue.NewAMQPPublisher(amqpURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		events = publisher
	} else {
		log.Println("⚠️ AMQP_URL not set, delivery events disabled")
	}

	dispatcher := service.NewDispatcher(
		messageRepo,
		userRepo,
		slack.NewClient(os.Getenv("SLACK_API_BASE")),
		events,
		pollInterval(),
	)

	sweeper := service.NewSweeper(messageRepo, retentionDays())
	c := cron.New()
	if _, err := c.AddFunc("@daily", sweeper.Sweep); err != nil {
		log.Fatalf("failed to schedule retention sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Run(ctx)
}

func pollInterval() time.Duration {
	if raw := os.Getenv("POLL_INTERVAL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		log.Println("⚠️ Invalid POLL_INTERVAL_SECONDS, using default")
	}
	return service.DefaultPollInterval
}

func retentionDays() int {
	if raw := os.Getenv("RETENTION_DAYS"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			return days
		}
		log.Println("⚠️ Invalid RETENTION_DAYS, using default")
	}
	return service.DefaultRetentionDays
}
