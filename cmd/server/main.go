// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/teamalpha/slackconnect-backend/internal/controller"
	"github.com/teamalpha/slackconnect-backend/internal/db"
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

	if err := userRepo.EnsureWebhookUser(os.Getenv("SLACK_WEBHOOK_URL")); err != nil {
		log.Fatalf("failed to ensure webhook user: %v", err)
	}

	scheduler := &service.SchedulerService{
		MessageRepo: messageRepo,
		UserRepo:    userRepo,
		Gateway:     slack.NewClient(os.Getenv("SLACK_API_BASE")),
	}

	messageController := &controller.MessageController{
		Scheduler: scheduler,
	}

	r := chi.NewRouter()

	// Scheduled message routes
	r.Post("/messages", messageController.CreateMessage)
	r.Get("/messages", messageController.ListMessages)
	r.Delete("/messages/{id}", messageController.CancelMessage)
	r.Post("/messages/send", messageController.SendNow)
	r.Post("/webhook/schedule", messageController.ScheduleWebhookMessage)
	r.Get("/channels", messageController.ListChannels)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Println("🚀 Server running on", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
