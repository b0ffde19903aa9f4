// internal/controller/message_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/teamalpha/slackconnect-backend/internal/errors"
	"github.com/teamalpha/slackconnect-backend/internal/model"
	"github.com/teamalpha/slackconnect-backend/internal/service"
)

type MessageController struct {
	Scheduler *service.SchedulerService
}

func (c *MessageController) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID       string `json:"user_id"`
		ChannelID    string `json:"channel_id"`
		ChannelName  string `json:"channel_name"`
		Message      string `json:"message"`
		ScheduledFor int64  `json:"scheduled_for"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	msg, err := c.Scheduler.CreateScheduledMessage(body.UserID, body.ChannelID, body.ChannelName, body.Message, body.ScheduledFor)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func (c *MessageController) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	messages, err := c.Scheduler.ListScheduledMessages(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": messages,
	})
}

func (c *MessageController) CancelMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")

	cancelled, err := c.Scheduler.CancelScheduledMessage(id, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cancelled": cancelled,
	})
}

func (c *MessageController) SendNow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID    string `json:"user_id"`
		ChannelID string `json:"channel_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := c.Scheduler.ImmediateSend(body.UserID, body.ChannelID, body.Message); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok": true,
	})
}

// ScheduleWebhookMessage creates a scheduled message owned by the
// reserved webhook account so unauthenticated sends share the same
// lifecycle as everything else.
func (c *MessageController) ScheduleWebhookMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChannelName  string `json:"channel_name"`
		Message      string `json:"message"`
		ScheduledFor int64  `json:"scheduled_for"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	channelName := body.ChannelName
	if channelName == "" {
		channelName = "webhook"
	}

	msg, err := c.Scheduler.CreateScheduledMessage(model.WebhookUserID, "webhook", channelName, body.Message, body.ScheduledFor)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func (c *MessageController) ListChannels(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	channels, err := c.Scheduler.ListChannels(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"channels": channels,
	})
}

// writeError maps the service error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *appErrors.ValidationError
	var conflictErr *appErrors.ConflictError
	var notFoundErr *appErrors.NotFoundError
	var processingErr *appErrors.AlreadyProcessingError

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &conflictErr):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &notFoundErr):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &processingErr):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		if se, ok := appErrors.AsSendError(err); ok {
			switch se.Kind {
			case appErrors.SendKindAuth:
				http.Error(w, err.Error(), http.StatusUnauthorized)
			case appErrors.SendKindProvider:
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, err.Error(), http.StatusBadGateway)
			}
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
