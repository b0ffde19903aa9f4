// internal/service/scheduler_service.go
package service

import (
	"time"

	"github.com/google/uuid"

	appErrors "github.com/teamalpha/slackconnect-backend/internal/errors"
	"github.com/teamalpha/slackconnect-backend/internal/model"
	"github.com/teamalpha/slackconnect-backend/internal/repository"
	"github.com/teamalpha/slackconnect-backend/internal/slack"
)

// Gateway is the outbound delivery capability. The real implementation is
// slack.Client; tests substitute a mock.
type Gateway interface {
	SendMessage(token, channelID, text string) error
	SendWebhook(webhookURL, text string) error
	ListChannels(token string) ([]slack.Channel, error)
}

const MaxMessageLength = 4000

// SchedulerService owns the creation, listing and cancellation side of the
// scheduled message lifecycle, plus immediate sends that bypass the store.
type SchedulerService struct {
	MessageRepo repository.MessageRepositoryInterface
	UserRepo    repository.UserRepositoryInterface
	Gateway     Gateway
}

// CreateScheduledMessage validates and persists a new pending message.
// Past timestamps are accepted; they become immediately due.
func (s *SchedulerService) CreateScheduledMessage(userID, channelID, channelName, message string, scheduledFor int64) (*model.ScheduledMessage, error) {
	if userID == "" {
		return nil, appErrors.NewValidation("user_id is required")
	}
	if channelID == "" {
		return nil, appErrors.NewValidation("channel_id is required")
	}
	if message == "" {
		return nil, appErrors.NewValidation("message is required")
	}
	if len(message) > MaxMessageLength {
		return nil, appErrors.NewValidation("message exceeds 4000 characters")
	}
	if scheduledFor <= 0 {
		return nil, appErrors.NewValidation("scheduled_for must be a valid epoch timestamp")
	}

	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appErrors.NewNotFound("user", userID)
	}

	msg := &model.ScheduledMessage{
		ID:           uuid.NewString(),
		UserID:       userID,
		ChannelID:    channelID,
		ChannelName:  channelName,
		Message:      message,
		ScheduledFor: scheduledFor,
		Status:       model.StatusPending,
		CreatedAt:    time.Now().Unix(),
	}
	if err := s.MessageRepo.Insert(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *SchedulerService) ListScheduledMessages(userID string) ([]*model.ScheduledMessage, error) {
	if userID == "" {
		return nil, appErrors.NewValidation("user_id is required")
	}
	return s.MessageRepo.GetByUser(userID)
}

// CancelScheduledMessage deletes a message only while it is still pending.
// Losing the race against the dispatcher is reported as already
// processing, never silently dropped.
func (s *SchedulerService) CancelScheduledMessage(id, userID string) (bool, error) {
	deleted, err := s.MessageRepo.DeleteIfOwnedAndPending(id, userID)
	if err != nil {
		return false, err
	}
	if deleted {
		return true, nil
	}

	msg, err := s.MessageRepo.GetByID(id)
	if err != nil {
		return false, err
	}
	if msg == nil || msg.UserID != userID {
		return false, appErrors.NewNotFound("message", id)
	}
	if msg.Status == model.StatusInFlight {
		return false, appErrors.NewAlreadyProcessing(id)
	}
	return false, nil
}

// ImmediateSend calls the gateway directly, bypassing the store. The
// reserved webhook owner routes through the webhook path.
func (s *SchedulerService) ImmediateSend(userID, channelID, message string) error {
	if message == "" {
		return appErrors.NewValidation("message is required")
	}
	if len(message) > MaxMessageLength {
		return appErrors.NewValidation("message exceeds 4000 characters")
	}

	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return appErrors.NewNotFound("user", userID)
	}

	if user.ID == model.WebhookUserID {
		return s.Gateway.SendWebhook(user.WebhookURL, message)
	}
	return s.Gateway.SendMessage(user.AccessToken, channelID, message)
}

// ListChannels returns the channels visible to the user's token.
func (s *SchedulerService) ListChannels(userID string) ([]slack.Channel, error) {
	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appErrors.NewNotFound("user", userID)
	}
	return s.Gateway.ListChannels(user.AccessToken)
}
