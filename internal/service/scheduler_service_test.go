package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	appErrors "github.com/teamalpha/slackconnect-backend/internal/errors"
	"github.com/teamalpha/slackconnect-backend/internal/model"
	"github.com/teamalpha/slackconnect-backend/internal/repository"
	"github.com/teamalpha/slackconnect-backend/internal/service"
)

func newTestScheduler(msgRepo *memMessageRepo, userRepo *memUserRepo, gw *mockGateway) *service.SchedulerService {
	return &service.SchedulerService{
		MessageRepo: msgRepo,
		UserRepo:    userRepo,
		Gateway:     gw,
	}
}

func TestCreateScheduledMessageValidation(t *testing.T) {
	svc := newTestScheduler(newMemMessageRepo(), newMemUserRepo(testUser()), &mockGateway{})
	future := time.Now().Unix() + 60

	cases := []struct {
		name         string
		userID       string
		channelID    string
		message      string
		scheduledFor int64
	}{
		{"missing user", "", "C1", "hi", future},
		{"missing channel", "user-1", "", "hi", future},
		{"empty message", "user-1", "C1", "", future},
		{"message too long", "user-1", "C1", strings.Repeat("x", 4001), future},
		{"zero timestamp", "user-1", "C1", "hi", 0},
		{"negative timestamp", "user-1", "C1", "hi", -5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateScheduledMessage(tc.userID, tc.channelID, "general", tc.message, tc.scheduledFor)
			var validationErr *appErrors.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateScheduledMessageUnknownUser(t *testing.T) {
	svc := newTestScheduler(newMemMessageRepo(), newMemUserRepo(), &mockGateway{})

	_, err := svc.CreateScheduledMessage("nobody", "C1", "general", "hi", time.Now().Unix()+60)
	var notFoundErr *appErrors.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestCreateScheduledMessageAcceptsPastTimestamp(t *testing.T) {
	msgRepo := newMemMessageRepo()
	svc := newTestScheduler(msgRepo, newMemUserRepo(testUser()), &mockGateway{})

	// Past timestamps are not rejected; the message is immediately due.
	msg, err := svc.CreateScheduledMessage("user-1", "C1", "general", "hi", time.Now().Unix()-120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Status != model.StatusPending {
		t.Errorf("expected pending, got %s", msg.Status)
	}
	if msg.ID == "" {
		t.Error("expected generated id")
	}

	due, _ := msgRepo.GetDue(time.Now().Unix())
	if len(due) != 1 {
		t.Errorf("expected message to be immediately due, got %d", len(due))
	}
}

func TestCreateScheduledMessageAtMaxLength(t *testing.T) {
	svc := newTestScheduler(newMemMessageRepo(), newMemUserRepo(testUser()), &mockGateway{})

	_, err := svc.CreateScheduledMessage("user-1", "C1", "general", strings.Repeat("x", 4000), time.Now().Unix()+60)
	if err != nil {
		t.Fatalf("4000-char message should be accepted, got %v", err)
	}
}

func TestCancelPendingMessage(t *testing.T) {
	msgRepo := newMemMessageRepo()
	svc := newTestScheduler(msgRepo, newMemUserRepo(testUser()), &mockGateway{})

	msg := seedMessage(t, msgRepo, "user-1", time.Now().Unix()+3600)

	cancelled, err := svc.CancelScheduledMessage(msg.ID, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cancelled {
		t.Fatal("expected cancellation to succeed")
	}

	stored, _ := msgRepo.GetByID(msg.ID)
	if stored != nil {
		t.Error("expected message to be deleted")
	}
}

func TestCancelInFlightMessageIsRejected(t *testing.T) {
	msgRepo := newMemMessageRepo()
	svc := newTestScheduler(msgRepo, newMemUserRepo(testUser()), &mockGateway{})

	msg := seedMessage(t, msgRepo, "user-1", time.Now().Unix()-5)
	now := time.Now().Unix()
	if ok, err := msgRepo.UpdateStatus(msg.ID, model.StatusPending, model.StatusInFlight, repository.StatusFields{InFlightAt: &now}); err != nil || !ok {
		t.Fatalf("setup claim failed: ok=%v err=%v", ok, err)
	}

	cancelled, err := svc.CancelScheduledMessage(msg.ID, "user-1")
	if cancelled {
		t.Fatal("cancel must not succeed once claimed")
	}
	var processingErr *appErrors.AlreadyProcessingError
	if !errors.As(err, &processingErr) {
		t.Errorf("expected AlreadyProcessingError, got %v", err)
	}
}

func TestCancelWrongOwner(t *testing.T) {
	msgRepo := newMemMessageRepo()
	svc := newTestScheduler(msgRepo, newMemUserRepo(testUser()), &mockGateway{})

	msg := seedMessage(t, msgRepo, "user-1", time.Now().Unix()+3600)

	cancelled, err := svc.CancelScheduledMessage(msg.ID, "someone-else")
	if cancelled {
		t.Fatal("cancel must not succeed for a different owner")
	}
	var notFoundErr *appErrors.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	stored, _ := msgRepo.GetByID(msg.ID)
	if stored == nil || stored.Status != model.StatusPending {
		t.Error("message must be untouched")
	}
}

func TestImmediateSendAuthenticatedPath(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestScheduler(newMemMessageRepo(), newMemUserRepo(testUser()), gw)

	if err := svc.ImmediateSend("user-1", "C1", "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.sendCount() != 1 || gw.webhookSends != 0 {
		t.Errorf("expected 1 authenticated send, got sends=%d webhooks=%d", gw.sendCount(), gw.webhookSends)
	}
}

func TestImmediateSendWebhookOwner(t *testing.T) {
	gw := &mockGateway{}
	userRepo := newMemUserRepo(&model.User{
		ID:         model.WebhookUserID,
		WebhookURL: "https://hooks.example.com/services/T0/B0/XYZ",
	})
	svc := newTestScheduler(newMemMessageRepo(), userRepo, gw)

	if err := svc.ImmediateSend(model.WebhookUserID, "webhook", "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.webhookSends != 1 || gw.sendCount() != 0 {
		t.Errorf("expected 1 webhook send, got sends=%d webhooks=%d", gw.sendCount(), gw.webhookSends)
	}
}

func TestImmediateSendPropagatesGatewayError(t *testing.T) {
	gw := &mockGateway{sendErr: appErrors.NewAuthError("invalid_auth")}
	svc := newTestScheduler(newMemMessageRepo(), newMemUserRepo(testUser()), gw)

	err := svc.ImmediateSend("user-1", "C1", "hi")
	se, ok := appErrors.AsSendError(err)
	if !ok || se.Kind != appErrors.SendKindAuth {
		t.Errorf("expected auth SendError, got %v", err)
	}
}

func TestListScheduledMessagesOrderedByScheduleTime(t *testing.T) {
	msgRepo := newMemMessageRepo()
	svc := newTestScheduler(msgRepo, newMemUserRepo(testUser()), &mockGateway{})

	now := time.Now().Unix()
	second := seedMessage(t, msgRepo, "user-1", now+200)
	first := seedMessage(t, msgRepo, "user-1", now+100)
	seedMessage(t, msgRepo, "other-user", now+50)

	messages, err := svc.ListScheduledMessages("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != first.ID || messages[1].ID != second.ID {
		t.Error("expected messages ordered by scheduled_for ascending")
	}
}
