// internal/service/dispatcher.go
package service

import (
	"context"
	"log"
	"time"

	appErrors "github.com/teamalpha/slackconnect-backend/internal/errors"
	"github.com/teamalpha/slackconnect-backend/internal/model"
	"github.com/teamalpha/slackconnect-backend/internal/queue"
	"github.com/teamalpha/slackconnect-backend/internal/repository"
)

const DefaultPollInterval = 30 * time.Second

// Dispatcher runs the polling worker loop: each cycle it reclaims
// abandoned claims, claims due messages via the store's conditional
// update, sends them through the gateway and writes back a final status.
// Several dispatchers may run against the same store; the per-row
// compare-and-swap in UpdateStatus is the only coordination between them.
type Dispatcher struct {
	MessageRepo  repository.MessageRepositoryInterface
	UserRepo     repository.UserRepositoryInterface
	Gateway      Gateway
	Events       queue.Publisher
	PollInterval time.Duration

	// Now is swappable for tests.
	Now func() time.Time
}

func NewDispatcher(messageRepo repository.MessageRepositoryInterface, userRepo repository.UserRepositoryInterface, gw Gateway, events queue.Publisher, pollInterval time.Duration) *Dispatcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if events == nil {
		events = queue.NoopPublisher{}
	}
	return &Dispatcher{
		MessageRepo:  messageRepo,
		UserRepo:     userRepo,
		Gateway:      gw,
		Events:       events,
		PollInterval: pollInterval,
		Now:          time.Now,
	}
}

// Run executes cycles on the poll interval until ctx is cancelled. A
// failed cycle is logged and the loop keeps ticking.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Printf("🚚 Dispatcher running, polling every %s", d.PollInterval)

	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()

	d.RunCycle()
	for {
		select {
		case <-ctx.Done():
			log.Println("Dispatcher stopped")
			return
		case <-ticker.C:
			d.RunCycle()
		}
	}
}

// RunCycle performs one claim-send-finalize pass over the due messages.
func (d *Dispatcher) RunCycle() {
	now := d.Now()

	// Reclaim claims abandoned by a crashed worker. Threshold is twice
	// the poll interval so a healthy in-progress send is never stolen.
	staleCutoff := now.Add(-2 * d.PollInterval).Unix()
	if n, err := d.MessageRepo.ReclaimStale(staleCutoff); err != nil {
		log.Println("⚠️ Failed to reclaim stale messages:", err)
	} else if n > 0 {
		log.Printf("Reclaimed %d abandoned message(s)", n)
	}

	due, err := d.MessageRepo.GetDue(now.Unix())
	if err != nil {
		log.Println("⚠️ Failed to fetch due messages:", err)
		return
	}

	for _, msg := range due {
		if !d.claim(msg, now) {
			// Another worker got it first, or it is no longer pending.
			continue
		}
		d.deliver(msg)
	}
}

// claim attempts the pending -> in_flight transition. Only the worker
// whose conditional update applied may act on the message.
func (d *Dispatcher) claim(msg *model.ScheduledMessage, now time.Time) bool {
	claimedAt := now.Unix()
	ok, err := d.MessageRepo.UpdateStatus(msg.ID, model.StatusPending, model.StatusInFlight, repository.StatusFields{
		InFlightAt: &claimedAt,
	})
	if err != nil {
		log.Println("⚠️ Failed to claim message", msg.ID, ":", err)
		return false
	}
	return ok
}

// deliver sends one claimed message and finalizes its status. Errors stay
// inside the store's status and error_message fields; nothing propagates.
func (d *Dispatcher) deliver(msg *model.ScheduledMessage) {
	user, err := d.UserRepo.GetByID(msg.UserID)
	if err != nil {
		// Store read error is transient; release the claim and retry.
		log.Println("⚠️ Failed to load user for message", msg.ID, ":", err)
		d.revertToPending(msg.ID)
		return
	}
	if user == nil {
		d.markFailed(msg, "owner account no longer exists")
		return
	}

	var sendErr error
	if user.ID == model.WebhookUserID {
		sendErr = d.Gateway.SendWebhook(user.WebhookURL, msg.Message)
	} else {
		sendErr = d.Gateway.SendMessage(user.AccessToken, msg.ChannelID, msg.Message)
	}

	if sendErr == nil {
		d.markSent(msg)
		return
	}

	if se, ok := appErrors.AsSendError(sendErr); ok {
		switch se.Kind {
		case appErrors.SendKindAuth, appErrors.SendKindProvider:
			// Bad token or bad channel will not self-resolve.
			d.markFailed(msg, sendErr.Error())
			return
		}
	}
	// Transport failures (and anything unclassified) are retried by
	// staying pending.
	log.Println("Transient send failure for message", msg.ID, ":", sendErr)
	d.revertToPending(msg.ID)
}

func (d *Dispatcher) markSent(msg *model.ScheduledMessage) {
	sentAt := d.Now().Unix()
	ok, err := d.MessageRepo.UpdateStatus(msg.ID, model.StatusInFlight, model.StatusSent, repository.StatusFields{
		SentAt: &sentAt,
	})
	if err != nil {
		log.Println("⚠️ Failed to mark message sent", msg.ID, ":", err)
		return
	}
	if !ok {
		log.Println("⚠️ Lost claim on message before marking sent:", msg.ID)
		return
	}
	log.Println("✅ Message sent:", msg.ID)
	d.publishEvent(msg, model.StatusSent, "")
}

func (d *Dispatcher) markFailed(msg *model.ScheduledMessage, reason string) {
	ok, err := d.MessageRepo.UpdateStatus(msg.ID, model.StatusInFlight, model.StatusFailed, repository.StatusFields{
		ErrorMessage: reason,
	})
	if err != nil {
		log.Println("⚠️ Failed to mark message failed", msg.ID, ":", err)
		return
	}
	if !ok {
		return
	}
	log.Println("❌ Message failed:", msg.ID, "-", reason)
	d.publishEvent(msg, model.StatusFailed, reason)
}

func (d *Dispatcher) revertToPending(id string) {
	if _, err := d.MessageRepo.UpdateStatus(id, model.StatusInFlight, model.StatusPending, repository.StatusFields{}); err != nil {
		log.Println("⚠️ Failed to revert message to pending", id, ":", err)
	}
}

func (d *Dispatcher) publishEvent(msg *model.ScheduledMessage, status model.MessageStatus, reason string) {
	ev := queue.DeliveryEvent{
		MessageID:  msg.ID,
		UserID:     msg.UserID,
		Status:     string(status),
		Error:      reason,
		OccurredAt: d.Now().Unix(),
	}
	if err := d.Events.PublishDeliveryEvent(ev); err != nil {
		log.Println("⚠️ Failed to publish delivery event:", err)
	}
}
