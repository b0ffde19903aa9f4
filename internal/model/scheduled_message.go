// internal/model/scheduled_message.go
package model

// MessageStatus is the lifecycle state of a scheduled message.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusInFlight  MessageStatus = "in_flight"
	StatusSent      MessageStatus = "sent"
	StatusFailed    MessageStatus = "failed"
	StatusCancelled MessageStatus = "cancelled"
)

// transitions is the full set of legal status transitions.
// pending is the only non-terminal resting state; in_flight is a working
// state held by exactly one dispatcher at a time.
var transitions = map[MessageStatus]map[MessageStatus]bool{
	StatusPending: {
		StatusInFlight:  true,
		StatusCancelled: true,
	},
	StatusInFlight: {
		StatusSent:    true,
		StatusFailed:  true,
		StatusPending: true, // transient send failure, retry next cycle
	},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s MessageStatus) CanTransitionTo(next MessageStatus) bool {
	return transitions[s][next]
}

// IsTerminal reports whether no further transitions are permitted.
func (s MessageStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed || s == StatusCancelled
}

type ScheduledMessage struct {
	ID           string        `db:"id" json:"id"`
	UserID       string        `db:"user_id" json:"user_id"`
	ChannelID    string        `db:"channel_id" json:"channel_id"`
	ChannelName  string        `db:"channel_name" json:"channel_name"`
	Message      string        `db:"message" json:"message"`
	ScheduledFor int64         `db:"scheduled_for" json:"scheduled_for"`
	Status       MessageStatus `db:"status" json:"status"`
	CreatedAt    int64         `db:"created_at" json:"created_at"`
	InFlightAt   *int64        `db:"in_flight_at" json:"-"`
	SentAt       *int64        `db:"sent_at" json:"sent_at,omitempty"`
	ErrorMessage string        `db:"error_message" json:"error_message,omitempty"`
}
