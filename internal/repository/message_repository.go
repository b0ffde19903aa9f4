package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/teamalpha/slackconnect-backend/internal/errors"
	"github.com/teamalpha/slackconnect-backend/internal/model"
)

// StatusFields carries the columns written together with a status change.
// Every transition overwrites all three: sent_at is only ever non-nil on
// the transition to sent, error_message only on failed, in_flight_at only
// on the claim. This keeps the spec's field invariants mechanically true.
type StatusFields struct {
	SentAt       *int64
	InFlightAt   *int64
	ErrorMessage string
}

type MessageRepositoryInterface interface {
	Insert(msg *model.ScheduledMessage) error
	GetByID(id string) (*model.ScheduledMessage, error)
	GetDue(now int64) ([]*model.ScheduledMessage, error)
	GetByUser(userID string) ([]*model.ScheduledMessage, error)
	UpdateStatus(id string, expected, next model.MessageStatus, fields StatusFields) (bool, error)
	DeleteIfOwnedAndPending(id, userID string) (bool, error)
	PurgeTerminalBefore(cutoff int64) (int64, error)
	ReclaimStale(cutoff int64) (int64, error)
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = `id, user_id, channel_id, channel_name, message, scheduled_for, status, created_at, in_flight_at, sent_at, error_message`

// Insert stores a new pending message. A duplicate id maps to ConflictError.
func (r *MessageRepository) Insert(msg *model.ScheduledMessage) error {
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().Unix()
	}
	query := `
        INSERT INTO scheduled_messages
        (id, user_id, channel_id, channel_name, message, scheduled_for, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.Exec(
		query,
		msg.ID,
		msg.UserID,
		msg.ChannelID,
		msg.ChannelName,
		msg.Message,
		msg.ScheduledFor,
		msg.Status,
		msg.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return appErrors.NewConflict(msg.ID)
		}
		return err
	}
	return nil
}

func (r *MessageRepository) GetByID(id string) (*model.ScheduledMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM scheduled_messages WHERE id=$1`
	return r.scanOne(r.DB.QueryRow(query, id))
}

// GetDue returns pending messages whose scheduled time has passed,
// earliest-due first with insertion order breaking ties.
func (r *MessageRepository) GetDue(now int64) ([]*model.ScheduledMessage, error) {
	query := `
        SELECT ` + messageColumns + `
        FROM scheduled_messages
        WHERE status=$1 AND scheduled_for <= $2
        ORDER BY scheduled_for ASC, created_at ASC
    `
	rows, err := r.DB.Query(query, model.StatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *MessageRepository) GetByUser(userID string) ([]*model.ScheduledMessage, error) {
	query := `
        SELECT ` + messageColumns + `
        FROM scheduled_messages
        WHERE user_id=$1
        ORDER BY scheduled_for ASC
    `
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// UpdateStatus applies a conditional status transition: the row is updated
// only if its current status equals expected. A false return with nil error
// is the normal "someone else got there first" outcome, not a failure.
// This single-row compare-and-swap is the only locking primitive the
// dispatch path relies on.
func (r *MessageRepository) UpdateStatus(id string, expected, next model.MessageStatus, fields StatusFields) (bool, error) {
	if !expected.CanTransitionTo(next) {
		return false, fmt.Errorf("illegal status transition %s -> %s", expected, next)
	}
	query := `
        UPDATE scheduled_messages
        SET status=$1, sent_at=$2, in_flight_at=$3, error_message=$4
        WHERE id=$5 AND status=$6
    `
	res, err := r.DB.Exec(query, next, fields.SentAt, fields.InFlightAt, nullIfEmpty(fields.ErrorMessage), id, expected)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteIfOwnedAndPending removes a message only while it is still pending
// and owned by the caller. Cancellation after the claim must fail.
func (r *MessageRepository) DeleteIfOwnedAndPending(id, userID string) (bool, error) {
	res, err := r.DB.Exec(
		`DELETE FROM scheduled_messages WHERE id=$1 AND user_id=$2 AND status=$3`,
		id, userID, model.StatusPending,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeTerminalBefore deletes terminal records created before cutoff and
// returns how many rows were removed.
func (r *MessageRepository) PurgeTerminalBefore(cutoff int64) (int64, error) {
	res, err := r.DB.Exec(`
        DELETE FROM scheduled_messages
        WHERE status IN ($1, $2, $3) AND created_at < $4
    `, model.StatusSent, model.StatusFailed, model.StatusCancelled, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReclaimStale reverts in_flight rows whose claim predates cutoff back to
// pending so a future cycle retries them. This is the crash-recovery path
// for dispatchers that died mid-send.
func (r *MessageRepository) ReclaimStale(cutoff int64) (int64, error) {
	res, err := r.DB.Exec(`
        UPDATE scheduled_messages
        SET status=$1, in_flight_at=NULL
        WHERE status=$2 AND in_flight_at < $3
    `, model.StatusPending, model.StatusInFlight, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *MessageRepository) scanOne(row *sql.Row) (*model.ScheduledMessage, error) {
	var msg model.ScheduledMessage
	var inFlightAt, sentAt sql.NullInt64
	var errorMessage sql.NullString
	err := row.Scan(
		&msg.ID,
		&msg.UserID,
		&msg.ChannelID,
		&msg.ChannelName,
		&msg.Message,
		&msg.ScheduledFor,
		&msg.Status,
		&msg.CreatedAt,
		&inFlightAt,
		&sentAt,
		&errorMessage,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if inFlightAt.Valid {
		msg.InFlightAt = &inFlightAt.Int64
	}
	if sentAt.Valid {
		msg.SentAt = &sentAt.Int64
	}
	msg.ErrorMessage = errorMessage.String
	return &msg, nil
}

func (r *MessageRepository) scanAll(rows *sql.Rows) ([]*model.ScheduledMessage, error) {
	messages := []*model.ScheduledMessage{}
	for rows.Next() {
		var msg model.ScheduledMessage
		var inFlightAt, sentAt sql.NullInt64
		var errorMessage sql.NullString
		if err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.ChannelID,
			&msg.ChannelName,
			&msg.Message,
			&msg.ScheduledFor,
			&msg.Status,
			&msg.CreatedAt,
			&inFlightAt,
			&sentAt,
			&errorMessage,
		); err != nil {
			return nil, err
		}
		if inFlightAt.Valid {
			msg.InFlightAt = &inFlightAt.Int64
		}
		if sentAt.Valid {
			msg.SentAt = &sentAt.Int64
		}
		msg.ErrorMessage = errorMessage.String
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
