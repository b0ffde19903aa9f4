package repository

import (
	"database/sql"
	"time"

	"github.com/teamalpha/slackconnect-backend/internal/model"
)

// UserRepositoryInterface defines the account reads the dispatcher needs
// plus the writes used by the auth layer and the seeder.
type UserRepositoryInterface interface {
	GetByID(id string) (*model.User, error)
	GetBySlackID(slackUserID string) (*model.User, error)
	Create(u *model.User) error
	UpdateWebhookURL(id, webhookURL string) error
	Delete(id string) error
	EnsureWebhookUser(webhookURL string) error
}

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, slack_user_id, team_id, access_token, refresh_token, webhook_url, token_expires_at, created_at, updated_at`

// GetByID fetches a user by ID; returns nil, nil when not found.
func (r *UserRepository) GetByID(id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanOne(r.DB.QueryRow(query, id))
}

func (r *UserRepository) GetBySlackID(slackUserID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE slack_user_id=$1`
	return r.scanOne(r.DB.QueryRow(query, slackUserID))
}

func (r *UserRepository) Create(u *model.User) error {
	now := time.Now().Unix()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
        INSERT INTO users (id, slack_user_id, team_id, access_token, refresh_token, webhook_url, token_expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.DB.Exec(
		query,
		u.ID,
		u.SlackUserID,
		u.TeamID,
		u.AccessToken,
		nullIfEmpty(u.RefreshToken),
		nullIfEmpty(u.WebhookURL),
		u.TokenExpiresAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UserRepository) UpdateWebhookURL(id, webhookURL string) error {
	query := `UPDATE users SET webhook_url=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, nullIfEmpty(webhookURL), time.Now().Unix(), id)
	return err
}

// Delete removes a user; scheduled messages cascade via the FK.
func (r *UserRepository) Delete(id string) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id=$1`, id)
	return err
}

// EnsureWebhookUser inserts the reserved webhook account if missing. The
// placeholder token is never sent anywhere; only the webhook URL matters.
func (r *UserRepository) EnsureWebhookUser(webhookURL string) error {
	existing, err := r.GetByID(model.WebhookUserID)
	if err != nil {
		return err
	}
	if existing != nil {
		if webhookURL != "" && existing.WebhookURL != webhookURL {
			return r.UpdateWebhookURL(model.WebhookUserID, webhookURL)
		}
		return nil
	}
	return r.Create(&model.User{
		ID:          model.WebhookUserID,
		SlackUserID: model.WebhookUserID,
		TeamID:      "teamalpha-team",
		AccessToken: "webhook-token",
		WebhookURL:  webhookURL,
	})
}

func (r *UserRepository) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	var refreshToken, webhookURL sql.NullString
	var tokenExpiresAt sql.NullInt64
	err := row.Scan(
		&u.ID,
		&u.SlackUserID,
		&u.TeamID,
		&u.AccessToken,
		&refreshToken,
		&webhookURL,
		&tokenExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.RefreshToken = refreshToken.String
	u.WebhookURL = webhookURL.String
	if tokenExpiresAt.Valid {
		u.TokenExpiresAt = &tokenExpiresAt.Int64
	}
	return &u, nil
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
