// internal/model/user.go
package model

// WebhookUserID is the reserved account used for unauthenticated
// webhook-path sends. Its access token is a non-functional placeholder;
// its webhook URL is the one actually used for delivery.
const WebhookUserID = "webhook-user"

type User struct {
	ID             string `db:"id" json:"id"`
	SlackUserID    string `db:"slack_user_id" json:"slack_user_id"`
	TeamID         string `db:"team_id" json:"team_id"`
	AccessToken    string `db:"access_token" json:"-"`
	RefreshToken   string `db:"refresh_token" json:"-"`
	WebhookURL     string `db:"webhook_url" json:"webhook_url,omitempty"`
	TokenExpiresAt *int64 `db:"token_expires_at" json:"token_expires_at,omitempty"`
	CreatedAt      int64  `db:"created_at" json:"created_at"`
	UpdatedAt      int64  `db:"updated_at" json:"updated_at"`
}
