// internal/slack/client.go
package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	appErrors "github.com/teamalpha/slackconnect-backend/internal/errors"
)

const DefaultAPIBase = "https://slack.com/api"

// The send timeout bounds every gateway call; a timeout classifies as a
// transport error and the dispatcher retries the message next cycle.
const defaultTimeout = 5 * time.Second

// authErrorCodes are the Slack error strings that mean the stored
// credential is dead and the message will never send without
// re-authorization.
var authErrorCodes = map[string]bool{
	"invalid_auth":     true,
	"not_authed":       true,
	"token_revoked":    true,
	"token_expired":    true,
	"account_inactive": true,
}

// Client talks to the Slack Web API and to incoming webhooks. It never
// retries; retry policy belongs to the dispatcher.
type Client struct {
	APIBase    string
	HTTPClient *http.Client
}

func NewClient(apiBase string) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		APIBase:    apiBase,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// SendMessage posts text to a channel via chat.postMessage using the
// owner's token. Failures map onto the send-error taxonomy: dead
// credentials to auth, provider rejections to provider, everything
// network-shaped to transport.
func (c *Client) SendMessage(token, channelID, text string) error {
	payload := map[string]string{
		"channel": channelID,
		"text":    text,
	}
	resp, err := c.postJSON(c.APIBase+"/chat.postMessage", token, payload)
	if err != nil {
		return appErrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.NewTransportError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return appErrors.NewTransportError(err)
	}
	if !body.OK {
		if authErrorCodes[body.Error] {
			return appErrors.NewAuthError(body.Error)
		}
		return appErrors.NewProviderError(body.Error)
	}
	return nil
}

// SendWebhook posts the payload to a fixed webhook URL with no auth
// header. Any non-2xx or transport failure is a transport error.
func (c *Client) SendWebhook(webhookURL, text string) error {
	payload := map[string]string{"text": text}
	resp, err := c.postJSON(webhookURL, "", payload)
	if err != nil {
		return appErrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.NewTransportError(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
	return nil
}

// TestToken calls auth.test and reports whether the token is still valid.
func (c *Client) TestToken(token string) (bool, error) {
	req, err := http.NewRequest(http.MethodGet, c.APIBase+"/auth.test", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.OK, nil
}

func (c *Client) postJSON(url, token string, payload interface{}) (*http.Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.HTTPClient.Do(req)
}
