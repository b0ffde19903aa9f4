// internal/slack/channels.go
package slack

import (
	"encoding/json"
	"log"
	"net/http"
)

type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsChannel  bool   `json:"is_channel"`
	IsArchived bool   `json:"is_archived"`
	IsPrivate  bool   `json:"is_private"`
	IsMember   bool   `json:"is_member"`
}

type channelListResponse struct {
	OK       bool      `json:"ok"`
	Error    string    `json:"error"`
	Channels []Channel `json:"channels"`
}

// ListChannels fetches the workspace's unarchived channels. A failed call
// degrades to the fallback list so the picker UI never comes up empty.
func (c *Client) ListChannels(token string) ([]Channel, error) {
	req, err := http.NewRequest(http.MethodGet, c.APIBase+"/conversations.list?exclude_archived=true&limit=1000", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Println("⚠️ Failed to list channels:", err)
		return fallbackChannels(), nil
	}
	defer resp.Body.Close()

	var body channelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Println("⚠️ Failed to decode channel list:", err)
		return fallbackChannels(), nil
	}
	if !body.OK {
		log.Println("⚠️ Slack rejected channel list:", body.Error)
		return fallbackChannels(), nil
	}

	channels := []Channel{}
	for _, ch := range body.Channels {
		if ch.IsChannel && !ch.IsArchived {
			channels = append(channels, ch)
		}
	}
	if len(channels) == 0 {
		return fallbackChannels(), nil
	}
	return channels, nil
}

func fallbackChannels() []Channel {
	return []Channel{
		{ID: "general", Name: "general", IsChannel: true, IsMember: true},
	}
}
