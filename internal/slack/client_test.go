package slack_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/teamalpha/slackconnect-backend/internal/errors"
	"github.com/teamalpha/slackconnect-backend/internal/slack"
)

func slackAPIStub(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *slack.Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, slack.NewClient(server.URL)
}

func TestSendMessageOK(t *testing.T) {
	var gotAuth string
	_, client := slackAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	if err := client.SendMessage("xoxp-token", "C123", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer xoxp-token" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
}

func TestSendMessageInvalidAuth(t *testing.T) {
	_, client := slackAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "invalid_auth"})
	})

	err := client.SendMessage("bad-token", "C123", "hello")
	se, ok := appErrors.AsSendError(err)
	if !ok || se.Kind != appErrors.SendKindAuth {
		t.Fatalf("expected auth SendError, got %v", err)
	}
	if se.Code != "invalid_auth" {
		t.Errorf("expected code invalid_auth, got %s", se.Code)
	}
}

func TestSendMessageProviderError(t *testing.T) {
	_, client := slackAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
	})

	err := client.SendMessage("xoxp-token", "C404", "hello")
	se, ok := appErrors.AsSendError(err)
	if !ok || se.Kind != appErrors.SendKindProvider {
		t.Fatalf("expected provider SendError, got %v", err)
	}
}

func TestSendMessageServerErrorIsTransport(t *testing.T) {
	_, client := slackAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.SendMessage("xoxp-token", "C123", "hello")
	se, ok := appErrors.AsSendError(err)
	if !ok || se.Kind != appErrors.SendKindTransport {
		t.Fatalf("expected transport SendError, got %v", err)
	}
}

func TestSendMessageConnectionRefusedIsTransport(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := slack.NewClient(server.URL)
	server.Close() // nothing listening anymore

	err := client.SendMessage("xoxp-token", "C123", "hello")
	se, ok := appErrors.AsSendError(err)
	if !ok || se.Kind != appErrors.SendKindTransport {
		t.Fatalf("expected transport SendError, got %v", err)
	}
}

func TestSendWebhookOK(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("webhook request must not carry an auth header")
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := slack.NewClient("")
	if err := client.SendWebhook(server.URL, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["text"] != "hello" {
		t.Errorf("expected text payload, got %+v", gotBody)
	}
}

func TestSendWebhookNon2xxIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := slack.NewClient("").SendWebhook(server.URL, "hello")
	se, ok := appErrors.AsSendError(err)
	if !ok || se.Kind != appErrors.SendKindTransport {
		t.Fatalf("expected transport SendError, got %v", err)
	}
}

func TestTestToken(t *testing.T) {
	_, client := slackAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth.test" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	ok, err := client.TestToken("xoxp-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected token to be valid")
	}
}

func TestListChannelsFiltersArchived(t *testing.T) {
	_, client := slackAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"channels": []map[string]any{
				{"id": "C1", "name": "general", "is_channel": true, "is_archived": false},
				{"id": "C2", "name": "graveyard", "is_channel": true, "is_archived": true},
			},
		})
	})

	channels, err := client.ListChannels("xoxp-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != "C1" {
		t.Errorf("expected only unarchived channels, got %+v", channels)
	}
}

func TestListChannelsFallsBackOnError(t *testing.T) {
	_, client := slackAPIStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "missing_scope"})
	})

	channels, err := client.ListChannels("xoxp-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 1 || channels[0].Name != "general" {
		t.Errorf("expected fallback #general channel, got %+v", channels)
	}
}
