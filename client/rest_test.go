package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaplink/internal/models"
)

func startRESTServer(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewRESTClient(server.URL, "test-token")
}

func TestRESTHistoryDirectNormalizes(t *testing.T) {
	client := startRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/bob/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []models.Message{
				{ID: "m1", SenderID: "bob", RecipientID: "alice", Content: "hi", ImageURL: "https://cdn/p.jpg"},
			},
		})
	})

	msgs, err := client.History(context.Background(), Conversation{SelfID: "alice", PeerID: "bob"}, 100)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "alice", msgs[0].ConversationID)
	assert.Equal(t, "https://cdn/p.jpg", msgs[0].MediaURL)
}

func TestRESTHistoryGroupNormalizes(t *testing.T) {
	client := startRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/g1/messages", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []models.GroupMessage{
				{ID: "gm1", GroupID: "g1", SenderID: "carol", Content: "yo"},
			},
		})
	})

	msgs, err := client.History(context.Background(), Conversation{SelfID: "alice", GroupID: "g1"}, 100)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "g1", msgs[0].ConversationID)
}

func TestRESTSendMessageDirect(t *testing.T) {
	client := startRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/conversations/bob/messages", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["content"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"message": models.Message{ID: "m1"}})
	})

	err := client.SendMessage(context.Background(), Conversation{SelfID: "alice", PeerID: "bob"}, "hello", "")
	require.NoError(t, err)
}

func TestRESTSendMessageGroupPath(t *testing.T) {
	client := startRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/g1/messages", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"message": models.GroupMessage{ID: "gm1"}})
	})

	err := client.SendMessage(context.Background(), Conversation{SelfID: "alice", GroupID: "g1"}, "hi all", "")
	require.NoError(t, err)
}

func TestRESTErrorDecoding(t *testing.T) {
	client := startRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "not a group member"})
	})

	err := client.SendMessage(context.Background(), Conversation{SelfID: "alice", GroupID: "g1"}, "hi", "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "not a group member")
}

func TestRESTProfile(t *testing.T) {
	client := startRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profiles/bob", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"profile": models.Profile{ID: "bob", Username: "bob"}})
	})

	profile, err := client.Profile(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
}

func TestRESTHistorySendsLimit(t *testing.T) {
	client := startRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations/bob/messages", r.URL.Path)
		assert.Equal(t, "40", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{"messages": []models.Message{}})
	})

	_, err := client.History(context.Background(), Conversation{SelfID: "alice", PeerID: "bob"}, 40)
	require.NoError(t, err)
}

func TestRESTHistoryOmitsZeroLimit(t *testing.T) {
	client := startRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("limit"))
		json.NewEncoder(w).Encode(map[string]any{"messages": []models.GroupMessage{}})
	})

	_, err := client.History(context.Background(), Conversation{SelfID: "alice", GroupID: "g1"}, 0)
	require.NoError(t, err)
}
