package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"snaplink/internal/models"
)

// APIError carries the status code and server-provided message of a failed
// REST call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// RESTClient talks to the service's HTTP API. It implements ProfileFetcher,
// HistoryFetcher and Sender, so a Binder can run entirely on top of it plus
// a WSFeed.
type RESTClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewRESTClient builds a client for the given base URL and bearer token.
func NewRESTClient(baseURL, token string) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Profile fetches a single profile by id.
func (c *RESTClient) Profile(ctx context.Context, userID string) (models.Profile, error) {
	var out struct {
		Profile models.Profile `json:"profile"`
	}
	err := c.do(ctx, http.MethodGet, "/profiles/"+userID, nil, &out)
	return out.Profile, err
}

// History loads the most recent page of a conversation, oldest first.
func (c *RESTClient) History(ctx context.Context, conv Conversation, limit int) ([]Message, error) {
	if conv.Direct() {
		var out struct {
			Messages []models.Message `json:"messages"`
		}
		path := historyPath("/conversations/"+conv.PeerID+"/messages", limit)
		if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
			return nil, err
		}
		msgs := make([]Message, 0, len(out.Messages))
		for _, m := range out.Messages {
			msgs = append(msgs, fromDirect(m))
		}
		return msgs, nil
	}

	var out struct {
		Messages []models.GroupMessage `json:"messages"`
	}
	path := historyPath("/groups/"+conv.GroupID+"/messages", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, fromGroup(m))
	}
	return msgs, nil
}

func historyPath(path string, limit int) string {
	if limit <= 0 {
		return path
	}
	return path + "?limit=" + strconv.Itoa(limit)
}

// SendMessage performs the durable write for an outgoing message. The
// confirmed row arrives back through the realtime feed.
func (c *RESTClient) SendMessage(ctx context.Context, conv Conversation, content, mediaURL string) error {
	body := map[string]string{"content": content, "image_url": mediaURL}
	path := "/conversations/" + conv.PeerID + "/messages"
	if !conv.Direct() {
		path = "/groups/" + conv.GroupID + "/messages"
	}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// Contacts returns the caller's contact list with joined profiles.
func (c *RESTClient) Contacts(ctx context.Context) ([]models.Profile, error) {
	var out struct {
		Contacts []models.Profile `json:"contacts"`
	}
	err := c.do(ctx, http.MethodGet, "/contacts", nil, &out)
	return out.Contacts, err
}

// AddContact links another user to the caller's contact list.
func (c *RESTClient) AddContact(ctx context.Context, contactID string) error {
	return c.do(ctx, http.MethodPost, "/contacts", map[string]string{"contact_id": contactID}, nil)
}

// Groups returns the groups the caller belongs to.
func (c *RESTClient) Groups(ctx context.Context) ([]models.Group, error) {
	var out struct {
		Groups []models.Group `json:"groups"`
	}
	err := c.do(ctx, http.MethodGet, "/groups", nil, &out)
	return out.Groups, err
}

// NearbyStories returns active stories around a location.
func (c *RESTClient) NearbyStories(ctx context.Context, lat, lon float64) ([]models.StoryWithAuthor, error) {
	var out struct {
		Stories []models.StoryWithAuthor `json:"stories"`
	}
	path := fmt.Sprintf("/stories/nearby?lat=%f&lon=%f", lat, lon)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Stories, err
}

func (c *RESTClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var (
	_ ProfileFetcher = (*RESTClient)(nil)
	_ HistoryFetcher = (*RESTClient)(nil)
	_ Sender         = (*RESTClient)(nil)
)
