package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// tempIDPrefix distinguishes placeholder identities from server-assigned ones.
const tempIDPrefix = "tmp-"

// defaultMatchWindow bounds how long after a send its echo can still claim
// the placeholder.
const defaultMatchWindow = 2 * time.Minute

// TempID generates a placeholder message identity.
func TempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether an identity is a local placeholder.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

type pendingSend struct {
	tempID   string
	content  string
	mediaURL string
	at       time.Time
}

// Coordinator implements optimistic sends for one conversation: a placeholder
// becomes visible synchronously, the durable write happens in the background,
// and the realtime echo later replaces the placeholder so exactly one bubble
// remains.
type Coordinator struct {
	store  *ConversationStore
	sender Sender
	conv   Conversation

	now         func() time.Time
	matchWindow time.Duration

	mu      sync.Mutex
	pending []pendingSend

	onChange func()
	onError  func(error)
}

// NewCoordinator builds a coordinator bound to one store and conversation.
// onChange fires after every store mutation; onError after a failed durable
// write. Either callback may be nil.
func NewCoordinator(conv Conversation, store *ConversationStore, sender Sender, onChange func(), onError func(error)) *Coordinator {
	return &Coordinator{
		store:       store,
		sender:      sender,
		conv:        conv,
		now:         time.Now,
		matchWindow: defaultMatchWindow,
		onChange:    onChange,
		onError:     onError,
	}
}

// SendText stages a text message and issues the durable write without
// blocking the caller. The placeholder is visible in the store before this
// method returns.
func (c *Coordinator) SendText(ctx context.Context, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	c.send(ctx, body, "")
}

// SendMedia stages a media message for an already-uploaded public URL.
func (c *Coordinator) SendMedia(ctx context.Context, mediaURL string) {
	if mediaURL == "" {
		return
	}
	c.send(ctx, "", mediaURL)
}

func (c *Coordinator) send(ctx context.Context, content, mediaURL string) {
	placeholder := Message{
		ID:             TempID(),
		SenderID:       c.conv.SelfID,
		ConversationID: c.conv.ID(),
		Content:        content,
		MediaURL:       mediaURL,
		CreatedAt:      c.now(),
	}

	c.store.Stage(placeholder)
	c.mu.Lock()
	c.pending = append(c.pending, pendingSend{
		tempID:   placeholder.ID,
		content:  content,
		mediaURL: mediaURL,
		at:       placeholder.CreatedAt,
	})
	c.mu.Unlock()
	c.emitChange()

	go func() {
		if err := c.sender.SendMessage(ctx, c.conv, content, mediaURL); err != nil {
			c.dropPending(placeholder.ID)
			c.store.Fail(placeholder.ID)
			c.emitChange()
			if c.onError != nil {
				c.onError(err)
			}
		}
	}()
}

// OnEvent feeds a realtime delivery into the store. An echo of one of our own
// pending sends resolves its placeholder; everything else appends with
// dedupe-by-identity.
func (c *Coordinator) OnEvent(msg Message) {
	if !c.conv.Matches(msg) {
		return
	}

	if msg.SenderID == c.conv.SelfID {
		if tempID, ok := c.claimPending(msg); ok {
			if c.store.Resolve(tempID, msg) {
				c.emitChange()
				return
			}
		}
	}

	if c.store.Append(msg) {
		c.emitChange()
	}
}

// claimPending finds and removes the oldest pending send matching the echo's
// content within the match window.
func (c *Coordinator) claimPending(msg Message) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for i, p := range c.pending {
		if p.content != msg.Content || p.mediaURL != msg.MediaURL {
			continue
		}
		if now.Sub(p.at) > c.matchWindow {
			continue
		}
		c.pending = append(c.pending[:i], c.pending[i+1:]...)
		return p.tempID, true
	}
	return "", false
}

func (c *Coordinator) dropPending(tempID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if p.tempID == tempID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func (c *Coordinator) emitChange() {
	if c.onChange != nil {
		c.onChange()
	}
}
