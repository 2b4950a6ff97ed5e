package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaplink/internal/models"
)

type fakeSubscription struct {
	mu     sync.Mutex
	closed int
}

func (s *fakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSubscription) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeFeed struct {
	mu        sync.Mutex
	subs      map[string]*fakeSubscription
	onMessage map[string]func(Message)
	err       error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[string]*fakeSubscription), onMessage: make(map[string]func(Message))}
}

func (f *fakeFeed) Subscribe(ctx context.Context, topicName string, onMessage func(Message)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sub := &fakeSubscription{}
	f.subs[topicName] = sub
	f.onMessage[topicName] = onMessage
	return sub, nil
}

func (f *fakeFeed) deliver(topicName string, msg Message) {
	f.mu.Lock()
	fn := f.onMessage[topicName]
	f.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func (f *fakeFeed) subscription(topicName string) *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[topicName]
}

type fakeBackend struct {
	mu      sync.Mutex
	history []Message
	histErr error
	profile models.Profile
	block   chan struct{} // when non-nil, History waits on it
}

func (b *fakeBackend) History(ctx context.Context, conv Conversation, limit int) ([]Message, error) {
	b.mu.Lock()
	block := b.block
	history := b.history
	err := b.histErr
	b.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return history, err
}

func (b *fakeBackend) Profile(ctx context.Context, userID string) (models.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile, nil
}

func (b *fakeBackend) SendMessage(ctx context.Context, conv Conversation, content, mediaURL string) error {
	return nil
}

func waitForState(t *testing.T, b *Binder, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return b.State() == want }, time.Second, 5*time.Millisecond)
}

func TestBinderActivateLoadsHistoryAndProfile(t *testing.T) {
	feed := newFakeFeed()
	backend := &fakeBackend{
		history: []Message{testMessage("m1", "bob", "hi"), testMessage("m2", "alice", "hey")},
		profile: models.Profile{ID: "bob", Username: "bob"},
	}
	binder := NewBinder(backend, backend, feed, backend)

	conv := Conversation{SelfID: "alice", PeerID: "bob"}
	binder.Activate(context.Background(), conv)
	waitForState(t, binder, Ready)

	entries := binder.Snapshot()
	require.Len(t, entries, 2)
	assert.Equal(t, "m1", entries[0].ID)
	assert.Equal(t, "bob", binder.Profile().Username)
	require.NotNil(t, feed.subscription(conv.Topic()))
}

func TestBinderReactivateSameConversationIsNoOp(t *testing.T) {
	feed := newFakeFeed()
	backend := &fakeBackend{}
	binder := NewBinder(backend, backend, feed, backend)

	conv := Conversation{SelfID: "alice", PeerID: "bob"}
	binder.Activate(context.Background(), conv)
	waitForState(t, binder, Ready)

	sub := feed.subscription(conv.Topic())
	binder.Activate(context.Background(), conv)

	assert.Equal(t, 0, sub.closeCount())
	assert.Equal(t, Ready, binder.State())
}

func TestBinderSwitchingConversationReopens(t *testing.T) {
	feed := newFakeFeed()
	backend := &fakeBackend{}
	binder := NewBinder(backend, backend, feed, backend)

	first := Conversation{SelfID: "alice", PeerID: "bob"}
	binder.Activate(context.Background(), first)
	waitForState(t, binder, Ready)
	firstSub := feed.subscription(first.Topic())

	second := Conversation{SelfID: "alice", PeerID: "carol"}
	binder.Activate(context.Background(), second)
	waitForState(t, binder, Ready)

	assert.Equal(t, 1, firstSub.closeCount())
	require.NotNil(t, feed.subscription(second.Topic()))
}

func TestBinderDeactivateIsIdempotent(t *testing.T) {
	feed := newFakeFeed()
	backend := &fakeBackend{}
	binder := NewBinder(backend, backend, feed, backend)

	conv := Conversation{SelfID: "alice", PeerID: "bob"}
	binder.Activate(context.Background(), conv)
	waitForState(t, binder, Ready)
	sub := feed.subscription(conv.Topic())

	binder.Deactivate()
	binder.Deactivate()
	binder.Deactivate()

	assert.Equal(t, 1, sub.closeCount())
	assert.Equal(t, Idle, binder.State())
	assert.Nil(t, binder.Snapshot())
}

func TestBinderDiscardsLateHistoryAfterDeactivate(t *testing.T) {
	feed := newFakeFeed()
	block := make(chan struct{})
	backend := &fakeBackend{
		history: []Message{testMessage("m1", "bob", "stale")},
		block:   block,
	}
	binder := NewBinder(backend, backend, feed, backend)

	conv := Conversation{SelfID: "alice", PeerID: "bob"}
	binder.Activate(context.Background(), conv)
	binder.Deactivate()
	close(block)

	// The late fetch must not resurrect state or repaint.
	assert.Equal(t, Idle, binder.State())
	assert.Nil(t, binder.Snapshot())
}

func TestBinderSubscribeFailureDegradesToSendOnly(t *testing.T) {
	feed := newFakeFeed()
	feed.err = assert.AnError
	backend := &fakeBackend{history: []Message{testMessage("m1", "bob", "hi")}}
	binder := NewBinder(backend, backend, feed, backend)

	var mu sync.Mutex
	var errs []error
	binder.OnError = func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	conv := Conversation{SelfID: "alice", PeerID: "bob"}
	binder.Activate(context.Background(), conv)
	waitForState(t, binder, Ready)

	mu.Lock()
	require.NotEmpty(t, errs)
	mu.Unlock()

	// History still loaded and sends still work.
	require.Len(t, binder.Snapshot(), 1)
	require.NoError(t, binder.SendText(context.Background(), "still works"))
}

func TestBinderSendWithoutActivation(t *testing.T) {
	binder := NewBinder(&fakeBackend{}, &fakeBackend{}, newFakeFeed(), &fakeBackend{})
	assert.ErrorIs(t, binder.SendText(context.Background(), "hi"), ErrNotActive)
	assert.ErrorIs(t, binder.SendMedia(context.Background(), "https://x/y.jpg"), ErrNotActive)
}

func TestBinderRealtimeDeliveryReachesStore(t *testing.T) {
	feed := newFakeFeed()
	backend := &fakeBackend{}
	binder := NewBinder(backend, backend, feed, backend)

	var mu sync.Mutex
	var last []Entry
	binder.OnChange = func(entries []Entry) {
		mu.Lock()
		last = entries
		mu.Unlock()
	}

	conv := Conversation{SelfID: "alice", PeerID: "bob"}
	binder.Activate(context.Background(), conv)
	waitForState(t, binder, Ready)

	feed.deliver(conv.Topic(), Message{ID: "m1", SenderID: "bob", ConversationID: "alice", Content: "hey"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 1 && last[0].ID == "m1"
	}, time.Second, 5*time.Millisecond)
}
