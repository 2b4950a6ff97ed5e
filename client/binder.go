package client

import (
	"context"
	"errors"
	"sync"

	"snaplink/internal/models"
)

// State is the binder lifecycle state.
type State int

const (
	// Idle means no conversation is bound.
	Idle State = iota
	// Loading means the initial history/profile fetch is in flight.
	Loading
	// Ready means the screen has its history and a live subscription.
	Ready
)

// ErrNotActive is returned when sending without an active conversation.
var ErrNotActive = errors.New("no active conversation")

// Binder ties a conversation store, coordinator, and realtime subscription to
// a screen's activation lifecycle. Activation runs the initial load exactly
// once per conversation identity; deactivation tears the subscription down
// exactly once and discards any in-flight results.
type Binder struct {
	history  HistoryFetcher
	profiles ProfileFetcher
	feed     Feed
	sender   Sender

	mu      sync.Mutex
	state   State
	conv    Conversation
	cancel  context.CancelFunc
	sub     Subscription
	store   *ConversationStore
	coord   *Coordinator
	profile models.Profile

	// OnChange receives the full entry sequence after every mutation.
	// OnError receives recoverable failures (load, send, subscribe).
	// Both must be set before Activate and may be nil.
	OnChange func([]Entry)
	OnError  func(error)
}

// NewBinder builds a binder over the injected service surface.
func NewBinder(history HistoryFetcher, profiles ProfileFetcher, feed Feed, sender Sender) *Binder {
	return &Binder{history: history, profiles: profiles, feed: feed, sender: sender}
}

// Activate binds the conversation. Re-activating the same identity is a
// no-op; a different identity tears the previous binding down first. The
// subscription and the history fetch start concurrently; the store's
// dedupe-by-identity makes that race safe.
func (b *Binder) Activate(ctx context.Context, conv Conversation) {
	b.mu.Lock()
	if b.state != Idle {
		if b.conv == conv {
			b.mu.Unlock()
			return
		}
		b.deactivateLocked()
	}

	b.state = Loading
	b.conv = conv
	b.store = NewConversationStore()
	store := b.store
	b.coord = NewCoordinator(conv, store, b.sender, func() {
		b.emitChange(store)
	}, b.emitError)
	coord := b.coord

	actx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	go b.load(actx, conv, store, coord)
}

func (b *Binder) load(ctx context.Context, conv Conversation, store *ConversationStore, coord *Coordinator) {
	// The channel opens first so arrivals during the fetch are not lost;
	// a failure here degrades to send-and-hope rather than blocking the
	// screen. The next activation retries the subscription.
	sub, err := b.feed.Subscribe(ctx, conv.Topic(), coord.OnEvent)
	if err != nil {
		b.emitError(err)
	}

	if sub != nil {
		b.mu.Lock()
		if b.store != store || ctx.Err() != nil {
			b.mu.Unlock()
			sub.Close()
			return
		}
		b.sub = sub
		b.mu.Unlock()
	}

	var (
		wg      sync.WaitGroup
		history []Message
		histErr error
		profile models.Profile
		profErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		history, histErr = b.history.History(ctx, conv, SeedLimit)
	}()

	if conv.Direct() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile, profErr = b.profiles.Profile(ctx, conv.PeerID)
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return
	}
	if histErr != nil {
		b.emitError(histErr)
	}
	if profErr != nil {
		b.emitError(profErr)
	}

	b.mu.Lock()
	if b.store != store || ctx.Err() != nil {
		b.mu.Unlock()
		return
	}
	if histErr == nil {
		store.Seed(history)
	}
	if profErr == nil {
		b.profile = profile
	}
	b.state = Ready
	b.mu.Unlock()

	b.emitChange(store)
}

// Deactivate unbinds the current conversation. Safe to call repeatedly.
func (b *Binder) Deactivate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deactivateLocked()
}

func (b *Binder) deactivateLocked() {
	if b.state == Idle {
		return
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
	b.state = Idle
	b.conv = Conversation{}
	b.store = nil
	b.coord = nil
	b.profile = models.Profile{}
}

// SendText sends a text message through the active conversation.
func (b *Binder) SendText(ctx context.Context, body string) error {
	coord, err := b.activeCoordinator()
	if err != nil {
		return err
	}
	coord.SendText(ctx, body)
	return nil
}

// SendMedia sends an already-uploaded media URL through the active conversation.
func (b *Binder) SendMedia(ctx context.Context, mediaURL string) error {
	coord, err := b.activeCoordinator()
	if err != nil {
		return err
	}
	coord.SendMedia(ctx, mediaURL)
	return nil
}

// State reports the current lifecycle state.
func (b *Binder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Profile returns the counterpart's profile once loaded.
func (b *Binder) Profile() models.Profile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile
}

// Snapshot returns the current entry sequence, or nil when idle.
func (b *Binder) Snapshot() []Entry {
	b.mu.Lock()
	store := b.store
	b.mu.Unlock()
	if store == nil {
		return nil
	}
	return store.Snapshot()
}

func (b *Binder) activeCoordinator() (*Coordinator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.coord == nil {
		return nil, ErrNotActive
	}
	return b.coord, nil
}

// emitChange drops updates for stores that are no longer current, so a
// detached screen never repaints.
func (b *Binder) emitChange(store *ConversationStore) {
	b.mu.Lock()
	current := b.store == store
	onChange := b.OnChange
	b.mu.Unlock()
	if current && onChange != nil {
		onChange(store.Snapshot())
	}
}

func (b *Binder) emitError(err error) {
	if b.OnError != nil && err != nil {
		b.OnError(err)
	}
}
