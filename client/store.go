package client

import "sync"

// DeliveryState marks how far an entry has made it toward durability.
type DeliveryState int

const (
	// Pending is a locally-created placeholder awaiting its server echo.
	Pending DeliveryState = iota
	// Confirmed is a server-persisted row.
	Confirmed
	// Failed is a placeholder whose durable write was rejected.
	Failed
)

// SeedLimit caps the historical page held by a store.
const SeedLimit = 100

// Entry is one rendered message plus its delivery state.
type Entry struct {
	Message
	State DeliveryState
}

// ConversationStore is the ordered, deduplicated message sequence for one
// conversation. It is owned by a single screen and discarded with it.
type ConversationStore struct {
	mu      sync.Mutex
	entries []Entry
	index   map[string]int
}

// NewConversationStore creates an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{index: make(map[string]int)}
}

// Seed installs the historical page, given oldest first. Entries already in
// the store (realtime arrivals or placeholders that raced the fetch) are
// kept, re-appended after the page unless the page already contains them.
func (s *ConversationStore) Seed(history []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(history) > SeedLimit {
		history = history[len(history)-SeedLimit:]
	}

	prior := s.entries
	s.entries = make([]Entry, 0, len(history)+len(prior))
	s.index = make(map[string]int, len(history)+len(prior))

	for _, msg := range history {
		s.appendLocked(Entry{Message: msg, State: Confirmed})
	}
	for _, entry := range prior {
		s.appendLocked(entry)
	}
}

// Append adds a confirmed message unless an entry with the same identity
// already exists. Returns whether insertion occurred.
func (s *ConversationStore) Append(msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(Entry{Message: msg, State: Confirmed})
}

// Stage adds a pending placeholder.
func (s *ConversationStore) Stage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(Entry{Message: msg, State: Pending})
}

// Resolve replaces the placeholder identified by tempID with its confirmed
// echo, keeping the placeholder's position. If the echo is already present
// under its own identity the placeholder is dropped instead, so the
// conversation never shows the same action twice.
func (s *ConversationStore) Resolve(tempID string, confirmed Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[tempID]
	if !ok {
		return false
	}

	if _, dup := s.index[confirmed.ID]; dup {
		s.removeLocked(pos)
		return true
	}

	delete(s.index, tempID)
	s.entries[pos] = Entry{Message: confirmed, State: Confirmed}
	s.index[confirmed.ID] = pos
	return true
}

// Fail marks the placeholder identified by tempID as failed.
func (s *ConversationStore) Fail(tempID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[tempID]
	if !ok {
		return false
	}
	s.entries[pos].State = Failed
	return true
}

// Contains reports whether an entry with the identity exists.
func (s *ConversationStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// Len returns the number of entries.
func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns a copy of the current sequence.
func (s *ConversationStore) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *ConversationStore) appendLocked(entry Entry) bool {
	if _, ok := s.index[entry.ID]; ok {
		return false
	}
	s.index[entry.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	return true
}

func (s *ConversationStore) removeLocked(pos int) {
	delete(s.index, s.entries[pos].ID)
	s.entries = append(s.entries[:pos], s.entries[pos+1:]...)
	for i := pos; i < len(s.entries); i++ {
		s.index[s.entries[i].ID] = i
	}
}
