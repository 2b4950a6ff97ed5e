package client

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(id, sender, content string) Message {
	return Message{
		ID:             id,
		SenderID:       sender,
		ConversationID: "conv-1",
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

func TestStoreAppendDeduplicates(t *testing.T) {
	store := NewConversationStore()

	require.True(t, store.Append(testMessage("m1", "alice", "hi")))
	require.False(t, store.Append(testMessage("m1", "alice", "hi")))
	require.False(t, store.Append(testMessage("m1", "alice", "different body, same id")))

	assert.Equal(t, 1, store.Len())
}

func TestStoreSeedPreservesOrder(t *testing.T) {
	store := NewConversationStore()

	history := []Message{
		testMessage("m1", "alice", "first"),
		testMessage("m2", "bob", "second"),
		testMessage("m3", "alice", "third"),
	}
	store.Seed(history)

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 3)
	for i, msg := range history {
		assert.Equal(t, msg.ID, snapshot[i].ID)
		assert.Equal(t, Confirmed, snapshot[i].State)
	}
}

func TestStoreSeedCapsToLimit(t *testing.T) {
	store := NewConversationStore()

	history := make([]Message, SeedLimit+20)
	for i := range history {
		history[i] = testMessage(fmt.Sprintf("m%d", i), "alice", "x")
	}
	store.Seed(history)

	snapshot := store.Snapshot()
	require.Len(t, snapshot, SeedLimit)
	assert.Equal(t, "m20", snapshot[0].ID)
	assert.Equal(t, fmt.Sprintf("m%d", SeedLimit+19), snapshot[SeedLimit-1].ID)
}

func TestStoreSeedKeepsEarlyArrivals(t *testing.T) {
	store := NewConversationStore()

	// A realtime delivery and a placeholder land before the history page.
	require.True(t, store.Append(testMessage("m9", "bob", "raced the fetch")))
	store.Stage(testMessage("tmp-1", "alice", "optimistic"))

	store.Seed([]Message{
		testMessage("m1", "alice", "old"),
		testMessage("m9", "bob", "raced the fetch"), // page already has it
	})

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "m1", snapshot[0].ID)
	assert.Equal(t, "m9", snapshot[1].ID)
	assert.Equal(t, "tmp-1", snapshot[2].ID)
	assert.Equal(t, Pending, snapshot[2].State)
}

func TestStoreResolveKeepsPosition(t *testing.T) {
	store := NewConversationStore()

	store.Append(testMessage("m1", "bob", "before"))
	store.Stage(testMessage("tmp-1", "alice", "hello"))
	store.Append(testMessage("m2", "bob", "after"))

	confirmed := testMessage("m5", "alice", "hello")
	require.True(t, store.Resolve("tmp-1", confirmed))

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "m5", snapshot[1].ID)
	assert.Equal(t, Confirmed, snapshot[1].State)
	assert.False(t, store.Contains("tmp-1"))
}

func TestStoreResolveDropsPlaceholderWhenEchoAlreadyPresent(t *testing.T) {
	store := NewConversationStore()

	store.Stage(testMessage("tmp-1", "alice", "hello"))
	confirmed := testMessage("m5", "alice", "hello")
	store.Append(confirmed)

	require.True(t, store.Resolve("tmp-1", confirmed))

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "m5", snapshot[0].ID)
}

func TestStoreResolveUnknownTempID(t *testing.T) {
	store := NewConversationStore()
	assert.False(t, store.Resolve("tmp-missing", testMessage("m1", "alice", "x")))
}

func TestStoreFailMarksPlaceholder(t *testing.T) {
	store := NewConversationStore()

	store.Stage(testMessage("tmp-1", "alice", "doomed"))
	require.True(t, store.Fail("tmp-1"))
	assert.False(t, store.Fail("tmp-2"))

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, Failed, snapshot[0].State)
	// The entry stays visible so the screen can offer a retry.
	assert.True(t, store.Contains("tmp-1"))
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := NewConversationStore()
	store.Append(testMessage("m1", "alice", "hi"))

	snapshot := store.Snapshot()
	snapshot[0].Content = "mutated"

	assert.Equal(t, "hi", store.Snapshot()[0].Content)
}
