package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"00000000-0000-0000-0000-000000000002", "00000000-0000-0000-0000-000000000001"},
		{"same", "same"},
	}
	for _, pair := range pairs {
		assert.Equal(t, Conversation(pair[0], pair[1]), Conversation(pair[1], pair[0]))
	}
}

func TestConversationOrdersParticipants(t *testing.T) {
	assert.Equal(t, "chat:alice:bob", Conversation("bob", "alice"))
	assert.Equal(t, "chat:alice:bob", Conversation("alice", "bob"))
}

func TestGroupAndUserTopics(t *testing.T) {
	assert.Equal(t, "group:g1", Group("g1"))
	assert.Equal(t, "user:u1", UserEvents("u1"))
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindChat, Kind("chat:a:b"))
	assert.Equal(t, KindGroup, Kind("group:g1"))
	assert.Equal(t, KindUser, Kind("user:u1"))
	assert.Equal(t, "", Kind("bogus:x"))
	assert.Equal(t, "", Kind("no-colon"))
}

func TestParticipants(t *testing.T) {
	a, b, ok := Participants("chat:alice:bob")
	require.True(t, ok)
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)

	_, _, ok = Participants("group:g1")
	assert.False(t, ok)
	_, _, ok = Participants("chat::bob")
	assert.False(t, ok)
}

func TestResource(t *testing.T) {
	id, ok := Resource("group:g1")
	require.True(t, ok)
	assert.Equal(t, "g1", id)

	id, ok = Resource("user:u1")
	require.True(t, ok)
	assert.Equal(t, "u1", id)

	_, ok = Resource("chat:a:b")
	assert.False(t, ok)
}
