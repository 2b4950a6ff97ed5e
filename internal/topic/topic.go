// Package topic derives the channel names shared by the realtime feed server
// and its clients. Conversation topics must be identical no matter which
// participant derives them, otherwise the two ends subscribe to different
// channels and never see each other's messages.
package topic

import "strings"

// Topic kind prefixes.
const (
	KindChat  = "chat"
	KindGroup = "group"
	KindUser  = "user"
)

// Conversation returns the symmetric topic for a direct conversation.
// The participant ids are sorted so both ends derive the same name.
func Conversation(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return KindChat + ":" + userA + ":" + userB
}

// Group returns the topic for a group conversation.
func Group(groupID string) string {
	return KindGroup + ":" + groupID
}

// UserEvents returns the per-user event stream topic (contact inserts,
// group membership changes).
func UserEvents(userID string) string {
	return KindUser + ":" + userID
}

// Kind reports the prefix of a topic name, or "" if malformed.
func Kind(name string) string {
	idx := strings.IndexByte(name, ':')
	if idx < 0 {
		return ""
	}
	switch kind := name[:idx]; kind {
	case KindChat, KindGroup, KindUser:
		return kind
	default:
		return ""
	}
}

// Participants splits a chat topic back into its sorted participant pair.
// ok is false for non-chat topics.
func Participants(name string) (a, b string, ok bool) {
	if Kind(name) != KindChat {
		return "", "", false
	}
	parts := strings.SplitN(name, ":", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// Resource returns the id portion of a group or user topic.
func Resource(name string) (string, bool) {
	kind := Kind(name)
	if kind != KindGroup && kind != KindUser {
		return "", false
	}
	return name[len(kind)+1:], true
}
