package models

import "time"

// DefaultGroupWindow is how long after a group's first message a follow-up from
// the same author is still folded into that group.
const DefaultGroupWindow = 5 * time.Minute

// MessageGroup is a run of consecutive messages from one author, built for
// display only and never persisted.
type MessageGroup struct {
	Messages  []Message `json:"messages"`
	Username  string    `json:"username"`
	AvatarID  *string   `json:"avatarId"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupMessages clusters chronologically ordered messages. A user message joins
// the previous group when the author matches and it was sent within window of
// the group's first message. System and temp messages always start their own group.
func GroupMessages(messages []Message, window time.Duration) []MessageGroup {
	var groups []MessageGroup
	for _, msg := range messages {
		if n := len(groups); n > 0 && joinsGroup(groups[n-1], msg, window) {
			groups[n-1].Messages = append(groups[n-1].Messages, msg)
			continue
		}
		groups = append(groups, MessageGroup{
			Messages:  []Message{msg},
			Username:  msg.Username,
			AvatarID:  msg.AvatarID,
			CreatedAt: msg.CreatedAt,
		})
	}
	return groups
}

func joinsGroup(g MessageGroup, msg Message, window time.Duration) bool {
	first := g.Messages[0]
	if first.Type != MessageTypeUser || msg.Type != MessageTypeUser {
		return false
	}
	if g.Username != msg.Username {
		return false
	}
	elapsed := msg.CreatedAt.Sub(g.CreatedAt)
	return elapsed >= 0 && elapsed <= window
}
