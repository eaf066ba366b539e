package models

import (
	"sort"
	"time"
)

type Message struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// ConversationMessage is the per-conversation view of a message.
type ConversationMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

type Conversation struct {
	OtherUserID string                `json:"otherUserId"`
	Messages    []ConversationMessage `json:"messages"`
}

// LastTimestamp returns the timestamp of the newest message.
func (c Conversation) LastTimestamp() time.Time {
	if len(c.Messages) == 0 {
		return time.Time{}
	}
	return c.Messages[len(c.Messages)-1].Timestamp
}

// BuildConversations groups the messages touching userID by counterpart.
// Messages are ascending inside a conversation and conversations are
// ordered by their newest message, most recent first.
func BuildConversations(userID string, messages []Message) []Conversation {
	index := make(map[string]int)
	conversations := make([]Conversation, 0)

	for _, msg := range messages {
		var other string
		switch userID {
		case msg.FromUserID:
			other = msg.ToUserID
		case msg.ToUserID:
			other = msg.FromUserID
		default:
			continue
		}

		pos, ok := index[other]
		if !ok {
			pos = len(conversations)
			index[other] = pos
			conversations = append(conversations, Conversation{OtherUserID: other})
		}
		conversations[pos].Messages = append(conversations[pos].Messages, ConversationMessage{
			ID:         msg.ID,
			SenderID:   msg.FromUserID,
			ReceiverID: msg.ToUserID,
			Text:       msg.Content,
			Timestamp:  msg.Timestamp,
			Read:       msg.Read,
		})
	}

	for i := range conversations {
		msgs := conversations[i].Messages
		sort.SliceStable(msgs, func(a, b int) bool {
			return msgs[a].Timestamp.Before(msgs[b].Timestamp)
		})
	}

	sort.SliceStable(conversations, func(a, b int) bool {
		return conversations[a].LastTimestamp().After(conversations[b].LastTimestamp())
	})

	return conversations
}
