package model

import (
	"time"
)

// AssistantSenderID and AssistantSenderName identify the assistant side of a
// conversation in stored history and in job results.
const (
	AssistantSenderID   = "gpt"
	AssistantSenderName = "Mosha AI"
)

// ChatMessage is one entry in a user's conversation history.
type ChatMessage struct {
	ID         string
	OwnerID    string
	SenderID   string
	SenderName string
	Role       string // "user" | "assistant"
	Message    string
	Timestamp  time.Time
}

func NewUserMessage(id, ownerID, senderName, text string) *ChatMessage {
	return &ChatMessage{
		ID:         id,
		OwnerID:    ownerID,
		SenderID:   ownerID,
		SenderName: senderName,
		Role:       "user",
		Message:    text,
		Timestamp:  time.Now(),
	}
}

func NewAssistantMessage(id, ownerID, text string) *ChatMessage {
	return &ChatMessage{
		ID:         id,
		OwnerID:    ownerID,
		SenderID:   AssistantSenderID,
		SenderName: AssistantSenderName,
		Role:       "assistant",
		Message:    text,
		Timestamp:  time.Now(),
	}
}

// Recent returns the last n messages in order, or all of them when fewer exist.
func Recent(msgs []ChatMessage, n int) []ChatMessage {
	if n <= 0 || len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
