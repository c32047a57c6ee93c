package repository

import (
	"context"

	"mosha-chat-backend/internal/domain/model"
)

// ChatMessageRepository stores per-user conversation history.
type ChatMessageRepository interface {
	Save(ctx context.Context, tx Tx, msg *model.ChatMessage) error

	// ListByOwner returns the owner's messages in timestamp-ascending order.
	ListByOwner(ctx context.Context, tx Tx, ownerID string) ([]model.ChatMessage, error)

	// RecentByOwner returns up to n most recent messages, oldest first.
	RecentByOwner(ctx context.Context, tx Tx, ownerID string, n int) ([]model.ChatMessage, error)
}
