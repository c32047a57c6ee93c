package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/domain/ports/repository"
	"mosha-chat-backend/internal/infra/security"
)

// chatMessageRepo persists conversation history, optionally encrypted at rest.
var _ repository.ChatMessageRepository = (*chatMessageRepo)(nil)

type chatMessageRepo struct {
	pool   *pgxpool.Pool
	encSvc *security.EncryptionService // nil disables encryption
}

func NewChatMessageRepo(pool *pgxpool.Pool, encSvc *security.EncryptionService) *chatMessageRepo {
	return &chatMessageRepo{pool: pool, encSvc: encSvc}
}

func (r *chatMessageRepo) Save(ctx context.Context, tx repository.Tx, m *model.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	payload := m.Message
	encFlag := false
	if r.encSvc != nil {
		enc, err := r.encSvc.Encrypt(m.Message)
		if err != nil {
			return fmt.Errorf("encrypt msg: %w", err)
		}
		payload = enc
		encFlag = true
	}

	const q = `
INSERT INTO chat_messages (id, owner_id, sender_id, sender_name, role, message, encrypted, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,COALESCE($8,NOW()));`
	_, err := execSQL(ctx, r.pool, tx, q,
		m.ID, m.OwnerID, m.SenderID, m.SenderName, m.Role, payload, encFlag, m.Timestamp)
	if err != nil {
		return fmt.Errorf("save chat message: %w", err)
	}
	return nil
}

func (r *chatMessageRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]model.ChatMessage, error) {
	const q = `
SELECT id, owner_id, sender_id, sender_name, role, message, encrypted, created_at
  FROM chat_messages
 WHERE owner_id = $1
 ORDER BY created_at ASC;`
	return r.queryMessages(ctx, tx, q, ownerID)
}

func (r *chatMessageRepo) RecentByOwner(ctx context.Context, tx repository.Tx, ownerID string, n int) ([]model.ChatMessage, error) {
	const q = `
SELECT id, owner_id, sender_id, sender_name, role, message, encrypted, created_at
  FROM (SELECT id, owner_id, sender_id, sender_name, role, message, encrypted, created_at
          FROM chat_messages
         WHERE owner_id = $1
         ORDER BY created_at DESC
         LIMIT $2) t
 ORDER BY created_at ASC;`
	return r.queryMessages(ctx, tx, q, ownerID, n)
}

func (r *chatMessageRepo) queryMessages(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]model.ChatMessage, error) {
	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var out []model.ChatMessage
	for rows.Next() {
		var (
			m   model.ChatMessage
			enc bool
		)
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.SenderID, &m.SenderName, &m.Role, &m.Message, &enc, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if enc {
			if r.encSvc == nil {
				return nil, fmt.Errorf("encrypted message %s but no encryption key configured", m.ID)
			}
			pt, err := r.encSvc.Decrypt(m.Message)
			if err != nil {
				return nil, fmt.Errorf("decrypt msg %s: %w", m.ID, err)
			}
			m.Message = pt
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
