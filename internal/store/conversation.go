package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"bookline.app/core/common/id"
	"bookline.app/core/core/db"
	"bookline.app/core/internal/model"
)

type conversationStore struct {
	q db.Querier
}

const conversationColumns = `id, tenant_id, contact_id, channel, last_message_at, created_at, updated_at`

func (s *conversationStore) GetByID(ctx context.Context, tenantID, convID int64) (*model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE tenant_id = $1 AND id = $2`
	return s.scan(s.q.QueryRow(ctx, query, tenantID, convID))
}

// GetOrCreate returns the conversation for contact+channel, creating it on
// first contact. One conversation per contact per channel.
func (s *conversationStore) GetOrCreate(ctx context.Context, tenantID, contactID int64, channel model.Channel) (*model.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
			  WHERE tenant_id = $1 AND contact_id = $2 AND channel = $3`

	conv, err := s.scan(s.q.QueryRow(ctx, query, tenantID, contactID, channel))
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	insert := `INSERT INTO conversations (id, tenant_id, contact_id, channel, created_at, updated_at)
			   VALUES ($1, $2, $3, $4, now(), now())
			   ON CONFLICT (tenant_id, contact_id, channel) DO UPDATE SET updated_at = now()
			   RETURNING ` + conversationColumns

	return s.scan(s.q.QueryRow(ctx, insert, id.New(), tenantID, contactID, channel))
}

func (s *conversationStore) TouchLastMessage(ctx context.Context, tenantID, convID int64, at time.Time) error {
	query := `UPDATE conversations SET last_message_at = $3, updated_at = now()
			  WHERE tenant_id = $1 AND id = $2`

	tag, err := s.q.Exec(ctx, query, tenantID, convID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *conversationStore) scan(row pgx.Row) (*model.Conversation, error) {
	var conv model.Conversation
	err := row.Scan(
		&conv.ID, &conv.TenantID, &conv.ContactID, &conv.Channel,
		&conv.LastMessageAt, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

type messageStore struct {
	q db.Querier
}

func (s *messageStore) Create(ctx context.Context, msg *model.Message) error {
	query := `INSERT INTO messages (id, tenant_id, conversation_id, direction, sender, body, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, now())`

	_, err := s.q.Exec(ctx, query,
		msg.ID, msg.TenantID, msg.ConversationID, msg.Direction, msg.Sender, msg.Body,
	)
	return err
}

func (s *messageStore) ListByConversation(ctx context.Context, tenantID, conversationID int64, limit int32) ([]model.Message, error) {
	query := `SELECT id, tenant_id, conversation_id, direction, sender, body, created_at
			  FROM messages WHERE tenant_id = $1 AND conversation_id = $2
			  ORDER BY created_at DESC LIMIT $3`

	rows, err := s.q.Query(ctx, query, tenantID, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(
			&msg.ID, &msg.TenantID, &msg.ConversationID,
			&msg.Direction, &msg.Sender, &msg.Body, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
