package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schwarzesbrett/domain"
)

func (r *PgRepository) CreateMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	var created domain.Message
	query := `
		INSERT INTO messages (ad_id, sender_id, recipient_id, subject, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`

	err := r.db.GetContext(ctx, &created, query, m.AdID, m.SenderID, m.RecipientID, m.Subject, m.Body)
	return created, err
}

// Inbox lists messages addressed to recipientID, newest first.
func (r *PgRepository) Inbox(ctx context.Context, recipientID int64, page, pageSize int) ([]domain.Message, error) {
	offset := (page - 1) * pageSize
	messages := make([]domain.Message, 0)
	query := `
		SELECT * FROM messages
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &messages, query, recipientID, pageSize, offset); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PgRepository) CountInbox(ctx context.Context, recipientID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE recipient_id = $1`, recipientID)
	return count, err
}

// MarkMessageRead stamps read_at once; reading twice keeps the first time.
func (r *PgRepository) MarkMessageRead(ctx context.Context, id, recipientID int64) (domain.Message, error) {
	var m domain.Message
	query := `
		UPDATE messages SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND recipient_id = $2
		RETURNING *`

	err := r.db.GetContext(ctx, &m, query, id, recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return m, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	return m, err
}
