package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schwarzesbrett/domain"
)

func (r *PgRepository) GetAdComments(ctx context.Context, adID int64, page, pageSize int) ([]domain.AdComment, error) {
	offset := (page - 1) * pageSize
	comments := make([]domain.AdComment, 0)
	query := `
		SELECT * FROM ad_comments
		WHERE ad_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	if err := r.db.SelectContext(ctx, &comments, query, adID, pageSize, offset); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *PgRepository) CountAdComments(ctx context.Context, adID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM ad_comments WHERE ad_id = $1`, adID)
	return count, err
}

func (r *PgRepository) GetCommentByID(ctx context.Context, id int64) (domain.AdComment, error) {
	var c domain.AdComment
	err := r.db.GetContext(ctx, &c, `SELECT * FROM ad_comments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return c, err
}

func (r *PgRepository) CreateComment(ctx context.Context, adID, authorID int64, content string) (domain.AdComment, error) {
	var c domain.AdComment
	query := `INSERT INTO ad_comments (ad_id, author_id, content) VALUES ($1, $2, $3) RETURNING *`
	err := r.db.GetContext(ctx, &c, query, adID, authorID, content)
	return c, err
}

func (r *PgRepository) DeleteComment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ad_comments WHERE id = $1`, id)
	return mustAffect("delete comment", res, err)
}
