package postgres

import (
	"context"

	"schwarzesbrett/domain"
)

// UpsertRating stores one rating per rater and rated user; rating again replaces it.
func (r *PgRepository) UpsertRating(ctx context.Context, rating domain.Rating) (domain.Rating, error) {
	var saved domain.Rating
	query := `
		INSERT INTO ratings (rater_id, rated_id, stars, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (rater_id, rated_id)
		DO UPDATE SET stars = EXCLUDED.stars, comment = EXCLUDED.comment, created_at = NOW()
		RETURNING *`

	err := r.db.GetContext(ctx, &saved, query, rating.RaterID, rating.RatedID, rating.Stars, rating.Comment)
	return saved, err
}

func (r *PgRepository) GetRatings(ctx context.Context, ratedID int64) ([]domain.Rating, error) {
	ratings := make([]domain.Rating, 0)
	query := `SELECT * FROM ratings WHERE rated_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &ratings, query, ratedID); err != nil {
		return nil, err
	}
	return ratings, nil
}
