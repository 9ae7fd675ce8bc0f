package postgres

import (
	"context"
)

func (r *PgRepository) FollowAd(ctx context.Context, userID, adID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ad_follows (user_id, ad_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, adID)
	return err
}

func (r *PgRepository) UnfollowAd(ctx context.Context, userID, adID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ad_follows WHERE user_id = $1 AND ad_id = $2`, userID, adID)
	return mustAffect("unfollow ad", res, err)
}

func (r *PgRepository) FollowUser(ctx context.Context, followerID, followedID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_follows (follower_id, followed_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		followerID, followedID)
	return err
}

func (r *PgRepository) UnfollowUser(ctx context.Context, followerID, followedID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_follows WHERE follower_id = $1 AND followed_id = $2`,
		followerID, followedID)
	return mustAffect("unfollow user", res, err)
}
