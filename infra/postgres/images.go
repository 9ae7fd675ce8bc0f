package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schwarzesbrett/domain"
)

func (r *PgRepository) GetAdImages(ctx context.Context, adID int64) ([]domain.AdImage, error) {
	images := make([]domain.AdImage, 0)
	query := `SELECT * FROM ad_images WHERE ad_id = $1 ORDER BY position, id`

	if err := r.db.SelectContext(ctx, &images, query, adID); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *PgRepository) GetAdImage(ctx context.Context, adID, imageID int64) (domain.AdImage, error) {
	var img domain.AdImage
	err := r.db.GetContext(ctx, &img, `SELECT * FROM ad_images WHERE ad_id = $1 AND id = $2`, adID, imageID)
	if errors.Is(err, sql.ErrNoRows) {
		return img, fmt.Errorf("image %d: %w", imageID, ErrNotFound)
	}
	return img, err
}

// SaveImage appends an image after the existing ones of the ad.
func (r *PgRepository) SaveImage(ctx context.Context, adID int64, url string) (domain.AdImage, error) {
	var img domain.AdImage
	query := `
		INSERT INTO ad_images (ad_id, url, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM ad_images WHERE ad_id = $1))
		RETURNING *`

	err := r.db.GetContext(ctx, &img, query, adID, url)
	return img, err
}

func (r *PgRepository) DeleteAdImage(ctx context.Context, adID, imageID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ad_images WHERE ad_id = $1 AND id = $2`, adID, imageID)
	return mustAffect("delete image", res, err)
}
