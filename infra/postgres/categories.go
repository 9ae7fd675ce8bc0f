package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schwarzesbrett/domain"
)

const categoryColumns = `c.id, c.name, c.description, COALESCE(c.parent_id, 0) AS parent_id,
	(SELECT COUNT(*) FROM categories sc WHERE sc.parent_id = c.id) AS child_count,
	c.created_at, c.updated_at`

func (r *PgRepository) RootCategories(ctx context.Context) ([]domain.Category, error) {
	categories := make([]domain.Category, 0)
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.parent_id IS NULL ORDER BY c.name`

	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PgRepository) SubCategories(ctx context.Context, parentID int64) ([]domain.Category, error) {
	if parentID == domain.RootCategoryID {
		return r.RootCategories(ctx)
	}

	categories := make([]domain.Category, 0)
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.parent_id = $1 ORDER BY c.name`

	if err := r.db.SelectContext(ctx, &categories, query, parentID); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PgRepository) GetCategoryByID(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.id = $1`

	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return c, err
}

// CategoryPath returns the ancestors of id root-first, id included.
func (r *PgRepository) CategoryPath(ctx context.Context, id int64) ([]domain.Category, error) {
	path := make([]domain.Category, 0)
	query := `
		WITH RECURSIVE ancestors AS (
			SELECT c.*, 0 AS depth FROM categories c WHERE c.id = $1
			UNION ALL
			SELECT p.*, a.depth + 1 FROM categories p JOIN ancestors a ON p.id = a.parent_id
		)
		SELECT c.id, c.name, c.description, COALESCE(c.parent_id, 0) AS parent_id,
			(SELECT COUNT(*) FROM categories sc WHERE sc.parent_id = c.id) AS child_count,
			c.created_at, c.updated_at
		FROM ancestors c ORDER BY c.depth DESC`

	if err := r.db.SelectContext(ctx, &path, query, id); err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return path, nil
}

func nullableParent(parentID int64) sql.NullInt64 {
	return sql.NullInt64{Int64: parentID, Valid: parentID != domain.RootCategoryID}
}

func (r *PgRepository) CreateCategory(ctx context.Context, name, description string, parentID int64) (domain.Category, error) {
	var id int64
	query := `INSERT INTO categories (name, description, parent_id) VALUES ($1, $2, $3) RETURNING id`

	if err := r.db.GetContext(ctx, &id, query, name, description, nullableParent(parentID)); err != nil {
		return domain.Category{}, err
	}
	return r.GetCategoryByID(ctx, id)
}

func (r *PgRepository) UpdateCategory(ctx context.Context, c domain.Category) error {
	query := `UPDATE categories SET name = $1, description = $2, parent_id = $3, updated_at = NOW() WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, c.Name, c.Description, nullableParent(c.ParentID), c.ID)
	return mustAffect("update category", res, err)
}

// DeleteCategory removes a category; ads and sub categories reference it with ON DELETE RESTRICT.
func (r *PgRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return mustAffect("delete category", res, translate(err))
}
