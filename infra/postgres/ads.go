package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/listing"

	"github.com/jmoiron/sqlx"
)

// AdSortColumns is the allow-list of ad sort names.
var AdSortColumns = listing.SortColumns{
	"title":    "a.title",
	"price":    "a.price",
	"released": "a.released_at",
	"ends":     "a.ends_at",
	"city":     "a.city",
	"views":    "a.view_count",
}

const categorySubtree = `WITH RECURSIVE subtree AS (
	SELECT id FROM categories WHERE id = ?
	UNION ALL
	SELECT c.id FROM categories c JOIN subtree s ON c.parent_id = s.id
) SELECT id FROM subtree`

// AdListing is the listing.Source for ads.
type AdListing struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ listing.Source[domain.Ad, domain.AdScope] = (*AdListing)(nil)

func (r *PgRepository) Ads() *AdListing {
	return &AdListing{db: r.db, now: time.Now}
}

// adQuery narrows ads by scope and criteria. The sort column is resolved through
// AdSortColumns; an id tie-breaker keeps pages stable.
func adQuery(criteria listing.Criteria, scope domain.AdScope, now time.Time) (*Builder, error) {
	b := From("ads a").Select("a.*")

	switch scope.Kind {
	case domain.AdScopeAll, "":
		b = b.Where(Lte("a.released_at", now))
	case domain.AdScopeOwn:
		b = b.Where(Eq("a.seller_id", scope.UserID))
	case domain.AdScopeFollowed:
		b = b.Where(In("a.id", "SELECT ad_id FROM ad_follows WHERE user_id = ?", scope.UserID))
	case domain.AdScopeCommented:
		b = b.Where(In("a.id", "SELECT DISTINCT ad_id FROM ad_comments WHERE author_id = ?", scope.UserID))
	default:
		return nil, fmt.Errorf("unknown ad scope %q", scope.Kind)
	}

	if !criteria.IncludeExpired {
		b = b.Where(Eq("a.status", domain.AdStatusActive)).Where(Gt("a.ends_at", now))
	}
	if criteria.HasSearch() {
		b = b.Where(ContainsAny(criteria.SearchTerm, "a.title", "a.description"))
	}
	if criteria.HasLocation() {
		b = b.Where(ContainsAny(criteria.LocationSearch, "a.city", "a.postal_code"))
	}
	if criteria.CategoryID != domain.RootCategoryID {
		b = b.Where(In("a.category_id", categorySubtree, criteria.CategoryID))
	}

	return b, nil
}

func (l *AdListing) FetchPage(ctx context.Context, criteria listing.Criteria, scope domain.AdScope) ([]domain.Ad, error) {
	column, err := AdSortColumns.Resolve(criteria.SortBy)
	if err != nil {
		return nil, err
	}
	b, err := adQuery(criteria, scope, l.now())
	if err != nil {
		return nil, err
	}
	b = b.OrderBy(column, DirectionOf(criteria.SortAscending)).
		OrderBy("a.id", Asc).
		Limit(criteria.PageSize()).
		Offset(criteria.Offset(criteria.PageNumber))

	return selectPage[domain.Ad](ctx, l.db, b)
}

func (l *AdListing) FetchCount(ctx context.Context, criteria listing.Criteria, scope domain.AdScope) (int, error) {
	if scope.NeedsUser() {
		if err := userExists(ctx, l.db, scope.UserID); err != nil {
			return 0, err
		}
	}
	b, err := adQuery(criteria, scope, l.now())
	if err != nil {
		return 0, err
	}
	return selectCount(ctx, l.db, b)
}

func (r *PgRepository) GetAd(ctx context.Context, id int64) (domain.Ad, error) {
	var a domain.Ad
	err := r.db.GetContext(ctx, &a, `SELECT * FROM ads WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("ad %d: %w", id, ErrNotFound)
	}
	return a, err
}

func (r *PgRepository) CreateAd(ctx context.Context, ad domain.Ad) (domain.Ad, error) {
	var created domain.Ad
	query := `
		INSERT INTO ads (
			title, description, price, price_type, category_id, seller_id,
			city, postal_code, status, released_at, ends_at
		) VALUES (
			:title, :description, :price, :price_type, :category_id, :seller_id,
			:city, :postal_code, :status, :released_at, :ends_at
		) RETURNING *`

	err := getNamed(ctx, r.db, &created, query, ad)
	return created, err
}

func (r *PgRepository) UpdateAd(ctx context.Context, ad domain.Ad) error {
	query := `
        UPDATE ads SET
            title = :title,
            description = :description,
            price = :price,
            price_type = :price_type,
            category_id = :category_id,
            city = :city,
            postal_code = :postal_code,
            status = :status,
            ends_at = :ends_at,
            updated_at = NOW()
        WHERE id = :id AND seller_id = :seller_id
    `

	res, err := r.db.NamedExecContext(ctx, query, ad)
	return mustAffect("update ad", res, err)
}

func (r *PgRepository) DeleteAd(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ads WHERE id = $1`, id)
	return mustAffect("delete ad", res, err)
}

func (r *PgRepository) IncrementAdViews(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE ads SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// ExpireAds marks active ads whose end passed as expired and returns them.
func (r *PgRepository) ExpireAds(ctx context.Context, now time.Time) ([]domain.Ad, error) {
	expired := make([]domain.Ad, 0)
	query := `
		UPDATE ads SET status = $1, updated_at = NOW()
		WHERE status = $2 AND ends_at <= $3
		RETURNING *`

	if err := r.db.SelectContext(ctx, &expired, query, domain.AdStatusExpired, domain.AdStatusActive, now); err != nil {
		return nil, fmt.Errorf("expire ads: %w", err)
	}
	return expired, nil
}
