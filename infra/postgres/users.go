package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/listing"

	"github.com/jmoiron/sqlx"
)

// UserSortColumns is the allow-list of user sort names.
var UserSortColumns = listing.SortColumns{
	"username":   "u.username",
	"email":      "u.email",
	"name":       "u.last_name",
	"city":       "u.city",
	"registered": "u.created_at",
	"rating":     "rating",
}

const userColumns = `u.*,
	COALESCE((SELECT AVG(r.stars) FROM ratings r WHERE r.rated_id = u.id), 0) AS rating,
	(SELECT COUNT(*) FROM ratings r WHERE r.rated_id = u.id) AS rating_count`

// UserListing is the listing.Source for users.
type UserListing struct {
	db *sqlx.DB
}

var _ listing.Source[domain.User, domain.UserScope] = (*UserListing)(nil)

func (r *PgRepository) Users() *UserListing {
	return &UserListing{db: r.db}
}

func userQuery(criteria listing.Criteria, scope domain.UserScope) *Builder {
	b := From("users u").Select(userColumns)

	if scope.FollowedBy != 0 {
		b = b.Where(In("u.id", "SELECT followed_id FROM user_follows WHERE follower_id = ?", scope.FollowedBy))
	}
	if criteria.HasSearch() {
		b = b.Where(ContainsAny(criteria.SearchTerm, "u.username", "u.email", "u.first_name", "u.last_name"))
	}
	if criteria.HasLocation() {
		b = b.Where(ContainsAny(criteria.LocationSearch, "u.city", "u.postal_code"))
	}
	return b
}

func (l *UserListing) FetchPage(ctx context.Context, criteria listing.Criteria, scope domain.UserScope) ([]domain.User, error) {
	column, err := UserSortColumns.Resolve(criteria.SortBy)
	if err != nil {
		return nil, err
	}
	b := userQuery(criteria, scope).
		OrderBy(column, DirectionOf(criteria.SortAscending)).
		OrderBy("u.id", Asc).
		Limit(criteria.PageSize()).
		Offset(criteria.Offset(criteria.PageNumber))

	return selectPage[domain.User](ctx, l.db, b)
}

func (l *UserListing) FetchCount(ctx context.Context, criteria listing.Criteria, scope domain.UserScope) (int, error) {
	if scope.FollowedBy != 0 {
		if err := userExists(ctx, l.db, scope.FollowedBy); err != nil {
			return 0, err
		}
	}
	return selectCount(ctx, l.db, userQuery(criteria, scope))
}

func (r *PgRepository) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	query, args := From("users u").Select(userColumns).Where(Eq("u.id", id)).Build()
	err := r.db.GetContext(ctx, &u, r.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return u, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, err
}

// CreateUser inserts a user; a duplicate username or email yields a unique violation.
func (r *PgRepository) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	var created domain.User
	query := `
		INSERT INTO users (
			username, email, password_hash, first_name, last_name,
			city, postal_code, role
		) VALUES (
			:username, :email, :password_hash, :first_name, :last_name,
			:city, :postal_code, :role
		) RETURNING *, CAST(0 AS DOUBLE PRECISION) AS rating, 0 AS rating_count`

	err := getNamed(ctx, r.db, &created, query, u)
	return created, err
}

func (r *PgRepository) SetUserLocked(ctx context.Context, id int64, locked bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET locked = $1 WHERE id = $2`, locked, id)
	return mustAffect("lock user", res, err)
}

func (r *PgRepository) SetUserRole(ctx context.Context, id int64, role string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	return mustAffect("set user role", res, err)
}

func (r *PgRepository) SetUserPassword(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	return mustAffect("set user password", res, err)
}
