package postgres

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestBuilder_SelectAll(t *testing.T) {
	sql, args := From("ads").Build()

	assert.Equal(t, "SELECT * FROM ads", sql)
	assert.Empty(t, args)
}

func TestBuilder_WhereOrderLimitOffset(t *testing.T) {
	sql, args := From("ads a").
		Select("a.id", "a.title").
		Where(Eq("a.status", "active")).
		Where(ContainsAny("Rad", "a.title", "a.description")).
		OrderBy("a.price", Desc).
		OrderBy("a.id", Asc).
		Limit(20).
		Offset(40).
		Build()

	assert.Equal(t,
		"SELECT a.id, a.title FROM ads a WHERE a.status = ? AND (a.title ILIKE ? OR a.description ILIKE ?) ORDER BY a.price DESC, a.id ASC LIMIT ? OFFSET ?",
		sql,
	)
	assert.Equal(t, []any{"active", "%Rad%", "%Rad%", 20, 40}, args)
}

func TestBuilder_ZeroOffsetIsOmitted(t *testing.T) {
	sql, args := From("ads").Limit(20).Offset(0).Build()

	assert.Equal(t, "SELECT * FROM ads LIMIT ?", sql)
	assert.Equal(t, []any{20}, args)
}

func TestBuilder_CountDropsPagination(t *testing.T) {
	base := From("ads a").
		Join("JOIN categories c ON c.id = a.category_id").
		Where(Gt("a.ends_at", "now")).
		OrderBy("a.title", Asc).
		Limit(10).
		Offset(10)

	sql, args := base.Count().Build()

	assert.Equal(t, "SELECT COUNT(*) FROM ads a JOIN categories c ON c.id = a.category_id WHERE a.ends_at > ?", sql)
	assert.Equal(t, []any{"now"}, args)
}

func TestBuilder_IsImmutable(t *testing.T) {
	base := From("users").Where(Eq("role", "admin"))
	_ = base.Where(Eq("locked", true))

	sql, _ := base.Build()

	assert.Equal(t, "SELECT * FROM users WHERE role = ?", sql)
}

func TestBuilder_InSubquery(t *testing.T) {
	sql, args := From("ads a").
		Where(In("a.id", "SELECT ad_id FROM ad_follows WHERE user_id = ?", int64(7))).
		Build()

	assert.Equal(t, "SELECT * FROM ads a WHERE a.id IN (SELECT ad_id FROM ad_follows WHERE user_id = ?)", sql)
	assert.Equal(t, []any{int64(7)}, args)
}

func TestContainsAny_EscapesWildcards(t *testing.T) {
	_, args := ContainsAny(" 100%_off ", "title").SQL()

	assert.Equal(t, []any{`%100\%\_off%`}, args)
}

func TestBuilder_RebindsToDollarPlaceholders(t *testing.T) {
	sql, _ := From("ads").Where(Eq("id", 1)).Where(Lte("ends_at", 2)).Limit(5).Build()

	assert.Equal(t, "SELECT * FROM ads WHERE id = $1 AND ends_at <= $2 LIMIT $3", sqlx.Rebind(sqlx.DOLLAR, sql))
}
