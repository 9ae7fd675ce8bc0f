package postgres

import (
	"testing"
	"time"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestAdQuery_AllActive(t *testing.T) {
	b, err := adQuery(listing.NewCriteria("title", 20), domain.AdScope{Kind: domain.AdScopeAll}, fixedNow)
	require.NoError(t, err)

	sql, args := b.Count().Build()

	assert.Equal(t, "SELECT COUNT(*) FROM ads a WHERE a.released_at <= ? AND a.status = ? AND a.ends_at > ?", sql)
	assert.Equal(t, []any{fixedNow, domain.AdStatusActive, fixedNow}, args)
}

func TestAdQuery_OwnWithFilters(t *testing.T) {
	criteria := listing.NewCriteria("price", 20)
	criteria.IncludeExpired = true
	criteria.SearchTerm = "sofa"
	criteria.LocationSearch = "10115"
	criteria.CategoryID = 4

	b, err := adQuery(criteria, domain.AdScope{Kind: domain.AdScopeOwn, UserID: 9}, fixedNow)
	require.NoError(t, err)
	sql, args := b.Build()

	assert.Contains(t, sql, "a.seller_id = ?")
	assert.Contains(t, sql, "(a.title ILIKE ? OR a.description ILIKE ?)")
	assert.Contains(t, sql, "(a.city ILIKE ? OR a.postal_code ILIKE ?)")
	assert.Contains(t, sql, "a.category_id IN (WITH RECURSIVE subtree AS")
	assert.NotContains(t, sql, "a.ends_at > ?")
	assert.Equal(t, []any{int64(9), "%sofa%", "%sofa%", "%10115%", "%10115%", int64(4)}, args)
}

func TestAdQuery_FollowedAndCommentedScopes(t *testing.T) {
	followed, err := adQuery(listing.NewCriteria("title", 20), domain.AdScope{Kind: domain.AdScopeFollowed, UserID: 3}, fixedNow)
	require.NoError(t, err)
	sql, _ := followed.Build()
	assert.Contains(t, sql, "a.id IN (SELECT ad_id FROM ad_follows WHERE user_id = ?)")

	commented, err := adQuery(listing.NewCriteria("title", 20), domain.AdScope{Kind: domain.AdScopeCommented, UserID: 3}, fixedNow)
	require.NoError(t, err)
	sql, _ = commented.Build()
	assert.Contains(t, sql, "a.id IN (SELECT DISTINCT ad_id FROM ad_comments WHERE author_id = ?)")
}

func TestAdQuery_UnknownScope(t *testing.T) {
	_, err := adQuery(listing.NewCriteria("title", 20), domain.AdScope{Kind: "everything"}, fixedNow)

	assert.Error(t, err)
}

func TestAdSortColumns(t *testing.T) {
	for _, name := range []string{"title", "price", "released", "ends", "city", "views"} {
		assert.True(t, AdSortColumns.Allows(name), name)
	}
	assert.False(t, AdSortColumns.Allows("seller_id"))
}
