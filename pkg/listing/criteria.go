package listing

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultItemsPerPage is used when a criteria carries no page size.
const DefaultItemsPerPage = 20

// Criteria is the search, sort, filter and page state behind one list view.
type Criteria struct {
	SearchTerm     string `json:"searchTerm,omitempty"`
	LocationSearch string `json:"locationSearch,omitempty"`
	CategoryID     int64  `json:"categoryId,omitempty"`
	SortBy         string `json:"sortBy"`
	SortAscending  bool   `json:"sortAscending"`
	PageNumber     int    `json:"pageNumber"`
	ItemsPerPage   int    `json:"itemsPerPage"`
	IncludeExpired bool   `json:"includeExpired"`
}

// NewCriteria returns criteria for page 1 sorted ascending by sortBy.
func NewCriteria(sortBy string, itemsPerPage int) Criteria {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return Criteria{
		SortBy:        sortBy,
		SortAscending: true,
		PageNumber:    1,
		ItemsPerPage:  itemsPerPage,
	}
}

// Offset returns the row offset of the given page.
func (c Criteria) Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return c.PageSize() * (page - 1)
}

// PageSize returns ItemsPerPage, falling back to the default for unset values.
func (c Criteria) PageSize() int {
	if c.ItemsPerPage < 1 {
		return DefaultItemsPerPage
	}
	return c.ItemsPerPage
}

// HasSearch reports whether a free-text term is set.
func (c Criteria) HasSearch() bool {
	return strings.TrimSpace(c.SearchTerm) != ""
}

// HasLocation reports whether a location term is set.
func (c Criteria) HasLocation() bool {
	return strings.TrimSpace(c.LocationSearch) != ""
}

// SortColumns maps logical sort names to the SQL expression a repository orders by.
// It is the only way a sort name reaches a query.
type SortColumns map[string]string

// Resolve returns the SQL expression for name or ErrInvalidSortColumn.
func (s SortColumns) Resolve(name string) (string, error) {
	col, ok := s[name]
	if !ok || col == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortColumn, name)
	}
	return col, nil
}

// Allows reports whether name is on the allow-list.
func (s SortColumns) Allows(name string) bool {
	_, err := s.Resolve(name)
	return err == nil
}

// Names returns the logical names in stable order.
func (s SortColumns) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetSortBy validates name against allowed before storing it.
func (c *Criteria) SetSortBy(name string, allowed SortColumns) error {
	if _, err := allowed.Resolve(name); err != nil {
		return err
	}
	c.SortBy = name
	return nil
}
