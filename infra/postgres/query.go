package postgres

import (
	"fmt"
	"strings"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// DirectionOf maps an ascending flag to a Direction.
func DirectionOf(ascending bool) Direction {
	if ascending {
		return Asc
	}
	return Desc
}

// Condition renders a WHERE fragment using '?' placeholders; queries are rebound
// to the driver's bind style before execution.
type Condition interface {
	SQL() (string, []any)
}

type orderTerm struct {
	expr string
	dir  Direction
}

// Builder composes SELECT statements. Every method returns a copy, so a base
// builder can be shared between a page query and its Count.
type Builder struct {
	table      string
	selectCols []string
	joins      []string
	where      []Condition
	orderBy    []orderTerm
	limit      int
	offset     int
}

func From(table string) *Builder {
	return &Builder{table: table}
}

func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

func (b *Builder) Join(clause string) *Builder {
	nb := b.clone()
	nb.joins = append(nb.joins, clause)
	return nb
}

// Where adds a condition; conditions are combined with AND.
func (b *Builder) Where(condition Condition) *Builder {
	nb := b.clone()
	nb.where = append(nb.where, condition)
	return nb
}

// OrderBy appends a sort term. Callers must only pass expressions taken from an allow-list.
func (b *Builder) OrderBy(expr string, dir Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderTerm{expr: expr, dir: dir})
	return nb
}

func (b *Builder) Limit(limit int) *Builder {
	nb := b.clone()
	nb.limit = limit
	return nb
}

func (b *Builder) Offset(offset int) *Builder {
	nb := b.clone()
	nb.offset = offset
	return nb
}

// Count returns a COUNT(*) builder with the same FROM, JOIN and WHERE.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.selectCols = []string{"COUNT(*)"}
	nb.orderBy = nil
	nb.limit = 0
	nb.offset = 0
	return nb
}

// Build returns the statement and its arguments.
func (b *Builder) Build() (string, []any) {
	var sql strings.Builder
	args := make([]any, 0)

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	for _, join := range b.joins {
		sql.WriteString(" ")
		sql.WriteString(join)
	}

	if len(b.where) > 0 {
		parts := make([]string, 0, len(b.where))
		for _, condition := range b.where {
			fragment, condArgs := condition.SQL()
			parts = append(parts, fragment)
			args = append(args, condArgs...)
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orderBy) > 0 {
		terms := make([]string, 0, len(b.orderBy))
		for _, term := range b.orderBy {
			if term.dir == Desc {
				terms = append(terms, term.expr+" DESC")
			} else {
				terms = append(terms, term.expr+" ASC")
			}
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(terms, ", "))
	}

	if b.limit > 0 {
		sql.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	}

	if b.offset > 0 {
		sql.WriteString(" OFFSET ?")
		args = append(args, b.offset)
	}

	return sql.String(), args
}

func (b *Builder) clone() *Builder {
	return &Builder{
		table:      b.table,
		selectCols: append([]string(nil), b.selectCols...),
		joins:      append([]string(nil), b.joins...),
		where:      append([]Condition(nil), b.where...),
		orderBy:    append([]orderTerm(nil), b.orderBy...),
		limit:      b.limit,
		offset:     b.offset,
	}
}

func (b *Builder) String() string {
	sql, args := b.Build()
	return fmt.Sprintf("SQL: %s\nArgs: %v", sql, args)
}

type rawCondition struct {
	sql  string
	args []any
}

func (c rawCondition) SQL() (string, []any) {
	return c.sql, c.args
}

// Raw wraps a trusted fragment.
func Raw(sql string, args ...any) Condition {
	return rawCondition{sql: sql, args: args}
}

func Eq(field string, value any) Condition {
	return rawCondition{sql: field + " = ?", args: []any{value}}
}

func Gt(field string, value any) Condition {
	return rawCondition{sql: field + " > ?", args: []any{value}}
}

func Lte(field string, value any) Condition {
	return rawCondition{sql: field + " <= ?", args: []any{value}}
}

// In matches field against a subquery.
func In(field, subquery string, args ...any) Condition {
	return rawCondition{sql: field + " IN (" + subquery + ")", args: args}
}

// ContainsAny matches a case-insensitive substring in any of fields.
func ContainsAny(term string, fields ...string) Condition {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	parts := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" ILIKE ?")
		args = append(args, pattern)
	}
	return rawCondition{sql: "(" + strings.Join(parts, " OR ") + ")", args: args}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
