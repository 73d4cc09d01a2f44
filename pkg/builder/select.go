package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-retail/pkg/runtime"
)

// Columns specifies which columns to select.
func (q *SelectQuery[T]) Columns(cols ...string) *SelectQuery[T] {
	q.columns = cols
	return q
}

// Where adds a WHERE condition.
func (q *SelectQuery[T]) Where(condition Condition) *SelectQuery[T] {
	q.where = append(q.where, condition)
	return q
}

// And adds an AND condition (alias for Where).
func (q *SelectQuery[T]) And(condition Condition) *SelectQuery[T] {
	condition.Logic = LogicAnd
	return q.Where(condition)
}

// Or adds an OR condition.
func (q *SelectQuery[T]) Or(condition Condition) *SelectQuery[T] {
	condition.Logic = LogicOr
	return q.Where(condition)
}

// OrderBy adds an ORDER BY clause.
func (q *SelectQuery[T]) OrderBy(column string, direction OrderDirection) *SelectQuery[T] {
	q.orderBy = append(q.orderBy, OrderBy{Column: column, Direction: direction})
	return q
}

// OrderByAsc adds an ascending ORDER BY clause.
func (q *SelectQuery[T]) OrderByAsc(column string) *SelectQuery[T] {
	return q.OrderBy(column, Asc)
}

// OrderByDesc adds a descending ORDER BY clause.
func (q *SelectQuery[T]) OrderByDesc(column string) *SelectQuery[T] {
	return q.OrderBy(column, Desc)
}

// Limit sets the LIMIT clause.
func (q *SelectQuery[T]) Limit(limit int) *SelectQuery[T] {
	q.limit = &limit
	return q
}

// Offset sets the OFFSET clause.
func (q *SelectQuery[T]) Offset(offset int) *SelectQuery[T] {
	q.offset = &offset
	return q
}

func (q *SelectQuery[T]) whereClause() (string, []any, error) {
	if len(q.where) == 0 {
		return "", nil, nil
	}
	whereBuilder := NewWhereBuilder(q.db.Dialect())
	whereBuilder.conditions = q.where
	whereSQL, whereArgs, err := whereBuilder.Build()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
	}
	return whereSQL, whereArgs, nil
}

// ToSQL generates the SQL query and arguments.
func (q *SelectQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.table == nil {
		return "", nil, fmt.Errorf("table metadata not available")
	}

	var sql strings.Builder
	var args []any

	sql.WriteString("SELECT ")
	if len(q.columns) == 0 || (len(q.columns) == 1 && q.columns[0] == "*") {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(q.columns, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(q.table.Name)

	whereSQL, whereArgs, err := q.whereClause()
	if err != nil {
		return "", nil, err
	}
	if whereSQL != "" {
		sql.WriteString(" ")
		sql.WriteString(whereSQL)
		args = append(args, whereArgs...)
	}

	if len(q.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		orderParts := make([]string, len(q.orderBy))
		for i, order := range q.orderBy {
			orderParts[i] = order.Column + " " + string(order.Direction)
		}
		sql.WriteString(strings.Join(orderParts, ", "))
	}

	if q.limit != nil {
		fmt.Fprintf(&sql, " LIMIT %d", *q.limit)
	}

	if q.offset != nil {
		fmt.Fprintf(&sql, " OFFSET %d", *q.offset)
	}

	return sql.String(), args, nil
}

// All executes the query and returns all results.
func (q *SelectQuery[T]) All(ctx context.Context) ([]T, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.db.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		var item T
		if err := scanIntoStruct(rows, &item, q.table); err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// First executes the query and returns the first result, or
// runtime.ErrNotFound when nothing matches.
func (q *SelectQuery[T]) First(ctx context.Context) (*T, error) {
	q.Limit(1)

	results, err := q.All(ctx)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, runtime.ErrNotFound
	}

	return &results[0], nil
}

// Count executes a COUNT query.
func (q *SelectQuery[T]) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if q.table == nil {
		return 0, fmt.Errorf("table metadata not available")
	}

	var sql strings.Builder
	sql.WriteString("SELECT COUNT(*) FROM ")
	sql.WriteString(q.table.Name)

	whereSQL, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}
	if whereSQL != "" {
		sql.WriteString(" ")
		sql.WriteString(whereSQL)
	}

	var count int64
	if err := q.db.conn.QueryRow(ctx, sql.String(), args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any rows match the query.
func (q *SelectQuery[T]) Exists(ctx context.Context) (bool, error) {
	count, err := q.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
