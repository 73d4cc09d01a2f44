package builder

import (
	"context"
	"fmt"
	"strings"
)

// Values sets the values to insert (single or multiple rows).
func (q *InsertQuery[T]) Values(values ...T) *InsertQuery[T] {
	q.values = append(q.values, values...)
	return q
}

// Returning specifies columns to return after insert.
func (q *InsertQuery[T]) Returning(columns ...string) *InsertQuery[T] {
	q.returning = columns
	return q
}

// ToSQL generates the INSERT SQL and arguments. Every row must supply the
// same column set; rows that differ should be inserted one at a time.
func (q *InsertQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.table == nil {
		return "", nil, fmt.Errorf("table metadata not available")
	}

	if len(q.values) == 0 {
		return "", nil, fmt.Errorf("no values to insert")
	}

	dialect := q.db.Dialect()
	var sql strings.Builder
	var args []any
	paramNum := 1

	sql.WriteString("INSERT INTO ")
	sql.WriteString(q.table.Name)

	// Get columns and values from the first row
	columns, firstRowValues, err := structToValues(q.values[0], q.table, true)
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract values: %w", err)
	}

	if len(columns) == 0 {
		if len(q.values) > 1 {
			return "", nil, fmt.Errorf("cannot insert multiple rows with only default values")
		}
		sql.WriteString(" DEFAULT VALUES")
	} else {
		sql.WriteString(" (")
		sql.WriteString(strings.Join(columns, ", "))
		sql.WriteString(") VALUES ")

		valueClauses := make([]string, len(q.values))
		for i, val := range q.values {
			rowColumns, rowValues := columns, firstRowValues
			if i > 0 {
				rowColumns, rowValues, err = structToValues(val, q.table, true)
				if err != nil {
					return "", nil, fmt.Errorf("failed to extract values from row %d: %w", i, err)
				}
			}
			if strings.Join(rowColumns, ",") != strings.Join(columns, ",") {
				return "", nil, fmt.Errorf("row %d supplies columns (%s), expected (%s)",
					i, strings.Join(rowColumns, ", "), strings.Join(columns, ", "))
			}

			placeholders := make([]string, len(rowValues))
			for j := range rowValues {
				placeholders[j] = dialect.Placeholder(paramNum)
				paramNum++
				args = append(args, rowValues[j])
			}

			valueClauses[i] = "(" + strings.Join(placeholders, ", ") + ")"
		}

		sql.WriteString(strings.Join(valueClauses, ", "))
	}

	if len(q.returning) > 0 {
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(q.returning, ", "))
	}

	return sql.String(), args, nil
}

// Exec executes the INSERT query and returns the number of inserted rows.
func (q *InsertQuery[T]) Exec(ctx context.Context) (int64, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}

	if len(q.returning) == 0 {
		return q.db.conn.Exec(ctx, sql, args...)
	}

	rows, err := q.db.conn.Query(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		count++
	}

	return count, rows.Err()
}

// ExecIDs inserts the rows one statement at a time and returns the value of
// the identity column assigned to each, in input order.
func (q *InsertQuery[T]) ExecIDs(ctx context.Context) ([]int64, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.table == nil {
		return nil, fmt.Errorf("table metadata not available")
	}
	idColumn := q.table.IdentityColumn()
	if idColumn == "" {
		return nil, fmt.Errorf("table %s has no identity column", q.table.Name)
	}

	ids := make([]int64, 0, len(q.values))
	for _, v := range q.values {
		single := &InsertQuery[T]{
			db:        q.db,
			table:     q.table,
			values:    []T{v},
			returning: []string{idColumn},
		}
		sql, args, err := single.ToSQL()
		if err != nil {
			return ids, err
		}

		var id int64
		if err := q.db.conn.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// ExecReturning executes the INSERT and returns the inserted rows.
func (q *InsertQuery[T]) ExecReturning(ctx context.Context) ([]T, error) {
	if len(q.returning) == 0 {
		q.Returning("*")
	}

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
