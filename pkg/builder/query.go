// Package builder provides a type-safe query builder over the runtime
// connection, rendering SQL for whichever dialect the connection speaks.
package builder

import (
	"context"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Query represents a generic database query.
type Query interface {
	// ToSQL generates the SQL query and parameter values.
	ToSQL() (sql string, args []any, err error)
}

// Executable represents a query that can be executed.
type Executable interface {
	Query
	// Exec executes the query and returns the number of affected rows.
	Exec(ctx context.Context) (int64, error)
}

// SelectQuery represents a SELECT query with type safety.
type SelectQuery[T any] struct {
	db      *DB
	table   *schema.TableMetadata
	err     error
	columns []string
	where   []Condition
	orderBy []OrderBy
	limit   *int
	offset  *int
}

// InsertQuery represents an INSERT query.
type InsertQuery[T any] struct {
	db        *DB
	table     *schema.TableMetadata
	err       error
	values    []T
	returning []string
}

// Condition represents a WHERE condition.
type Condition struct {
	Column   string
	Operator Operator
	Value    any
	Logic    LogicOperator
	Not      bool
	Group    []Condition
}

// OrderBy represents an ORDER BY clause.
type OrderBy struct {
	Column    string
	Direction OrderDirection
}

// Operator represents a comparison operator.
type Operator string

const (
	// OpEqual represents the = operator.
	OpEqual Operator = "="
	// OpNotEqual represents the != operator.
	OpNotEqual Operator = "!="
	// OpGreaterThan represents the > operator.
	OpGreaterThan Operator = ">"
	// OpGreaterThanOrEqual represents the >= operator.
	OpGreaterThanOrEqual Operator = ">="
	// OpLessThan represents the < operator.
	OpLessThan Operator = "<"
	// OpLessThanOrEqual represents the <= operator.
	OpLessThanOrEqual Operator = "<="
	// OpIn represents the IN operator.
	OpIn Operator = "IN"
	// OpNotIn represents the NOT IN operator.
	OpNotIn Operator = "NOT IN"
	// OpLike represents the LIKE operator.
	OpLike Operator = "LIKE"
	// OpIsNull represents the IS NULL operator.
	OpIsNull Operator = "IS NULL"
	// OpIsNotNull represents the IS NOT NULL operator.
	OpIsNotNull Operator = "IS NOT NULL"
	// OpBetween represents the BETWEEN operator.
	OpBetween Operator = "BETWEEN"
)

// LogicOperator represents a logical operator (AND/OR).
type LogicOperator string

const (
	// LogicAnd represents the AND operator.
	LogicAnd LogicOperator = "AND"
	// LogicOr represents the OR operator.
	LogicOr LogicOperator = "OR"
)

// OrderDirection represents the sort direction.
type OrderDirection string

const (
	// Asc represents ascending order.
	Asc OrderDirection = "ASC"
	// Desc represents descending order.
	Desc OrderDirection = "DESC"
)
