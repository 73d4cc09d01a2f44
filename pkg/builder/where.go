package builder

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// WhereBuilder helps build WHERE clauses.
type WhereBuilder struct {
	dialect    schema.Dialect
	conditions []Condition
	paramStart int
}

// NewWhereBuilder creates a new WhereBuilder.
func NewWhereBuilder(dialect schema.Dialect) *WhereBuilder {
	return NewWhereBuilderWithStart(dialect, 1)
}

// NewWhereBuilderWithStart creates a new WhereBuilder with a starting parameter number.
func NewWhereBuilderWithStart(dialect schema.Dialect, paramStart int) *WhereBuilder {
	return &WhereBuilder{
		dialect:    dialect,
		paramStart: paramStart,
	}
}

// Add adds a condition to the WHERE clause.
func (w *WhereBuilder) Add(condition Condition) {
	w.conditions = append(w.conditions, condition)
}

// Build generates the WHERE clause SQL and arguments.
func (w *WhereBuilder) Build() (string, []any, error) {
	if len(w.conditions) == 0 {
		return "", nil, nil
	}

	sql, args, err := w.buildConditions(w.conditions, w.paramStart)
	if err != nil {
		return "", nil, err
	}

	return "WHERE " + sql, args, nil
}

// buildConditions recursively builds conditions.
func (w *WhereBuilder) buildConditions(conditions []Condition, paramStart int) (string, []any, error) {
	var parts []string
	var args []any
	paramNum := paramStart

	for i, cond := range conditions {
		var condSQL string
		var condArgs []any
		var err error

		if len(cond.Group) > 0 {
			condSQL, condArgs, err = w.buildConditions(cond.Group, paramNum)
			condSQL = "(" + condSQL + ")"
		} else {
			condSQL, condArgs, err = w.buildCondition(cond, paramNum)
		}
		if err != nil {
			return "", nil, err
		}

		if cond.Not {
			condSQL = "NOT (" + condSQL + ")"
		}

		parts = append(parts, condSQL)
		args = append(args, condArgs...)
		paramNum += len(condArgs)

		// Logic operator between conditions
		if i < len(conditions)-1 {
			logic := conditions[i+1].Logic
			if logic == "" {
				logic = LogicAnd
			}
			parts[len(parts)-1] += " " + string(logic)
		}
	}

	return strings.Join(parts, " "), args, nil
}

// buildCondition builds a single condition.
func (w *WhereBuilder) buildCondition(cond Condition, paramNum int) (string, []any, error) {
	column := cond.Column
	value := cond.Value

	switch cond.Operator {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual, OpLike:
		return fmt.Sprintf("%s %s %s", column, cond.Operator, w.dialect.Placeholder(paramNum)), []any{value}, nil

	case OpIn, OpNotIn:
		values, ok := value.([]any)
		if !ok {
			return "", nil, fmt.Errorf("IN/NOT IN operator requires []any value")
		}
		if len(values) == 0 {
			return "", nil, fmt.Errorf("IN/NOT IN operator requires at least one value")
		}

		placeholders := make([]string, len(values))
		for i := range values {
			placeholders[i] = w.dialect.Placeholder(paramNum + i)
		}

		return fmt.Sprintf("%s %s (%s)", column, cond.Operator, strings.Join(placeholders, ", ")), values, nil

	case OpIsNull:
		return fmt.Sprintf("%s IS NULL", column), nil, nil

	case OpIsNotNull:
		return fmt.Sprintf("%s IS NOT NULL", column), nil, nil

	case OpBetween:
		values, ok := value.([]any)
		if !ok || len(values) != 2 {
			return "", nil, fmt.Errorf("BETWEEN operator requires [min, max] array")
		}

		return fmt.Sprintf("%s BETWEEN %s AND %s", column,
			w.dialect.Placeholder(paramNum), w.dialect.Placeholder(paramNum+1)), values, nil

	default:
		return "", nil, fmt.Errorf("unknown operator: %s", cond.Operator)
	}
}

// Eq creates an equality condition.
func Eq(column string, value any) Condition {
	return Condition{Column: column, Operator: OpEqual, Value: value, Logic: LogicAnd}
}

// NotEq creates a not-equal condition.
func NotEq(column string, value any) Condition {
	return Condition{Column: column, Operator: OpNotEqual, Value: value, Logic: LogicAnd}
}

// Gt creates a greater-than condition.
func Gt(column string, value any) Condition {
	return Condition{Column: column, Operator: OpGreaterThan, Value: value, Logic: LogicAnd}
}

// Gte creates a greater-than-or-equal condition.
func Gte(column string, value any) Condition {
	return Condition{Column: column, Operator: OpGreaterThanOrEqual, Value: value, Logic: LogicAnd}
}

// Lt creates a less-than condition.
func Lt(column string, value any) Condition {
	return Condition{Column: column, Operator: OpLessThan, Value: value, Logic: LogicAnd}
}

// Lte creates a less-than-or-equal condition.
func Lte(column string, value any) Condition {
	return Condition{Column: column, Operator: OpLessThanOrEqual, Value: value, Logic: LogicAnd}
}

// In creates an IN condition.
func In(column string, values ...any) Condition {
	return Condition{Column: column, Operator: OpIn, Value: values, Logic: LogicAnd}
}

// NotIn creates a NOT IN condition.
func NotIn(column string, values ...any) Condition {
	return Condition{Column: column, Operator: OpNotIn, Value: values, Logic: LogicAnd}
}

// Like creates a LIKE condition.
func Like(column string, pattern string) Condition {
	return Condition{Column: column, Operator: OpLike, Value: pattern, Logic: LogicAnd}
}

// IsNull creates an IS NULL condition.
func IsNull(column string) Condition {
	return Condition{Column: column, Operator: OpIsNull, Logic: LogicAnd}
}

// IsNotNull creates an IS NOT NULL condition.
func IsNotNull(column string) Condition {
	return Condition{Column: column, Operator: OpIsNotNull, Logic: LogicAnd}
}

// Between creates a BETWEEN condition.
func Between(column string, min, max any) Condition {
	return Condition{Column: column, Operator: OpBetween, Value: []any{min, max}, Logic: LogicAnd}
}

// Or sets the logic operator to OR for the condition.
func Or(cond Condition) Condition {
	cond.Logic = LogicOr
	return cond
}

// Not negates a condition.
func Not(cond Condition) Condition {
	cond.Not = true
	return cond
}

// Group creates a grouped condition.
func Group(conditions ...Condition) Condition {
	return Condition{Group: conditions, Logic: LogicAnd}
}
