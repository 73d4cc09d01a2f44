package builder

import (
	"database/sql"
	"fmt"
	"reflect"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// scanIntoStruct scans the current row into a struct, matching result
// columns to struct fields through the table metadata. Result columns with
// no matching field are discarded.
func scanIntoStruct(rows *sql.Rows, dest any, table *schema.TableMetadata) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Pointer {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	destValue = destValue.Elem()
	if destValue.Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	names, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read result columns: %w", err)
	}

	scanTargets := make([]any, len(names))
	for i, name := range names {
		col := table.GetColumnByName(name)
		if col == nil {
			continue
		}

		field := destValue.FieldByName(col.GoField)
		if !field.IsValid() || !field.CanSet() {
			continue
		}

		scanTargets[i] = field.Addr().Interface()
	}

	// Fill any nil scan targets with dummy variables
	for i := range scanTargets {
		if scanTargets[i] == nil {
			var dummy any
			scanTargets[i] = &dummy
		}
	}

	if err := rows.Scan(scanTargets...); err != nil {
		return fmt.Errorf("failed to scan row: %w", err)
	}

	return nil
}

// structToValues converts a struct to column names and values.
// It omits fields from INSERT when:
// 1. The column is an identity primary key and skipPrimaryKey is set
// 2. The column has a database default and the Go value is zero
// 3. The column is an identity column and the Go value is zero
func structToValues(model any, table *schema.TableMetadata, skipPrimaryKey bool) ([]string, []any, error) {
	modelValue := reflect.ValueOf(model)
	if modelValue.Kind() == reflect.Pointer {
		modelValue = modelValue.Elem()
	}

	if modelValue.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct")
	}

	var columns []string
	var values []any

	for _, col := range table.Columns {
		field := modelValue.FieldByName(col.GoField)
		if !field.IsValid() {
			continue
		}

		if skipPrimaryKey && table.IsPrimaryKey(col.Name) && col.Identity && field.IsZero() {
			continue
		}

		// Zero-valued fields with a database default are left to the
		// database, so OrderDate time.Time `po:"order_date,default(CURRENT_TIMESTAMP)"`
		// does not need to be a pointer.
		if col.Default != nil && field.IsZero() {
			continue
		}

		if col.Identity && field.IsZero() {
			continue
		}

		columns = append(columns, col.Name)
		values = append(values, field.Interface())
	}

	return columns, values, nil
}
