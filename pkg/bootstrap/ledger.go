package bootstrap

import (
	"context"
	"fmt"
	"reflect"

	"github.com/marshallshelly/pebble-retail/pkg/runtime"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// ledger tracks the primary keys known to exist per table so that a child
// row can be checked before it is written. Keys already in storage are
// loaded on first use; keys inserted by the loader are added as they are
// assigned.
type ledger struct {
	conn   runtime.Conn
	keys   map[string]map[int64]struct{}
	loaded map[string]bool
}

func newLedger(conn runtime.Conn) *ledger {
	return &ledger{
		conn:   conn,
		keys:   make(map[string]map[int64]struct{}),
		loaded: make(map[string]bool),
	}
}

// add records keys now present in table.
func (l *ledger) add(table string, ids ...int64) {
	set, ok := l.keys[table]
	if !ok {
		set = make(map[int64]struct{}, len(ids))
		l.keys[table] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

func (l *ledger) has(ctx context.Context, table, column string, id int64) (bool, error) {
	if !l.loaded[table] {
		if err := l.load(ctx, table, column); err != nil {
			return false, err
		}
	}
	_, ok := l.keys[table][id]
	return ok, nil
}

func (l *ledger) load(ctx context.Context, table, column string) error {
	rows, err := l.conn.Query(ctx, fmt.Sprintf("SELECT %s FROM %s", column, table))
	if err != nil {
		return fmt.Errorf("failed to load keys of %s: %w", table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	l.add(table, ids...)
	l.loaded[table] = true
	return nil
}

// missingReference describes the first foreign key of row that points at
// an unknown parent key.
type missingReference struct {
	Column          string
	Value           int64
	ReferencedTable string
	ReferencedCol   string
}

func (m missingReference) String() string {
	return fmt.Sprintf("%s=%d references missing %s.%s", m.Column, m.Value, m.ReferencedTable, m.ReferencedCol)
}

// check returns the first dangling reference of row, or nil when every
// non-null foreign key resolves.
func (l *ledger) check(ctx context.Context, table *schema.TableMetadata, row any) (*missingReference, error) {
	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	for _, fk := range table.ForeignKeys {
		for i, column := range fk.Columns {
			col := table.GetColumnByName(column)
			if col == nil {
				continue
			}
			id, ok := intValue(v.FieldByName(col.GoField))
			if !ok {
				continue
			}
			found, err := l.has(ctx, fk.ReferencedTable, fk.ReferencedColumns[i], id)
			if err != nil {
				return nil, err
			}
			if !found {
				return &missingReference{
					Column:          column,
					Value:           id,
					ReferencedTable: fk.ReferencedTable,
					ReferencedCol:   fk.ReferencedColumns[i],
				}, nil
			}
		}
	}
	return nil, nil
}

// intValue reads an integer field, dereferencing pointers. A nil pointer
// reports ok=false.
func intValue(field reflect.Value) (int64, bool) {
	if !field.IsValid() {
		return 0, false
	}
	for field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return 0, false
		}
		field = field.Elem()
	}
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return field.Int(), true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(field.Uint()), true
	}
	return 0, false
}
