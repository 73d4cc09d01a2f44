package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-retail/pkg/runtime"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Introspector inspects the schema of a live database.
type Introspector struct {
	conn runtime.Conn
}

// NewIntrospector creates a new database introspector. conn may be an open
// transaction so that introspection sees uncommitted DDL.
func NewIntrospector(conn runtime.Conn) *Introspector {
	return &Introspector{conn: conn}
}

// IntrospectSchema introspects every user table.
func (i *Introspector) IntrospectSchema(ctx context.Context) (map[string]*schema.TableMetadata, error) {
	tables := make(map[string]*schema.TableMetadata)

	tableNames, err := i.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	for _, tableName := range tableNames {
		table, err := i.IntrospectTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to introspect table %s: %w", tableName, err)
		}
		tables[tableName] = table
	}

	return tables, nil
}

// TableNames returns the names of all user tables, sorted.
func (i *Introspector) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	if i.conn.Dialect() == schema.SQLite {
		query = `
			SELECT name
			FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name
		`
	}

	rows, err := i.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// IntrospectTable introspects a single table.
func (i *Introspector) IntrospectTable(ctx context.Context, tableName string) (*schema.TableMetadata, error) {
	if i.conn.Dialect() == schema.SQLite {
		return i.introspectSQLite(ctx, tableName)
	}
	return i.introspectPostgres(ctx, tableName)
}

func (i *Introspector) introspectSQLite(ctx context.Context, tableName string) (*schema.TableMetadata, error) {
	table := &schema.TableMetadata{Name: tableName}

	rows, err := i.conn.Query(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var pkCols []string
	for rows.Next() {
		var col schema.ColumnMetadata
		var sqlType string
		var notNull, pk int
		var defaultVal sql.NullString

		if err := rows.Scan(&col.Name, &sqlType, &notNull, &defaultVal, &pk); err != nil {
			rows.Close()
			return nil, err
		}

		col.Kind = schema.KindOfSQLType(sqlType)
		col.Precision, col.Scale = typePrecision(sqlType)
		col.Nullable = notNull == 0 && pk == 0
		if defaultVal.Valid {
			d := defaultVal.String
			col.Default = &d
		}
		// INTEGER PRIMARY KEY aliases the rowid
		if pk > 0 && col.Kind == schema.KindInteger {
			col.Identity = true
		}
		col.Position = len(table.Columns)
		if pk > 0 {
			pkCols = append(pkCols, col.Name)
		}
		table.Columns = append(table.Columns, col)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(pkCols) > 0 {
		table.PrimaryKey = &schema.PrimaryKeyMetadata{Name: tableName + "_pkey", Columns: pkCols}
		if len(pkCols) > 1 {
			for idx := range table.Columns {
				table.Columns[idx].Identity = false
			}
		}
	}

	fkRows, err := i.conn.Query(ctx,
		`SELECT id, "table", "from", "to", on_update, on_delete FROM pragma_foreign_key_list(?) ORDER BY id, seq`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys: %w", err)
	}
	defer fkRows.Close()

	byID := make(map[int]int)
	for fkRows.Next() {
		var id int
		var refTable, from, onUpdate, onDelete string
		var to sql.NullString

		if err := fkRows.Scan(&id, &refTable, &from, &to, &onUpdate, &onDelete); err != nil {
			return nil, err
		}

		idx, ok := byID[id]
		if !ok {
			table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKeyMetadata{
				ReferencedTable: refTable,
				OnUpdate:        parseReferenceAction(onUpdate),
				OnDelete:        parseReferenceAction(onDelete),
			})
			idx = len(table.ForeignKeys) - 1
			byID[id] = idx
		}
		fk := &table.ForeignKeys[idx]
		fk.Columns = append(fk.Columns, from)
		// A missing target column means the parent's primary key
		fk.ReferencedColumns = append(fk.ReferencedColumns, to.String)
	}
	if err := fkRows.Err(); err != nil {
		return nil, err
	}

	for idx := range table.ForeignKeys {
		fk := &table.ForeignKeys[idx]
		fk.Name = fmt.Sprintf("fk_%s_%s_%s", tableName, strings.Join(fk.Columns, "_"), fk.ReferencedTable)
	}

	return table, nil
}

func (i *Introspector) introspectPostgres(ctx context.Context, tableName string) (*schema.TableMetadata, error) {
	table := &schema.TableMetadata{Name: tableName}

	columns, err := i.getColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	table.Columns = columns

	pk, err := i.getPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary key: %w", err)
	}
	table.PrimaryKey = pk

	fks, err := i.getForeignKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys: %w", err)
	}
	table.ForeignKeys = fks

	return table, nil
}

// getColumns retrieves column information for a PostgreSQL table.
func (i *Introspector) getColumns(ctx context.Context, tableName string) ([]schema.ColumnMetadata, error) {
	query := `
		SELECT
			column_name,
			data_type,
			numeric_precision,
			numeric_scale,
			is_nullable,
			column_default,
			is_identity
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := i.conn.Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.ColumnMetadata
	for rows.Next() {
		var col schema.ColumnMetadata
		var dataType, isNullable, isIdentity string
		var precision, scale sql.NullInt64
		var defaultVal sql.NullString

		err := rows.Scan(
			&col.Name,
			&dataType,
			&precision,
			&scale,
			&isNullable,
			&defaultVal,
			&isIdentity,
		)
		if err != nil {
			return nil, err
		}

		col.Kind = schema.KindOfSQLType(dataType)
		if col.Kind == schema.KindDecimal {
			col.Precision = int(precision.Int64)
			col.Scale = int(scale.Int64)
		}
		col.Nullable = isNullable == "YES"
		if defaultVal.Valid {
			d := defaultVal.String
			col.Default = &d
		}
		col.Identity = isIdentity == "YES" ||
			(defaultVal.Valid && strings.Contains(defaultVal.String, "nextval"))
		col.Position = len(columns)

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// getPrimaryKey retrieves primary key information for a PostgreSQL table.
func (i *Introspector) getPrimaryKey(ctx context.Context, tableName string) (*schema.PrimaryKeyMetadata, error) {
	query := `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = current_schema()
			AND tc.table_name = $1
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`

	rows, err := i.conn.Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk *schema.PrimaryKeyMetadata
	for rows.Next() {
		var name, column string
		if err := rows.Scan(&name, &column); err != nil {
			return nil, err
		}
		if pk == nil {
			pk = &schema.PrimaryKeyMetadata{Name: name}
		}
		pk.Columns = append(pk.Columns, column)
	}

	// No primary key is not an error
	return pk, rows.Err()
}

// getForeignKeys retrieves foreign key information for a PostgreSQL table.
func (i *Introspector) getForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKeyMetadata, error) {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name,
			ccu.column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.constraint_schema = tc.table_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		WHERE tc.table_schema = current_schema()
			AND tc.table_name = $1
			AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := i.conn.Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var foreignKeys []schema.ForeignKeyMetadata
	byName := make(map[string]int)
	for rows.Next() {
		var name, column, refTable, refColumn, updateRule, deleteRule string

		if err := rows.Scan(&name, &column, &refTable, &refColumn, &updateRule, &deleteRule); err != nil {
			return nil, err
		}

		idx, ok := byName[name]
		if !ok {
			foreignKeys = append(foreignKeys, schema.ForeignKeyMetadata{
				Name:            name,
				ReferencedTable: refTable,
				OnUpdate:        parseReferenceAction(updateRule),
				OnDelete:        parseReferenceAction(deleteRule),
			})
			idx = len(foreignKeys) - 1
			byName[name] = idx
		}
		fk := &foreignKeys[idx]
		fk.Columns = append(fk.Columns, column)
		fk.ReferencedColumns = append(fk.ReferencedColumns, refColumn)
	}

	return foreignKeys, rows.Err()
}

// typePrecision extracts precision and scale from a declared type such as
// DECIMAL(10,2). Returns zeros when the type carries none.
func typePrecision(sqlType string) (int, int) {
	open := strings.Index(sqlType, "(")
	end := strings.LastIndex(sqlType, ")")
	if open == -1 || end <= open {
		return 0, 0
	}
	var precision, scale int
	args := strings.ReplaceAll(sqlType[open+1:end], " ", "")
	if _, err := fmt.Sscanf(args, "%d,%d", &precision, &scale); err != nil {
		if _, err := fmt.Sscanf(args, "%d", &precision); err != nil {
			return 0, 0
		}
	}
	return precision, scale
}

// parseReferenceAction converts a referential rule to a ReferenceAction.
func parseReferenceAction(rule string) schema.ReferenceAction {
	switch strings.ToUpper(rule) {
	case "CASCADE":
		return schema.Cascade
	case "SET NULL":
		return schema.SetNull
	case "SET DEFAULT":
		return schema.SetDefault
	case "RESTRICT":
		return schema.Restrict
	default:
		return schema.NoAction
	}
}
