package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

const (
	// StructTagKey is the key used in struct tags (e.g., `po:"..."`).
	StructTagKey = "po"
)

// Tabler is implemented by models that name their own table.
type Tabler interface {
	TableName() string
}

// Noter is implemented by models that carry a human readable description.
type Noter interface {
	TableNote() string
}

// Parser parses struct definitions to extract table metadata.
type Parser struct {
	mu    sync.Mutex
	cache map[reflect.Type]*TableMetadata
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		cache: make(map[reflect.Type]*TableMetadata),
	}
}

// Parse extracts TableMetadata from a Go struct type.
func (p *Parser) Parse(modelType reflect.Type) (*TableMetadata, error) {
	// Dereference pointer types
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.cache[modelType]; ok {
		return cached, nil
	}
	table := &TableMetadata{
		Name:        extractTableName(modelType),
		Entity:      modelType.Name(),
		Note:        extractNote(modelType),
		GoType:      modelType,
		Columns:     make([]ColumnMetadata, 0),
		ForeignKeys: make([]ForeignKeyMetadata, 0),
	}
	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagValue := field.Tag.Get(StructTagKey)
		if tagValue == "" || tagValue == "-" {
			continue
		}
		tagOpts, err := parseTag(tagValue)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tag for field %s: %w", field.Name, err)
		}
		column, err := createColumnMetadata(field, tagOpts, i)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", modelType.Name(), field.Name, err)
		}
		if tagOpts.Has("primaryKey") {
			if table.PrimaryKey == nil {
				table.PrimaryKey = &PrimaryKeyMetadata{
					Columns: []string{column.Name},
					Name:    table.Name + "_pkey",
				}
			} else {
				table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, column.Name)
			}
		}
		table.Columns = append(table.Columns, column)

		fk, err := parseForeignKey(table.Name, column.Name, tagOpts)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", modelType.Name(), field.Name, err)
		}
		if fk != nil {
			table.ForeignKeys = append(table.ForeignKeys, *fk)
		}
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("model %s has no %q tagged fields", modelType.Name(), StructTagKey)
	}

	p.cache[modelType] = table
	return table, nil
}

// extractTableName resolves the table name for a struct type.
// A TableName() method wins; otherwise the struct name is snake_cased.
func extractTableName(modelType reflect.Type) string {
	if tabler, ok := reflect.New(modelType).Interface().(Tabler); ok {
		if name := tabler.TableName(); name != "" {
			return name
		}
	}

	return toSnakeCase(modelType.Name())
}

func extractNote(modelType reflect.Type) string {
	if noter, ok := reflect.New(modelType).Interface().(Noter); ok {
		return noter.TableNote()
	}
	return ""
}

// createColumnMetadata creates a ColumnMetadata from a struct field.
func createColumnMetadata(field reflect.StructField, opts *TagOptions, position int) (ColumnMetadata, error) {
	column := ColumnMetadata{
		Name:     opts.Name,
		GoField:  field.Name,
		GoType:   field.Type,
		Position: position,
	}

	kind, precision, scale, err := opts.Kind()
	if err != nil {
		return column, err
	}
	if kind == KindUnknown {
		kind = KindOf(field.Type)
	}
	if kind == KindUnknown {
		return column, fmt.Errorf("no column kind for Go type %s", field.Type)
	}
	column.Kind = kind
	if kind == KindDecimal {
		column.Precision, column.Scale = precision, scale
		if column.Precision == 0 {
			column.Precision, column.Scale = DefaultPrecision, DefaultScale
		}
	}

	column.Nullable = !opts.Has("notNull") && !opts.Has("primaryKey")
	if IsNullable(field.Type) {
		column.Nullable = true
	}
	if defaultVal := opts.Get("default"); defaultVal != "" {
		column.Default = &defaultVal
	}
	column.Identity = opts.Has("identity") || opts.Has("autoIncrement")
	if column.Identity && kind != KindInteger {
		return column, fmt.Errorf("identity column %s must be an integer", column.Name)
	}

	return column, nil
}

// TagOptions represents parsed tag options.
type TagOptions struct {
	Name    string            // Column name (first element)
	Options map[string]string // Other options
}

// parseTag parses a struct tag value into TagOptions.
// Format: "column_name,option1,option2(value),option3"
func parseTag(tag string) (*TagOptions, error) {
	parts := splitTag(tag)
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("empty tag value")
	}
	opts := &TagOptions{
		Name:    parts[0],
		Options: make(map[string]string),
	}
	for i := 1; i < len(parts); i++ {
		opt := parts[i]
		// option(value) or option:value
		if idx := strings.Index(opt, "("); idx != -1 {
			if !strings.HasSuffix(opt, ")") {
				return nil, fmt.Errorf("invalid option format: %s", opt)
			}
			opts.Options[opt[:idx]] = opt[idx+1 : len(opt)-1]
		} else if idx := strings.Index(opt, ":"); idx != -1 {
			opts.Options[opt[:idx]] = opt[idx+1:]
		} else {
			opts.Options[opt] = ""
		}
	}
	return opts, nil
}

// Has checks if an option exists.
func (t *TagOptions) Has(key string) bool {
	_, ok := t.Options[key]
	return ok
}

// Get returns the value of an option.
func (t *TagOptions) Get(key string) string {
	return t.Options[key]
}

// Kind returns the semantic kind named in the tag, if any.
// decimal(p,s) also yields precision and scale.
func (t *TagOptions) Kind() (Kind, int, int, error) {
	for _, k := range []Kind{KindInteger, KindText, KindDecimal, KindTimestamp} {
		if !t.Has(string(k)) {
			continue
		}
		if k != KindDecimal || t.Get(string(k)) == "" {
			return k, 0, 0, nil
		}
		precision, scale, err := parsePrecision(t.Get(string(k)))
		if err != nil {
			return KindUnknown, 0, 0, err
		}
		return k, precision, scale, nil
	}
	return KindUnknown, 0, 0, nil
}

func parsePrecision(value string) (int, int, error) {
	p, s, _ := strings.Cut(value, ",")
	precision, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil || precision <= 0 {
		return 0, 0, fmt.Errorf("invalid decimal precision %q", value)
	}
	scale := 0
	if s != "" {
		scale, err = strconv.Atoi(strings.TrimSpace(s))
		if err != nil || scale < 0 || scale > precision {
			return 0, 0, fmt.Errorf("invalid decimal scale %q", value)
		}
	}
	return precision, scale, nil
}

// splitTag splits a tag value by commas, handling nested parentheses.
func splitTag(tag string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	for _, ch := range tag {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

// toSnakeCase converts a string from PascalCase to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, ch := range s {
		if i > 0 && ch >= 'A' && ch <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(ch)
	}
	return strings.ToLower(result.String())
}

// parseForeignKey reads fk(table.column) or fk(table(column)) from a tag.
func parseForeignKey(tableName, columnName string, opts *TagOptions) (*ForeignKeyMetadata, error) {
	fkStr := opts.Get("fk")
	if fkStr == "" {
		if opts.Has("fk") {
			return nil, fmt.Errorf("fk option on %s needs a target", columnName)
		}
		return nil, nil
	}

	var refTable, refColumn string
	if before, after, ok := strings.Cut(fkStr, "."); ok {
		refTable, refColumn = before, after
	} else if idx := strings.Index(fkStr, "("); idx > 0 && strings.HasSuffix(fkStr, ")") {
		refTable, refColumn = fkStr[:idx], fkStr[idx+1:len(fkStr)-1]
	}
	if refTable == "" || refColumn == "" {
		return nil, fmt.Errorf("invalid fk target %q on %s", fkStr, columnName)
	}

	return &ForeignKeyMetadata{
		Name:              fmt.Sprintf("fk_%s_%s_%s", tableName, columnName, refTable),
		Columns:           []string{columnName},
		ReferencedTable:   refTable,
		ReferencedColumns: []string{refColumn},
		OnDelete:          parseReferenceAction(opts.Get("onDelete")),
		OnUpdate:          parseReferenceAction(opts.Get("onUpdate")),
	}, nil
}

// parseReferenceAction converts a string to ReferenceAction.
func parseReferenceAction(action string) ReferenceAction {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "CASCADE":
		return Cascade
	case "RESTRICT":
		return Restrict
	case "SETNULL", "SET NULL":
		return SetNull
	case "SETDEFAULT", "SET DEFAULT":
		return SetDefault
	default:
		return NoAction
	}
}
