// Package registry provides a central schema registry for table metadata.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Registry is a thread-safe registry for table metadata that remembers the
// order in which models were registered.
type Registry struct {
	mu     sync.RWMutex
	parser *schema.Parser
	tables map[reflect.Type]*schema.TableMetadata
	names  map[string]*schema.TableMetadata
	order  []*schema.TableMetadata
}

// NewRegistry creates a new Registry instance.
func NewRegistry() *Registry {
	return &Registry{
		parser: schema.NewParser(),
		tables: make(map[reflect.Type]*schema.TableMetadata),
		names:  make(map[string]*schema.TableMetadata),
	}
}

// Register registers a model type and extracts its metadata.
func (r *Registry) Register(model any) error {
	modelType, err := structType(model)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tables[modelType]; ok {
		return nil // Already registered
	}

	table, err := r.parser.Parse(modelType)
	if err != nil {
		return fmt.Errorf("failed to parse model %s: %w", modelType.Name(), err)
	}
	if other, ok := r.names[table.Name]; ok {
		return fmt.Errorf("table %s already registered by %s", table.Name, other.Entity)
	}

	r.tables[modelType] = table
	r.names[table.Name] = table
	r.order = append(r.order, table)

	return nil
}

// RegisterAll registers every model in order and stops at the first error.
func (r *Registry) RegisterAll(models ...any) error {
	for _, m := range models {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves TableMetadata by Go type.
func (r *Registry) Get(modelType reflect.Type) (*schema.TableMetadata, error) {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	table, ok := r.tables[modelType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("model type %s not registered", modelType.Name())
	}

	return table, nil
}

// GetByName retrieves TableMetadata by table name.
func (r *Registry) GetByName(tableName string) (*schema.TableMetadata, error) {
	r.mu.RLock()
	table, ok := r.names[tableName]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("table %s not registered", tableName)
	}

	return table, nil
}

// GetOrRegister retrieves TableMetadata or registers it if not found.
func (r *Registry) GetOrRegister(model any) (*schema.TableMetadata, error) {
	modelType, err := structType(model)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	table, ok := r.tables[modelType]
	r.mu.RUnlock()
	if ok {
		return table, nil
	}

	if err := r.Register(model); err != nil {
		return nil, err
	}
	return r.Get(modelType)
}

// All returns all registered tables in registration order.
func (r *Registry) All() []*schema.TableMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*schema.TableMetadata(nil), r.order...)
}

// AllNames returns all registered table names in registration order.
func (r *Registry) AllNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, t := range r.order {
		names = append(names, t.Name)
	}
	return names
}

// Ordered returns all tables sorted so that every table follows the tables
// it references.
func (r *Registry) Ordered() ([]*schema.TableMetadata, error) {
	return schema.TopoSort(r.All())
}

// Levels returns the tables grouped by foreign-key depth.
func (r *Registry) Levels() ([][]*schema.TableMetadata, error) {
	return schema.TopoLevels(r.All())
}

// Validate checks the registered schema for dangling references.
func (r *Registry) Validate() error {
	return schema.Validate(r.All())
}

// Clear removes all registered models.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tables = make(map[reflect.Type]*schema.TableMetadata)
	r.names = make(map[string]*schema.TableMetadata)
	r.order = nil
}

// Has checks if a model type is registered.
func (r *Registry) Has(modelType reflect.Type) bool {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	_, ok := r.tables[modelType]
	r.mu.RUnlock()

	return ok
}

// HasTable checks if a table name is registered.
func (r *Registry) HasTable(tableName string) bool {
	r.mu.RLock()
	_, ok := r.names[tableName]
	r.mu.RUnlock()

	return ok
}

func structType(model any) (reflect.Type, error) {
	modelType := reflect.TypeOf(model)
	if modelType == nil {
		return nil, fmt.Errorf("model must be a struct, got nil")
	}
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}
	return modelType, nil
}

// globalRegistry is the default global registry instance.
var globalRegistry = NewRegistry()

// Default returns the global registry.
func Default() *Registry {
	return globalRegistry
}

// Register registers a model in the global registry.
func Register(model any) error {
	return globalRegistry.Register(model)
}

// Get retrieves TableMetadata from the global registry.
func Get(modelType reflect.Type) (*schema.TableMetadata, error) {
	return globalRegistry.Get(modelType)
}

// GetByName retrieves TableMetadata by name from the global registry.
func GetByName(tableName string) (*schema.TableMetadata, error) {
	return globalRegistry.GetByName(tableName)
}

// GetOrRegister retrieves or registers a model in the global registry.
func GetOrRegister(model any) (*schema.TableMetadata, error) {
	return globalRegistry.GetOrRegister(model)
}

// All returns all registered tables from the global registry.
func All() []*schema.TableMetadata {
	return globalRegistry.All()
}

// Clear clears the global registry.
func Clear() {
	globalRegistry.Clear()
}
