// Package bootstrap creates the retail schema on a storage target and fills
// it with a small sample data set, all inside a single transaction.
package bootstrap

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/marshallshelly/pebble-retail/pkg/builder"
	"github.com/marshallshelly/pebble-retail/pkg/migration"
	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/registry"
	"github.com/marshallshelly/pebble-retail/pkg/runtime"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Stage identifies a step of the bootstrap.
type Stage string

const (
	StageOpen   Stage = "open"
	StageCreate Stage = "create"
	StageSkip   Stage = "skip"
	StageSeed   Stage = "seed"
	StageCommit Stage = "commit"
	StageAbort  Stage = "abort"
)

// Event reports progress to an Observer.
type Event struct {
	Stage Stage
	Table string
	Rows  int
	Err   error
}

// Observer receives progress events. It is called synchronously.
type Observer func(Event)

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for diagnostics. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRegistry replaces the model registry. The default holds the retail
// models.
func WithRegistry(reg *registry.Registry) Option {
	return func(l *Loader) {
		l.registry = reg
	}
}

// WithObserver registers a progress observer.
func WithObserver(observer Observer) Option {
	return func(l *Loader) {
		l.observer = observer
	}
}

// Loader owns one storage handle and one open transaction. Every operation
// runs inside that transaction; nothing is visible to other connections
// until CommitAndClose.
type Loader struct {
	cfg      Config
	dialect  schema.Dialect
	db       *runtime.DB
	tx       *runtime.Tx
	registry *registry.Registry
	builder  *builder.DB
	ledger   *ledger
	logger   *slog.Logger
	observer Observer
	report   *Report

	// failed holds the first error; once set the transaction is rolled
	// back and every later call returns it.
	failed error
	closed bool
}

// Open connects to the storage target (creating the SQLite file if absent)
// and begins the bootstrap transaction.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Loader, error) {
	l := &Loader{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.registry == nil {
		reg, err := models.NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("invalid model declarations: %w", err)
		}
		l.registry = reg
	}

	rtCfg, err := cfg.Runtime()
	if err != nil {
		return nil, storageUnavailable("", "invalid configuration", err)
	}
	l.dialect = rtCfg.Dialect

	db, err := runtime.Open(ctx, rtCfg)
	if err != nil {
		return nil, storageUnavailable("", "cannot open "+cfg.Target(), err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		_ = db.Close()
		return nil, storageUnavailable("", "cannot begin transaction", err)
	}

	l.db = db
	l.tx = tx
	l.builder = builder.NewWithRegistry(tx, l.registry)
	l.ledger = newLedger(tx)
	l.report = &Report{Dialect: l.dialect, Target: cfg.Target()}

	l.logger.Debug("storage opened", "dialect", l.dialect, "target", l.report.Target)
	l.emit(Event{Stage: StageOpen})
	return l, nil
}

// Report returns what the loader has done so far.
func (l *Loader) Report() *Report {
	return l.report
}

// Dialect returns the dialect of the storage target.
func (l *Loader) Dialect() schema.Dialect {
	return l.dialect
}

func (l *Loader) emit(e Event) {
	if l.observer != nil {
		l.observer(e)
	}
}

// usable returns the error that prevents further work, if any.
func (l *Loader) usable() error {
	if l.failed != nil {
		return l.failed
	}
	if l.closed {
		return ErrClosed
	}
	return nil
}

// fail records err as the loader's terminal error and rolls the
// transaction back.
func (l *Loader) fail(err error) error {
	if l.failed == nil {
		l.failed = err
		if rbErr := l.tx.Rollback(); rbErr != nil {
			l.logger.Warn("rollback failed", "error", rbErr)
		}
		l.logger.Error("bootstrap aborted", "error", err)
		l.emit(Event{Stage: StageAbort, Table: TableOf(err), Err: err})
	}
	return l.failed
}

// TableOf returns the table named by a bootstrap error, if any.
func TableOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Table
	}
	return ""
}

// InitializeSchema creates every declared table that does not exist yet, in
// dependency order. Tables that already exist with a compatible definition
// are left untouched, so calling it twice is harmless. A table that exists
// with an incompatible definition fails with a SchemaConflict error.
func (l *Loader) InitializeSchema(ctx context.Context) error {
	if err := l.usable(); err != nil {
		return err
	}

	ordered, err := l.registry.Ordered()
	if err != nil {
		return l.fail(schemaConflict("", "declared schema has no valid creation order", err))
	}

	executor := migration.NewExecutor(l.tx)
	if err := executor.Lock(ctx); err != nil {
		return l.fail(storageUnavailable("", "cannot lock schema", err))
	}

	existing, err := migration.NewIntrospector(l.tx).IntrospectSchema(ctx)
	if err != nil {
		return l.fail(storageUnavailable("", "cannot read existing schema", err))
	}

	diff := migration.NewDiffer().Compare(ordered, existing)
	if diff.HasConflicts() {
		tables := diff.ConflictTables()
		return l.fail(schemaConflict(tables[0], diff.Summary(), nil))
	}

	for _, name := range diff.TablesMatching {
		// Tables this loader created or already reported stay as they were
		if slices.Contains(l.report.Created, name) || slices.Contains(l.report.Existing, name) {
			continue
		}
		l.logger.Debug("table exists", "table", name)
		l.report.Existing = append(l.report.Existing, name)
		l.emit(Event{Stage: StageSkip, Table: name})
	}

	// Plain CREATE TABLE: a table that appears between introspection and
	// creation must fail rather than be silently reused.
	planner := migration.NewPlannerWithOptions(l.dialect, migration.PlannerOptions{})
	for _, table := range diff.TablesAdded {
		stmt := planner.CreateTable(table)
		if err := executor.ApplyStatements(ctx, []string{stmt}); err != nil {
			if runtime.IsAlreadyExists(err) {
				return l.fail(schemaConflict(table.Name, "table appeared during creation", err))
			}
			return l.fail(storageUnavailable(table.Name, "cannot create table", err))
		}
		l.logger.Debug("table created", "table", table.Name)
		l.report.Created = append(l.report.Created, table.Name)
		l.emit(Event{Stage: StageCreate, Table: table.Name})
	}

	return nil
}

// SeedSampleData inserts SampleData. Batches are sorted so that every table
// is filled after the tables it references.
func (l *Loader) SeedSampleData(ctx context.Context) error {
	if err := l.usable(); err != nil {
		return err
	}

	batches, err := l.inDependencyOrder(SampleData())
	if err != nil {
		return l.fail(err)
	}
	return l.Seed(ctx, batches...)
}

// inDependencyOrder stably sorts batches by the position of their table in
// the registry's topological order.
func (l *Loader) inDependencyOrder(batches []Batch) ([]Batch, error) {
	ordered, err := l.registry.Ordered()
	if err != nil {
		return nil, schemaConflict("", "declared schema has no valid creation order", err)
	}
	rank := make(map[string]int, len(ordered))
	for i, t := range ordered {
		rank[t.Name] = i
	}

	type ranked struct {
		batch Batch
		rank  int
	}
	items := make([]ranked, 0, len(batches))
	for _, b := range batches {
		table, err := l.registry.GetOrRegister(b.Model())
		if err != nil {
			return nil, fmt.Errorf("unknown model %T: %w", b.Model(), err)
		}
		items = append(items, ranked{batch: b, rank: rank[table.Name]})
	}
	slices.SortStableFunc(items, func(a, b ranked) int { return cmp.Compare(a.rank, b.rank) })

	sorted := make([]Batch, len(items))
	for i, it := range items {
		sorted[i] = it.batch
	}
	return sorted, nil
}

// Seed inserts batches in exactly the order given. Every foreign key is
// checked against the keys already in storage or inserted earlier in this
// transaction; a row that references a missing parent fails with a
// ReferentialViolation error and nothing is committed.
func (l *Loader) Seed(ctx context.Context, batches ...Batch) error {
	if err := l.usable(); err != nil {
		return err
	}

	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return l.fail(storageUnavailable("", "cancelled", err))
		}

		table, err := l.registry.GetOrRegister(batch.Model())
		if err != nil {
			return l.fail(fmt.Errorf("unknown model %T: %w", batch.Model(), err))
		}

		for i := range batch.Len() {
			missing, err := l.ledger.check(ctx, table, batch.Row(i))
			if err != nil {
				return l.fail(storageUnavailable(table.Name, "cannot verify references", err))
			}
			if missing != nil {
				return l.fail(referentialViolation(table.Name, missing.String(), nil))
			}
		}

		ids, err := batch.insert(ctx, l.builder)
		if err != nil {
			if runtime.IsForeignKeyViolation(err) {
				return l.fail(referentialViolation(table.Name, "rejected by storage", err))
			}
			return l.fail(storageUnavailable(table.Name, "cannot insert rows", err))
		}
		l.ledger.add(table.Name, ids...)

		l.logger.Debug("rows inserted", "table", table.Name, "rows", len(ids))
		l.report.addInserted(table.Name, len(ids))
		l.emit(Event{Stage: StageSeed, Table: table.Name, Rows: len(ids)})
	}

	return nil
}

// Counts returns the number of rows in every declared table that exists,
// as seen from inside the open transaction.
func (l *Loader) Counts(ctx context.Context) ([]TableCount, error) {
	if err := l.usable(); err != nil {
		return nil, err
	}
	return countRows(ctx, l.tx, l.registry.All())
}

// CommitAndClose commits the transaction and releases the storage handle.
// If an earlier operation failed, the transaction has already been rolled
// back; the handle is released and that failure is returned.
func (l *Loader) CommitAndClose() error {
	if l.closed {
		if l.failed != nil {
			return l.failed
		}
		return ErrClosed
	}
	defer l.release()

	if l.failed != nil {
		return l.failed
	}

	if err := l.tx.Commit(); err != nil {
		l.failed = storageUnavailable("", "commit failed", err)
		l.emit(Event{Stage: StageAbort, Err: l.failed})
		return l.failed
	}
	l.logger.Info("bootstrap committed", "created", len(l.report.Created), "rows", l.report.TotalRows())
	l.emit(Event{Stage: StageCommit})
	return nil
}

// Close rolls back anything uncommitted and releases the storage handle.
// It is safe to call after CommitAndClose and more than once.
func (l *Loader) Close() error {
	if l.closed {
		return nil
	}
	if l.failed == nil {
		if err := l.tx.Rollback(); err != nil {
			l.logger.Warn("rollback failed", "error", err)
		}
	}
	return l.release()
}

func (l *Loader) release() error {
	l.closed = true
	if err := l.db.Close(); err != nil {
		return storageUnavailable("", "cannot release storage", err)
	}
	return nil
}
