package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marshallshelly/pebble-retail/pkg/migration"
	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/runtime"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
)

// Report summarizes a bootstrap run.
type Report struct {
	Dialect  schema.Dialect `json:"dialect"`
	Target   string         `json:"target"`
	Created  []string       `json:"created"`
	Existing []string       `json:"existing"`
	Inserted []TableCount   `json:"inserted"`
	Duration time.Duration  `json:"duration"`
}

// TableCount pairs a table with a number of rows.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

func (r *Report) addInserted(table string, n int) {
	for i := range r.Inserted {
		if r.Inserted[i].Table == table {
			r.Inserted[i].Rows += int64(n)
			return
		}
	}
	r.Inserted = append(r.Inserted, TableCount{Table: table, Rows: int64(n)})
}

// TotalRows returns the number of rows inserted across all tables.
func (r *Report) TotalRows() int64 {
	var total int64
	for _, c := range r.Inserted {
		total += c.Rows
	}
	return total
}

// Run performs the whole bootstrap: open, create the schema, seed the
// sample data and commit. On any failure nothing is committed.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Report, error) {
	start := time.Now()

	l, err := Open(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	if err := l.InitializeSchema(ctx); err != nil {
		return l.Report(), err
	}
	if err := l.SeedSampleData(ctx); err != nil {
		return l.Report(), err
	}
	if err := l.CommitAndClose(); err != nil {
		return l.Report(), err
	}

	report := l.Report()
	report.Duration = time.Since(start)
	return report, nil
}

// TableStatus describes one declared table as found in storage.
type TableStatus struct {
	Table    string `json:"table"`
	Exists   bool   `json:"exists"`
	Conflict string `json:"conflict,omitempty"`
	Rows     int64  `json:"rows"`
}

// Inspect reports, without writing anything, which declared tables exist,
// whether they are compatible and how many rows they hold.
func Inspect(ctx context.Context, cfg Config) ([]TableStatus, error) {
	reg, err := models.NewRegistry()
	if err != nil {
		return nil, err
	}
	ordered, err := reg.Ordered()
	if err != nil {
		return nil, err
	}

	rtCfg, err := cfg.Runtime()
	if err != nil {
		return nil, storageUnavailable("", "invalid configuration", err)
	}
	db, err := runtime.Open(ctx, rtCfg)
	if err != nil {
		return nil, storageUnavailable("", "cannot open "+cfg.Target(), err)
	}
	defer db.Close()

	existing, err := migration.NewIntrospector(db).IntrospectSchema(ctx)
	if err != nil {
		return nil, storageUnavailable("", "cannot read existing schema", err)
	}
	diff := migration.NewDiffer().Compare(ordered, existing)

	conflicts := make(map[string]string)
	for _, c := range diff.Conflicts {
		if _, ok := conflicts[c.Table]; !ok {
			conflicts[c.Table] = c.String()
		}
	}

	var present []*schema.TableMetadata
	for _, t := range ordered {
		if _, ok := existing[t.Name]; ok {
			present = append(present, t)
		}
	}
	counts, err := countRows(ctx, db, present)
	if err != nil {
		return nil, storageUnavailable("", "cannot count rows", err)
	}
	byTable := make(map[string]int64, len(counts))
	for _, c := range counts {
		byTable[c.Table] = c.Rows
	}

	statuses := make([]TableStatus, 0, len(ordered))
	for _, t := range ordered {
		_, ok := existing[t.Name]
		statuses = append(statuses, TableStatus{
			Table:    t.Name,
			Exists:   ok,
			Conflict: conflicts[t.Name],
			Rows:     byTable[t.Name],
		})
	}
	return statuses, nil
}

// countRows counts the rows of each table. Tables must exist.
func countRows(ctx context.Context, conn runtime.Conn, tables []*schema.TableMetadata) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		var n int64
		err := conn.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t.Name)).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", t.Name, err)
		}
		counts = append(counts, TableCount{Table: t.Name, Rows: n})
	}
	return counts, nil
}

// IsKind reports whether err is a bootstrap error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
