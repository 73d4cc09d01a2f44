package schema

import (
	"errors"
	"testing"
)

func table(name string, parents ...string) *TableMetadata {
	t := &TableMetadata{Name: name}
	for _, p := range parents {
		t.ForeignKeys = append(t.ForeignKeys, ForeignKeyMetadata{
			Columns:           []string{p + "_id"},
			ReferencedTable:   p,
			ReferencedColumns: []string{"id"},
		})
	}
	return t
}

func names(tables []*TableMetadata) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}

func TestTopoLevels(t *testing.T) {
	// Declared children first to make sure input order does not leak
	tables := []*TableMetadata{
		table("shipments", "orders"),
		table("order_details", "orders", "products"),
		table("orders", "customers"),
		table("customers"),
		table("products"),
		table("employees"),
	}

	levels, err := TopoLevels(tables)
	if err != nil {
		t.Fatalf("TopoLevels failed: %v", err)
	}

	want := [][]string{
		{"customers", "products", "employees"},
		{"orders"},
		{"shipments", "order_details"},
	}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(levels))
	}
	for i := range want {
		got := names(levels[i])
		if len(got) != len(want[i]) {
			t.Fatalf("level %d: got %v, want %v", i, got, want[i])
		}
		for j := range got {
			if got[j] != want[i][j] {
				t.Errorf("level %d: got %v, want %v", i, got, want[i])
				break
			}
		}
	}
}

func TestTopoSort(t *testing.T) {
	t.Run("parents first", func(t *testing.T) {
		sorted, err := TopoSort([]*TableMetadata{
			table("inventory", "products", "suppliers"),
			table("suppliers"),
			table("products"),
		})
		if err != nil {
			t.Fatalf("TopoSort failed: %v", err)
		}
		got := names(sorted)
		if got[0] != "suppliers" || got[1] != "products" || got[2] != "inventory" {
			t.Errorf("unexpected order %v", got)
		}
	})

	t.Run("self reference", func(t *testing.T) {
		sorted, err := TopoSort([]*TableMetadata{table("employees", "employees")})
		if err != nil {
			t.Fatalf("TopoSort failed: %v", err)
		}
		if len(sorted) != 1 {
			t.Errorf("expected 1 table, got %d", len(sorted))
		}
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := TopoSort([]*TableMetadata{table("a", "b"), table("b", "a")})
		if !errors.Is(err, ErrCycle) {
			t.Fatalf("expected ErrCycle, got %v", err)
		}
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := TopoSort([]*TableMetadata{table("orders", "customers")})
		if !errors.Is(err, ErrUnknownReference) {
			t.Fatalf("expected ErrUnknownReference, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		sorted, err := TopoSort(nil)
		if err != nil || len(sorted) != 0 {
			t.Errorf("expected empty result, got %v, %v", sorted, err)
		}
	})
}
