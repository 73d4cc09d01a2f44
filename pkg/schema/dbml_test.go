package schema_test

import (
	"strings"
	"testing"

	"github.com/marshallshelly/pebble-retail/pkg/models"
	"github.com/marshallshelly/pebble-retail/pkg/schema"
	retailschema "github.com/marshallshelly/pebble-retail/schema"
)

func TestRenderDBML_MatchesEmbeddedDiagram(t *testing.T) {
	reg, err := models.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	got := schema.RenderDBML(reg.All())
	if got != retailschema.DBML {
		t.Errorf("rendered DBML differs from schema/retail.dbml\n--- got ---\n%s\n--- want ---\n%s", got, retailschema.DBML)
	}
}

func TestRenderDBML(t *testing.T) {
	def := "CURRENT_TIMESTAMP"
	tables := []*schema.TableMetadata{
		{
			Name:   "customers",
			Entity: "Customer",
			Note:   "It's a customer.",
			Columns: []schema.ColumnMetadata{
				{Name: "id", Kind: schema.KindInteger, Identity: true},
				{Name: "name", Kind: schema.KindText},
			},
			PrimaryKey: &schema.PrimaryKeyMetadata{Columns: []string{"id"}},
		},
		{
			Name:   "payments",
			Entity: "Payment",
			Columns: []schema.ColumnMetadata{
				{Name: "customer_id", Kind: schema.KindInteger},
				{Name: "amount", Kind: schema.KindDecimal, Precision: 10, Scale: 2, Nullable: true},
				{Name: "paid_at", Kind: schema.KindTimestamp, Nullable: true, Default: &def},
			},
			ForeignKeys: []schema.ForeignKeyMetadata{{
				Columns:           []string{"customer_id"},
				ReferencedTable:   "customers",
				ReferencedColumns: []string{"id"},
			}},
		},
	}

	want := strings.Join([]string{
		"Table Customer {",
		"  id integer [pk, increment]",
		"  name varchar [not null]",
		"",
		`  Note: 'It\'s a customer.'`,
		"}",
		"",
		"Table Payment {",
		"  customer_id integer [not null]",
		"  amount decimal(10,2)",
		"  paid_at timestamp [default: `CURRENT_TIMESTAMP`]",
		"}",
		"",
		"Ref: Payment.(customer_id) < Customer.(id)",
		"",
	}, "\n")

	if got := schema.RenderDBML(tables); got != want {
		t.Errorf("RenderDBML mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}
